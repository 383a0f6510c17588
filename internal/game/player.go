package game

import (
	"github.com/technobros/cardgame-go/internal/game/energy"
	"github.com/technobros/cardgame-go/internal/game/rules"
)

// Player holds a seat's zones, life, energy and per-turn modifiers.
type Player struct {
	ID   string
	Name string

	life      int
	baseRegen int
	energy    *energy.Pool
	modifiers *energy.Modifiers
	zones     map[rules.Zone]*Zone
}

func newPlayer(id, name string, cfg Config) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		life:      cfg.StartingLife,
		baseRegen: cfg.BaseEnergyRegen,
		energy:    energy.NewPool(0),
		modifiers: energy.NewModifiers(),
		zones: map[rules.Zone]*Zone{
			rules.ZoneDeck:       newZone(rules.ZoneDeck),
			rules.ZoneHand:       newZone(rules.ZoneHand),
			rules.ZoneBattlezone: newZone(rules.ZoneBattlezone),
			rules.ZoneEnvirons:   newZone(rules.ZoneEnvirons),
			rules.ZoneGraveyard:  newZone(rules.ZoneGraveyard),
		},
	}
}

// Life returns the player's life total.
func (p *Player) Life() int {
	return p.life
}

// Energy returns the energy currently available.
func (p *Player) Energy() int {
	return p.energy.Amount()
}

// Modifiers returns the player's constant-effect modifiers.
func (p *Player) Modifiers() *energy.Modifiers {
	return p.modifiers
}

// Zone returns one of the player's zones.
func (p *Player) Zone(kind rules.Zone) *Zone {
	return p.zones[kind]
}

func (p *Player) Deck() *Zone       { return p.zones[rules.ZoneDeck] }
func (p *Player) Hand() *Zone       { return p.zones[rules.ZoneHand] }
func (p *Player) Battlezone() *Zone { return p.zones[rules.ZoneBattlezone] }
func (p *Player) Environs() *Zone   { return p.zones[rules.ZoneEnvirons] }
func (p *Player) Graveyard() *Zone  { return p.zones[rules.ZoneGraveyard] }

// InPlay returns battlezone cards followed by environs cards.
func (p *Player) InPlay() []*Card {
	return append(p.Battlezone().Cards(), p.Environs().Cards()...)
}

// DrawCard moves the top card of the deck into the hand. It returns nil
// when the deck is empty; an empty deck does not end the game.
func (p *Player) DrawCard() *Card {
	c := p.Deck().Top()
	if c == nil {
		return nil
	}
	p.move(c, rules.ZoneHand)
	return c
}

// move is the single place a card changes zone. ZoneNone takes the card
// out of every zone.
func (p *Player) move(c *Card, dest rules.Zone) {
	if c.Zone != rules.ZoneNone {
		removed := p.Zone(c.Zone).Remove(c.ID)
		invariant(removed == c, "card %s is not in its recorded zone %s", c.ID, c.Zone)
	}
	invariant(p.ZoneOf(c.ID) == rules.ZoneNone, "card %s is still held by %s", c.ID, p.ZoneOf(c.ID))
	c.Zone = dest
	if dest != rules.ZoneNone {
		p.Zone(dest).Add(c)
	}
}

// TakeDamage reduces life. Losing is detected by the game, not here.
func (p *Player) TakeDamage(n int) {
	if n > 0 {
		p.life -= n
	}
}

// IncreaseEnergy grants the fixed base regeneration.
func (p *Player) IncreaseEnergy() int {
	p.energy.Add(p.baseRegen)
	return p.baseRegen
}

// HasLost reports whether life has dropped to zero or below.
func (p *Player) HasLost() bool {
	return p.life <= 0
}

// ZoneOf returns the zone holding the card, or ZoneNone.
func (p *Player) ZoneOf(cardID string) rules.Zone {
	for kind, z := range p.zones {
		if z.Contains(cardID) {
			return kind
		}
	}
	return rules.ZoneNone
}

// CardCount returns the number of cards across all zones.
func (p *Player) CardCount() int {
	n := 0
	for _, z := range p.zones {
		n += z.Len()
	}
	return n
}

// allZones lists the zones in a fixed order.
func (p *Player) allZones() []*Zone {
	return []*Zone{p.Deck(), p.Hand(), p.Battlezone(), p.Environs(), p.Graveyard()}
}
