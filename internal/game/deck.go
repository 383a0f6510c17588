package game

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/rules"
)

// Template is a card definition from the card pool.
type Template struct {
	Name        string               `json:"name" yaml:"name"`
	Type        CardType             `json:"card_type" yaml:"card_type"`
	Cost        int                  `json:"cost" yaml:"cost"`
	Attack      int                  `json:"attack" yaml:"attack"`
	Defense     int                  `json:"defense" yaml:"defense"`
	Description string               `json:"description" yaml:"description"`
	FlavorText  string               `json:"flavor_text,omitempty" yaml:"flavor_text,omitempty"`
	Effects     []effects.Descriptor `json:"effects,omitempty" yaml:"effects,omitempty"`
}

// Validate checks the fields every card needs. Effect descriptors are
// checked when they fire so one bad effect does not reject a card.
func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return errors.New("card template has no name")
	}
	if t.Cost < 0 {
		return fmt.Errorf("card %q has negative cost %d", t.Name, t.Cost)
	}
	if t.Type == "" {
		return fmt.Errorf("card %q has no type", t.Name)
	}
	return nil
}

// BuildDeck draws size templates at random from pool, allowing at most
// maxCopies of any name. It returns ErrPoolExhausted when the pool cannot
// fill the deck.
func BuildDeck(rng *rand.Rand, pool []Template, size, maxCopies int) ([]Template, error) {
	names := make(map[string]bool)
	for _, t := range pool {
		names[t.Name] = true
	}
	if len(names)*maxCopies < size {
		return nil, fmt.Errorf("%w: %d distinct cards with %d copies each cannot fill %d slots",
			ErrPoolExhausted, len(names), maxCopies, size)
	}

	counts := make(map[string]int, len(names))
	deck := make([]Template, 0, size)
	for len(deck) < size {
		open := make([]int, 0, len(pool))
		for i, t := range pool {
			if counts[t.Name] < maxCopies {
				open = append(open, i)
			}
		}
		if len(open) == 0 {
			return nil, fmt.Errorf("%w: ran out after %d cards", ErrPoolExhausted, len(deck))
		}
		t := pool[open[rng.Intn(len(open))]]
		counts[t.Name]++
		deck = append(deck, t)
	}
	return deck, nil
}

// BuildDecks builds and shuffles a deck for each player from a shared pool.
func (g *Game) BuildDecks(pool []Template) error {
	valid := make([]Template, 0, len(pool))
	for _, t := range pool {
		if err := t.Validate(); err != nil {
			g.warn("skipping card template", "", err, t.Name)
			continue
		}
		valid = append(valid, t)
	}
	for _, p := range g.order {
		deck, err := BuildDeck(g.rng, valid, g.cfg.DeckSize, g.cfg.MaxCopies)
		if err != nil {
			return fmt.Errorf("build deck for %s: %w", p.Name, err)
		}
		if err := g.LoadDeck(p.ID, deck); err != nil {
			return err
		}
		p.Deck().Shuffle(g.rng)
	}
	return nil
}

// LoadDeck instantiates templates into the player's deck in order. The
// first template ends up on top.
func (g *Game) LoadDeck(playerID string, templates []Template) error {
	p := g.players[playerID]
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, t := range templates {
		c := g.newCard(p.ID, t)
		g.moveCard(c, rules.ZoneDeck)
	}
	return nil
}

// PutCard creates a card directly in one of the player's zones, for
// scenario setup. Creatures placed in the battlezone are ready to act.
func (g *Game) PutCard(playerID string, t Template, zone rules.Zone) (*Card, error) {
	p := g.players[playerID]
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if zone == rules.ZoneNone {
		return nil, fmt.Errorf("%w: cannot place a card outside all zones", ErrIllegalAction)
	}
	c := g.newCard(p.ID, t)
	g.moveCard(c, zone)
	if zone.InPlay() {
		g.recomputeConstants(p)
	}
	return c, nil
}

func (g *Game) newCard(ownerID string, t Template) *Card {
	c := &Card{
		ID:          g.newID(),
		Name:        t.Name,
		Description: t.Description,
		FlavorText:  t.FlavorText,
		Type:        t.Type,
		Attack:      t.Attack,
		Defense:     t.Defense,
		Cost:        t.Cost,
		Effects:     append([]effects.Descriptor(nil), t.Effects...),
		OwnerID:     ownerID,
		Zone:        rules.ZoneNone,
	}
	g.cards[c.ID] = c
	return c
}
