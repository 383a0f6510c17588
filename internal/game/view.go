package game

import (
	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/energy"
)

const viewLogTail = 10

// CardView is a read-only copy of a card.
type CardView struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Type          CardType             `json:"type"`
	Attack        int                  `json:"attack"`
	Defense       int                  `json:"defense"`
	Cost          int                  `json:"cost"`
	AdjustedCost  int                  `json:"adjusted_cost"`
	Description   string               `json:"description,omitempty"`
	FlavorText    string               `json:"flavor_text,omitempty"`
	Effects       []effects.Descriptor `json:"effects,omitempty"`
	Tapped        bool                 `json:"tapped"`
	SummoningSick bool                 `json:"summoning_sick"`
	EquippedTo    string               `json:"equipped_to,omitempty"`
	Equipment     string               `json:"equipment,omitempty"`
	OwnerID       string               `json:"owner_id"`
	Zone          string               `json:"zone"`
}

// PlayerView is a read-only copy of a player's public state. Hand is nil
// when hidden from the viewer; HandSize is always set.
type PlayerView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Life       int        `json:"life"`
	Energy     int        `json:"energy"`
	DeckSize   int        `json:"deck_size"`
	HandSize   int        `json:"hand_size"`
	Hand       []CardView `json:"hand,omitempty"`
	Battlezone []CardView `json:"battlezone"`
	Environs   []CardView `json:"environs"`
	Graveyard  []CardView `json:"graveyard"`
	// EquipmentCostReduction is the player's current constant modifier.
	EquipmentCostReduction int `json:"equipment_cost_reduction"`
}

// View is a snapshot of the game as seen by one player, or by a
// spectator when Viewer is empty.
type View struct {
	GameID       string       `json:"game_id"`
	Turn         int          `json:"turn"`
	Phase        string       `json:"phase"`
	ActivePlayer string       `json:"active_player"`
	Viewer       string       `json:"viewer,omitempty"`
	Players      []PlayerView `json:"players"`
	Over         bool         `json:"over"`
	Winner       string       `json:"winner,omitempty"`
	RecentLog    []string     `json:"recent_log,omitempty"`
}

// Player returns the view of a player by ID.
func (v View) Player(id string) (PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID == id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// Opponent returns the view of the other player.
func (v View) Opponent(id string) (PlayerView, bool) {
	for _, p := range v.Players {
		if p.ID != id {
			return p, true
		}
	}
	return PlayerView{}, false
}

// View builds a snapshot for viewer. Only the viewer's own hand is shown.
func (g *Game) View(viewer string) View {
	v := View{
		GameID:       g.id,
		Turn:         g.turns.TurnNumber(),
		Phase:        g.turns.CurrentPhase().String(),
		ActivePlayer: g.turns.ActivePlayer(),
		Viewer:       viewer,
		Over:         g.over,
		Winner:       g.winner,
	}
	for _, p := range g.order {
		pv := PlayerView{
			ID:                     p.ID,
			Name:                   p.Name,
			Life:                   p.Life(),
			Energy:                 p.Energy(),
			DeckSize:               p.Deck().Len(),
			HandSize:               p.Hand().Len(),
			Battlezone:             g.cardViews(p.Battlezone().cards),
			Environs:               g.cardViews(p.Environs().cards),
			Graveyard:              g.cardViews(p.Graveyard().cards),
			EquipmentCostReduction: p.modifiers.Get(energy.ModifierEquipmentCostReduction),
		}
		if p.ID == viewer {
			pv.Hand = g.cardViews(p.Hand().cards)
		}
		v.Players = append(v.Players, pv)
	}
	start := len(g.log) - viewLogTail
	if start < 0 {
		start = 0
	}
	for _, e := range g.log[start:] {
		v.RecentLog = append(v.RecentLog, e.String())
	}
	return v
}

// CardView returns a read-only copy of a card with its adjusted cost.
func (g *Game) CardView(id string) (CardView, bool) {
	c := g.cards[id]
	if c == nil {
		return CardView{}, false
	}
	return g.viewOf(c), true
}

func (g *Game) cardViews(cards []*Card) []CardView {
	out := make([]CardView, 0, len(cards))
	for _, c := range cards {
		out = append(out, g.viewOf(c))
	}
	return out
}

func (g *Game) viewOf(c *Card) CardView {
	adjusted := c.Cost
	if owner := g.players[c.OwnerID]; owner != nil {
		adjusted = c.AdjustedCost(owner.modifiers)
	}
	return CardView{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Attack:        c.Attack,
		Defense:       c.Defense,
		Cost:          c.Cost,
		AdjustedCost:  adjusted,
		Description:   c.Description,
		FlavorText:    c.FlavorText,
		Effects:       append([]effects.Descriptor(nil), c.Effects...),
		Tapped:        c.Tapped,
		SummoningSick: c.SummoningSick,
		EquippedTo:    c.EquippedTo,
		Equipment:     c.Equipment,
		OwnerID:       c.OwnerID,
		Zone:          c.Zone.String(),
	}
}
