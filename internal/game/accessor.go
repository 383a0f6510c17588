package game

import (
	"github.com/technobros/cardgame-go/internal/game/rules"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// boardAccessor exposes the arena to the legality checker and the target
// validator.
type boardAccessor struct {
	g *Game
}

func (b *boardAccessor) FindCard(cardID string) (rules.CardInfo, bool) {
	c := b.g.cards[cardID]
	if c == nil {
		return rules.CardInfo{}, false
	}
	cost := c.Cost
	if owner := b.g.players[c.OwnerID]; owner != nil {
		cost = c.AdjustedCost(owner.modifiers)
	}
	return rules.CardInfo{
		ID:            c.ID,
		Name:          c.Name,
		Type:          c.Type,
		Zone:          c.Zone,
		OwnerID:       c.OwnerID,
		Cost:          cost,
		Tapped:        c.Tapped,
		SummoningSick: c.SummoningSick,
		EquippedTo:    c.EquippedTo,
	}, true
}

func (b *boardAccessor) FindPlayer(playerID string) (rules.PlayerInfo, bool) {
	p := b.g.players[playerID]
	if p == nil {
		return rules.PlayerInfo{}, false
	}
	return rules.PlayerInfo{
		PlayerID: p.ID,
		Name:     p.Name,
		Life:     p.Life(),
		Energy:   p.Energy(),
		Lost:     p.HasLost(),
	}, true
}

func (b *boardAccessor) InPlayForTarget(playerID string) []targeting.TargetCardInfo {
	p := b.g.players[playerID]
	if p == nil {
		return nil
	}
	cards := p.InPlay()
	out := make([]targeting.TargetCardInfo, 0, len(cards))
	for _, c := range cards {
		out = append(out, targetInfo(c))
	}
	return out
}

func (b *boardAccessor) OpponentForTarget(playerID string) string {
	if opp := b.g.Opponent(playerID); opp != nil {
		return opp.ID
	}
	return ""
}

func (b *boardAccessor) FindCardForTarget(cardID string) (targeting.TargetCardInfo, bool) {
	c := b.g.cards[cardID]
	if c == nil {
		return targeting.TargetCardInfo{}, false
	}
	return targetInfo(c), true
}

func (b *boardAccessor) FindPlayerForTarget(playerID string) (targeting.TargetPlayerInfo, bool) {
	p := b.g.players[playerID]
	if p == nil {
		return targeting.TargetPlayerInfo{}, false
	}
	return targeting.TargetPlayerInfo{
		PlayerID: p.ID,
		Name:     p.Name,
		Life:     p.Life(),
		Lost:     p.HasLost(),
	}, true
}

func targetInfo(c *Card) targeting.TargetCardInfo {
	return targeting.TargetCardInfo{
		ID:      c.ID,
		Name:    c.Name,
		Type:    c.Type,
		Zone:    c.Zone,
		OwnerID: c.OwnerID,
	}
}
