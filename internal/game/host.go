package game

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/energy"
	"github.com/technobros/cardgame-go/internal/game/rules"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// effectHost is the game surface handed to effect handlers.
type effectHost struct {
	g *Game
}

var _ effects.Host = (*effectHost)(nil)

func (h *effectHost) DrawCards(playerID string, n int) int {
	p := h.g.players[playerID]
	if p == nil {
		return 0
	}
	drawn := 0
	for ; drawn < n; drawn++ {
		c := h.g.drawCard(p)
		if c == nil {
			break
		}
		h.g.recordf(LogInfo, playerID, "drew card %s (ID: %s)", c.Name, c.ID)
	}
	return drawn
}

func (h *effectHost) SelectTarget(ctx context.Context, req targeting.Requirement) (targeting.Target, bool) {
	return h.g.selectTarget(ctx, req)
}

func (h *effectHost) DamageCard(cardID string, amount int, sourceID string) bool {
	g := h.g
	c := g.cards[cardID]
	if c == nil || !c.Zone.InPlay() {
		return false
	}
	destroyed := c.ReceiveDamage(amount)
	g.recordf(LogCombat, g.controllerOf(sourceID), "dealt %d damage to %s (ID: %s)", amount, c.Name, c.ID)
	evt := rules.NewEventWithAmount(rules.EventDamagedCreature, c.ID, sourceID, g.controllerOf(sourceID), amount)
	evt.Zone = c.Zone
	g.publish(evt)
	if destroyed {
		g.destroy(c)
	}
	return destroyed
}

func (h *effectHost) DamagePlayer(playerID string, amount int, sourceID string) {
	h.g.damagePlayer(playerID, amount, sourceID)
	h.g.checkGameOver()
}

func (h *effectHost) DestroyCard(cardID string, sourceID string) bool {
	g := h.g
	c := g.cards[cardID]
	if c == nil || c.Zone == rules.ZoneGraveyard {
		return false
	}
	if controller := g.controllerOf(sourceID); controller != "" {
		g.recordf(LogDanger, controller, "destroyed %s %s (ID: %s) owned by %s",
			c.Type, c.Name, c.ID, g.players[c.OwnerID].Name)
	}
	g.destroy(c)
	return true
}

func (h *effectHost) AdjustStats(cardID string, attack, defense int) {
	g := h.g
	c := g.cards[cardID]
	if c == nil || c.Type != CardTypeCreature {
		return
	}
	c.Attack += attack
	c.Defense += defense
	switch {
	case attack != 0 && defense != 0:
		g.recordf(LogSuccess, c.OwnerID, "%s gained %+d/%+d", c.Name, attack, defense)
	case attack != 0:
		g.recordf(LogSuccess, c.OwnerID, "%s gained %d attack", c.Name, attack)
	default:
		g.recordf(LogSuccess, c.OwnerID, "%s gained %d defense", c.Name, defense)
	}
	if c.Defense <= 0 && c.Zone.InPlay() {
		g.destroy(c)
	}
}

func (h *effectHost) RaiseModifier(playerID string, kind energy.ModifierKind, value int) {
	p := h.g.players[playerID]
	if p == nil {
		return
	}
	p.modifiers.Raise(kind, value)
	h.g.logger.Debug("modifier raised",
		zap.String("player_id", playerID),
		zap.String("modifier", string(kind)),
		zap.Int("value", p.modifiers.Get(kind)),
	)
}

func (h *effectHost) Record(playerID string, message string) {
	h.g.record(LogInfo, playerID, message)
}

// controllerOf returns the owner of a card ID, or "".
func (g *Game) controllerOf(cardID string) string {
	if c := g.cards[cardID]; c != nil {
		return c.OwnerID
	}
	return ""
}

func (g *Game) damagePlayer(playerID string, amount int, sourceID string) {
	p := g.players[playerID]
	if p == nil || amount <= 0 {
		return
	}
	p.TakeDamage(amount)
	source := "an effect"
	if c := g.cards[sourceID]; c != nil {
		source = c.Name
	}
	g.recordf(LogCombat, playerID, "took %d damage from %s. Life is now %d", amount, source, p.Life())
	evt := rules.NewEventWithAmount(rules.EventDamagedPlayer, playerID, sourceID, g.controllerOf(sourceID), amount)
	evt.PlayerID = playerID
	g.publish(evt)
}

// selectTarget enumerates candidates and asks the chooser's provider.
// An answer that is not one of the candidates counts as no target.
func (g *Game) selectTarget(ctx context.Context, req targeting.Requirement) (targeting.Target, bool) {
	candidates := g.targets.Candidates(req)
	if len(candidates) == 0 {
		return targeting.Target{}, false
	}
	provider := g.provider(req.ChooserID)
	if provider == nil {
		return targeting.Target{}, false
	}
	type choice struct {
		target targeting.Target
		ok     bool
	}
	view := g.View(req.ChooserID)
	got, ok := decide(ctx, g, req.ChooserID, "choose target", func(ctx context.Context) (choice, error) {
		t, ok, err := provider.ChooseTarget(ctx, view, req, candidates)
		return choice{target: t, ok: ok}, err
	})
	if !ok || !got.ok {
		return targeting.Target{}, false
	}
	for _, c := range candidates {
		if c.ID == got.target.ID {
			if err := g.targets.ValidateTarget(c.ID, req); err != nil {
				g.warn("rejected target", req.ChooserID, err, c.ID)
				return targeting.Target{}, false
			}
			return c, true
		}
	}
	g.warn("rejected target", req.ChooserID, fmt.Errorf("%q is not a candidate", got.target.ID), targeting.FormatTargets(candidates))
	return targeting.Target{}, false
}
