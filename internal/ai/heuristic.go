// Package ai provides the scripted heuristic opponent.
package ai

import (
	"context"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// DefaultMaxCreatures is how many creatures the heuristic keeps in play
// before it stops summoning.
const DefaultMaxCreatures = 5

// Heuristic is an automated game.DecisionProvider. It is stateless and
// deterministic: the same view and options always give the same answer.
type Heuristic struct {
	logger       *zap.Logger
	maxCreatures int
}

// Option configures a Heuristic.
type Option func(*Heuristic)

// WithMaxCreatures caps the creatures the heuristic summons.
func WithMaxCreatures(n int) Option {
	return func(h *Heuristic) {
		if n > 0 {
			h.maxCreatures = n
		}
	}
}

// New creates a heuristic provider.
func New(logger *zap.Logger, opts ...Option) *Heuristic {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Heuristic{logger: logger, maxCreatures: DefaultMaxCreatures}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Automated reports that heuristic turns run supervised.
func (h *Heuristic) Automated() bool { return true }

// ChooseMainAction plays the most expensive worthwhile card, then equips
// bare creatures, then passes. It never unequips.
func (h *Heuristic) ChooseMainAction(ctx context.Context, view game.View, options []game.Action) (game.Action, error) {
	if err := ctx.Err(); err != nil {
		return game.PassAction, err
	}
	me, _ := view.Player(view.Viewer)
	hand := index(me.Hand)

	best := game.PassAction
	bestCost := -1
	for _, opt := range options {
		if opt.Kind != game.ActionPlay {
			continue
		}
		c, ok := hand[opt.CardID]
		if !ok || !h.worthPlaying(me, c) {
			continue
		}
		if c.AdjustedCost > bestCost {
			best, bestCost = opt, c.AdjustedCost
		}
	}
	if best.Kind != game.ActionPass {
		h.logger.Debug("heuristic play", zap.String("player_id", me.ID), zap.String("card_id", best.CardID))
		return best, nil
	}

	battlezone := index(me.Battlezone)
	environs := index(me.Environs)
	bestAttack := -1
	for _, opt := range options {
		if opt.Kind != game.ActionEquip {
			continue
		}
		equipment, ok := environs[opt.CardID]
		if !ok || equipment.EquippedTo != "" {
			continue
		}
		creature, ok := battlezone[opt.TargetID]
		if !ok || creature.Equipment != "" {
			continue
		}
		if creature.Attack > bestAttack {
			best, bestAttack = opt, creature.Attack
		}
	}
	if best.Kind == game.ActionEquip {
		h.logger.Debug("heuristic equip",
			zap.String("player_id", me.ID),
			zap.String("card_id", best.CardID),
			zap.String("target_id", best.TargetID),
		)
	}
	return best, nil
}

// worthPlaying mirrors the opponent's table sense: creatures while there
// is room, enchantments and equipment only with a creature to benefit,
// spells always.
func (h *Heuristic) worthPlaying(me game.PlayerView, c game.CardView) bool {
	switch c.Type {
	case game.CardTypeCreature:
		return len(me.Battlezone) < h.maxCreatures
	case game.CardTypeEnchantment, game.CardTypeEquipment:
		return len(me.Battlezone) > 0
	case game.CardTypeSpell:
		return true
	}
	return false
}

// ChooseAttackers attacks with everything eligible.
func (h *Heuristic) ChooseAttackers(ctx context.Context, view game.View, eligible []game.CardView) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(eligible))
	for _, c := range eligible {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// ChooseBlockers walks attackers in declaration order and assigns the
// unused blocker that survives the hit (defense >= attack) with the
// highest attack. Attackers without such a blocker go unblocked.
func (h *Heuristic) ChooseBlockers(ctx context.Context, view game.View, attackers, eligible []game.CardView) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	used := make(map[string]bool)
	for _, a := range attackers {
		pick := -1
		for i, b := range eligible {
			if used[b.ID] || b.Defense < a.Attack {
				continue
			}
			if pick < 0 || b.Attack > eligible[pick].Attack {
				pick = i
			}
		}
		if pick >= 0 {
			out[a.ID] = eligible[pick].ID
			used[eligible[pick].ID] = true
		}
	}
	return out, nil
}

// ChooseTarget aims harmful effects at the opponent's strongest card, or
// the opponent when no card is available, and beneficial effects at the
// chooser's strongest creature. It declines rather than hurt itself.
func (h *Heuristic) ChooseTarget(ctx context.Context, view game.View, req targeting.Requirement, candidates []targeting.Target) (targeting.Target, bool, error) {
	if err := ctx.Err(); err != nil {
		return targeting.Target{}, false, err
	}
	stats := make(map[string]int)
	for _, p := range view.Players {
		for _, c := range append(append([]game.CardView(nil), p.Battlezone...), p.Environs...) {
			stats[c.ID] = c.Attack
		}
	}

	wantOwner := req.ChooserID
	if !req.Beneficial {
		if opp, ok := view.Opponent(req.ChooserID); ok {
			wantOwner = opp.ID
		}
	}

	var best, face targeting.Target
	found, haveFace := false, false
	for _, t := range candidates {
		if t.OwnerID != wantOwner {
			continue
		}
		if t.IsPlayer() {
			if !haveFace {
				face, haveFace = t, true
			}
			continue
		}
		if !found || stats[t.ID] > stats[best.ID] {
			best, found = t, true
		}
	}
	switch {
	case found:
		return best, true, nil
	case haveFace && !req.Beneficial:
		return face, true, nil
	}
	return targeting.Target{}, false, nil
}

// ChooseDiscard discards the last card in hand.
func (h *Heuristic) ChooseDiscard(ctx context.Context, view game.View, hand []game.CardView) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(hand) == 0 {
		return "", nil
	}
	return hand[len(hand)-1].ID, nil
}

func index(cards []game.CardView) map[string]game.CardView {
	out := make(map[string]game.CardView, len(cards))
	for _, c := range cards {
		out[c.ID] = c
	}
	return out
}
