package game

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/rules"
)

// RunTurn plays the active player's turn from the current phase through
// the end phase, checking for game over after every phase. Turns of
// automated providers run inside a supervised boundary: a panic other than
// an InvariantError is logged and the turn ends in its partial state.
func (g *Game) RunTurn(ctx context.Context) error {
	if !g.started {
		return errors.New("game not started")
	}
	if g.over {
		return ErrGameOver
	}
	active := g.players[g.turns.ActivePlayer()]
	if !isAutomated(g.provider(active.ID)) {
		g.playTurn(ctx, active)
		return ctx.Err()
	}
	if g.supervise(active, func() { g.playTurn(ctx, active) }) {
		g.combat = nil
		if !g.checkGameOver() {
			g.turns.EndTurn(g.Opponent(active.ID).ID)
			g.publishPhase()
		}
		g.snapshot()
	}
	return ctx.Err()
}

// supervise runs fn and reports whether it panicked and was recovered.
func (g *Game) supervise(p *Player, fn func()) (recovered bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if ie, ok := r.(*InvariantError); ok {
			panic(ie)
		}
		g.logger.Error("automated turn failed",
			zap.String("player_id", p.ID),
			zap.Int("turn", g.turns.TurnNumber()),
			zap.String("phase", g.turns.CurrentPhase().String()),
			zap.Any("panic", r),
			zap.Stack("stack"),
		)
		g.recordf(LogDanger, p.ID, "ERROR: an exception occurred during %s's turn: %v", p.Name, r)
		recovered = true
	}()
	fn()
	return false
}

func (g *Game) playTurn(ctx context.Context, p *Player) {
	for {
		if ctx.Err() != nil {
			return
		}
		g.runPhase(ctx, p, g.turns.CurrentPhase())
		g.assertInvariants()
		g.checkGameOver()
		g.snapshot()
		if g.over {
			return
		}
		if g.turns.IsLastPhase() {
			g.recordf(LogInfo, p.ID, "%s ended their turn.", p.Name)
			g.turns.AdvancePhase(g.Opponent(p.ID).ID)
			g.publishPhase()
			return
		}
		g.turns.AdvancePhase("")
		g.publishPhase()
	}
}

func (g *Game) publishPhase() {
	evt := rules.NewEvent(rules.EventPhaseChanged, "", "", g.turns.ActivePlayer())
	evt.Metadata["phase"] = g.turns.CurrentPhase().String()
	g.publish(evt)
}

func (g *Game) runPhase(ctx context.Context, p *Player, phase rules.Phase) {
	switch phase {
	case rules.PhaseUpkeep:
		g.runUpkeep(ctx, p)
	case rules.PhaseMain1:
		g.recordf(LogInfo, p.ID, "%s's First Main Phase", p.Name)
		g.runMain(ctx, p)
	case rules.PhaseCombat:
		g.recordf(LogInfo, p.ID, "%s's Combat Phase", p.Name)
		g.runCombat(ctx, p)
	case rules.PhaseMain2:
		g.recordf(LogInfo, p.ID, "%s's Second Main Phase", p.Name)
		g.runMain(ctx, p)
	case rules.PhaseEnd:
		g.runEnd(ctx, p)
	}
}

func (g *Game) runUpkeep(ctx context.Context, p *Player) {
	g.recordf(LogInfo, p.ID, "%s's Turn %d started.", p.Name, g.turns.TurnNumber())
	g.publish(rules.NewEvent(rules.EventTurnStarted, p.ID, "", p.ID))

	initial := p.Energy()
	g.recomputeConstants(p)

	gained := p.IncreaseEnergy()
	evt := rules.NewEventWithAmount(rules.EventEnergyGained, p.ID, "", p.ID, gained)
	evt.Metadata["source"] = "base"
	g.publish(evt)

	pass := effects.NewPass(ctx, effects.TriggerUpkeep)
	for _, c := range p.InPlay() {
		if g.over {
			break
		}
		if !c.Zone.InPlay() {
			continue
		}
		g.applyCardEffects(pass, c)
	}
	g.flushRegen(pass)

	drawn := g.drawCard(p)
	for _, c := range p.Battlezone().cards {
		c.Untap()
		c.SummoningSick = false
	}

	msg := fmt.Sprintf("Upkeep: Energy increased from %d to %d (gained %d). All creatures untapped and summoning sickness removed.",
		initial, p.Energy(), p.Energy()-initial)
	if drawn != nil {
		msg += fmt.Sprintf(" Drew Card: %s (Attack: %d, Defense: %d, Cost: %d)", drawn.Name, drawn.Attack, drawn.Defense, drawn.Cost)
	} else {
		msg += " Deck is empty; no card drawn."
	}
	g.record(LogWarning, p.ID, msg)
}

// MainOptions lists the main-phase actions currently available to a
// player. Pass is always first.
func (g *Game) MainOptions(playerID string) []Action {
	options := []Action{PassAction}
	p := g.players[playerID]
	if p == nil || g.over {
		return options
	}
	for _, c := range p.Hand().cards {
		if g.legality.CanPlay(playerID, c.ID).Legal {
			options = append(options, Action{
				Kind:   ActionPlay,
				CardID: c.ID,
				Label:  fmt.Sprintf("Play %s (cost %d)", c.Name, c.AdjustedCost(p.modifiers)),
			})
		}
	}
	for _, equipment := range p.Environs().cards {
		if equipment.Type != CardTypeEquipment {
			continue
		}
		for _, creature := range p.Battlezone().cards {
			if equipment.EquippedTo == creature.ID {
				continue
			}
			if g.legality.CanEquip(playerID, equipment.ID, creature.ID, g.cfg.EquipCost).Legal {
				options = append(options, Action{
					Kind:     ActionEquip,
					CardID:   equipment.ID,
					TargetID: creature.ID,
					Label:    fmt.Sprintf("Equip %s to %s (cost %d)", equipment.Name, creature.Name, g.cfg.EquipCost),
				})
			}
		}
		if equipment.IsEquipped() {
			options = append(options, Action{
				Kind:   ActionUnequip,
				CardID: equipment.ID,
				Label:  fmt.Sprintf("Unequip %s from %s", equipment.Name, g.cards[equipment.EquippedTo].Name),
			})
		}
	}
	return options
}

// Perform carries out a main-phase action for a player.
func (g *Game) Perform(ctx context.Context, playerID string, action Action) error {
	switch action.Kind {
	case ActionPass:
		return nil
	case ActionPlay:
		return g.PlayCard(ctx, playerID, action.CardID)
	case ActionEquip:
		return g.Equip(ctx, playerID, action.CardID, action.TargetID)
	case ActionUnequip:
		return g.Unequip(playerID, action.CardID)
	default:
		return fmt.Errorf("%w: unknown action %q", ErrIllegalAction, action.Kind)
	}
}

func (g *Game) runMain(ctx context.Context, p *Player) {
	provider := g.provider(p.ID)
	for i := 0; i < g.cfg.MaxMainActions; i++ {
		if g.over || ctx.Err() != nil {
			return
		}
		options := g.MainOptions(p.ID)
		if len(options) == 1 {
			return
		}
		view := g.View(p.ID)
		action, ok := decide(ctx, g, p.ID, "choose main action", func(ctx context.Context) (Action, error) {
			return provider.ChooseMainAction(ctx, view, options)
		})
		if !ok || action.Kind == ActionPass {
			return
		}
		if err := g.Perform(ctx, p.ID, action); err != nil {
			g.warn("action rejected", p.ID, err, action.String())
		}
	}
}

func (g *Game) runCombat(ctx context.Context, p *Player) {
	defer func() { g.combat = nil }()
	opponent := g.Opponent(p.ID)

	eligible := g.EligibleAttackers(p.ID)
	if len(eligible) == 0 {
		g.record(LogCombat, p.ID, "No attackers declared.")
		return
	}
	view := g.View(p.ID)
	chosen, _ := decide(ctx, g, p.ID, "choose attackers", func(ctx context.Context) ([]string, error) {
		return g.provider(p.ID).ChooseAttackers(ctx, view, g.cardViews(eligible))
	})
	attackers := filterAttackers(chosen, eligible)
	if len(attackers) == 0 {
		g.record(LogCombat, p.ID, "No attackers declared.")
		return
	}
	if err := g.DeclareAttackers(p.ID, attackers); err != nil {
		g.warn("attack rejected", p.ID, err, fmt.Sprint(attackers))
		return
	}

	assignment := map[string]string{}
	if blockers := g.EligibleBlockers(opponent.ID); len(blockers) > 0 {
		attacking := make([]*Card, 0, len(attackers))
		for _, id := range attackers {
			attacking = append(attacking, g.cards[id])
		}
		defenderView := g.View(opponent.ID)
		got, _ := decide(ctx, g, opponent.ID, "choose blockers", func(ctx context.Context) (map[string]string, error) {
			return g.provider(opponent.ID).ChooseBlockers(ctx, defenderView, g.cardViews(attacking), g.cardViews(blockers))
		})
		assignment = g.filterBlocks(opponent.ID, attackers, got)
	}
	if err := g.DeclareBlockers(opponent.ID, assignment); err != nil {
		g.warn("blocks rejected", opponent.ID, err, fmt.Sprint(assignment))
		if err := g.DeclareBlockers(opponent.ID, nil); err != nil {
			return
		}
	}
	if _, err := g.ResolveCombatDamage(); err != nil {
		g.warn("combat damage failed", p.ID, err, "")
		return
	}
	g.record(LogCombat, p.ID, "Combat phase ended.")
}

// filterAttackers keeps the provider's choices that are eligible, in the
// provider's order, without duplicates.
func filterAttackers(chosen []string, eligible []*Card) []string {
	ok := make(map[string]bool, len(eligible))
	for _, c := range eligible {
		ok[c.ID] = true
	}
	var out []string
	for _, id := range chosen {
		if ok[id] {
			out = append(out, id)
			ok[id] = false
		}
	}
	return out
}

// filterBlocks drops pairs that name a non-attacker, an ineligible blocker
// or a blocker already used, walking attackers in declaration order.
func (g *Game) filterBlocks(defenderID string, attackers []string, assignment map[string]string) map[string]string {
	out := make(map[string]string, len(assignment))
	used := make(map[string]bool, len(assignment))
	for _, attackerID := range attackers {
		blockerID, ok := assignment[attackerID]
		if !ok || blockerID == "" || used[blockerID] {
			continue
		}
		if !g.legality.CanBlock(defenderID, blockerID).Legal {
			g.warn("rejected blocker", defenderID, errors.New("creature cannot block"), blockerID)
			continue
		}
		used[blockerID] = true
		out[attackerID] = blockerID
	}
	return out
}

func (g *Game) runEnd(ctx context.Context, p *Player) {
	for p.Hand().Len() > g.cfg.HandLimit {
		hand := p.Hand().Cards()
		view := g.View(p.ID)
		id, ok := decide(ctx, g, p.ID, "choose discard", func(ctx context.Context) (string, error) {
			return g.provider(p.ID).ChooseDiscard(ctx, view, g.cardViews(hand))
		})
		c := g.cards[id]
		if c == nil || c.Zone != rules.ZoneHand || c.OwnerID != p.ID {
			if ok {
				g.warn("rejected discard", p.ID, fmt.Errorf("%q is not in hand", id), "")
			}
			c = p.Hand().Last()
		}
		g.moveCard(c, rules.ZoneGraveyard)
		g.recordf(LogWarning, p.ID, "Discarded Card: %s (Attack: %d, Defense: %d, Cost: %d)", c.Name, c.Attack, c.Defense, c.Cost)
		evt := rules.NewEvent(rules.EventDiscardedCard, c.ID, c.ID, p.ID)
		evt.Zone = rules.ZoneGraveyard
		g.publish(evt)
	}
}
