package game

import (
	"context"
	"fmt"

	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// ActionKind is a main-phase choice.
type ActionKind string

const (
	ActionPass    ActionKind = "pass"
	ActionPlay    ActionKind = "play"
	ActionEquip   ActionKind = "equip"
	ActionUnequip ActionKind = "unequip"
)

// Action is one main-phase option. CardID is the card played, or the
// equipment for equip/unequip; TargetID is the creature for equip.
type Action struct {
	Kind     ActionKind `json:"kind"`
	CardID   string     `json:"card_id,omitempty"`
	TargetID string     `json:"target_id,omitempty"`
	Label    string     `json:"label,omitempty"`
}

// PassAction ends the main phase.
var PassAction = Action{Kind: ActionPass, Label: "Pass"}

func (a Action) String() string {
	if a.Label != "" {
		return a.Label
	}
	switch a.Kind {
	case ActionEquip:
		return fmt.Sprintf("equip %s to %s", a.CardID, a.TargetID)
	case ActionPass:
		return "pass"
	default:
		return fmt.Sprintf("%s %s", a.Kind, a.CardID)
	}
}

// DecisionProvider answers every choice the rules need from a player.
// Calls are made synchronously from the game goroutine under a
// context carrying the configured decision timeout. An error or an
// expired context degrades to the safe default for that decision.
type DecisionProvider interface {
	// ChooseMainAction picks one of options; returning PassAction ends the phase.
	ChooseMainAction(ctx context.Context, view View, options []Action) (Action, error)
	// ChooseAttackers returns the IDs of the eligible creatures that attack.
	ChooseAttackers(ctx context.Context, view View, eligible []CardView) ([]string, error)
	// ChooseBlockers maps attacker IDs to blocker IDs.
	ChooseBlockers(ctx context.Context, view View, attackers, eligible []CardView) (map[string]string, error)
	// ChooseTarget picks one candidate, or reports false to choose none.
	ChooseTarget(ctx context.Context, view View, req targeting.Requirement, candidates []targeting.Target) (targeting.Target, bool, error)
	// ChooseDiscard returns the ID of a hand card to discard.
	ChooseDiscard(ctx context.Context, view View, hand []CardView) (string, error)
}

// Automated is implemented by providers whose turns run inside the
// supervised-turn boundary.
type Automated interface {
	Automated() bool
}

func isAutomated(p DecisionProvider) bool {
	a, ok := p.(Automated)
	return ok && a.Automated()
}

// decide runs a provider call under the decision timeout.
func decide[T any](ctx context.Context, g *Game, playerID, what string, call func(context.Context) (T, error)) (T, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if g.cfg.DecisionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.DecisionTimeout)
		defer cancel()
	}
	out, err := call(ctx)
	if err != nil {
		var zero T
		g.warn("decision failed", playerID, err, what)
		return zero, false
	}
	return out, true
}
