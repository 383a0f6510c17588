package rules

import (
	"fmt"
	"strings"
)

// Phase represents one step of a player's turn.
type Phase int

const (
	PhaseUpkeep Phase = iota
	PhaseMain1
	PhaseCombat
	PhaseMain2
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseUpkeep: "UPKEEP",
	PhaseMain1:  "MAIN1",
	PhaseCombat: "COMBAT",
	PhaseMain2:  "MAIN2",
	PhaseEnd:    "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// IsMain reports whether cards may be played during the phase.
func (p Phase) IsMain() bool {
	return p == PhaseMain1 || p == PhaseMain2
}

// turnSequence is the fixed order of phases within a turn.
var turnSequence = []Phase{
	PhaseUpkeep,
	PhaseMain1,
	PhaseCombat,
	PhaseMain2,
	PhaseEnd,
}

// TurnManager tracks the active player and turn progression.
type TurnManager struct {
	orderIndex   int
	turnNumber   int
	activePlayer string
}

// NewTurnManager creates a new turn manager initialized at turn 1, upkeep.
func NewTurnManager(activePlayer string) *TurnManager {
	return &TurnManager{
		orderIndex:   0,
		turnNumber:   1,
		activePlayer: strings.TrimSpace(activePlayer),
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// IsLastPhase reports whether the current phase closes the turn.
func (tm *TurnManager) IsLastPhase() bool {
	return tm.orderIndex == len(turnSequence)-1
}

// AdvancePhase advances to the next phase of the turn.
// When the end of the turn is reached, the turn number is incremented
// and the active player is rotated to nextActivePlayer if provided.
func (tm *TurnManager) AdvancePhase(nextActivePlayer string) Phase {
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if next := strings.TrimSpace(nextActivePlayer); next != "" {
			tm.activePlayer = next
		}
	}
	return tm.CurrentPhase()
}

// Sequence returns a copy of the phase order.
func Sequence() []Phase {
	out := make([]Phase, len(turnSequence))
	copy(out, turnSequence)
	return out
}

// EndTurn abandons the rest of the current turn and starts the next one
// at upkeep.
func (tm *TurnManager) EndTurn(nextActivePlayer string) Phase {
	tm.orderIndex = len(turnSequence) - 1
	return tm.AdvancePhase(nextActivePlayer)
}
