package game

import (
	"errors"
	"fmt"
)

var (
	// ErrGameOver is returned for actions attempted after the game ended.
	ErrGameOver = errors.New("game is over")
	// ErrUnknownCard is returned when a card ID is not in the arena.
	ErrUnknownCard = errors.New("unknown card")
	// ErrUnknownPlayer is returned when a player ID is not seated.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrIllegalAction is returned when an action breaks the rules.
	ErrIllegalAction = errors.New("illegal action")
	// ErrInsufficientEnergy is returned when a cost exceeds the player's energy.
	ErrInsufficientEnergy = errors.New("insufficient energy")
	// ErrInvalidAttack is returned for attacker declarations that break the rules.
	ErrInvalidAttack = errors.New("invalid attack")
	// ErrInvalidBlock is returned for blocker assignments that break the rules.
	ErrInvalidBlock = errors.New("invalid block")
	// ErrPoolExhausted is returned when a card pool cannot fill a deck.
	ErrPoolExhausted = errors.New("card pool exhausted")
)

// InvariantError reports a broken board invariant. It is raised with panic
// and is never recovered by the supervised-turn boundary.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Msg
}

// invariant panics with an InvariantError when cond is false.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&InvariantError{Msg: fmt.Sprintf(format, args...)})
	}
}
