package effects

import (
	"fmt"

	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// Effect is a transient effect instance created when a trigger fires.
// It is applied once and discarded.
type Effect struct {
	Kind       Kind
	Value      int
	Trigger    Trigger
	CardID     string // card carrying the descriptor
	SourceID   string // card that granted the descriptor, if copied
	Controller string // player the effect resolves for
	Target     targeting.Class
}

// New instantiates an effect from a card's descriptor.
func New(cardID, controller string, d Descriptor) Effect {
	return Effect{
		Kind:       d.Kind,
		Value:      d.Value,
		Trigger:    d.Trigger,
		CardID:     cardID,
		SourceID:   d.SourceID,
		Controller: controller,
		Target:     d.Target,
	}
}

// Origin returns the card the effect ultimately comes from.
func (e Effect) Origin() string {
	if e.SourceID != "" {
		return e.SourceID
	}
	return e.CardID
}

// Key identifies the effect for at-most-once firing within a pass.
func (e Effect) Key() Key {
	return Key{Origin: e.Origin(), Kind: e.Kind}
}

func (e Effect) String() string {
	return fmt.Sprintf("%s(%d) on %s from %s", e.Kind, e.Value, e.Trigger, e.Origin())
}
