package effects

import (
	"errors"
	"fmt"

	"github.com/technobros/cardgame-go/internal/game/targeting"
)

var (
	// ErrUnknownKind is returned for effect kinds outside the closed set.
	ErrUnknownKind = errors.New("unknown effect kind")
	// ErrInvalidDescriptor is returned for descriptors missing required fields.
	ErrInvalidDescriptor = errors.New("invalid effect descriptor")
)

// Descriptor is the declarative effect data printed on a card.
type Descriptor struct {
	Kind    Kind    `json:"type" yaml:"type"`
	Value   int     `json:"value" yaml:"value"`
	Trigger Trigger `json:"trigger" yaml:"trigger"`
	// Target overrides the default target class for targeted kinds.
	Target targeting.Class `json:"target,omitempty" yaml:"target,omitempty"`
	// SourceID links a copied effect back to the card that granted it.
	SourceID string `json:"source_id,omitempty" yaml:"source_id,omitempty"`
}

// Validate checks the descriptor for data-integrity problems.
func (d Descriptor) Validate() error {
	if d.Kind == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidDescriptor)
	}
	if !d.Kind.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, d.Kind)
	}
	if !d.Trigger.Valid() {
		return fmt.Errorf("%w: %s has trigger %q", ErrInvalidDescriptor, d.Kind, d.Trigger)
	}
	if d.Value < 0 {
		return fmt.Errorf("%w: %s has negative value %d", ErrInvalidDescriptor, d.Kind, d.Value)
	}
	if d.Trigger == TriggerConstant && !d.Kind.IsModifier() {
		return fmt.Errorf("%w: %s cannot use a constant trigger", ErrInvalidDescriptor, d.Kind)
	}
	if d.Target != "" && !d.Target.Valid() {
		return fmt.Errorf("%w: %s has target class %q", ErrInvalidDescriptor, d.Kind, d.Target)
	}
	return nil
}

// Tagged returns a copy of the descriptor linked to sourceID.
func (d Descriptor) Tagged(sourceID string) Descriptor {
	d.SourceID = sourceID
	return d
}
