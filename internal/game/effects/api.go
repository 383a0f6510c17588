package effects

import "github.com/technobros/cardgame-go/internal/game/targeting"

// Builder provides a fluent API for creating effect descriptors.
type Builder struct {
	descriptor Descriptor
}

// NewBuilder creates a builder for the given kind with value 1 and an
// on_cast trigger.
func NewBuilder(kind Kind) *Builder {
	return &Builder{descriptor: Descriptor{
		Kind:    kind,
		Value:   1,
		Trigger: TriggerOnCast,
	}}
}

// Value sets the numeric value of the effect.
func (b *Builder) Value(v int) *Builder {
	b.descriptor.Value = v
	return b
}

// OnUpkeep fires the effect during its controller's upkeep.
func (b *Builder) OnUpkeep() *Builder {
	b.descriptor.Trigger = TriggerUpkeep
	return b
}

// OnCast fires the effect when the card resolves.
func (b *Builder) OnCast() *Builder {
	b.descriptor.Trigger = TriggerOnCast
	return b
}

// OnSummon fires the effect when the creature enters the battlezone.
func (b *Builder) OnSummon() *Builder {
	b.descriptor.Trigger = TriggerOnSummon
	return b
}

// OnPlayEquipment fires the effect whenever equipment enters play.
func (b *Builder) OnPlayEquipment() *Builder {
	b.descriptor.Trigger = TriggerOnPlayEquipment
	return b
}

// Constant makes the effect continuously recomputed.
func (b *Builder) Constant() *Builder {
	b.descriptor.Trigger = TriggerConstant
	return b
}

// Targeting overrides the target class.
func (b *Builder) Targeting(class targeting.Class) *Builder {
	b.descriptor.Target = class
	return b
}

// Build returns the descriptor.
func (b *Builder) Build() Descriptor {
	return b.descriptor
}
