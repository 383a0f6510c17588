package energy

import "sync"

// ModifierKind names a per-turn adjustment derived from constant effects.
type ModifierKind string

const (
	// ModifierEquipmentCostReduction lowers the cost of equipment cards.
	ModifierEquipmentCostReduction ModifierKind = "equipment_cost_reduction"
)

// Modifiers holds a player's constant-effect modifiers. They are rebuilt
// from zero every turn, so Raise keeps the largest value seen rather than
// summing.
type Modifiers struct {
	mu     sync.RWMutex
	values map[ModifierKind]int
}

// NewModifiers creates an empty modifier set.
func NewModifiers() *Modifiers {
	return &Modifiers{values: make(map[ModifierKind]int)}
}

// Raise lifts the modifier to at least value.
func (m *Modifiers) Raise(kind ModifierKind, value int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value > m.values[kind] {
		m.values[kind] = value
	}
}

// Get returns the current value of a modifier.
func (m *Modifiers) Get(kind ModifierKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[kind]
}

// Reset zeroes all modifiers.
func (m *Modifiers) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[ModifierKind]int)
}

// Snapshot returns a copy of the modifier values.
func (m *Modifiers) Snapshot() map[ModifierKind]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[ModifierKind]int, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// EquipmentCost applies the equipment cost reduction to a base cost.
func (m *Modifiers) EquipmentCost(base int) int {
	cost := base - m.Get(ModifierEquipmentCostReduction)
	if cost < 0 {
		return 0
	}
	return cost
}
