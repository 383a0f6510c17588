package effects

import (
	"fmt"
	"sync"
)

// Handler resolves one effect kind.
type Handler func(p *Pass, h Host, e Effect) error

// Registry maps effect kinds to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
}

// NewRegistry creates a registry with the default handlers installed.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[Kind]Handler)}
	r.Register(KindIncreaseEnergyRegen, increaseEnergyRegen)
	r.Register(KindDrawCards, drawCards)
	r.Register(KindDealDamage, dealDamage)
	r.Register(KindDestroyEquipment, destroyOfClass("equipment"))
	r.Register(KindDestroyEnchantment, destroyOfClass("enchantment"))
	r.Register(KindGainDefense, gainStat(false))
	r.Register(KindGainAttack, gainStat(true))
	r.Register(KindReduceEquipmentCost, reduceEquipmentCost)
	return r
}

// Register installs or replaces the handler for a kind.
func (r *Registry) Register(kind Kind, handler Handler) {
	if handler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[kind] = handler
}

// Apply resolves an effect within a pass. Non-constant effects whose key has
// already fired in the pass are skipped and reported as not applied.
// Unknown kinds return ErrUnknownKind; callers log and continue.
func (r *Registry) Apply(p *Pass, h Host, e Effect) (bool, error) {
	r.mu.RLock()
	handler, ok := r.handlers[e.Kind]
	r.mu.RUnlock()
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if e.Trigger == TriggerConstant && !e.Kind.IsModifier() {
		return false, fmt.Errorf("%w: %s cannot use a constant trigger", ErrInvalidDescriptor, e.Kind)
	}
	if e.Trigger != TriggerConstant && !p.Fire(e.Key()) {
		return false, nil
	}
	if err := handler(p, h, e); err != nil {
		return true, fmt.Errorf("apply %s: %w", e, err)
	}
	return true, nil
}
