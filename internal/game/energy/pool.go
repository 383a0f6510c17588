package energy

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInsufficient is returned when a spend exceeds the available energy.
var ErrInsufficient = errors.New("insufficient energy")

// Pool holds a player's energy. The amount never goes below zero.
type Pool struct {
	mu      sync.RWMutex
	current int
}

// NewPool creates a pool seeded with the given amount.
func NewPool(initial int) *Pool {
	if initial < 0 {
		initial = 0
	}
	return &Pool{current: initial}
}

// Add adds energy to the pool. Non-positive amounts are ignored.
func (p *Pool) Add(amount int) {
	if amount <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += amount
}

// Amount returns the energy currently available.
func (p *Pool) Amount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// CanPay reports whether the pool covers the given cost.
func (p *Pool) CanPay(cost int) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return cost <= p.current
}

// Spend removes energy from the pool. The pool is left unchanged when the
// cost cannot be covered.
func (p *Pool) Spend(cost int) error {
	if cost < 0 {
		return fmt.Errorf("negative cost %d", cost)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if cost > p.current {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficient, cost, p.current)
	}
	p.current -= cost
	return nil
}

// Set overwrites the pool amount, clamping at zero.
func (p *Pool) Set(amount int) {
	if amount < 0 {
		amount = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = amount
}
