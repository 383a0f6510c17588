package effects

import "context"

// Key identifies an effect firing: the originating card and the effect kind.
type Key struct {
	Origin string
	Kind   Kind
}

// RegenGrant is an energy-regeneration amount accumulated during a pass.
type RegenGrant struct {
	PlayerID string
	Amount   int
}

// Pass is the context of one resolution pass. It carries the set of cards
// already processed and effects already fired so re-entrant calls cannot
// apply anything twice, and it batches energy regeneration until the pass
// is drained. A Pass is discarded when the triggering event completes.
type Pass struct {
	ctx        context.Context
	trigger    Trigger
	cards      map[string]struct{}
	fired      map[Key]struct{}
	regen      map[string]int
	regenOrder []string
}

// NewPass starts a resolution pass for a trigger.
func NewPass(ctx context.Context, trigger Trigger) *Pass {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Pass{
		ctx:     ctx,
		trigger: trigger,
		cards:   make(map[string]struct{}),
		fired:   make(map[Key]struct{}),
		regen:   make(map[string]int),
	}
}

// Context returns the context decision calls in this pass should use.
func (p *Pass) Context() context.Context {
	return p.ctx
}

// Trigger returns the trigger this pass resolves.
func (p *Pass) Trigger() Trigger {
	return p.trigger
}

// MarkCard records that a card's effects are being processed. It returns
// false if the card was already processed in this pass.
func (p *Pass) MarkCard(cardID string) bool {
	if _, seen := p.cards[cardID]; seen {
		return false
	}
	p.cards[cardID] = struct{}{}
	return true
}

// Fire records an effect firing. It returns false if the key already fired.
func (p *Pass) Fire(key Key) bool {
	if _, seen := p.fired[key]; seen {
		return false
	}
	p.fired[key] = struct{}{}
	return true
}

// Fired reports whether the key has fired in this pass.
func (p *Pass) Fired(key Key) bool {
	_, seen := p.fired[key]
	return seen
}

// AddRegen accumulates energy regeneration for a player.
func (p *Pass) AddRegen(playerID string, amount int) {
	if amount <= 0 {
		return
	}
	if _, ok := p.regen[playerID]; !ok {
		p.regenOrder = append(p.regenOrder, playerID)
	}
	p.regen[playerID] += amount
}

// DrainRegen returns the accumulated regeneration in first-seen order and
// clears it.
func (p *Pass) DrainRegen() []RegenGrant {
	grants := make([]RegenGrant, 0, len(p.regenOrder))
	for _, id := range p.regenOrder {
		grants = append(grants, RegenGrant{PlayerID: id, Amount: p.regen[id]})
	}
	p.regen = make(map[string]int)
	p.regenOrder = nil
	return grants
}
