package effects

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/technobros/cardgame-go/internal/game/energy"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// fakeHost records what handlers ask the game to do.
type fakeHost struct {
	target    *targeting.Target
	lastReq   targeting.Requirement
	drawn     map[string]int
	deck      int
	cardDmg   map[string]int
	playerDmg map[string]int
	destroyed []string
	attack    map[string]int
	defense   map[string]int
	mods      map[string]*energy.Modifiers
	records   []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		drawn:     make(map[string]int),
		deck:      10,
		cardDmg:   make(map[string]int),
		playerDmg: make(map[string]int),
		attack:    make(map[string]int),
		defense:   make(map[string]int),
		mods:      make(map[string]*energy.Modifiers),
	}
}

func (f *fakeHost) DrawCards(playerID string, n int) int {
	if n > f.deck {
		n = f.deck
	}
	f.deck -= n
	f.drawn[playerID] += n
	return n
}

func (f *fakeHost) SelectTarget(ctx context.Context, req targeting.Requirement) (targeting.Target, bool) {
	f.lastReq = req
	if f.target == nil {
		return targeting.Target{}, false
	}
	return *f.target, true
}

func (f *fakeHost) DamageCard(cardID string, amount int, sourceID string) bool {
	f.cardDmg[cardID] += amount
	return false
}

func (f *fakeHost) DamagePlayer(playerID string, amount int, sourceID string) {
	f.playerDmg[playerID] += amount
}

func (f *fakeHost) DestroyCard(cardID string, sourceID string) bool {
	f.destroyed = append(f.destroyed, cardID)
	return true
}

func (f *fakeHost) AdjustStats(cardID string, attack, defense int) {
	f.attack[cardID] += attack
	f.defense[cardID] += defense
}

func (f *fakeHost) RaiseModifier(playerID string, kind energy.ModifierKind, value int) {
	m, ok := f.mods[playerID]
	if !ok {
		m = energy.NewModifiers()
		f.mods[playerID] = m
	}
	m.Raise(kind, value)
}

func (f *fakeHost) Record(playerID string, message string) {
	f.records = append(f.records, message)
}

func effectOf(d Descriptor) Effect {
	return New("card1", "alice", d)
}

func TestApplyDrawCardsStopsAtEmptyDeck(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	host.deck = 1

	applied, err := reg.Apply(NewPass(context.Background(), TriggerOnCast), host,
		effectOf(NewBuilder(KindDrawCards).Value(3).Build()))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 1, host.drawn["alice"])
	assert.Len(t, host.records, 1)
}

func TestApplyFiresOncePerPass(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	pass := NewPass(context.Background(), TriggerUpkeep)

	e := effectOf(NewBuilder(KindDrawCards).OnUpkeep().Build())
	applied, err := reg.Apply(pass, host, e)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = reg.Apply(pass, host, e)
	require.NoError(t, err)
	assert.False(t, applied, "second firing in the same pass must be skipped")
	assert.Equal(t, 1, host.drawn["alice"])

	// A copy granted by the same source shares the key.
	copied := New("creature1", "alice", NewBuilder(KindDrawCards).OnUpkeep().Build().Tagged("card1"))
	applied, err = reg.Apply(pass, host, copied)
	require.NoError(t, err)
	assert.False(t, applied)

	// A fresh pass fires again.
	applied, err = reg.Apply(NewPass(context.Background(), TriggerUpkeep), host, e)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 2, host.drawn["alice"])
}

func TestApplyDealDamage(t *testing.T) {
	reg := NewRegistry()

	t.Run("player target", func(t *testing.T) {
		host := newFakeHost()
		host.target = &targeting.Target{ID: "bob", Kind: targeting.KindPlayer}
		_, err := reg.Apply(NewPass(context.Background(), TriggerOnCast), host,
			effectOf(NewBuilder(KindDealDamage).Value(3).Build()))
		require.NoError(t, err)
		assert.Equal(t, 3, host.playerDmg["bob"])
		assert.Equal(t, targeting.ClassCreatureOrPlayer, host.lastReq.Class)
		assert.Equal(t, "alice", host.lastReq.ChooserID)
	})

	t.Run("upkeep restricts to creatures", func(t *testing.T) {
		host := newFakeHost()
		host.target = &targeting.Target{ID: "wolf", Kind: targeting.KindCard}
		_, err := reg.Apply(NewPass(context.Background(), TriggerUpkeep), host,
			effectOf(NewBuilder(KindDealDamage).Value(2).OnUpkeep().Build()))
		require.NoError(t, err)
		assert.Equal(t, 2, host.cardDmg["wolf"])
		assert.Equal(t, targeting.ClassCreature, host.lastReq.Class)
	})

	t.Run("no target", func(t *testing.T) {
		host := newFakeHost()
		applied, err := reg.Apply(NewPass(context.Background(), TriggerOnCast), host,
			effectOf(NewBuilder(KindDealDamage).Value(2).Build()))
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Empty(t, host.playerDmg)
		assert.Contains(t, host.records[0], "no valid target")
	})
}

func TestApplyDestroyUsesSubtype(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	host.target = &targeting.Target{ID: "sword", Kind: targeting.KindCard}

	_, err := reg.Apply(NewPass(context.Background(), TriggerOnCast), host,
		effectOf(NewBuilder(KindDestroyEquipment).Build()))
	require.NoError(t, err)
	assert.Equal(t, targeting.ClassEquipment, host.lastReq.Class)

	_, err = reg.Apply(NewPass(context.Background(), TriggerOnCast), host,
		effectOf(NewBuilder(KindDestroyEnchantment).Build()))
	require.NoError(t, err)
	assert.Equal(t, targeting.ClassEnchantment, host.lastReq.Class)
	assert.Equal(t, []string{"sword", "sword"}, host.destroyed)
}

func TestApplyGainStats(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	host.target = &targeting.Target{ID: "bear", Kind: targeting.KindCard}
	pass := NewPass(context.Background(), TriggerOnSummon)

	_, err := reg.Apply(pass, host, effectOf(NewBuilder(KindGainDefense).Value(2).OnSummon().Build()))
	require.NoError(t, err)
	_, err = reg.Apply(pass, host, effectOf(NewBuilder(KindGainAttack).Value(1).OnSummon().Build()))
	require.NoError(t, err)

	assert.Equal(t, 2, host.defense["bear"])
	assert.Equal(t, 1, host.attack["bear"])
}

func TestApplyReduceEquipmentCostDoesNotStack(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	pass := NewPass(context.Background(), TriggerConstant)
	e := effectOf(NewBuilder(KindReduceEquipmentCost).Value(1).Constant().Build())

	for i := 0; i < 3; i++ {
		applied, err := reg.Apply(pass, host, e)
		require.NoError(t, err)
		assert.True(t, applied, "constant effects are recomputed, not deduplicated")
	}
	assert.Equal(t, 1, host.mods["alice"].Get(energy.ModifierEquipmentCostReduction))
}

func TestApplyRegenIsBatched(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	pass := NewPass(context.Background(), TriggerUpkeep)

	_, err := reg.Apply(pass, host, New("c1", "alice", NewBuilder(KindIncreaseEnergyRegen).Value(1).OnUpkeep().Build()))
	require.NoError(t, err)
	_, err = reg.Apply(pass, host, New("c2", "alice", NewBuilder(KindIncreaseEnergyRegen).Value(2).OnUpkeep().Build()))
	require.NoError(t, err)

	grants := pass.DrainRegen()
	require.Len(t, grants, 1)
	assert.Equal(t, RegenGrant{PlayerID: "alice", Amount: 3}, grants[0])
	assert.Empty(t, pass.DrainRegen())
}

func TestApplyRejectsBadInput(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()

	_, err := reg.Apply(NewPass(context.Background(), TriggerOnCast), host, effectOf(Descriptor{Kind: "summon_dragon", Trigger: TriggerOnCast}))
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = reg.Apply(NewPass(context.Background(), TriggerConstant), host, effectOf(NewBuilder(KindDrawCards).Constant().Build()))
	assert.True(t, errors.Is(err, ErrInvalidDescriptor))
	assert.Empty(t, host.drawn)
}

func TestRegisterOverridesHandler(t *testing.T) {
	reg := NewRegistry()
	host := newFakeHost()
	called := false
	reg.Register(KindDrawCards, func(p *Pass, h Host, e Effect) error {
		called = true
		return errors.New("boom")
	})
	reg.Register(KindDrawCards, nil)

	applied, err := reg.Apply(NewPass(context.Background(), TriggerOnCast), host, effectOf(NewBuilder(KindDrawCards).Build()))
	assert.True(t, called)
	assert.True(t, applied)
	assert.ErrorContains(t, err, "boom")
}
