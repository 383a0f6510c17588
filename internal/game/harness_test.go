package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/rules"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

const (
	alice = "alice"
	bob   = "bob"
)

var errNoScript = errors.New("no scripted answer")

// scriptedProvider answers decisions from queues. An empty queue falls back
// to pass, no attack, no block, the first candidate target and an error
// for discards.
type scriptedProvider struct {
	mainActions []Action
	attackers   [][]string
	blocks      []map[string]string
	targets     []string // "" declines
	discards    []string
	automated   bool
	panicIn     string

	calls           map[string]int
	lastCandidates  []targeting.Target
	lastRequirement targeting.Requirement
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{calls: make(map[string]int)}
}

func (s *scriptedProvider) Automated() bool { return s.automated }

func (s *scriptedProvider) enter(name string) {
	s.calls[name]++
	if s.panicIn == name {
		panic("scripted failure in " + name)
	}
}

func (s *scriptedProvider) ChooseMainAction(ctx context.Context, view View, options []Action) (Action, error) {
	s.enter("main")
	if len(s.mainActions) == 0 {
		return PassAction, nil
	}
	a := s.mainActions[0]
	s.mainActions = s.mainActions[1:]
	return a, nil
}

func (s *scriptedProvider) ChooseAttackers(ctx context.Context, view View, eligible []CardView) ([]string, error) {
	s.enter("attackers")
	if len(s.attackers) == 0 {
		return nil, nil
	}
	a := s.attackers[0]
	s.attackers = s.attackers[1:]
	return a, nil
}

func (s *scriptedProvider) ChooseBlockers(ctx context.Context, view View, attackers, eligible []CardView) (map[string]string, error) {
	s.enter("blockers")
	if len(s.blocks) == 0 {
		return nil, nil
	}
	b := s.blocks[0]
	s.blocks = s.blocks[1:]
	return b, nil
}

func (s *scriptedProvider) ChooseTarget(ctx context.Context, view View, req targeting.Requirement, candidates []targeting.Target) (targeting.Target, bool, error) {
	s.enter("target")
	s.lastCandidates = candidates
	s.lastRequirement = req
	if len(s.targets) == 0 {
		return candidates[0], true, nil
	}
	id := s.targets[0]
	s.targets = s.targets[1:]
	if id == "" {
		return targeting.Target{}, false, nil
	}
	return targeting.Target{ID: id}, true, nil
}

func (s *scriptedProvider) ChooseDiscard(ctx context.Context, view View, hand []CardView) (string, error) {
	s.enter("discard")
	if len(s.discards) == 0 {
		return "", errNoScript
	}
	id := s.discards[0]
	s.discards = s.discards[1:]
	return id, nil
}

type testHarness struct {
	t     *testing.T
	g     *Game
	alice *scriptedProvider
	bob   *scriptedProvider
}

// newTestGame seats alice and bob with scripted providers. The game is not
// started and both players have zero energy and empty zones.
func newTestGame(t *testing.T, tweak ...func(*Config)) *testHarness {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	for _, fn := range tweak {
		fn(&cfg)
	}
	h := &testHarness{t: t, alice: newScriptedProvider(), bob: newScriptedProvider()}
	g, err := NewGame(cfg,
		Seat{ID: alice, Name: "Alice", Provider: h.alice},
		Seat{ID: bob, Name: "Bob", Provider: h.bob},
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)
	g.started = true
	h.g = g
	return h
}

func (h *testHarness) put(playerID string, t Template, zone rules.Zone) *Card {
	h.t.Helper()
	c, err := h.g.PutCard(playerID, t, zone)
	require.NoError(h.t, err)
	return c
}

func (h *testHarness) setEnergy(playerID string, n int) {
	h.g.players[playerID].energy.Set(n)
}

func (h *testHarness) requireInvariants() {
	h.t.Helper()
	require.NoError(h.t, h.g.CheckInvariants())
}

func creature(name string, cost, attack, defense int, effs ...effects.Descriptor) Template {
	return Template{Name: name, Type: CardTypeCreature, Cost: cost, Attack: attack, Defense: defense, Effects: effs}
}

func spell(name string, cost int, effs ...effects.Descriptor) Template {
	return Template{Name: name, Type: CardTypeSpell, Cost: cost, Effects: effs}
}

func enchantment(name string, cost int, effs ...effects.Descriptor) Template {
	return Template{Name: name, Type: CardTypeEnchantment, Cost: cost, Effects: effs}
}

func equipment(name string, cost int, effs ...effects.Descriptor) Template {
	return Template{Name: name, Type: CardTypeEquipment, Cost: cost, Effects: effs}
}

func fillDeck(h *testHarness, playerID string, n int) {
	h.t.Helper()
	for i := 0; i < n; i++ {
		h.put(playerID, creature("Filler", 9, 1, 1), rules.ZoneDeck)
	}
}

func logContains(g *Game, substr string) bool {
	for _, e := range g.Log() {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
