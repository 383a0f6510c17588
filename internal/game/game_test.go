package game

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

func TestNewGameSeats(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 3
	g, err := NewGame(cfg,
		Seat{Provider: newScriptedProvider()},
		Seat{Name: "  Bob ", Provider: newScriptedProvider()},
		zaptest.NewLogger(t),
		WithID("match-1"),
	)
	require.NoError(t, err)

	players := g.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "Player 1", players[0].Name)
	assert.Equal(t, "Bob", players[1].Name)
	assert.Len(t, players[0].ID, 8)
	assert.NotEqual(t, players[0].ID, players[1].ID)
	assert.Equal(t, players[0].ID, g.ActivePlayer())
	assert.Equal(t, "match-1", g.ID())
	assert.Equal(t, 1, g.Turn())
	assert.Equal(t, rules.PhaseUpkeep, g.Phase())
	assert.Same(t, players[1], g.Opponent(players[0].ID))
	assert.Nil(t, g.Opponent("nobody"))
}

func TestNewGameRejects(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewGame(cfg, Seat{ID: "x", Provider: newScriptedProvider()}, Seat{ID: "x", Provider: newScriptedProvider()}, nil)
	assert.Error(t, err)

	_, err = NewGame(cfg, Seat{Provider: newScriptedProvider()}, Seat{}, nil)
	assert.Error(t, err)

	cfg.HandLimit = 0
	_, err = NewGame(cfg, Seat{Provider: newScriptedProvider()}, Seat{Provider: newScriptedProvider()}, nil)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	for name, tweak := range map[string]func(*Config){
		"life":      func(c *Config) { c.StartingLife = 0 },
		"energy":    func(c *Config) { c.StartingEnergy = -1 },
		"copies":    func(c *Config) { c.MaxCopies = 0 },
		"deck":      func(c *Config) { c.DeckSize = 0 },
		"equip":     func(c *Config) { c.EquipCost = -1 },
		"main":      func(c *Config) { c.MaxMainActions = 0 },
		"max turns": func(c *Config) { c.MaxTurns = -1 },
	} {
		cfg := DefaultConfig()
		tweak(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestSeededGamesShareCardIDs(t *testing.T) {
	a := newTestGame(t)
	b := newTestGame(t)
	ca := a.put(alice, creature("Bear", 2, 2, 2), rules.ZoneHand)
	cb := b.put(alice, creature("Bear", 2, 2, 2), rules.ZoneHand)
	assert.Equal(t, ca.ID, cb.ID)
}

type recordingObserver struct {
	entries   []LogEntry
	snapshots []View
}

func (r *recordingObserver) OnLogEntry(e LogEntry) { r.entries = append(r.entries, e) }
func (r *recordingObserver) OnSnapshot(v View)     { r.snapshots = append(r.snapshots, v) }

func TestObserversSeeLogAndSnapshots(t *testing.T) {
	h := newTestGame(t)
	obs := &recordingObserver{}
	h.g.AddObserver(obs)
	h.g.AddObserver(nil)

	require.NoError(t, h.g.RunTurn(context.Background()))
	assert.Equal(t, len(h.g.Log()), len(obs.entries))
	assert.Len(t, obs.snapshots, 5, "one snapshot per phase")
	for i, e := range obs.entries {
		assert.Equal(t, i+1, e.Seq)
	}
	assert.Empty(t, obs.snapshots[0].Viewer)
}

func TestLogEntryString(t *testing.T) {
	assert.Equal(t, "[Turn 3] Alice: played Bear", LogEntry{Turn: 3, Player: "Alice", Message: "played Bear"}.String())
	assert.Equal(t, "[Turn 1] Game started.", LogEntry{Turn: 1, Message: "Game started."}.String())
}

func TestLoggerTagsGameIDOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g, err := NewGame(DefaultConfig(),
		Seat{ID: alice, Name: "Alice", Provider: newScriptedProvider()},
		Seat{ID: bob, Name: "Bob", Provider: newScriptedProvider()},
		zap.New(core), WithID("game-1"))
	require.NoError(t, err)

	g.record(LogInfo, alice, "played Bear")
	g.warn("rejected action", alice, ErrIllegalAction, "Bear")

	entries := logs.All()
	require.NotEmpty(t, entries)
	for _, e := range entries {
		n := 0
		for _, f := range e.Context {
			if f.Key == "game_id" {
				n++
				assert.Equal(t, "game-1", f.String)
			}
		}
		assert.Equal(t, 1, n, "%q carries game_id %d times", e.Message, n)
	}
	assert.Equal(t, 1, logs.FilterMessage("rejected action").Len())
}

func TestSummaryTallies(t *testing.T) {
	h := newTestGame(t)
	ctx := context.Background()
	h.setEnergy(alice, 2)
	fillDeck(h, alice, 1)
	bear := h.put(alice, creature("Bear", 2, 4, 4), rules.ZoneHand)
	target := h.put(bob, creature("Goblin", 1, 1, 1), rules.ZoneBattlezone)

	require.NoError(t, h.g.PlayCard(ctx, alice, bear.ID))
	bear.Untap()
	bear.SummoningSick = false
	require.NoError(t, h.g.DeclareAttackers(alice, []string{bear.ID}))
	require.NoError(t, h.g.DeclareBlockers(bob, map[string]string{bear.ID: target.ID}))
	_, err := h.g.ResolveCombatDamage()
	require.NoError(t, err)
	h.g.drawCard(h.g.Player(alice))

	summary := h.g.Summary()
	require.Len(t, summary, 2)
	assert.Equal(t, alice, summary[0].PlayerID)
	assert.Equal(t, 1, summary[0].CardsPlayed)
	assert.Equal(t, 1, summary[0].CardsDrawn)
	assert.Equal(t, 1, summary[1].CreaturesLost)
	assert.Equal(t, 0, summary[0].CreaturesLost)
}

func TestCheckInvariantsDetectsBrokenLinks(t *testing.T) {
	h := newTestGame(t)
	bear := h.put(alice, creature("Bear", 2, 2, 2), rules.ZoneBattlezone)
	blade := h.put(alice, equipment("Sword", 1), rules.ZoneEnvirons)
	h.requireInvariants()

	blade.EquippedTo = bear.ID
	err := h.g.CheckInvariants()
	require.Error(t, err)
	var ie *InvariantError
	assert.ErrorAs(t, err, &ie)
}
