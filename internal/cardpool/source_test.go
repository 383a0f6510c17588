package cardpool

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/technobros/cardgame-go/internal/config"
	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/effects"
)

const poolJSON = `[
  {"name": "Spark Imp", "card_type": "creature", "cost": 2, "attack": 2, "defense": 1,
   "description": "A tiny menace.", "effects": [{"type": "deal_damage", "value": 1, "trigger": "on_summon"}]},
  {"name": "Overclock", "card_type": "enchantment", "cost": 3, "attack": 0, "defense": 0,
   "description": "More power.", "effects": [{"type": "increase_energy_regen", "value": 1, "trigger": "upkeep"}]},
  {"name": "", "card_type": "spell", "cost": 1},
  {"name": "Glitch", "card_type": "spell", "cost": 1, "effects": [{"type": "teleport", "value": 1, "trigger": "on_cast"}]}
]`

const poolYAML = `
cards:
  - name: Copper Blade
    card_type: equipment
    cost: 2
    description: Sharp enough.
    flavor_text: Forged in a server room.
    effects:
      - type: gain_attack
        value: 2
        trigger: on_cast
  - name: Wall Bot
    card_type: creature
    cost: 3
    attack: 0
    defense: 6
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestJSONSource(t *testing.T) {
	src := NewJSONSource(writeFile(t, "cards.json", poolJSON), zaptest.NewLogger(t))
	defer src.Close()

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3, "the nameless card is dropped")

	assert.Equal(t, "Spark Imp", got[0].Name)
	assert.Equal(t, game.CardTypeCreature, got[0].Type)
	assert.Equal(t, []effects.Descriptor{{Kind: effects.KindDealDamage, Value: 1, Trigger: effects.TriggerOnSummon}}, got[0].Effects)
	assert.Equal(t, "Glitch", got[2].Name, "unknown effect kinds are kept and skipped when they fire")
}

func TestYAMLSource(t *testing.T) {
	src := NewYAMLSource(writeFile(t, "cards.yaml", poolYAML), zaptest.NewLogger(t))
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, game.CardTypeEquipment, got[0].Type)
	assert.Equal(t, "Forged in a server room.", got[0].FlavorText)
	assert.Equal(t, effects.KindGainAttack, got[0].Effects[0].Kind)
	assert.Equal(t, 6, got[1].Defense)
}

func TestFileSourceErrors(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	_, err := NewJSONSource(filepath.Join(t.TempDir(), "missing.json"), logger).Load(ctx)
	assert.Error(t, err)

	_, err = NewJSONSource(writeFile(t, "bad.json", "{"), logger).Load(ctx)
	assert.Error(t, err)

	_, err = NewJSONSource(writeFile(t, "empty.json", "[]"), logger).Load(ctx)
	assert.ErrorIs(t, err, ErrEmptyPool)

	_, err = NewYAMLSource(writeFile(t, "bad.yaml", "cards: [\n"), logger).Load(ctx)
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = NewYAMLSource(writeFile(t, "ok.yaml", poolYAML), logger).Load(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	src, err := NewSource(ctx, config.CardPoolConfig{Source: config.SourceJSON, Path: "x.json"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &JSONSource{}, src)

	src, err = NewSource(ctx, config.CardPoolConfig{Source: config.SourceYAML, Path: "x.yaml"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &YAMLSource{}, src)

	_, err = NewSource(ctx, config.CardPoolConfig{Source: "csv"}, logger)
	assert.Error(t, err)
}

func TestPoolBuildsDecks(t *testing.T) {
	src := NewJSONSource(writeFile(t, "cards.json", poolJSON), zaptest.NewLogger(t))
	pool, err := src.Load(context.Background())
	require.NoError(t, err)

	deck, err := game.BuildDeck(rand.New(rand.NewSource(1)), pool, 6, 2)
	require.NoError(t, err)
	assert.Len(t, deck, 6)
}

func TestShippedPools(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	jsonPool, err := NewJSONSource(filepath.Join("..", "..", "data", "cards.json"), logger).Load(ctx)
	require.NoError(t, err)
	yamlPool, err := NewYAMLSource(filepath.Join("..", "..", "data", "cards.yaml"), logger).Load(ctx)
	require.NoError(t, err)

	for name, pool := range map[string][]game.Template{"json": jsonPool, "yaml": yamlPool} {
		kinds := make(map[effects.Kind]bool)
		types := make(map[game.CardType]bool)
		for _, tmpl := range pool {
			types[tmpl.Type] = true
			for _, d := range tmpl.Effects {
				assert.NoError(t, d.Validate(), "%s: %s", name, tmpl.Name)
				kinds[d.Kind] = true
			}
		}
		assert.Len(t, types, 4, "%s pool covers every card type", name)
		if name == "json" {
			assert.Len(t, kinds, 8, "json pool covers every effect kind")
		}
	}

	deck, err := game.BuildDeck(rand.New(rand.NewSource(2)), jsonPool, 30, 2)
	require.NoError(t, err)
	assert.Len(t, deck, 30)
}
