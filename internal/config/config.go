// Package config loads match, logging and collaborator settings.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/technobros/cardgame-go/internal/game"
)

// EnvPrefix is prepended to every environment override, e.g.
// CARDGAME_GAME_SEED or CARDGAME_CARD_POOL_SOURCE.
const EnvPrefix = "CARDGAME"

// Card pool sources.
const (
	SourceJSON     = "json"
	SourceYAML     = "yaml"
	SourcePostgres = "postgres"
)

// Config is the full application configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	CardPool CardPoolConfig `mapstructure:"card_pool"`
	Spectate SpectateConfig `mapstructure:"spectate"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Replay   ReplayConfig   `mapstructure:"replay"`
	Series   SeriesConfig   `mapstructure:"series"`
}

// GameConfig holds the rules constants.
type GameConfig struct {
	StartingLife    int           `mapstructure:"starting_life"`
	StartingEnergy  int           `mapstructure:"starting_energy"`
	BaseEnergyRegen int           `mapstructure:"base_energy_regen"`
	InitialDraw     int           `mapstructure:"initial_draw"`
	HandLimit       int           `mapstructure:"hand_limit"`
	DeckSize        int           `mapstructure:"deck_size"`
	MaxCopies       int           `mapstructure:"max_copies"`
	EquipCost       int           `mapstructure:"equip_cost"`
	DecisionTimeout time.Duration `mapstructure:"decision_timeout"`
	MaxMainActions  int           `mapstructure:"max_main_actions"`
	MaxTurns        int           `mapstructure:"max_turns"`
	Seed            int64         `mapstructure:"seed"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CardPoolConfig selects where card templates come from.
type CardPoolConfig struct {
	Source      string `mapstructure:"source"`
	Path        string `mapstructure:"path"`
	DatabaseURL string `mapstructure:"database_url"`
	Table       string `mapstructure:"table"`
	MaxConns    int32  `mapstructure:"max_conns"`
}

// SpectateConfig controls the websocket spectator feed.
type SpectateConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}

// AgentConfig controls the MCP-driven seat. Seat is 0 for the first
// player and 1 for the second.
type AgentConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Seat    int  `mapstructure:"seat"`
}

// ReplayConfig controls replay recording.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// SeriesConfig controls AI-vs-AI series play.
type SeriesConfig struct {
	Games   int `mapstructure:"games"`
	Workers int `mapstructure:"workers"`
}

// Load reads configuration from path, then environment overrides. An
// empty path uses defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := game.DefaultConfig()
	v.SetDefault("game.starting_life", d.StartingLife)
	v.SetDefault("game.starting_energy", d.StartingEnergy)
	v.SetDefault("game.base_energy_regen", d.BaseEnergyRegen)
	v.SetDefault("game.initial_draw", d.InitialDraw)
	v.SetDefault("game.hand_limit", d.HandLimit)
	v.SetDefault("game.deck_size", d.DeckSize)
	v.SetDefault("game.max_copies", d.MaxCopies)
	v.SetDefault("game.equip_cost", d.EquipCost)
	v.SetDefault("game.decision_timeout", d.DecisionTimeout)
	v.SetDefault("game.max_main_actions", d.MaxMainActions)
	v.SetDefault("game.max_turns", d.MaxTurns)
	v.SetDefault("game.seed", d.Seed)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("card_pool.source", SourceJSON)
	v.SetDefault("card_pool.path", "data/cards.json")
	v.SetDefault("card_pool.database_url", "")
	v.SetDefault("card_pool.table", "cards")
	v.SetDefault("card_pool.max_conns", 4)

	v.SetDefault("spectate.enabled", false)
	v.SetDefault("spectate.address", ":8089")
	v.SetDefault("spectate.path", "/ws")

	v.SetDefault("agent.enabled", false)
	v.SetDefault("agent.seat", 0)

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")

	v.SetDefault("series.games", 1)
	v.SetDefault("series.workers", 1)
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if err := c.Game.ToGame().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("logging: unknown level %q", c.Logging.Level)
	}
	switch c.CardPool.Source {
	case SourceJSON, SourceYAML:
		if c.CardPool.Path == "" {
			return fmt.Errorf("card_pool: %s source needs a path", c.CardPool.Source)
		}
	case SourcePostgres:
		if c.CardPool.DatabaseURL == "" {
			return errors.New("card_pool: postgres source needs a database_url")
		}
		if c.CardPool.Table == "" {
			return errors.New("card_pool: postgres source needs a table")
		}
	default:
		return fmt.Errorf("card_pool: unknown source %q", c.CardPool.Source)
	}
	if c.Spectate.Enabled && c.Spectate.Address == "" {
		return errors.New("spectate: enabled without an address")
	}
	if c.Agent.Seat != 0 && c.Agent.Seat != 1 {
		return fmt.Errorf("agent: seat must be 0 or 1, got %d", c.Agent.Seat)
	}
	if c.Replay.Enabled && c.Replay.Dir == "" {
		return errors.New("replay: enabled without a directory")
	}
	if c.Series.Games < 1 {
		return fmt.Errorf("series: games must be at least 1, got %d", c.Series.Games)
	}
	if c.Series.Workers < 1 {
		return fmt.Errorf("series: workers must be at least 1, got %d", c.Series.Workers)
	}
	return nil
}

// ToGame converts the rules section into a game.Config.
func (g GameConfig) ToGame() game.Config {
	return game.Config{
		StartingLife:    g.StartingLife,
		StartingEnergy:  g.StartingEnergy,
		BaseEnergyRegen: g.BaseEnergyRegen,
		InitialDraw:     g.InitialDraw,
		HandLimit:       g.HandLimit,
		DeckSize:        g.DeckSize,
		MaxCopies:       g.MaxCopies,
		EquipCost:       g.EquipCost,
		DecisionTimeout: g.DecisionTimeout,
		MaxMainActions:  g.MaxMainActions,
		MaxTurns:        g.MaxTurns,
		Seed:            g.Seed,
	}
}
