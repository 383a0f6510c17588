package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/technobros/cardgame-go/internal/agent"
	"github.com/technobros/cardgame-go/internal/ai"
	"github.com/technobros/cardgame-go/internal/cardpool"
	"github.com/technobros/cardgame-go/internal/config"
	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/tournament"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	seed       = flag.Int64("seed", 0, "RNG seed; overrides game.seed when non-zero")
	games      = flag.Int("games", 0, "number of AI-vs-AI games; overrides series.games when non-zero")
	quiet      = flag.Bool("quiet", false, "do not print the game log to stdout")
	replayFile = flag.String("replay", "", "print a saved replay file and exit")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	if *replayFile != "" {
		if err := printReplay(*replayFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read replay: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *seed != 0 {
		cfg.Game.Seed = *seed
	}
	if *games > 0 {
		cfg.Series.Games = *games
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting duel",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("duel failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("duel stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	src, err := cardpool.NewSource(ctx, cfg.CardPool, logger)
	if err != nil {
		return fmt.Errorf("open card pool: %w", err)
	}
	pool, err := src.Load(ctx)
	src.Close()
	if err != nil {
		return fmt.Errorf("load card pool: %w", err)
	}

	hooks := newGameHooks(cfg, logger)
	if cfg.Spectate.Enabled {
		srv := hooks.serveSpectators(ctx, cfg.Spectate)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	switch {
	case cfg.Agent.Enabled:
		return runAgent(ctx, cfg, pool, hooks, logger)
	case cfg.Series.Games > 1:
		return runSeries(ctx, cfg, pool, hooks, logger)
	default:
		return runDuel(ctx, cfg, pool, hooks, logger)
	}
}

// runDuel plays a single AI-vs-AI game and prints its log.
func runDuel(ctx context.Context, cfg *config.Config, pool []game.Template, hooks *gameHooks, logger *zap.Logger) error {
	var opts []game.Option
	if !*quiet {
		opts = append(opts, game.WithObserver(consoleObserver{}))
	}
	g, err := game.NewGame(cfg.Game.ToGame(),
		game.Seat{ID: "player1", Name: "Player 1", Provider: ai.New(logger)},
		game.Seat{ID: "player2", Name: "Player 2", Provider: ai.New(logger)},
		logger, opts...)
	if err != nil {
		return err
	}
	if err := g.BuildDecks(pool); err != nil {
		return fmt.Errorf("build decks: %w", err)
	}
	hooks.onGame(g)
	defer hooks.onFinish(g)

	winner, err := g.Run(ctx)
	if err != nil {
		return err
	}
	if winner == "" {
		fmt.Println("Game over. Draw.")
	} else {
		fmt.Printf("Game over. Winner: %s\n", g.Player(winner).Name)
	}
	for _, s := range g.Summary() {
		logger.Info("player summary",
			zap.String("player_id", s.PlayerID),
			zap.Int("life", g.Player(s.PlayerID).Life()),
			zap.Int("cards_played", s.CardsPlayed),
			zap.Int("cards_drawn", s.CardsDrawn),
			zap.Int("creatures_lost", s.CreaturesLost),
			zap.Int("damage_dealt", s.DamageDealt),
			zap.Int("damage_received", s.DamageReceived),
		)
	}
	return nil
}

// runSeries plays the configured number of AI-vs-AI games and prints the
// standings as JSON.
func runSeries(ctx context.Context, cfg *config.Config, pool []game.Template, hooks *gameHooks, logger *zap.Logger) error {
	provider := func() game.DecisionProvider { return ai.New(logger) }
	series, err := tournament.NewSeries(tournament.Config{
		Game:    cfg.Game.ToGame(),
		Games:   cfg.Series.Games,
		Workers: cfg.Series.Workers,
		OnGame:  hooks.onGame,
		OnFinish: func(g *game.Game, _ tournament.Result) {
			hooks.onFinish(g)
		},
	}, pool,
		tournament.Entrant{Name: "player1", Provider: provider},
		tournament.Entrant{Name: "player2", Provider: provider},
		logger)
	if err != nil {
		return err
	}
	runErr := series.Run(ctx)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(series.Snapshot()); err != nil {
		return err
	}
	return runErr
}

// runAgent serves one seat over MCP on stdio until the client disconnects
// or ctx is cancelled.
func runAgent(ctx context.Context, cfg *config.Config, pool []game.Template, hooks *gameHooks, logger *zap.Logger) error {
	srv := agent.NewServer(ctx, agent.ServerConfig{
		Game:     cfg.Game.ToGame(),
		Pool:     pool,
		Seat:     cfg.Agent.Seat,
		Opponent: func() game.DecisionProvider { return ai.New(logger) },
		OnGame:   hooks.onGame,
		OnFinish: hooks.onFinish,
	}, logger)
	defer srv.Close()

	m := server.NewMCPServer("cardgame", version, server.WithToolCapabilities(false))
	srv.Register(m)

	logger.Info("serving MCP on stdio", zap.Int("seat", cfg.Agent.Seat))
	errCh := make(chan error, 1)
	go func() { errCh <- server.ServeStdio(m) }()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve MCP: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// printReplay writes a saved game to stdout, one board line per frame.
func printReplay(path string) error {
	r, err := game.ReadReplayFile(path)
	if err != nil {
		return err
	}
	fmt.Printf("Replay %s (%d frames, recorded %s)\n", r.GameID, r.Len(), r.Recorded.Format(time.RFC3339))
	for _, f := range r.Frames {
		for _, e := range f.Entries {
			fmt.Println(e.String())
		}
		v := f.View
		line := fmt.Sprintf("-- turn %d %s:", v.Turn, v.Phase)
		for _, p := range v.Players {
			line += fmt.Sprintf(" %s life=%d energy=%d board=%d", p.Name, p.Life, p.Energy, len(p.Battlezone))
		}
		fmt.Println(line)
	}
	switch {
	case !r.Finished:
		fmt.Println("Recording ends before the game did.")
	case r.Winner == "":
		fmt.Println("Game over. Draw.")
	default:
		name := r.Winner
		if final := r.Final(); final != nil {
			if p, ok := final.View.Player(r.Winner); ok {
				name = p.Name
			}
		}
		fmt.Printf("Game over. Winner: %s\n", name)
	}
	return nil
}

// initLogger initializes the zap logger based on configuration. Logs go to
// stderr so stdout stays free for game output and MCP traffic.
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
