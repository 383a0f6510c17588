package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/config"
	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/spectate"
)

// gameHooks attaches replay recording and spectators to each game.
type gameHooks struct {
	logger   *zap.Logger
	recorder *game.ReplayRecorder

	mu     sync.Mutex
	ctx    context.Context // nil unless spectating
	hub    *spectate.Hub
	cancel context.CancelFunc
}

func newGameHooks(cfg *config.Config, logger *zap.Logger) *gameHooks {
	h := &gameHooks{logger: logger}
	if cfg.Replay.Enabled {
		h.recorder = game.NewReplayRecorder(logger, cfg.Replay.Dir)
	}
	return h
}

// serveSpectators starts the websocket server. Spectators always watch
// the most recently started game.
func (h *gameHooks) serveSpectators(ctx context.Context, cfg config.SpectateConfig) *http.Server {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, h)
	srv := &http.Server{Addr: cfg.Address, Handler: mux}
	go func() {
		h.logger.Info("serving spectators", zap.String("address", cfg.Address), zap.String("path", cfg.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error("spectator server error", zap.Error(err))
		}
	}()
	return srv
}

// ServeHTTP hands the connection to the current game's hub.
func (h *gameHooks) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	hub := h.hub
	h.mu.Unlock()
	if hub == nil {
		http.Error(w, "no game is running", http.StatusServiceUnavailable)
		return
	}
	hub.ServeHTTP(w, r)
}

func (h *gameHooks) onGame(g *game.Game) {
	if h.recorder != nil {
		h.recorder.Attach(g)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.ctx == nil {
		return
	}
	if h.cancel != nil {
		h.cancel()
	}
	ctx, cancel := context.WithCancel(h.ctx)
	hub := spectate.NewHub(g.ID(), h.logger)
	go hub.Run(ctx)
	g.AddObserver(hub)
	h.hub, h.cancel = hub, cancel
}

func (h *gameHooks) onFinish(g *game.Game) {
	if h.recorder == nil {
		return
	}
	if err := h.recorder.Save(g.ID()); err != nil {
		h.logger.Error("failed to save replay", zap.String("game_id", g.ID()), zap.Error(err))
	}
}

// consoleObserver prints the action log as the game runs.
type consoleObserver struct{}

func (consoleObserver) OnLogEntry(entry game.LogEntry) { fmt.Println(entry.String()) }
func (consoleObserver) OnSnapshot(game.View)           {}
