package game

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

// LogLevel tags an action-log entry for presentation.
type LogLevel string

const (
	LogInfo    LogLevel = "info"
	LogSuccess LogLevel = "success"
	LogWarning LogLevel = "warning"
	LogDanger  LogLevel = "danger"
	LogCombat  LogLevel = "combat"
)

// LogEntry is one line of the game's append-only action log.
type LogEntry struct {
	Seq       int         `json:"seq"`
	Turn      int         `json:"turn"`
	Phase     rules.Phase `json:"-"`
	PhaseName string      `json:"phase"`
	PlayerID  string      `json:"player_id,omitempty"`
	Player    string      `json:"player,omitempty"`
	Level     LogLevel    `json:"level"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e LogEntry) String() string {
	if e.Player == "" {
		return fmt.Sprintf("[Turn %d] %s", e.Turn, e.Message)
	}
	return fmt.Sprintf("[Turn %d] %s: %s", e.Turn, e.Player, e.Message)
}

// Observer receives log entries and board snapshots. Observers never
// mutate the game.
type Observer interface {
	OnLogEntry(entry LogEntry)
	OnSnapshot(view View)
}

// AddObserver registers an observer; nil is ignored.
func (g *Game) AddObserver(o Observer) {
	if o != nil {
		g.observers = append(g.observers, o)
	}
}

// Log returns a copy of the action log.
func (g *Game) Log() []LogEntry {
	out := make([]LogEntry, len(g.log))
	copy(out, g.log)
	return out
}

func (g *Game) record(level LogLevel, playerID, message string) {
	entry := LogEntry{
		Seq:       len(g.log) + 1,
		Turn:      g.turns.TurnNumber(),
		Phase:     g.turns.CurrentPhase(),
		PhaseName: g.turns.CurrentPhase().String(),
		PlayerID:  playerID,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
	}
	if p := g.players[playerID]; p != nil {
		entry.Player = p.Name
	}
	g.log = append(g.log, entry)

	g.logger.Debug("game log",
		zap.Int("turn", entry.Turn),
		zap.String("player_id", playerID),
		zap.String("level", string(level)),
		zap.String("message", message),
	)
	for _, o := range g.observers {
		o.OnLogEntry(entry)
	}
}

func (g *Game) recordf(level LogLevel, playerID, format string, args ...any) {
	g.record(level, playerID, fmt.Sprintf(format, args...))
}

// warn reports a data-integrity or provider problem and keeps going.
func (g *Game) warn(msg, playerID string, err error, detail string) {
	g.logger.Warn(msg,
		zap.String("player_id", playerID),
		zap.String("detail", detail),
		zap.Error(err),
	)
	g.recordf(LogWarning, playerID, "%s (%s): %v", msg, detail, err)
}

// snapshot sends a spectator view to every observer.
func (g *Game) snapshot() {
	if len(g.observers) == 0 {
		return
	}
	view := g.View("")
	for _, o := range g.observers {
		o.OnSnapshot(view)
	}
}
