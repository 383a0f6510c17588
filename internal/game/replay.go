package game

import (
	"compress/gzip"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

const (
	replayVersion = 3
	replayExt     = ".replay"
)

// ErrNoReplay is returned for a game the recorder holds no recording of.
var ErrNoReplay = errors.New("no replay recorded")

// Frame is one board snapshot with the log entries written since the
// previous frame.
type Frame struct {
	View    View
	Entries []LogEntry
}

// Replay is a recorded game. Winner is empty for a draw or an unfinished
// game.
type Replay struct {
	GameID   string
	Recorded time.Time
	Finished bool
	Winner   string
	Frames   []*Frame
}

// Len returns the number of frames.
func (r *Replay) Len() int { return len(r.Frames) }

// Frame returns frame i, or nil when out of range.
func (r *Replay) Frame(i int) *Frame {
	if i < 0 || i >= len(r.Frames) {
		return nil
	}
	return r.Frames[i]
}

// Final returns the last frame, or nil for an empty replay.
func (r *Replay) Final() *Frame { return r.Frame(len(r.Frames) - 1) }

// Entries returns every log entry in frame order.
func (r *Replay) Entries() []LogEntry {
	var out []LogEntry
	for _, f := range r.Frames {
		out = append(out, f.Entries...)
	}
	return out
}

type replayHeader struct {
	Version  int
	GameID   string
	Recorded time.Time
	Finished bool
	Winner   string
	Frames   int
}

// Encode writes the replay to w as a gzipped gob stream.
func (r *Replay) Encode(w io.Writer) error {
	zw := gzip.NewWriter(w)
	enc := gob.NewEncoder(zw)
	hdr := replayHeader{
		Version:  replayVersion,
		GameID:   r.GameID,
		Recorded: r.Recorded,
		Finished: r.Finished,
		Winner:   r.Winner,
		Frames:   len(r.Frames),
	}
	if err := enc.Encode(&hdr); err != nil {
		return fmt.Errorf("encode replay header: %w", err)
	}
	for i, f := range r.Frames {
		if err := enc.Encode(f); err != nil {
			return fmt.Errorf("encode frame %d: %w", i, err)
		}
	}
	return zw.Close()
}

// DecodeReplay reads a replay written by Encode.
func DecodeReplay(rd io.Reader) (*Replay, error) {
	zr, err := gzip.NewReader(rd)
	if err != nil {
		return nil, fmt.Errorf("open replay stream: %w", err)
	}
	defer zr.Close()
	dec := gob.NewDecoder(zr)

	var hdr replayHeader
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("decode replay header: %w", err)
	}
	if hdr.Version != replayVersion {
		return nil, fmt.Errorf("unsupported replay version %d", hdr.Version)
	}
	r := &Replay{
		GameID:   hdr.GameID,
		Recorded: hdr.Recorded,
		Finished: hdr.Finished,
		Winner:   hdr.Winner,
		Frames:   make([]*Frame, 0, hdr.Frames),
	}
	for i := 0; i < hdr.Frames; i++ {
		f := new(Frame)
		if err := dec.Decode(f); err != nil {
			return nil, fmt.Errorf("decode frame %d: %w", i, err)
		}
		r.Frames = append(r.Frames, f)
	}
	return r, nil
}

// ReplayPath returns the file a game's replay is saved to under dir.
func ReplayPath(dir, gameID string) string {
	return filepath.Join(dir, gameID+replayExt)
}

// ReadReplayFile loads a saved replay from path.
func ReadReplayFile(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeReplay(f)
}

// ReplayRecorder records games through the observer hook. Entries logged
// between snapshots are held back and attached to the next frame. The
// result is taken from the game-over event.
type ReplayRecorder struct {
	logger *zap.Logger
	dir    string

	mu      sync.Mutex
	live    map[string]*Replay
	pending map[string][]LogEntry
	detach  map[string]func()
}

// NewReplayRecorder creates a recorder that saves into dir.
func NewReplayRecorder(logger *zap.Logger, dir string) *ReplayRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplayRecorder{
		logger:  logger,
		dir:     dir,
		live:    make(map[string]*Replay),
		pending: make(map[string][]LogEntry),
		detach:  make(map[string]func()),
	}
}

// Attach starts a fresh recording of g.
func (rr *ReplayRecorder) Attach(g *Game) {
	id := g.ID()
	rr.Discard(id)

	bus := g.events
	handle := bus.SubscribeTyped(rules.EventGameOver, func(evt rules.Event) {
		rr.finish(id, evt.Controller)
	})
	rr.mu.Lock()
	rr.live[id] = &Replay{GameID: id, Recorded: time.Now()}
	rr.pending[id] = nil
	rr.detach[id] = func() { bus.Unsubscribe(handle) }
	rr.mu.Unlock()

	g.AddObserver(&replayObserver{recorder: rr, gameID: id})
	rr.logger.Debug("recording game", zap.String("game_id", id))
}

func (rr *ReplayRecorder) addEntry(gameID string, entry LogEntry) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if _, ok := rr.live[gameID]; ok {
		rr.pending[gameID] = append(rr.pending[gameID], entry)
	}
}

func (rr *ReplayRecorder) finish(gameID, winnerID string) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if r, ok := rr.live[gameID]; ok {
		r.Finished = true
		r.Winner = winnerID
	}
}

func (rr *ReplayRecorder) addFrame(gameID string, view View) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	r, ok := rr.live[gameID]
	if !ok {
		return
	}
	r.Frames = append(r.Frames, &Frame{View: view, Entries: rr.pending[gameID]})
	rr.pending[gameID] = nil
}

// Replay returns a copy of the in-memory recording of a game.
func (rr *ReplayRecorder) Replay(gameID string) (*Replay, bool) {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	r, ok := rr.live[gameID]
	if !ok {
		return nil, false
	}
	cp := *r
	cp.Frames = append([]*Frame(nil), r.Frames...)
	return &cp, true
}

// Discard drops a recording without saving it. Later events of the game
// are ignored.
func (rr *ReplayRecorder) Discard(gameID string) {
	rr.mu.Lock()
	detach := rr.detach[gameID]
	delete(rr.live, gameID)
	delete(rr.pending, gameID)
	delete(rr.detach, gameID)
	rr.mu.Unlock()
	if detach != nil {
		detach()
	}
}

// Save writes a game's recording to disk and drops it from memory.
func (rr *ReplayRecorder) Save(gameID string) error {
	r, ok := rr.Replay(gameID)
	if !ok {
		return fmt.Errorf("%w for game %s", ErrNoReplay, gameID)
	}
	rr.Discard(gameID)

	if err := os.MkdirAll(rr.dir, 0o755); err != nil {
		return fmt.Errorf("create replay dir: %w", err)
	}
	path := ReplayPath(rr.dir, gameID)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create replay file: %w", err)
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close replay file: %w", err)
	}
	rr.logger.Info("saved replay",
		zap.String("game_id", gameID),
		zap.Int("frames", r.Len()),
		zap.String("path", path),
	)
	return nil
}

// Load reads a game's saved recording from the recorder's directory.
func (rr *ReplayRecorder) Load(gameID string) (*Replay, error) {
	return ReadReplayFile(ReplayPath(rr.dir, gameID))
}

type replayObserver struct {
	recorder *ReplayRecorder
	gameID   string
}

func (o *replayObserver) OnLogEntry(entry LogEntry) { o.recorder.addEntry(o.gameID, entry) }
func (o *replayObserver) OnSnapshot(view View)      { o.recorder.addFrame(o.gameID, view) }
