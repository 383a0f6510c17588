// Package tournament runs series of automated games between two entrants
// and keeps standings.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/watchers"
)

// State represents the state of a series
type State int

const (
	StateWaiting State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateWaiting:
		return "WAITING"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateFinished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Points awarded per game.
const (
	PointsWin  = 3
	PointsDraw = 1
)

// Entrant is one side of a series. Provider is called once per game so
// stateful providers are never shared between games.
type Entrant struct {
	Name     string
	Provider func() game.DecisionProvider
}

// Config describes a series.
type Config struct {
	Game    game.Config
	Games   int
	Workers int
	// OnGame is called with each game before it runs, on the worker that
	// runs it.
	OnGame func(*game.Game)
	// OnFinish is called after each game ends, on the worker that ran it.
	OnFinish func(*game.Game, Result)
}

// Standing is an entrant's record in the series.
type Standing struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
}

// Result is the outcome of one game in the series.
type Result struct {
	Number   int                `json:"number"`
	GameID   string             `json:"game_id"`
	Seed     int64              `json:"seed"`
	First    string             `json:"first"`
	Second   string             `json:"second"`
	Winner   string             `json:"winner,omitempty"`
	Turns    int                `json:"turns"`
	Checksum string             `json:"checksum,omitempty"`
	Summary  []watchers.Summary `json:"summary,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Draw reports whether the game finished without a winner.
func (r Result) Draw() bool { return r.Winner == "" && r.Error == "" }

// Snapshot captures a consistent view of a series.
type Snapshot struct {
	ID        string     `json:"id"`
	State     string     `json:"state"`
	Games     int        `json:"games"`
	Played    int        `json:"played"`
	Standings []Standing `json:"standings"`
	Results   []Result   `json:"results"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Series plays a fixed number of games between two entrants. Seats
// alternate so each entrant goes first in half the games.
type Series struct {
	ID string

	cfg      Config
	pool     []game.Template
	entrants [2]Entrant
	logger   *zap.Logger

	mu        sync.RWMutex
	state     State
	standings map[string]*Standing
	results   []Result
	startTime *time.Time
	endTime   *time.Time
}

// NewSeries creates a series. Entrant names must be distinct.
func NewSeries(cfg Config, pool []game.Template, a, b Entrant, logger *zap.Logger) (*Series, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Games < 1 {
		return nil, fmt.Errorf("series needs at least one game, got %d", cfg.Games)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if err := cfg.Game.Validate(); err != nil {
		return nil, err
	}
	for _, e := range []Entrant{a, b} {
		if e.Name == "" || e.Provider == nil {
			return nil, errors.New("entrant needs a name and a provider")
		}
	}
	if a.Name == b.Name {
		return nil, fmt.Errorf("entrants share the name %q", a.Name)
	}
	id := uuid.New().String()
	return &Series{
		ID:       id,
		cfg:      cfg,
		pool:     pool,
		entrants: [2]Entrant{a, b},
		logger:   logger.With(zap.String("series_id", id)),
		state:    StateWaiting,
		standings: map[string]*Standing{
			a.Name: {Name: a.Name},
			b.Name: {Name: b.Name},
		},
	}, nil
}

// State returns the current series state
func (s *Series) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Run plays every game and blocks until they are done or ctx is
// cancelled. Games that fail are recorded with their error and do not
// stop the series.
func (s *Series) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateWaiting {
		s.mu.Unlock()
		return errors.New("series already started")
	}
	s.state = StateInProgress
	now := time.Now()
	s.startTime = &now
	s.mu.Unlock()

	baseSeed := s.cfg.Game.Seed
	if baseSeed == 0 {
		baseSeed = now.UnixNano()
	}
	s.logger.Info("series started",
		zap.String("first", s.entrants[0].Name),
		zap.String("second", s.entrants[1].Name),
		zap.Int("games", s.cfg.Games),
		zap.Int("workers", s.cfg.Workers),
		zap.Int64("base_seed", baseSeed),
	)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := range jobs {
				s.record(s.play(ctx, n, baseSeed+int64(n)))
			}
		}()
	}

	var err error
feed:
	for n := 1; n <= s.cfg.Games; n++ {
		select {
		case jobs <- n:
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	s.mu.Lock()
	s.state = StateFinished
	end := time.Now()
	s.endTime = &end
	played := len(s.results)
	s.mu.Unlock()

	s.logger.Info("series finished",
		zap.Int("played", played),
		zap.Duration("elapsed", end.Sub(now)),
	)
	return err
}

// play runs game n. Odd games seat the first entrant first.
func (s *Series) play(ctx context.Context, n int, seed int64) (res Result) {
	first, second := s.entrants[0], s.entrants[1]
	if n%2 == 0 {
		first, second = second, first
	}
	res = Result{Number: n, Seed: seed, First: first.Name, Second: second.Name}
	logger := s.logger.With(zap.Int("game", n))

	cfg := s.cfg.Game
	cfg.Seed = seed
	g, err := game.NewGame(cfg,
		game.Seat{ID: first.Name, Name: first.Name, Provider: first.Provider()},
		game.Seat{ID: second.Name, Name: second.Name, Provider: second.Provider()},
		logger,
		game.WithID(fmt.Sprintf("%s-%03d", s.ID[:8], n)),
	)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.GameID = g.ID()
	if err := g.BuildDecks(s.pool); err != nil {
		res.Error = err.Error()
		return res
	}
	if s.cfg.OnGame != nil {
		s.cfg.OnGame(g)
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("game aborted", zap.Any("panic", r))
			res.Error = fmt.Sprintf("game aborted: %v", r)
		}
		res.Turns = g.Turn()
		res.Checksum = g.Checksum()
		res.Summary = g.Summary()
		if s.cfg.OnFinish != nil {
			s.cfg.OnFinish(g, res)
		}
	}()

	winner, err := g.Run(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Winner = winner
	return res
}

// record adds a result and updates standings.
func (s *Series) record(res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, res)
	if res.Error != "" {
		s.logger.Warn("game failed", zap.Int("game", res.Number), zap.String("error", res.Error))
		return
	}
	first, second := s.standings[res.First], s.standings[res.Second]
	switch res.Winner {
	case res.First:
		first.Wins++
		first.Points += PointsWin
		second.Losses++
	case res.Second:
		second.Wins++
		second.Points += PointsWin
		first.Losses++
	default:
		first.Draws++
		first.Points += PointsDraw
		second.Draws++
		second.Points += PointsDraw
	}
	s.logger.Debug("game recorded",
		zap.Int("game", res.Number),
		zap.String("winner", res.Winner),
		zap.Int("turns", res.Turns),
	)
}

// Standings returns the entrants ordered by points, then wins, then name.
func (s *Series) Standings() []Standing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.standingsLocked()
}

func (s *Series) standingsLocked() []Standing {
	out := make([]Standing, 0, len(s.standings))
	for _, st := range s.standings {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		if out[i].Wins != out[j].Wins {
			return out[i].Wins > out[j].Wins
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Results returns the recorded games ordered by number.
func (s *Series) Results() []Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resultsLocked()
}

func (s *Series) resultsLocked() []Result {
	out := append([]Result(nil), s.results...)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Snapshot returns a consistent copy of the series state.
func (s *Series) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		ID:        s.ID,
		State:     s.state.String(),
		Games:     s.cfg.Games,
		Played:    len(s.results),
		Standings: s.standingsLocked(),
		Results:   s.resultsLocked(),
		StartTime: cloneTime(s.startTime),
		EndTime:   cloneTime(s.endTime),
	}
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	cp := *src
	return &cp
}
