// Package agent exposes one seat of a game to an MCP client. The game
// goroutine blocks in Session's DecisionProvider methods until a tool
// call answers the pending decision.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// DecisionType identifies what the game is waiting for.
type DecisionType string

const (
	DecisionChooseAction    DecisionType = "choose_action"
	DecisionChooseAttackers DecisionType = "choose_attackers"
	DecisionChooseBlockers  DecisionType = "choose_blockers"
	DecisionChooseTarget    DecisionType = "choose_target"
	DecisionChooseDiscard   DecisionType = "choose_discard"
)

var (
	// ErrNoPending is returned when a tool answers with nothing to answer.
	ErrNoPending = errors.New("no pending decision")
	// ErrWrongDecision is returned when an answer does not fit the pending decision.
	ErrWrongDecision = errors.New("answer does not match the pending decision")
	// ErrGameFinished is returned when waiting on a session whose game ended.
	ErrGameFinished = errors.New("game finished")
)

// ActionView is a main-phase option as presented to the client.
type ActionView struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Desc  string `json:"desc"`
}

// TargetView is a target candidate as presented to the client.
type TargetView struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Name   string `json:"name"`
	Player bool   `json:"player"`
	Owner  string `json:"owner"`
}

// Pending is a decision the game is blocked on.
type Pending struct {
	Type       DecisionType    `json:"type"`
	Prompt     string          `json:"prompt,omitempty"`
	Actions    []ActionView    `json:"actions,omitempty"`
	Attackers  []game.CardView `json:"attackers,omitempty"`
	Candidates []game.CardView `json:"candidates,omitempty"`
	Targets    []TargetView    `json:"targets,omitempty"`
	Min        int             `json:"min"`
	Max        int             `json:"max"`

	view    game.View
	expired <-chan struct{}
	reply   chan Answer
}

// Answer is a client's response. Which fields matter depends on the
// pending decision type.
type Answer struct {
	Index   int
	Indices []int
	// Pairs maps attacker index to blocker index.
	Pairs map[int]int
	// Decline skips an optional target.
	Decline bool
}

// Outcome describes a finished game.
type Outcome struct {
	Winner string `json:"winner,omitempty"`
	Result string `json:"result"`
}

// Session is a channel-backed game.DecisionProvider and game.Observer
// for the MCP-driven seat.
type Session struct {
	playerID string
	logger   *zap.Logger

	pendingCh chan *Pending
	doneCh    chan struct{}

	mu       sync.Mutex
	current  *Pending
	events   []game.LogEntry
	lastView game.View
	outcome  *Outcome
}

// NewSession creates a session for the given seat.
func NewSession(playerID string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		playerID:  playerID,
		logger:    logger.With(zap.String("player_id", playerID)),
		pendingCh: make(chan *Pending),
		doneCh:    make(chan struct{}),
	}
}

// PlayerID returns the seat this session answers for.
func (s *Session) PlayerID() string { return s.playerID }

// ask publishes a decision and blocks until it is answered or ctx ends.
func (s *Session) ask(ctx context.Context, p *Pending, view game.View) (Answer, error) {
	p.view = view
	p.expired = ctx.Done()
	p.reply = make(chan Answer, 1)

	select {
	case s.pendingCh <- p:
	case <-ctx.Done():
		return Answer{}, ctx.Err()
	}
	select {
	case a := <-p.reply:
		return a, nil
	case <-ctx.Done():
		s.mu.Lock()
		if s.current == p {
			s.current = nil
		}
		s.mu.Unlock()
		s.logger.Warn("decision expired", zap.String("type", string(p.Type)))
		return Answer{}, ctx.Err()
	}
}

// ChooseMainAction implements game.DecisionProvider.
func (s *Session) ChooseMainAction(ctx context.Context, view game.View, options []game.Action) (game.Action, error) {
	p := &Pending{Type: DecisionChooseAction, Prompt: "Choose a main-phase action.", Min: 1, Max: 1}
	for i, o := range options {
		p.Actions = append(p.Actions, ActionView{Index: i, Kind: string(o.Kind), Desc: o.String()})
	}
	a, err := s.ask(ctx, p, view)
	if err != nil {
		return game.PassAction, err
	}
	return options[a.Index], nil
}

// ChooseAttackers implements game.DecisionProvider.
func (s *Session) ChooseAttackers(ctx context.Context, view game.View, eligible []game.CardView) ([]string, error) {
	p := &Pending{
		Type:       DecisionChooseAttackers,
		Prompt:     "Choose creatures to attack with.",
		Candidates: eligible,
		Min:        0,
		Max:        len(eligible),
	}
	a, err := s.ask(ctx, p, view)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(a.Indices))
	for _, i := range a.Indices {
		ids = append(ids, eligible[i].ID)
	}
	return ids, nil
}

// ChooseBlockers implements game.DecisionProvider.
func (s *Session) ChooseBlockers(ctx context.Context, view game.View, attackers, eligible []game.CardView) (map[string]string, error) {
	p := &Pending{
		Type:       DecisionChooseBlockers,
		Prompt:     "Assign at most one blocker to each attacker.",
		Attackers:  attackers,
		Candidates: eligible,
		Min:        0,
		Max:        min(len(attackers), len(eligible)),
	}
	a, err := s.ask(ctx, p, view)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(a.Pairs))
	for ai, bi := range a.Pairs {
		out[attackers[ai].ID] = eligible[bi].ID
	}
	return out, nil
}

// ChooseTarget implements game.DecisionProvider.
func (s *Session) ChooseTarget(ctx context.Context, view game.View, req targeting.Requirement, candidates []targeting.Target) (targeting.Target, bool, error) {
	p := &Pending{Type: DecisionChooseTarget, Prompt: req.Description, Min: 0, Max: 1}
	for i, c := range candidates {
		p.Targets = append(p.Targets, TargetView{Index: i, ID: c.ID, Name: c.Name, Player: c.IsPlayer(), Owner: c.OwnerID})
	}
	a, err := s.ask(ctx, p, view)
	if err != nil {
		return targeting.Target{}, false, err
	}
	if a.Decline {
		return targeting.Target{}, false, nil
	}
	return candidates[a.Index], true, nil
}

// ChooseDiscard implements game.DecisionProvider.
func (s *Session) ChooseDiscard(ctx context.Context, view game.View, hand []game.CardView) (string, error) {
	p := &Pending{
		Type:       DecisionChooseDiscard,
		Prompt:     "Hand is over the limit. Choose a card to discard.",
		Candidates: hand,
		Min:        1,
		Max:        1,
	}
	a, err := s.ask(ctx, p, view)
	if err != nil {
		return "", err
	}
	return hand[a.Indices[0]].ID, nil
}

// OnLogEntry buffers log lines for the next tool response.
func (s *Session) OnLogEntry(entry game.LogEntry) {
	s.mu.Lock()
	s.events = append(s.events, entry)
	s.mu.Unlock()
}

// OnSnapshot is a no-op; tool responses carry the seat's own view.
func (s *Session) OnSnapshot(game.View) {}

// Finish records the outcome and releases anyone waiting on the session.
func (s *Session) Finish(outcome Outcome, view game.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome != nil {
		return
	}
	s.outcome = &outcome
	s.lastView = view
	s.current = nil
	close(s.doneCh)
}

// Outcome returns the result once the game has finished.
func (s *Session) Outcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// Wait blocks until the game asks this seat for a decision or finishes.
// A decision that is already pending is returned again.
func (s *Session) Wait(ctx context.Context) (*Pending, error) {
	s.mu.Lock()
	if s.current != nil {
		p := s.current
		s.mu.Unlock()
		return p, nil
	}
	s.mu.Unlock()

	for {
		select {
		case p := <-s.pendingCh:
			select {
			case <-p.expired:
				continue
			default:
			}
			s.mu.Lock()
			s.current = p
			s.lastView = p.view
			s.mu.Unlock()
			return p, nil
		case <-s.doneCh:
			return nil, ErrGameFinished
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Current returns the decision awaiting an answer, if any.
func (s *Session) Current() (*Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != nil
}

// View returns the seat's most recent view of the board.
func (s *Session) View() game.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastView
}

// DrainEvents returns and clears the buffered log entries.
func (s *Session) DrainEvents() []game.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.events
	s.events = nil
	return events
}

// Respond answers the pending decision after checking the answer fits.
func (s *Session) Respond(kind DecisionType, a Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.current
	if p == nil {
		return ErrNoPending
	}
	if p.Type != kind {
		return fmt.Errorf("%w: pending is %s, not %s", ErrWrongDecision, p.Type, kind)
	}
	if err := validate(p, &a); err != nil {
		return err
	}
	s.current = nil
	p.reply <- a
	return nil
}

func validate(p *Pending, a *Answer) error {
	switch p.Type {
	case DecisionChooseAction:
		if a.Index < 0 || a.Index >= len(p.Actions) {
			return fmt.Errorf("%w: action index %d out of range 0-%d", ErrWrongDecision, a.Index, len(p.Actions)-1)
		}
	case DecisionChooseTarget:
		if a.Decline {
			return nil
		}
		if a.Index < 0 || a.Index >= len(p.Targets) {
			return fmt.Errorf("%w: target index %d out of range 0-%d", ErrWrongDecision, a.Index, len(p.Targets)-1)
		}
	case DecisionChooseAttackers, DecisionChooseDiscard:
		seen := make(map[int]bool, len(a.Indices))
		for _, i := range a.Indices {
			if i < 0 || i >= len(p.Candidates) {
				return fmt.Errorf("%w: card index %d out of range 0-%d", ErrWrongDecision, i, len(p.Candidates)-1)
			}
			if seen[i] {
				return fmt.Errorf("%w: card index %d chosen twice", ErrWrongDecision, i)
			}
			seen[i] = true
		}
		if len(a.Indices) < p.Min || len(a.Indices) > p.Max {
			return fmt.Errorf("%w: choose between %d and %d cards, got %d", ErrWrongDecision, p.Min, p.Max, len(a.Indices))
		}
	case DecisionChooseBlockers:
		used := make(map[int]bool, len(a.Pairs))
		for ai, bi := range a.Pairs {
			if ai < 0 || ai >= len(p.Attackers) {
				return fmt.Errorf("%w: attacker index %d out of range", ErrWrongDecision, ai)
			}
			if bi < 0 || bi >= len(p.Candidates) {
				return fmt.Errorf("%w: blocker index %d out of range", ErrWrongDecision, bi)
			}
			if used[bi] {
				return fmt.Errorf("%w: blocker %d assigned twice", ErrWrongDecision, bi)
			}
			used[bi] = true
		}
	}
	return nil
}
