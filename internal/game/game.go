package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/rules"
	"github.com/technobros/cardgame-go/internal/game/targeting"
	"github.com/technobros/cardgame-go/internal/game/watchers"
)

// Seat describes one of the two players joining a game.
type Seat struct {
	ID       string
	Name     string
	Provider DecisionProvider
}

// Option configures a Game.
type Option func(*Game)

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(g *Game) {
		g.AddObserver(o)
	}
}

// WithID sets the game ID instead of generating one.
func WithID(id string) Option {
	return func(g *Game) {
		if id = strings.TrimSpace(id); id != "" {
			g.id = id
		}
	}
}

// Game is the rules orchestrator for a two-player match. It owns every
// card in an ID-indexed arena and is the only place zone moves happen.
// A Game is driven from a single goroutine.
type Game struct {
	id     string
	cfg    Config
	logger *zap.Logger
	rng    *rand.Rand

	order     []*Player
	players   map[string]*Player
	providers map[string]DecisionProvider
	cards     map[string]*Card

	turns   *rules.TurnManager
	started bool
	over    bool
	winner  string

	registry *effects.Registry
	events   *rules.EventBus
	watchers *rules.WatcherRegistry
	legality *rules.LegalityChecker
	targets  *targeting.TargetValidator

	log       []LogEntry
	observers []Observer
	combat    *combatState
}

// NewGame seats two players. The first seat takes the first turn.
func NewGame(cfg Config, first, second Seat, logger *zap.Logger, opts ...Option) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if first.Provider == nil || second.Provider == nil {
		return nil, errors.New("both seats need a decision provider")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		id:        uuid.NewString(),
		cfg:       cfg,
		logger:    logger,
		rng:       rand.New(rand.NewSource(seed)),
		players:   make(map[string]*Player, 2),
		providers: make(map[string]DecisionProvider, 2),
		cards:     make(map[string]*Card),
		registry:  effects.NewRegistry(),
		events:    rules.NewEventBus(),
		watchers:  rules.NewWatcherRegistry(),
	}

	for i, seat := range []Seat{first, second} {
		id := strings.TrimSpace(seat.ID)
		if id == "" {
			id = g.newID()
		}
		if _, dup := g.players[id]; dup {
			return nil, fmt.Errorf("duplicate seat id %q", id)
		}
		name := strings.TrimSpace(seat.Name)
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		p := newPlayer(id, name, cfg)
		g.order = append(g.order, p)
		g.players[id] = p
		g.providers[id] = seat.Provider
	}

	g.turns = rules.NewTurnManager(g.order[0].ID)
	board := &boardAccessor{g: g}
	g.legality = rules.NewLegalityChecker(board)
	g.targets = targeting.NewTargetValidator(board)
	watchers.Install(g.watchers)
	g.events.Subscribe(g.watchers.Notify)

	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(zap.String("game_id", g.id))
	g.logger.Info("game created",
		zap.String("first", g.order[0].Name),
		zap.String("second", g.order[1].Name),
		zap.Int64("seed", seed),
	)
	return g, nil
}

// newID returns a short ID drawn from the game RNG so seeded games are
// reproducible.
func (g *Game) newID() string {
	for {
		u, err := uuid.NewRandomFromReader(g.rng)
		invariant(err == nil, "id generation failed: %v", err)
		id := u.String()[:8]
		if _, taken := g.cards[id]; taken {
			continue
		}
		if _, taken := g.players[id]; taken {
			continue
		}
		return id
	}
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Config returns the rules constants in effect.
func (g *Game) Config() Config { return g.cfg }

// Players returns both players in seat order.
func (g *Game) Players() []*Player {
	out := make([]*Player, len(g.order))
	copy(out, g.order)
	return out
}

// Player returns a player by ID, or nil.
func (g *Game) Player(id string) *Player {
	return g.players[id]
}

// Opponent returns the other player, or nil for an unknown ID.
func (g *Game) Opponent(id string) *Player {
	if _, ok := g.players[id]; !ok {
		return nil
	}
	for _, p := range g.order {
		if p.ID != id {
			return p
		}
	}
	return nil
}

// Card returns a card from the arena, or nil.
func (g *Game) Card(id string) *Card {
	return g.cards[id]
}

// Phase returns the current phase.
func (g *Game) Phase() rules.Phase { return g.turns.CurrentPhase() }

// Turn returns the 1-based turn number.
func (g *Game) Turn() int { return g.turns.TurnNumber() }

// ActivePlayer returns the ID of the player whose turn it is.
func (g *Game) ActivePlayer() string { return g.turns.ActivePlayer() }

// IsOver reports whether the game has ended.
func (g *Game) IsOver() bool { return g.over }

// Winner returns the winner's ID, or "" while running or after a draw.
func (g *Game) Winner() string { return g.winner }

// Summary returns the end-of-game tallies in seat order.
func (g *Game) Summary() []watchers.Summary {
	out := make([]watchers.Summary, 0, len(g.order))
	for _, p := range g.order {
		out = append(out, watchers.Summarize(g.watchers, p.ID))
	}
	return out
}

func (g *Game) provider(playerID string) DecisionProvider {
	return g.providers[playerID]
}

func (g *Game) publish(evt rules.Event) {
	evt.Turn = g.turns.TurnNumber()
	g.events.Publish(evt)
}

// Start seeds starting energy and performs the initial draw.
func (g *Game) Start(ctx context.Context) error {
	if g.started {
		return errors.New("game already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.started = true
	for _, p := range g.order {
		p.energy.Set(g.cfg.StartingEnergy)
	}
	for i := 0; i < g.cfg.InitialDraw; i++ {
		for _, p := range g.order {
			g.drawCard(p)
		}
	}
	g.recordf(LogInfo, "", "Game started. %s: %d energy, %s: %d energy",
		g.order[0].Name, g.order[0].Energy(), g.order[1].Name, g.order[1].Energy())
	g.publish(rules.NewEvent(rules.EventGameStarted, g.id, "", g.order[0].ID))
	g.logger.Info("game started", zap.Int("initial_draw", g.cfg.InitialDraw))
	g.snapshot()
	return nil
}

// Run plays turns until the game ends, the turn cap is reached or ctx is
// cancelled. It starts the game if needed and returns the winner's ID,
// which is "" for a draw.
func (g *Game) Run(ctx context.Context) (string, error) {
	if !g.started {
		if err := g.Start(ctx); err != nil {
			return "", err
		}
	}
	for !g.over {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if g.cfg.MaxTurns > 0 && g.turns.TurnNumber() > g.cfg.MaxTurns {
			g.endInDraw(fmt.Sprintf("turn limit of %d reached", g.cfg.MaxTurns))
			g.snapshot()
			break
		}
		if err := g.RunTurn(ctx); err != nil {
			return "", err
		}
	}
	return g.winner, nil
}

// drawCard draws for a player and publishes the event.
func (g *Game) drawCard(p *Player) *Card {
	c := p.DrawCard()
	if c == nil {
		return nil
	}
	evt := rules.NewEvent(rules.EventDrewCard, c.ID, c.ID, p.ID)
	evt.Zone = rules.ZoneHand
	g.publish(evt)
	return c
}

// moveCard moves c between its owner's zones.
func (g *Game) moveCard(c *Card, dest rules.Zone) {
	owner := g.players[c.OwnerID]
	invariant(owner != nil, "card %s has unknown owner %q", c.ID, c.OwnerID)
	owner.move(c, dest)
}

// CheckInvariants verifies zone and equipment bookkeeping across the
// arena.
func (g *Game) CheckInvariants() error {
	seen := make(map[string]rules.Zone, len(g.cards))
	for _, p := range g.order {
		for _, z := range p.allZones() {
			for _, c := range z.cards {
				if prev, dup := seen[c.ID]; dup {
					return &InvariantError{Msg: fmt.Sprintf("card %s is in both %s and %s", c.ID, prev, z.kind)}
				}
				seen[c.ID] = z.kind
				if c.Zone != z.kind {
					return &InvariantError{Msg: fmt.Sprintf("card %s is in %s but records %s", c.ID, z.kind, c.Zone)}
				}
				if c.OwnerID != p.ID {
					return &InvariantError{Msg: fmt.Sprintf("card %s owned by %s is held by %s", c.ID, c.OwnerID, p.ID)}
				}
				if g.cards[c.ID] != c {
					return &InvariantError{Msg: fmt.Sprintf("card %s is not in the arena", c.ID)}
				}
			}
		}
	}
	for id, c := range g.cards {
		if _, ok := seen[id]; !ok && c.Zone != rules.ZoneNone {
			return &InvariantError{Msg: fmt.Sprintf("card %s records %s but no zone holds it", id, c.Zone)}
		}
		if err := g.checkEquipLink(c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) checkEquipLink(c *Card) error {
	if c.EquippedTo != "" {
		creature := g.cards[c.EquippedTo]
		if creature == nil || creature.Equipment != c.ID {
			return &InvariantError{Msg: fmt.Sprintf("equipment %s points at %s without a back-reference", c.ID, c.EquippedTo)}
		}
	}
	if c.Equipment != "" {
		equipment := g.cards[c.Equipment]
		if equipment == nil || equipment.EquippedTo != c.ID {
			return &InvariantError{Msg: fmt.Sprintf("creature %s points at %s without a back-reference", c.ID, c.Equipment)}
		}
	}
	return nil
}

func (g *Game) assertInvariants() {
	if err := g.CheckInvariants(); err != nil {
		panic(err)
	}
}

// checkGameOver ends the game when a player's life is at or below zero.
// If both players are out, the active player wins.
func (g *Game) checkGameOver() bool {
	if g.over {
		return true
	}
	var losers []*Player
	for _, p := range g.order {
		if p.HasLost() {
			losers = append(losers, p)
		}
	}
	switch len(losers) {
	case 0:
		return false
	case 1:
		g.finish(g.Opponent(losers[0].ID).ID)
	default:
		g.finish(g.turns.ActivePlayer())
	}
	return true
}

func (g *Game) finish(winnerID string) {
	g.over = true
	g.winner = winnerID
	winner := g.players[winnerID]
	g.recordf(LogDanger, winnerID, "wins the game!")
	g.publish(rules.NewEvent(rules.EventGameOver, g.id, "", winnerID))
	g.logger.Info("game ended",
		zap.String("winner_id", winnerID),
		zap.String("winner", winner.Name),
		zap.Int("turn", g.turns.TurnNumber()),
	)
}

func (g *Game) endInDraw(reason string) {
	g.over = true
	g.winner = ""
	g.recordf(LogDanger, "", "Game ended in a draw: %s", reason)
	g.publish(rules.NewEvent(rules.EventGameOver, g.id, "", ""))
	g.logger.Info("game ended in draw", zap.String("reason", reason))
}
