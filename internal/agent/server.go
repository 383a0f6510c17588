package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game"
)

// ServerConfig describes the games the MCP server starts.
type ServerConfig struct {
	Game game.Config
	Pool []game.Template
	// Seat is 0 when the agent plays first, 1 when it plays second.
	Seat int
	// Opponent builds the provider for the other seat.
	Opponent func() game.DecisionProvider
	// OnGame is called with each new game before it starts, e.g. to
	// attach spectators or a replay recorder.
	OnGame func(*game.Game)
	// OnFinish is called when a game ends.
	OnFinish func(*game.Game)
}

// ToolResponse is the JSON envelope every tool returns.
type ToolResponse struct {
	Events   []string   `json:"events"`
	State    *game.View `json:"state,omitempty"`
	Pending  *Pending   `json:"pending,omitempty"`
	GameOver bool       `json:"game_over"`
	Winner   string     `json:"winner,omitempty"`
	Result   string     `json:"result,omitempty"`
}

// Server runs one game at a time on behalf of an MCP client.
type Server struct {
	cfg    ServerConfig
	logger *zap.Logger
	base   context.Context

	mu      sync.Mutex
	session *Session
	cancel  context.CancelFunc
}

// NewServer creates a server. Games run under base and stop when it is
// cancelled.
func NewServer(base context.Context, cfg ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, logger: logger, base: base}
}

// Register adds the game tools to an MCP server.
func (s *Server) Register(m *server.MCPServer) {
	m.AddTool(startGameTool(), s.handleStartGame)
	m.AddTool(getStateTool(), s.handleGetState)
	m.AddTool(chooseActionTool(), s.handleChooseAction)
	m.AddTool(chooseCardsTool(), s.handleChooseCards)
	m.AddTool(chooseBlockersTool(), s.handleChooseBlockers)
	m.AddTool(chooseTargetTool(), s.handleChooseTarget)
}

// StartGame builds decks, seats the agent and starts the game loop. It
// returns once the agent has its first decision or the game is over.
func (s *Server) StartGame(ctx context.Context, seed int64) (*ToolResponse, error) {
	s.mu.Lock()
	if s.session != nil {
		if _, over := s.session.Outcome(); !over {
			s.mu.Unlock()
			return nil, errors.New("a game is already running")
		}
	}
	if s.cfg.Opponent == nil {
		s.mu.Unlock()
		return nil, errors.New("no opponent configured")
	}

	cfg := s.cfg.Game
	if seed != 0 {
		cfg.Seed = seed
	}
	agentID, opponentID := "agent", "opponent"
	session := NewSession(agentID, s.logger)
	seats := []game.Seat{
		{ID: agentID, Name: "Agent", Provider: session},
		{ID: opponentID, Name: "Opponent", Provider: s.cfg.Opponent()},
	}
	if s.cfg.Seat == 1 {
		seats[0], seats[1] = seats[1], seats[0]
	}
	g, err := game.NewGame(cfg, seats[0], seats[1], s.logger, game.WithObserver(session))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := g.BuildDecks(s.cfg.Pool); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("build decks: %w", err)
	}
	if s.cfg.OnGame != nil {
		s.cfg.OnGame(g)
	}

	runCtx, cancel := context.WithCancel(s.base)
	if s.cancel != nil {
		s.cancel()
	}
	s.session, s.cancel = session, cancel
	s.mu.Unlock()

	go s.run(runCtx, g, session)
	return s.next(ctx, session)
}

func (s *Server) run(ctx context.Context, g *game.Game, session *Session) {
	outcome := Outcome{}
	defer func() {
		if r := recover(); r != nil {
			outcome.Result = fmt.Sprintf("game aborted: %v", r)
			s.logger.Error("game panicked", zap.Any("panic", r))
		}
		session.Finish(outcome, g.View(session.PlayerID()))
		if s.cfg.OnFinish != nil {
			s.cfg.OnFinish(g)
		}
	}()
	winner, err := g.Run(ctx)
	switch {
	case err != nil:
		outcome.Result = fmt.Sprintf("game stopped: %v", err)
	case winner == "":
		outcome.Result = "Game over. Draw."
	default:
		outcome.Winner = winner
		outcome.Result = fmt.Sprintf("Game over. Winner: %s", g.Player(winner).Name)
	}
}

func (s *Server) active() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, errors.New("no game is running; use start_game first")
	}
	return s.session, nil
}

// next waits for the agent's next decision and packages it.
func (s *Server) next(ctx context.Context, session *Session) (*ToolResponse, error) {
	p, err := session.Wait(ctx)
	if err != nil && !errors.Is(err, ErrGameFinished) {
		return nil, err
	}
	resp := &ToolResponse{Events: lines(session.DrainEvents())}
	view := session.View()
	resp.State = &view
	if p != nil {
		resp.Pending = p
		return resp, nil
	}
	outcome, _ := session.Outcome()
	resp.GameOver = true
	resp.Winner = outcome.Winner
	resp.Result = outcome.Result
	return resp, nil
}

// State reports the current state without answering anything.
func (s *Server) State() (*ToolResponse, error) {
	session, err := s.active()
	if err != nil {
		return nil, err
	}
	view := session.View()
	resp := &ToolResponse{Events: lines(session.DrainEvents()), State: &view}
	if p, ok := session.Current(); ok {
		resp.Pending = p
	}
	if outcome, over := session.Outcome(); over {
		resp.GameOver = true
		resp.Winner = outcome.Winner
		resp.Result = outcome.Result
	}
	return resp, nil
}

// Answer submits an answer and waits for the following decision.
func (s *Server) Answer(ctx context.Context, kind DecisionType, a Answer) (*ToolResponse, error) {
	session, err := s.active()
	if err != nil {
		return nil, err
	}
	if err := session.Respond(kind, a); err != nil {
		return nil, err
	}
	return s.next(ctx, session)
}

// Close stops the running game.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

func lines(entries []game.LogEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.String())
	}
	return out
}

// --- tool definitions ---

func startGameTool() mcp.Tool {
	return mcp.NewTool("start_game",
		mcp.WithDescription("Start a new match against the built-in opponent. Returns the initial state and the first pending decision."),
		mcp.WithNumber("seed", mcp.Description("Optional RNG seed for a reproducible game; 0 uses the configured seed")),
	)
}

func getStateTool() mcp.Tool {
	return mcp.NewTool("get_state",
		mcp.WithDescription("Get the current state, new log lines and the pending decision without answering it. Read-only."),
	)
}

func chooseActionTool() mcp.Tool {
	return mcp.NewTool("choose_action",
		mcp.WithDescription("Answer a 'choose_action' decision by picking a main-phase action. Index 0 is always Pass."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending actions list")),
	)
}

func chooseCardsTool() mcp.Tool {
	return mcp.NewTool("choose_cards",
		mcp.WithDescription("Answer a 'choose_attackers' or 'choose_discard' decision by picking candidate cards."),
		mcp.WithString("indices", mcp.Required(), mcp.Description("Space-separated 0-based candidate indices (e.g. '0 2'), or empty for none")),
	)
}

func chooseBlockersTool() mcp.Tool {
	return mcp.NewTool("choose_blockers",
		mcp.WithDescription("Answer a 'choose_blockers' decision by pairing attackers with blockers."),
		mcp.WithString("pairs", mcp.Required(), mcp.Description("Space-separated attacker:blocker index pairs (e.g. '0:1 1:0'), or empty for no blocks")),
	)
}

func chooseTargetTool() mcp.Tool {
	return mcp.NewTool("choose_target",
		mcp.WithDescription("Answer a 'choose_target' decision. Use -1 to choose no target."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based index into the pending targets list, or -1")),
	)
}

// --- tool handlers ---

func result(resp *ToolResponse, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return mcp.NewToolResultErrorf("marshal error: %v", err), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(s.StartGame(ctx, int64(request.GetInt("seed", 0))))
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(s.State())
}

func (s *Server) handleChooseAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return result(s.Answer(ctx, DecisionChooseAction, Answer{Index: request.GetInt("index", -1)}))
}

func (s *Server) handleChooseCards(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := s.active()
	if err != nil {
		return result(nil, err)
	}
	p, ok := session.Current()
	if !ok {
		return result(nil, ErrNoPending)
	}
	if p.Type != DecisionChooseAttackers && p.Type != DecisionChooseDiscard {
		return result(nil, fmt.Errorf("%w: pending is %s; use the matching tool", ErrWrongDecision, p.Type))
	}
	indices, err := ParseIndices(request.GetString("indices", ""))
	if err != nil {
		return result(nil, err)
	}
	return result(s.Answer(ctx, p.Type, Answer{Indices: indices}))
}

func (s *Server) handleChooseBlockers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pairs, err := ParsePairs(request.GetString("pairs", ""))
	if err != nil {
		return result(nil, err)
	}
	return result(s.Answer(ctx, DecisionChooseBlockers, Answer{Pairs: pairs}))
}

func (s *Server) handleChooseTarget(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index := request.GetInt("index", -1)
	return result(s.Answer(ctx, DecisionChooseTarget, Answer{Index: index, Decline: index < 0}))
}

// ParseIndices parses "0 2 3" into indices.
func ParseIndices(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Fields(s) {
		i, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid index %q: must be an integer", f)
		}
		out = append(out, i)
	}
	return out, nil
}

// ParsePairs parses "0:1 1:0" into attacker-to-blocker indices.
func ParsePairs(s string) (map[int]int, error) {
	out := make(map[int]int)
	for _, f := range strings.Fields(s) {
		a, b, ok := strings.Cut(f, ":")
		if !ok {
			return nil, fmt.Errorf("invalid pair %q: want attacker:blocker", f)
		}
		ai, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("invalid attacker index %q", a)
		}
		bi, err := strconv.Atoi(b)
		if err != nil {
			return nil, fmt.Errorf("invalid blocker index %q", b)
		}
		if _, dup := out[ai]; dup {
			return nil, fmt.Errorf("attacker %d paired twice", ai)
		}
		out[ai] = bi
	}
	return out, nil
}
