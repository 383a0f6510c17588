package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSessionMainAction(t *testing.T) {
	s := NewSession("me", zaptest.NewLogger(t))
	options := []game.Action{game.PassAction, {Kind: game.ActionPlay, CardID: "c1", Label: "Play Imp (cost 1)"}}

	got := make(chan game.Action, 1)
	go func() {
		a, err := s.ChooseMainAction(waitCtx(t), game.View{Turn: 4}, options)
		assert.NoError(t, err)
		got <- a
	}()

	p, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, DecisionChooseAction, p.Type)
	require.Len(t, p.Actions, 2)
	assert.Equal(t, "Play Imp (cost 1)", p.Actions[1].Desc)
	assert.Equal(t, 4, s.View().Turn)

	again, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Same(t, p, again, "an unanswered decision is returned again")

	assert.ErrorIs(t, s.Respond(DecisionChooseTarget, Answer{}), ErrWrongDecision)
	assert.ErrorIs(t, s.Respond(DecisionChooseAction, Answer{Index: 5}), ErrWrongDecision)
	require.NoError(t, s.Respond(DecisionChooseAction, Answer{Index: 1}))
	assert.Equal(t, "c1", (<-got).CardID)

	assert.ErrorIs(t, s.Respond(DecisionChooseAction, Answer{Index: 0}), ErrNoPending)
}

func TestSessionCardsAndBlocks(t *testing.T) {
	s := NewSession("me", zaptest.NewLogger(t))
	eligible := []game.CardView{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	attackers := make(chan []string, 1)
	go func() {
		ids, err := s.ChooseAttackers(waitCtx(t), game.View{}, eligible)
		assert.NoError(t, err)
		attackers <- ids
	}()
	p, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, DecisionChooseAttackers, p.Type)
	assert.ErrorIs(t, s.Respond(DecisionChooseAttackers, Answer{Indices: []int{0, 0}}), ErrWrongDecision)
	require.NoError(t, s.Respond(DecisionChooseAttackers, Answer{Indices: []int{2, 0}}))
	assert.Equal(t, []string{"c", "a"}, <-attackers)

	blocks := make(chan map[string]string, 1)
	go func() {
		m, err := s.ChooseBlockers(waitCtx(t), game.View{}, eligible[:2], []game.CardView{{ID: "x"}, {ID: "y"}})
		assert.NoError(t, err)
		blocks <- m
	}()
	p, err = s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, DecisionChooseBlockers, p.Type)
	assert.ErrorIs(t, s.Respond(DecisionChooseBlockers, Answer{Pairs: map[int]int{0: 1, 1: 1}}), ErrWrongDecision)
	require.NoError(t, s.Respond(DecisionChooseBlockers, Answer{Pairs: map[int]int{1: 0}}))
	assert.Equal(t, map[string]string{"b": "x"}, <-blocks)

	discard := make(chan string, 1)
	go func() {
		id, err := s.ChooseDiscard(waitCtx(t), game.View{}, eligible)
		assert.NoError(t, err)
		discard <- id
	}()
	_, err = s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.ErrorIs(t, s.Respond(DecisionChooseDiscard, Answer{}), ErrWrongDecision, "a discard is mandatory")
	require.NoError(t, s.Respond(DecisionChooseDiscard, Answer{Indices: []int{1}}))
	assert.Equal(t, "b", <-discard)
}

func TestSessionTarget(t *testing.T) {
	s := NewSession("me", zaptest.NewLogger(t))
	candidates := []targeting.Target{
		{ID: "c1", Name: "Imp", OwnerID: "opp"},
		{ID: "opp", Name: "Opponent", Kind: targeting.KindPlayer, OwnerID: "opp"},
	}
	type choice struct {
		target targeting.Target
		ok     bool
	}
	got := make(chan choice, 2)
	ask := func() {
		tgt, ok, err := s.ChooseTarget(waitCtx(t), game.View{}, targeting.Requirement{Description: "Select a target to deal 2 damage:"}, candidates)
		assert.NoError(t, err)
		got <- choice{tgt, ok}
	}

	go ask()
	p, err := s.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, "Select a target to deal 2 damage:", p.Prompt)
	assert.True(t, p.Targets[1].Player)
	require.NoError(t, s.Respond(DecisionChooseTarget, Answer{Index: 1}))
	c := <-got
	assert.True(t, c.ok)
	assert.Equal(t, "opp", c.target.ID)

	go ask()
	_, err = s.Wait(waitCtx(t))
	require.NoError(t, err)
	require.NoError(t, s.Respond(DecisionChooseTarget, Answer{Decline: true}))
	c = <-got
	assert.False(t, c.ok)
}

func TestSessionDecisionExpires(t *testing.T) {
	s := NewSession("me", zaptest.NewLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.ChooseMainAction(ctx, game.View{}, []game.Action{game.PassAction})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := s.ChooseAttackers(ctx, game.View{}, []game.CardView{{ID: "a"}})
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}()
	_, err = s.Wait(waitCtx(t))
	require.NoError(t, err)
	<-done
	_, ok := s.Current()
	assert.False(t, ok, "an expired decision is withdrawn")
	assert.ErrorIs(t, s.Respond(DecisionChooseAttackers, Answer{}), ErrNoPending)
}

func TestSessionFinish(t *testing.T) {
	s := NewSession("me", zaptest.NewLogger(t))
	s.OnLogEntry(game.LogEntry{Turn: 1, Player: "Me", Message: "played Imp."})
	s.Finish(Outcome{Winner: "me", Result: "Game over. Winner: Me"}, game.View{Over: true})
	s.Finish(Outcome{Result: "ignored"}, game.View{})

	_, err := s.Wait(waitCtx(t))
	assert.ErrorIs(t, err, ErrGameFinished)
	out, ok := s.Outcome()
	require.True(t, ok)
	assert.Equal(t, "me", out.Winner)
	assert.True(t, s.View().Over)

	events := s.DrainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, "[Turn 1] Me: played Imp.", events[0].String())
	assert.Empty(t, s.DrainEvents())
}

func TestParse(t *testing.T) {
	idx, err := ParseIndices(" 0 2  3 ")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, idx)
	idx, err = ParseIndices("")
	require.NoError(t, err)
	assert.Empty(t, idx)
	_, err = ParseIndices("1 x")
	assert.Error(t, err)

	pairs, err := ParsePairs("0:1 2:0")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 1, 2: 0}, pairs)
	_, err = ParsePairs("0-1")
	assert.Error(t, err)
	_, err = ParsePairs("0:1 0:2")
	assert.Error(t, err)
}
