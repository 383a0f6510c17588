package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/technobros/cardgame-go/internal/game"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

func card(id string, typ game.CardType, cost, attack, defense int) game.CardView {
	return game.CardView{ID: id, Name: id, Type: typ, Cost: cost, AdjustedCost: cost, Attack: attack, Defense: defense}
}

func testView(me, opp game.PlayerView) game.View {
	me.ID, opp.ID = "me", "opp"
	return game.View{Viewer: "me", ActivePlayer: "me", Players: []game.PlayerView{me, opp}}
}

func play(id string) game.Action {
	return game.Action{Kind: game.ActionPlay, CardID: id}
}

func TestChooseMainActionPlaysMostExpensive(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	view := testView(game.PlayerView{
		Hand: []game.CardView{
			card("cheap", game.CardTypeCreature, 1, 1, 1),
			card("big", game.CardTypeCreature, 4, 4, 4),
			card("mid", game.CardTypeSpell, 2, 0, 0),
		},
	}, game.PlayerView{})
	options := []game.Action{game.PassAction, play("cheap"), play("big"), play("mid")}

	got, err := h.ChooseMainAction(context.Background(), view, options)
	require.NoError(t, err)
	assert.Equal(t, "big", got.CardID)
}

func TestChooseMainActionSkipsUselessCards(t *testing.T) {
	h := New(zaptest.NewLogger(t), WithMaxCreatures(1))
	view := testView(game.PlayerView{
		Hand: []game.CardView{
			card("sword", game.CardTypeEquipment, 3, 0, 0),
			card("bear", game.CardTypeCreature, 2, 2, 2),
		},
	}, game.PlayerView{})
	options := []game.Action{game.PassAction, play("sword"), play("bear")}

	got, err := h.ChooseMainAction(context.Background(), view, options)
	require.NoError(t, err)
	assert.Equal(t, "bear", got.CardID, "equipment needs a creature in play")

	view.Players[0].Battlezone = []game.CardView{card("wolf", game.CardTypeCreature, 2, 2, 2)}
	got, err = h.ChooseMainAction(context.Background(), view, options)
	require.NoError(t, err)
	assert.Equal(t, "sword", got.CardID, "creature cap reached")
}

func TestChooseMainActionEquipsStrongestBareCreature(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	wolf := card("wolf", game.CardTypeCreature, 2, 2, 2)
	ogre := card("ogre", game.CardTypeCreature, 4, 5, 3)
	knight := card("knight", game.CardTypeCreature, 4, 6, 3)
	knight.Equipment = "shield"
	shield := card("shield", game.CardTypeEquipment, 1, 0, 0)
	shield.EquippedTo = "knight"
	sword := card("sword", game.CardTypeEquipment, 1, 0, 0)
	view := testView(game.PlayerView{
		Battlezone: []game.CardView{wolf, ogre, knight},
		Environs:   []game.CardView{shield, sword},
	}, game.PlayerView{})
	options := []game.Action{
		game.PassAction,
		{Kind: game.ActionEquip, CardID: "sword", TargetID: "wolf"},
		{Kind: game.ActionEquip, CardID: "sword", TargetID: "ogre"},
		{Kind: game.ActionEquip, CardID: "sword", TargetID: "knight"},
		{Kind: game.ActionEquip, CardID: "shield", TargetID: "ogre"},
		{Kind: game.ActionUnequip, CardID: "shield"},
	}

	got, err := h.ChooseMainAction(context.Background(), view, options)
	require.NoError(t, err)
	assert.Equal(t, game.ActionEquip, got.Kind)
	assert.Equal(t, "sword", got.CardID)
	assert.Equal(t, "ogre", got.TargetID)
}

func TestChooseMainActionPasses(t *testing.T) {
	h := New(nil)
	got, err := h.ChooseMainAction(context.Background(), testView(game.PlayerView{}, game.PlayerView{}), []game.Action{game.PassAction})
	require.NoError(t, err)
	assert.Equal(t, game.ActionPass, got.Kind)
}

func TestChooseAttackersTakesAll(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	eligible := []game.CardView{card("a", game.CardTypeCreature, 1, 1, 1), card("b", game.CardTypeCreature, 1, 2, 2)}
	got, err := h.ChooseAttackers(context.Background(), game.View{}, eligible)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestChooseBlockers(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	attackers := []game.CardView{
		card("giant", game.CardTypeCreature, 5, 5, 5),
		card("rat", game.CardTypeCreature, 1, 1, 1),
		card("cat", game.CardTypeCreature, 1, 2, 1),
	}
	blockers := []game.CardView{
		card("wall", game.CardTypeCreature, 3, 0, 5),
		card("bear", game.CardTypeCreature, 2, 2, 2),
		card("elk", game.CardTypeCreature, 2, 3, 1),
	}

	got, err := h.ChooseBlockers(context.Background(), game.View{}, attackers, blockers)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"giant": "wall",
		"rat":   "elk",
		"cat":   "bear",
	}, got)

	got, err = h.ChooseBlockers(context.Background(), game.View{}, attackers[:1], blockers[1:])
	require.NoError(t, err)
	assert.Empty(t, got, "no blocker survives the giant")
}

func TestChooseBlockersTieKeepsFirst(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	attackers := []game.CardView{card("rat", game.CardTypeCreature, 1, 1, 1)}
	blockers := []game.CardView{card("b1", game.CardTypeCreature, 1, 2, 2), card("b2", game.CardTypeCreature, 1, 2, 2)}
	got, err := h.ChooseBlockers(context.Background(), game.View{}, attackers, blockers)
	require.NoError(t, err)
	assert.Equal(t, "b1", got["rat"])
}

func TestChooseTarget(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	mine := card("mine", game.CardTypeCreature, 1, 3, 3)
	weak := card("weak", game.CardTypeCreature, 1, 1, 1)
	strong := card("strong", game.CardTypeCreature, 1, 4, 1)
	view := testView(
		game.PlayerView{Battlezone: []game.CardView{mine}},
		game.PlayerView{Battlezone: []game.CardView{weak, strong}},
	)
	all := []targeting.Target{
		{ID: "mine", OwnerID: "me"},
		{ID: "weak", OwnerID: "opp"},
		{ID: "strong", OwnerID: "opp"},
		{ID: "me", Kind: targeting.KindPlayer, OwnerID: "me"},
		{ID: "opp", Kind: targeting.KindPlayer, OwnerID: "opp"},
	}

	tests := []struct {
		name       string
		req        targeting.Requirement
		candidates []targeting.Target
		want       string
		ok         bool
	}{
		{"harmful picks strongest opposing card", targeting.Requirement{ChooserID: "me"}, all, "strong", true},
		{"harmful falls back to the opponent", targeting.Requirement{ChooserID: "me"}, []targeting.Target{all[0], all[3], all[4]}, "opp", true},
		{"harmful never hits own side", targeting.Requirement{ChooserID: "me"}, []targeting.Target{all[0], all[3]}, "", false},
		{"beneficial picks own creature", targeting.Requirement{ChooserID: "me", Beneficial: true}, all[:3], "mine", true},
		{"beneficial declines without own creature", targeting.Requirement{ChooserID: "me", Beneficial: true}, all[1:3], "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := h.ChooseTarget(context.Background(), view, tt.req, tt.candidates)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestChooseDiscardTakesLast(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	hand := []game.CardView{card("a", game.CardTypeSpell, 1, 0, 0), card("b", game.CardTypeSpell, 1, 0, 0)}
	got, err := h.ChooseDiscard(context.Background(), game.View{}, hand)
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestCancelledContext(t *testing.T) {
	h := New(zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.ChooseMainAction(ctx, game.View{}, []game.Action{game.PassAction})
	assert.ErrorIs(t, err, context.Canceled)
	_, err = h.ChooseAttackers(ctx, game.View{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	_, _, err = h.ChooseTarget(ctx, game.View{}, targeting.Requirement{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAutomated(t *testing.T) {
	var p game.DecisionProvider = New(nil)
	a, ok := p.(game.Automated)
	require.True(t, ok)
	assert.True(t, a.Automated())
}
