package war

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

func newWar(t *testing.T, variant string, names ...string) *Engine {
	t.Helper()
	seats := make([]game.Seat, len(names))
	for i, name := range names {
		seats[i] = game.Seat{ID: "conn-" + name, Name: name}
	}
	g, err := New(seats, variant, game.Deps{Logger: log.New(io.Discard), Seed: 9})
	require.NoError(t, err)
	require.NoError(t, g.Start())
	return g
}

func flip(t *testing.T, g *Engine, i int) game.Result {
	t.Helper()
	return g.ApplyAction(g.players[i].ID, game.NewAction(ActionFlip, nil))
}

func TestStartDealsEvenly(t *testing.T) {
	g := newWar(t, "", "alice", "bob", "carol")
	for _, p := range g.players {
		assert.Len(t, p.deck, 17, "52 cards over 3 players, remainder sits out")
	}
}

func TestHighestFlipTakesThePot(t *testing.T) {
	g := newWar(t, "", "alice", "bob")
	g.players[0].deck = []int{9, 2}
	g.players[1].deck = []int{4, 2}

	require.True(t, flip(t, g, 0).Success)
	require.True(t, flip(t, g, 1).Success)

	assert.Equal(t, 2, g.players[0].won)
	assert.Equal(t, 0, g.players[1].won)
	assert.Equal(t, 0, g.carryover)
	assert.Equal(t, 2, g.round)
	assert.Equal(t, 9, g.lastFlips[g.players[0].ID])
}

func TestTieCarriesSpoilsForward(t *testing.T) {
	g := newWar(t, "", "alice", "bob")
	g.players[0].deck = []int{7, 10, 3}
	g.players[1].deck = []int{7, 5, 3}

	require.True(t, flip(t, g, 0).Success)
	require.True(t, flip(t, g, 1).Success)
	assert.Equal(t, 2, g.carryover, "tied flips ride on the next round")
	assert.Equal(t, 0, g.players[0].won)

	require.True(t, flip(t, g, 0).Success)
	require.True(t, flip(t, g, 1).Success)
	assert.Equal(t, 4, g.players[0].won, "carryover included in the pot")
	assert.Equal(t, 0, g.carryover)
}

func TestAceLowByDefaultHighInVariant(t *testing.T) {
	g := newWar(t, "", "alice", "bob")
	g.players[0].deck = []int{1, 3}
	g.players[1].deck = []int{13, 3}
	require.True(t, flip(t, g, 0).Success)
	require.True(t, flip(t, g, 1).Success)
	assert.Equal(t, 2, g.players[1].won, "king beats a low ace")

	g = newWar(t, VariantAcesHigh, "alice", "bob")
	g.players[0].deck = []int{1, 3}
	g.players[1].deck = []int{13, 3}
	require.True(t, flip(t, g, 0).Success)
	require.True(t, flip(t, g, 1).Success)
	assert.Equal(t, 2, g.players[0].won, "ace beats the king under aces-high")
}

func TestGameEndsWhenADeckEmpties(t *testing.T) {
	g := newWar(t, "", "alice", "bob")
	g.players[0].deck = []int{8}
	g.players[1].deck = []int{3, 5}

	require.True(t, flip(t, g, 0).Success)
	require.True(t, flip(t, g, 1).Success)

	assert.True(t, g.over)
	assert.Equal(t, g.players[0].ID, g.winner)

	res := flip(t, g, 1)
	assert.False(t, res.Success)
	assert.Equal(t, "the war is over", res.Message)
}

func TestDoubleFlipRejected(t *testing.T) {
	g := newWar(t, "", "alice", "bob")
	require.True(t, flip(t, g, 0).Success)

	res := flip(t, g, 0)
	assert.False(t, res.Success)
	assert.Equal(t, "you already flipped this round", res.Message)
}

func TestViewHidesDecksAndShowsOwnFlip(t *testing.T) {
	g := newWar(t, "", "alice", "bob")
	require.True(t, flip(t, g, 0).Success)

	view := g.ProjectFor(g.players[0].ID).(View)
	require.NotNil(t, view.You)
	require.NotNil(t, view.You.Flipped)
	assert.True(t, view.Players[0].Flipped)
	assert.Empty(t, view.LastFlips, "flips stay hidden until the round resolves")

	other := g.ProjectFor(g.players[1].ID).(View)
	require.NotNil(t, other.You)
	assert.Nil(t, other.You.Flipped)
}

func TestPendingBots(t *testing.T) {
	seats := []game.Seat{
		{ID: "c1", Name: "alice"},
		{ID: "b1", Name: "Henrietta", IsBot: true, BotStyle: "broody"},
	}
	g, err := New(seats, "", game.Deps{Logger: log.New(io.Discard), Seed: 9})
	require.NoError(t, err)
	require.NoError(t, g.Start())

	assert.Equal(t, []string{"b1"}, g.PendingBots())
	require.True(t, g.ApplyAction("b1", game.NewAction(ActionFlip, nil)).Success)
	assert.Empty(t, g.PendingBots())
}
