package henhur

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

// raceCard builds a dice-less card so resolution order is fully determined.
func raceCard(id string, priority, race int) Card {
	return Card{
		ID: id, Title: id, InstanceID: id, Deck: DeckBase,
		Priority:   Priority{Base: priority},
		RaceNumber: race,
	}
}

func bidCard(id string, priority, trick int) Card {
	c := raceCard(id, priority, 0)
	c.TrickNumber = trick
	return c
}

func giveHand(g *Engine, i int, cards ...Card) {
	g.players[i].Deck.Hand = cards
}

func selectCard(t *testing.T, g *Engine, i int, instanceID string, actionType string) game.Result {
	t.Helper()
	return g.ApplyAction(g.players[i].ID, game.NewAction(actionType, SelectCardPayload{
		CardInstanceID: instanceID,
	}))
}

// startedEngine returns an engine past Start with deterministic decks. With
// no Defer wired, the last selection resolves the turn synchronously.
func startedEngine(t *testing.T, names ...string) *Engine {
	t.Helper()
	g := newTestEngine(t, names...)
	require.NoError(t, g.Start())
	return g
}

// runSimpleRaceTurn plays one race turn with neutral cards so tests can reach
// later turns.
func runSimpleRaceTurn(t *testing.T, g *Engine) {
	t.Helper()
	require.Equal(t, PhaseRaceSelection, g.phase)
	for i := range g.players {
		id := "neutral-" + g.players[i].ID
		giveHand(g, i, raceCard(id, 5, 1))
		require.True(t, selectCard(t, g, i, id, ActionSelectCard).Success)
	}
}

func TestRacePriorityOrderBreaksTiesByLowerIndex(t *testing.T) {
	g := startedEngine(t, "alice", "bob", "carol")

	giveHand(g, 0, raceCard("a", 5, 2))
	giveHand(g, 1, raceCard("b", 8, 2))
	giveHand(g, 2, raceCard("c", 5, 2))

	require.True(t, selectCard(t, g, 0, "a", ActionSelectCard).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSelectCard).Success)
	require.True(t, selectCard(t, g, 2, "c", ActionSelectCard).Success)

	require.Len(t, g.history, 1)
	assert.Equal(t, []string{
		g.players[1].ID, // priority 8
		g.players[0].ID, // tied at 5, lower seat first
		g.players[2].ID,
	}, g.history[0].Order)
}

func TestRaceDistanceIncludesTokenBonus(t *testing.T) {
	g := startedEngine(t, "alice", "bob")

	giveHand(g, 0, raceCard("a", 5, 3))
	giveHand(g, 1, raceCard("b", 4, 1))

	res := g.ApplyAction(g.players[0].ID, game.NewAction(ActionSelectCard, SelectCardPayload{
		CardInstanceID: "a",
		TokensUsed:     []string{"R+"}, // starting race token
	}))
	require.True(t, res.Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSelectCard).Success)

	assert.Equal(t, 4, g.players[0].Space, "race number 3 plus token bonus 1")
	assert.Equal(t, 0, g.players[0].Tokens["R+"], "token consumed at resolution")
	assert.Equal(t, 1, g.players[1].Space)
}

func TestWinOnLapOverflow(t *testing.T) {
	g := startedEngine(t, "alice", "bob")
	g.players[0].Lap = 3
	g.players[0].Space = 10

	giveHand(g, 0, raceCard("a", 5, 4))
	giveHand(g, 1, raceCard("b", 4, 1))

	require.True(t, selectCard(t, g, 0, "a", ActionSelectCard).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSelectCard).Success)

	assert.Equal(t, PhaseGameOver, g.phase)
	assert.Equal(t, g.players[0].ID, g.winner)
	assert.Equal(t, 4, g.players[0].Lap)

	res := selectCard(t, g, 1, "b", ActionSelectCard)
	assert.False(t, res.Success)
	assert.Equal(t, "the race is over", res.Message)
}

func TestTurnAlternatesRaceAndAuction(t *testing.T) {
	g := startedEngine(t, "alice", "bob")
	assert.Equal(t, TurnRace, g.turnType)
	assert.Equal(t, 1, g.turn)

	runSimpleRaceTurn(t, g)

	assert.Equal(t, TurnAuction, g.turnType)
	assert.Equal(t, PhaseAuctionSelection, g.phase)
	assert.Equal(t, 2, g.turn)
	for _, p := range g.players {
		assert.False(t, p.Ready)
		assert.Nil(t, p.Selected)
	}
}

func TestAuctionOrderByValueThenPriority(t *testing.T) {
	g := startedEngine(t, "alice", "bob", "carol")
	runSimpleRaceTurn(t, g)

	giveHand(g, 0, bidCard("a", 3, 6))
	giveHand(g, 1, bidCard("b", 7, 6)) // same value, higher priority
	giveHand(g, 2, bidCard("c", 9, 8))

	require.True(t, selectCard(t, g, 0, "a", ActionSubmitBid).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSubmitBid).Success)
	require.True(t, selectCard(t, g, 2, "c", ActionSubmitBid).Success)

	assert.Equal(t, PhaseAuctionDrafting, g.phase)
	require.Equal(t, []string{
		g.players[2].ID, // value 8
		g.players[1].ID, // value 6, priority 7
		g.players[0].ID, // value 6, priority 3
	}, g.auctionOrder)
	assert.Equal(t, g.players[2].ID, g.currentDrafter())
}

func TestAuctionBurnRequiresBurnEffect(t *testing.T) {
	g := startedEngine(t, "alice", "bob")
	runSimpleRaceTurn(t, g)

	giveHand(g, 0, bidCard("plain", 5, 4))

	res := g.ApplyAction(g.players[0].ID, game.NewAction(ActionSubmitBid, SelectCardPayload{
		CardInstanceID: "plain",
		WillBurn:       true,
	}))

	assert.False(t, res.Success)
	assert.Equal(t, "this card cannot be burned in auctions", res.Message)
	assert.False(t, g.players[0].Ready)
}

func TestDraftingTakesPicksInOrderAndDropsLeftovers(t *testing.T) {
	g := startedEngine(t, "alice", "bob")
	runSimpleRaceTurn(t, g)
	pool := append([]Card(nil), g.auctionPool...)
	require.Len(t, pool, 3, "player count plus one")

	giveHand(g, 0, bidCard("a", 5, 7))
	giveHand(g, 1, bidCard("b", 5, 2))
	require.True(t, selectCard(t, g, 0, "a", ActionSubmitBid).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSubmitBid).Success)

	// Out-of-turn pick is rejected.
	res := g.ApplyAction(g.players[1].ID, game.NewAction(ActionDraftCard, DraftCardPayload{
		CardInstanceID: pool[0].InstanceID,
	}))
	assert.False(t, res.Success)

	require.True(t, g.ApplyAction(g.players[0].ID, game.NewAction(ActionDraftCard, DraftCardPayload{
		CardInstanceID: pool[0].InstanceID,
	})).Success)
	require.True(t, g.ApplyAction(g.players[1].ID, game.NewAction(ActionDraftCard, DraftCardPayload{
		CardInstanceID: pool[1].InstanceID,
	})).Success)

	assert.Equal(t, pool[0].InstanceID, g.players[0].Deck.DrawPile[0].InstanceID,
		"drafted card lands on top of the draw pile")

	// Third pool card left the game entirely.
	assert.Equal(t, 3, g.turn)
	assert.Equal(t, TurnRace, g.turnType)
	for _, p := range g.players {
		_, found := p.Deck.FindInHand(pool[2].InstanceID)
		assert.False(t, found)
	}
	for _, c := range g.sharedDeck {
		assert.NotEqual(t, pool[2].InstanceID, c.InstanceID)
	}
	assert.NotEmpty(t, g.auctionPool, "fresh pool revealed for the next auction")
}

func TestSelectionValidation(t *testing.T) {
	g := startedEngine(t, "alice", "bob")
	giveHand(g, 0, raceCard("a", 5, 1))

	res := selectCard(t, g, 0, "missing", ActionSelectCard)
	assert.False(t, res.Success)
	assert.Equal(t, "card is not in your hand", res.Message)

	res = selectCard(t, g, 0, "a", ActionSubmitBid)
	assert.False(t, res.Success, "bids are not accepted during race turns")

	res = g.ApplyAction(g.players[0].ID, game.NewAction(ActionSelectCard, SelectCardPayload{
		CardInstanceID: "a",
		TokensUsed:     []string{"P+", "P+"},
	}))
	assert.False(t, res.Success)
	assert.Equal(t, "insufficient tokens", res.Message)

	require.True(t, selectCard(t, g, 0, "a", ActionSelectCard).Success)
	res = selectCard(t, g, 0, "a", ActionSelectCard)
	assert.False(t, res.Success)
	assert.Equal(t, "selection already made this turn", res.Message)
}

func TestBurnOccupiesSlotAndRunsBurnEffect(t *testing.T) {
	g := startedEngine(t, "alice", "bob")

	card := raceCard("burner", 5, 1)
	card.BurnEffects = []Effect{{Type: EffectMovePlayer, Distance: 2}}
	giveHand(g, 0, card)
	giveHand(g, 1, raceCard("b", 4, 1))

	require.True(t, g.ApplyAction(g.players[0].ID, game.NewAction(ActionSelectCard, SelectCardPayload{
		CardInstanceID: "burner",
		WillBurn:       true,
	})).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSelectCard).Success)

	p := g.players[0]
	assert.Equal(t, 1, p.occupiedBurnSlots())
	assert.Equal(t, 1, p.Stats.CardsBurned)
	assert.Equal(t, 3, p.Space, "race number 1 plus burn effect move 2")
	_, inHand := p.Deck.FindInHand("burner")
	assert.False(t, inHand)
	assert.Empty(t, p.Deck.DiscardPile, "burned cards never reach the discard pile")
}

func TestChooseOpponentPausesAndResumesResolution(t *testing.T) {
	g := startedEngine(t, "alice", "bob", "carol")
	for _, p := range g.players {
		p.Space = 5
	}

	card := raceCard("shover", 9, 1)
	card.Effects = []Effect{{Type: EffectMoveOpponent, Distance: -2, TargetSelection: TargetChoose}}
	giveHand(g, 0, card)
	giveHand(g, 1, raceCard("b", 4, 1))
	giveHand(g, 2, raceCard("c", 3, 1))

	require.True(t, selectCard(t, g, 0, "shover", ActionSelectCard).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSelectCard).Success)
	require.True(t, selectCard(t, g, 2, "c", ActionSelectCard).Success)

	require.NotNil(t, g.pending)
	assert.Equal(t, PhaseRaceResolution, g.phase)

	view := g.ProjectFor(g.players[0].ID).(View)
	require.NotNil(t, view.You.PendingInput)
	assert.Equal(t, InputChooseOpponent, view.You.PendingInput.Kind)

	// Only the requester may answer, and not with themselves.
	res := g.ApplyAction(g.players[1].ID, game.NewAction(ActionChooseOpponent, ChooseOpponentPayload{
		TargetPlayerID: g.players[2].ID,
	}))
	assert.False(t, res.Success)
	res = g.ApplyAction(g.players[0].ID, game.NewAction(ActionChooseOpponent, ChooseOpponentPayload{
		TargetPlayerID: g.players[0].ID,
	}))
	assert.False(t, res.Success)

	before := g.players[2].Space
	require.True(t, g.ApplyAction(g.players[0].ID, game.NewAction(ActionChooseOpponent, ChooseOpponentPayload{
		TargetPlayerID: g.players[2].ID,
	})).Success)

	assert.Equal(t, before-2, g.players[2].Space)
	assert.Nil(t, g.pending)
	assert.Equal(t, PhaseAuctionSelection, g.phase, "turn finishes once the input arrives")
}

func TestCardConservationAcrossRaceTurn(t *testing.T) {
	g := startedEngine(t, "alice", "bob")

	before := make([]int, len(g.players))
	for i, p := range g.players {
		before[i] = p.Deck.Size()
	}

	for i := range g.players {
		card := p0Card(g, i)
		require.True(t, selectCard(t, g, i, card.InstanceID, ActionSelectCard).Success)
	}

	for i, p := range g.players {
		assert.Equal(t, before[i], p.Deck.Size()+p.occupiedBurnSlots(),
			"cards only move between piles and burn slots")
	}
}

// p0Card returns a playable hand card for player i.
func p0Card(g *Engine, i int) Card {
	return g.players[i].Deck.Hand[0]
}

func TestReconnectRebindsIdentity(t *testing.T) {
	g := startedEngine(t, "alice", "bob")
	oldID := g.players[0].ID

	g.OnPlayerReconnect(oldID, "conn-new")

	assert.Nil(t, g.playerByID(oldID))
	require.NotNil(t, g.playerByID("conn-new"))
	assert.Equal(t, "alice", g.playerByID("conn-new").Name)

	// Repeating the same rebind is harmless.
	g.OnPlayerReconnect(oldID, "conn-new")
	assert.NotNil(t, g.playerByID("conn-new"))
}

func TestDisconnectedHumansDoNotGateReveal(t *testing.T) {
	g := startedEngine(t, "alice", "bob", "carol")

	giveHand(g, 0, raceCard("a", 5, 1))
	giveHand(g, 1, raceCard("b", 4, 1))
	require.True(t, selectCard(t, g, 0, "a", ActionSelectCard).Success)
	require.True(t, selectCard(t, g, 1, "b", ActionSelectCard).Success)
	require.Equal(t, PhaseRaceSelection, g.phase, "still waiting on carol")

	g.SetPlayerConnected(g.players[2].ID, false)

	assert.Equal(t, PhaseAuctionSelection, g.phase, "departure releases the turn")
}

func TestRevealCallbackIsStaleAfterPhaseMoves(t *testing.T) {
	g := startedEngine(t, "alice", "bob")

	var fire func()
	g.deferFn = func(d time.Duration, fn func()) func() {
		fire = fn
		return func() {}
	}

	runSimpleRaceTurn(t, g)
	require.Equal(t, PhaseRaceReveal, g.phase, "resolution waits for the reveal delay")
	require.NotNil(t, fire)

	fire()
	assert.Equal(t, PhaseAuctionSelection, g.phase)

	// A duplicate firing after the phase moved on changes nothing.
	turn := g.turn
	fire()
	assert.Equal(t, PhaseAuctionSelection, g.phase)
	assert.Equal(t, turn, g.turn)
}

func TestRegistryConstruction(t *testing.T) {
	reg := game.NewRegistry()
	Register(reg, DefaultConfig())

	seats := []game.Seat{{ID: "c1", Name: "alice"}, {ID: "c2", Name: "bob"}}
	g, err := reg.New(GameType, seats, game.Options{
		"selectedCards": []any{"lap1-tailwind", "lap1-shove"},
	}, game.Deps{Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, GameType, g.Type())

	_, err = reg.New(GameType, seats[:1], nil, game.Deps{Seed: 1})
	assert.Error(t, err, "two players minimum")
}
