package bot

import (
	"context"
	"io"
	rand "math/rand/v2"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

// stubGame exposes a controllable pending set.
type stubGame struct {
	pending []string
}

func (s *stubGame) Type() string                                { return "stub" }
func (s *stubGame) Start() error                                { return nil }
func (s *stubGame) ApplyAction(string, game.Action) game.Result { return game.OK() }
func (s *stubGame) ProjectFor(string) any                       { return nil }
func (s *stubGame) PendingBots() []string                       { return s.pending }
func (s *stubGame) OnPlayerReconnect(oldID, newID string)       {}

// stubHandler always acts with a fixed delay.
type stubHandler struct {
	delay time.Duration
}

func (stubHandler) GameType() string { return "stub" }
func (stubHandler) Styles() []Style {
	return []Style{
		{ID: "steady", Name: "Steady", Description: "Measured play", Difficulty: "easy"},
		{ID: "swift", Name: "Swift", Description: "Acts fast", Difficulty: "medium"},
	}
}
func (stubHandler) Names() []string                  { return []string{"Alpha", "Beta"} }
func (h stubHandler) BaseDelay(string) time.Duration { return h.delay }
func (stubHandler) Choose(g game.Game, botID string, _ *rand.Rand) (game.Action, bool) {
	return game.NewAction("act", nil), true
}

// recordingDispatcher applies choices against the stub game immediately.
type recordingDispatcher struct {
	g     *stubGame
	calls []string
}

func (d *recordingDispatcher) DispatchBot(slug, botID string, choose func(g game.Game) (game.Action, bool)) {
	if _, ok := choose(d.g); ok {
		d.calls = append(d.calls, botID)
	}
}

func newBotRegistry(t *testing.T, delay time.Duration) (*Registry, *quartz.Mock, *recordingDispatcher) {
	t.Helper()
	clock := quartz.NewMock(t)
	r := NewRegistry(log.New(io.Discard), clock, 5, Delays{Stagger: time.Second, Jitter: 0})
	r.RegisterHandler(stubHandler{delay: delay})
	d := &recordingDispatcher{g: &stubGame{}}
	r.SetDispatcher(d)
	return r, clock, d
}

func TestCreateBotValidation(t *testing.T) {
	r, _, _ := newBotRegistry(t, time.Second)

	_, _, err := r.CreateBot("coop", "unknown-game", "steady")
	assert.Error(t, err)

	id, name, err := r.CreateBot("coop", "stub", "bogus-style")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, "Alpha", name)
	assert.Equal(t, "steady", r.bots[id].style, "unknown style falls back to the default")

	_, name2, err := r.CreateBot("coop", "stub", "swift")
	require.NoError(t, err)
	assert.Equal(t, "Beta", name2)

	_, name3, err := r.CreateBot("coop", "stub", "swift")
	require.NoError(t, err)
	assert.Equal(t, "Alpha 2", name3, "name pool wraps with a numeric suffix")
}

func TestStylesCatalog(t *testing.T) {
	r, _, _ := newBotRegistry(t, time.Second)

	styles := r.Styles("stub")
	require.Len(t, styles, 2)
	assert.Equal(t, "steady", styles[0].ID)
	assert.NotEmpty(t, styles[0].Name)
	assert.NotEmpty(t, styles[0].Description)
	assert.NotEmpty(t, styles[0].Difficulty)

	assert.Nil(t, r.Styles("unknown-game"))
}

func TestPlanSchedulesWithStagger(t *testing.T) {
	r, clock, d := newBotRegistry(t, time.Second)

	id1, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)
	id2, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)

	d.g.pending = []string{id1, id2}
	r.Plan("coop", d.g)

	ctx := context.Background()
	clock.Advance(time.Second).MustWait(ctx) // base delay, index 0
	assert.Equal(t, []string{id1}, d.calls)

	clock.Advance(time.Second).MustWait(ctx) // + one stagger step, index 1
	assert.Equal(t, []string{id1, id2}, d.calls)
}

func TestStaggerCountsBatchPositionNotSeniority(t *testing.T) {
	r, clock, d := newBotRegistry(t, time.Second)

	_, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)
	id2, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)

	// Only the second-created bot is pending: it leads the batch, so the
	// base delay applies without a stagger step.
	d.g.pending = []string{id2}
	r.Plan("coop", d.g)

	clock.Advance(time.Second).MustWait(context.Background())
	assert.Equal(t, []string{id2}, d.calls)
}

func TestReplanCancelsStaleTimers(t *testing.T) {
	r, clock, d := newBotRegistry(t, time.Second)

	id1, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)

	d.g.pending = []string{id1}
	r.Plan("coop", d.g)

	// State moved on before the bot fired: nothing pending anymore.
	d.g.pending = nil
	r.Plan("coop", d.g)

	clock.Advance(5 * time.Second).MustWait(context.Background())
	assert.Empty(t, d.calls, "cancelled timers never dispatch")
}

func TestCleanupGameStopsTimersAndForgetsBots(t *testing.T) {
	r, clock, d := newBotRegistry(t, time.Second)

	id1, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)
	d.g.pending = []string{id1}
	r.Plan("coop", d.g)

	r.CleanupGame("coop")

	clock.Advance(5 * time.Second).MustWait(context.Background())
	assert.Empty(t, d.calls)
	assert.Empty(t, r.bots)

	_, name, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", name, "per-lobby numbering resets after cleanup")
}

func TestCloseMakesPlanNoOp(t *testing.T) {
	r, clock, d := newBotRegistry(t, time.Second)
	id1, _, err := r.CreateBot("coop", "stub", "steady")
	require.NoError(t, err)

	r.Close()
	d.g.pending = []string{id1}
	r.Plan("coop", d.g)

	clock.Advance(5 * time.Second).MustWait(context.Background())
	assert.Empty(t, d.calls)
}
