// Package bot seats computer players in lobbies and schedules their actions.
// Bots act through the same serialized action path as humans; the scheduler
// only decides when, each game's handler decides what.
package bot

import (
	"fmt"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/randutil"
)

// Dispatcher is the lobby side of bot dispatch. choose runs under the lobby
// mutex against the live game, so decisions never act on stale state.
type Dispatcher interface {
	DispatchBot(slug, botID string, choose func(g game.Game) (game.Action, bool))
}

// Style describes one selectable play style for client display.
type Style struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Difficulty  string `json:"difficulty"`
}

// Handler decides actions for one game type.
type Handler interface {
	// GameType returns the tag this handler serves.
	GameType() string
	// Styles lists the selectable play styles; the first is the default.
	Styles() []Style
	// Names returns the themed display-name pool.
	Names() []string
	// BaseDelay is the style's thinking time before humanization offsets.
	BaseDelay(style string) time.Duration
	// Choose picks the bot's next action, or reports none is wanted.
	Choose(g game.Game, botID string, rng *rand.Rand) (game.Action, bool)
}

// Delays humanize bot timing: total = base + index*Stagger + [0,Jitter).
type Delays struct {
	Stagger time.Duration
	Jitter  time.Duration
}

// DefaultDelays spreads simultaneous bots enough to look deliberate.
func DefaultDelays() Delays {
	return Delays{Stagger: 400 * time.Millisecond, Jitter: 600 * time.Millisecond}
}

type botInfo struct {
	id    string
	slug  string
	name  string
	style string
	index int
	rng   *rand.Rand
}

// Registry owns every bot identity and the timers that drive them.
type Registry struct {
	logger     *log.Logger
	clock      quartz.Clock
	delays     Delays
	dispatcher Dispatcher

	mu       sync.Mutex
	rng      *rand.Rand
	handlers map[string]Handler
	bots     map[string]*botInfo
	timers   map[string][]*quartz.Timer
	counts   map[string]int
	closed   bool
}

// NewRegistry constructs a bot registry. The dispatcher is wired afterwards.
func NewRegistry(logger *log.Logger, clock quartz.Clock, seed int64, delays Delays) *Registry {
	return &Registry{
		logger:   logger.WithPrefix("bot"),
		clock:    clock,
		delays:   delays,
		rng:      randutil.New(seed),
		handlers: make(map[string]Handler),
		bots:     make(map[string]*botInfo),
		timers:   make(map[string][]*quartz.Timer),
		counts:   make(map[string]int),
	}
}

// SetDispatcher wires the lobby side.
func (r *Registry) SetDispatcher(d Dispatcher) { r.dispatcher = d }

// RegisterHandler binds a game-type handler.
func (r *Registry) RegisterHandler(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.GameType()] = h
}

// CreateBot mints a bot identity for a lobby. Unknown styles fall back to the
// handler's default; unknown game types are an error surfaced to the leader.
func (r *Registry) CreateBot(slug, gameType, style string) (string, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handlers[gameType]
	if !ok {
		return "", "", fmt.Errorf("no bots available for game type %s", gameType)
	}
	styles := h.Styles()
	valid := false
	for _, s := range styles {
		if s.ID == style {
			valid = true
			break
		}
	}
	if !valid {
		style = styles[0].ID
	}

	index := r.counts[slug]
	r.counts[slug]++

	names := h.Names()
	name := names[index%len(names)]
	if index >= len(names) {
		name = fmt.Sprintf("%s %d", name, index/len(names)+1)
	}

	info := &botInfo{
		id:    "bot-" + uuid.NewString(),
		slug:  slug,
		name:  name,
		style: style,
		index: index,
		rng:   randutil.New(r.rng.Int64()),
	}
	r.bots[info.id] = info

	r.logger.Info("Bot created", "slug", slug, "name", name, "style", style)
	return info.id, info.name, nil
}

// Styles returns the style catalog for a game type, or nil when no handler
// serves it. Clients use it to offer a choice before add-bot.
func (r *Registry) Styles(gameType string) []Style {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[gameType]
	if !ok {
		return nil
	}
	return h.Styles()
}

// RemoveBot releases a bot identity.
func (r *Registry) RemoveBot(slug, botID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.bots, botID)
}

// Plan cancels the lobby's scheduled bot actions and reschedules from the
// game's currently pending set. Called after every state change, so a bot
// whose pending action evaporated never fires it.
func (r *Registry) Plan(slug string, g game.Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.stopTimersLocked(slug)

	h, ok := r.handlers[g.Type()]
	if !ok {
		return
	}

	// The stagger index counts position within this batch, not bot seniority.
	batch := 0
	for _, botID := range g.PendingBots() {
		info := r.bots[botID]
		if info == nil || info.slug != slug {
			continue
		}
		delay := h.BaseDelay(info.style) +
			time.Duration(batch)*r.delays.Stagger +
			time.Duration(r.rng.Int64N(int64(r.delays.Jitter)+1))
		batch++

		id, bot := botID, info
		timer := r.clock.AfterFunc(delay, func() {
			r.dispatch(slug, id, h, bot)
		})
		r.timers[slug] = append(r.timers[slug], timer)
	}
}

func (r *Registry) dispatch(slug, botID string, h Handler, info *botInfo) {
	d := r.dispatcher
	if d == nil {
		return
	}
	d.DispatchBot(slug, botID, func(g game.Game) (game.Action, bool) {
		return h.Choose(g, botID, info.rng)
	})
}

// CleanupGame cancels everything scheduled for a lobby and forgets its bots.
func (r *Registry) CleanupGame(slug string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopTimersLocked(slug)
	for id, info := range r.bots {
		if info.slug == slug {
			delete(r.bots, id)
		}
	}
	delete(r.counts, slug)
}

// Close stops every timer; subsequent Plan calls are no-ops.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for slug := range r.timers {
		r.stopTimersLocked(slug)
	}
}

func (r *Registry) stopTimersLocked(slug string) {
	for _, t := range r.timers[slug] {
		t.Stop()
	}
	delete(r.timers, slug)
}
