package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Options is the lobby's opaque game-options bag. Recognised fields depend on
// the game type; constructors ignore keys they do not know.
type Options map[string]any

// String returns the named option as a string, or fallback when absent or of
// the wrong shape.
func (o Options) String(key, fallback string) string {
	if v, ok := o[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// StringSlice returns the named option as a list of strings. JSON decoding
// yields []any, so both shapes are accepted.
func (o Options) StringSlice(key string) []string {
	switch v := o[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Deps carries the collaborators a game instance may use. Defer schedules fn
// to run after d inside the owning lobby's serialized executor, followed by a
// broadcast; the returned stop cancels the timer and makes the callback a
// no-op. Games must never mutate state outside Defer or ApplyAction.
type Deps struct {
	Logger *log.Logger
	Clock  quartz.Clock
	Seed   int64
	Defer  func(d time.Duration, fn func()) (stop func())
}

// Constructor builds a game instance for the given seats and options.
type Constructor func(seats []Seat, opts Options, deps Deps) (Game, error)

// Registry maps game-type tags to constructors. The lobby holds one
// process-wide instance.
type Registry struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry constructs an empty game registry.
func NewRegistry() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register binds a constructor to a game-type tag, replacing any existing one.
func (r *Registry) Register(gameType string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[gameType] = ctor
}

// New constructs a game of the given type. Unregistered types return an error
// so the lobby can report "game type not available" to the leader.
func (r *Registry) New(gameType string, seats []Seat, opts Options, deps Deps) (Game, error) {
	r.mu.RLock()
	ctor, ok := r.constructors[gameType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("game type not available: %s", gameType)
	}
	return ctor(seats, opts, deps)
}

// Types returns the registered game-type tags, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.constructors))
	for t := range r.constructors {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
