// Package game defines the contract every game hosted by the lobby layer
// implements, plus the constructor registry the lobby uses to build game
// instances by type tag. Implementations share no code, only this contract.
package game

import "encoding/json"

// Action is a single player input delivered to a game. Payload is
// game-specific and decoded by the receiving implementation.
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewAction marshals payload into an Action of the given type. A payload that
// cannot be marshalled produces an action with an empty payload; games treat
// that as an invalid action and report it through their normal Result path.
func NewAction(actionType string, payload any) Action {
	data, err := json.Marshal(payload)
	if err != nil {
		return Action{Type: actionType}
	}
	return Action{Type: actionType, Payload: data}
}

// Result is the total return shape of every game operation. Invalid actions
// are reported, not fatal: Success is false, Message is human-readable, and
// game state is unchanged. Errors never cross the action boundary as panics
// or error values.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK returns a successful result.
func OK() Result {
	return Result{Success: true}
}

// Fail returns a failed result with the given user-facing message.
func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

// Seat describes one participant handed to a game constructor. ID is the
// participant's current connection identity (or bot id); Name is the stable
// display name used as the reconnection key.
type Seat struct {
	ID       string
	Name     string
	IsBot    bool
	BotStyle string
}

// Game is the capability set the lobby layer requires of every game.
type Game interface {
	// Type returns the game-type tag this instance was constructed for.
	Type() string

	// Start performs idempotent initialization after construction.
	Start() error

	// ApplyAction applies a player action. It is total over (phase, action):
	// illegal combinations return a failed Result and leave state unchanged.
	ApplyAction(playerID string, action Action) Result

	// ProjectFor returns the viewer-specific projection of current state.
	ProjectFor(playerID string) any

	// PendingBots lists non-human players whose action is awaited in the
	// current phase.
	PendingBots() []string

	// OnPlayerReconnect rebinds a player's transient connection identity
	// after a reconnection, matching by old id or display-name fallback.
	OnPlayerReconnect(oldID, newID string)
}

// PresenceAware is implemented by games whose progression waits on connected
// humans. The lobby forwards participant connect and disconnect transitions
// to games implementing it.
type PresenceAware interface {
	SetPlayerConnected(playerID string, connected bool)
}
