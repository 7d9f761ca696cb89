package server

import (
	"encoding/json"

	"github.com/kirschjd/1001-game-nights-sub000/internal/bot"
	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

// Event is the wire envelope in both directions: a name plus an event-shaped
// payload.
type Event struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEvent marshals payload into an Event.
func NewEvent(event string, payload any) (*Event, error) {
	if payload == nil {
		return &Event{Event: event}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{Event: event, Payload: data}, nil
}

// Inbound event names.
const (
	EventJoinLobby         = "join-lobby"
	EventLeaveLobby        = "leave-lobby"
	EventUpdateLobbyTitle  = "update-lobby-title"
	EventUpdatePlayerName  = "update-player-name"
	EventUpdateGameType    = "update-game-type"
	EventUpdateGameOptions = "update-game-options"
	EventChangeLeader      = "change-leader"
	EventStartGame         = "start-game"
	EventStartEnhancedWar  = "start-enhanced-war"
	EventHenHurAction      = "henhur-action"
	EventEnhancedWarAction = "enhanced-war-action"
	EventAddBot            = "add-bot"
	EventRemoveBot         = "remove-bot"
	EventListBotStyles     = "list-bot-styles"
	EventListLobbies       = "list-lobbies"
	EventHeartbeatPong     = "heartbeat-pong"
)

// Outbound event names. The lobby layer's broadcast names are reused as-is.
const (
	EventError         = "error"
	EventLobbyList     = "lobby-list"
	EventBotStyles     = "bot-styles"
	EventHeartbeatPing = "heartbeat-ping"
)

// JoinLobbyPayload enters (or creates) a lobby under a display name.
type JoinLobbyPayload struct {
	Slug       string `json:"slug"`
	PlayerName string `json:"playerName"`
}

// UpdateLobbyTitlePayload renames the lobby. Leader only.
type UpdateLobbyTitlePayload struct {
	Title string `json:"title"`
}

// UpdatePlayerNamePayload renames the sending participant.
type UpdatePlayerNamePayload struct {
	Name string `json:"name"`
}

// UpdateGameTypePayload switches the selected game. Leader only.
type UpdateGameTypePayload struct {
	GameType string       `json:"gameType"`
	Options  game.Options `json:"options,omitempty"`
}

// UpdateGameOptionsPayload merges option fields. Leader only.
type UpdateGameOptionsPayload struct {
	Options game.Options `json:"options"`
}

// ChangeLeaderPayload hands leadership to another participant. Leader only.
type ChangeLeaderPayload struct {
	PlayerID string `json:"playerId"`
}

// StartGamePayload starts the lobby's selected game; GameType, when set,
// overrides the selection first.
type StartGamePayload struct {
	GameType string       `json:"gameType,omitempty"`
	Options  game.Options `json:"options,omitempty"`
}

// StartEnhancedWarPayload is the dedicated start event for Enhanced War.
type StartEnhancedWarPayload struct {
	Variant string `json:"variant,omitempty"`
}

// GameActionPayload wraps a game-specific action.
type GameActionPayload struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// AddBotPayload seats a bot. Leader only.
type AddBotPayload struct {
	Style string `json:"style,omitempty"`
}

// RemoveBotPayload unseats a bot. Leader only.
type RemoveBotPayload struct {
	BotID string `json:"botId"`
}

// ListBotStylesPayload asks for the bot style catalog of a game type,
// defaulting to the sender's lobby selection.
type ListBotStylesPayload struct {
	GameType string `json:"gameType,omitempty"`
}

// BotStylesPayload answers list-bot-styles.
type BotStylesPayload struct {
	GameType string      `json:"gameType"`
	Styles   []bot.Style `json:"styles"`
}

// ErrorPayload reports a rejected request to the sender only.
type ErrorPayload struct {
	Message string `json:"message"`
}
