package henhur

import "github.com/google/uuid"

// DeckType tags which set a card definition belongs to. Base cards seed each
// player's personal deck; lap sets feed the shared auction deck as the race
// progresses.
type DeckType string

const (
	DeckBase DeckType = "base"
	DeckLap1 DeckType = "lap1"
	DeckLap2 DeckType = "lap2"
	DeckLap3 DeckType = "lap3"
)

// EffectType enumerates the closed set of card effects the executor
// understands.
type EffectType string

const (
	EffectMovePlayer     EffectType = "move_player_position"
	EffectMoveOpponent   EffectType = "move_opponent_position"
	EffectTokenPool      EffectType = "affect_token_pool"
	EffectDrawCards      EffectType = "draw_cards"
	EffectDiscardCards   EffectType = "discard_cards"
	EffectModifyPriority EffectType = "modify_priority"
	EffectPlayerMat      EffectType = "affect_player_mat"
)

// Target selection modes for move_opponent_position.
const (
	TargetChoose = "choose"
	TargetAll    = "all"
	TargetRandom = "random"
)

// Token pool actions.
const (
	TokenGain  = "gain"
	TokenSpend = "spend"
	TokenSet   = "set"
)

// Mat operations.
const (
	MatSet = "set"
	MatAdd = "add"
)

// Effect is one tagged record in a card's effect list. Only the fields
// relevant to Type are populated.
type Effect struct {
	Type EffectType `json:"type"`

	// move_player_position / move_opponent_position
	Distance         int    `json:"distance,omitempty"`
	TargetSelection  string `json:"targetSelection,omitempty"`
	RequiresAdjacent bool   `json:"requiresAdjacent,omitempty"`

	// affect_token_pool
	TokenAction string `json:"action,omitempty"`
	TokenType   string `json:"tokenType,omitempty"`
	Count       int    `json:"count,omitempty"`

	// modify_priority
	Adjustment int `json:"adjustment,omitempty"`

	// affect_player_mat
	Property  string `json:"property,omitempty"`
	Value     int    `json:"value,omitempty"`
	Operation string `json:"operation,omitempty"`
}

// Priority is a card's contestable ordering value: a fixed Base, or Base plus
// a dice roll when Dice carries a notation string.
type Priority struct {
	Base int    `json:"base"`
	Dice string `json:"dice,omitempty"`
}

// Card is the value object for a single HenHur card. InstanceID is stamped
// when a definition is expanded into physical copies; it distinguishes the
// copies of one definition within hands and pools.
type Card struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Deck        DeckType `json:"deckType"`
	TrickNumber int      `json:"trickNumber"`
	RaceNumber  int      `json:"raceNumber"`
	Priority    Priority `json:"priority"`
	Text        string   `json:"text,omitempty"`
	Effects     []Effect `json:"effect,omitempty"`
	BurnEffects []Effect `json:"burnEffect,omitempty"`
	Copies      int      `json:"copies,omitempty"`
	InstanceID  string   `json:"instanceId,omitempty"`
}

// CanBurn reports whether the card has a burn effect. Bids that declare a
// burn are rejected for cards without one.
func (c Card) CanBurn() bool {
	return len(c.BurnEffects) > 0
}

// copies returns the expansion count, defaulting to 2.
func (c Card) copies() int {
	if c.Copies > 0 {
		return c.Copies
	}
	return 2
}

// expandCopies turns card definitions into physical copies, each stamped with
// a distinct instance id.
func expandCopies(defs []Card) []Card {
	out := make([]Card, 0, len(defs)*2)
	for _, def := range defs {
		for i := 0; i < def.copies(); i++ {
			card := def
			card.InstanceID = uuid.NewString()
			out = append(out, card)
		}
	}
	return out
}
