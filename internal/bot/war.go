package bot

import (
	rand "math/rand/v2"
	"time"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/war"
)

var warNames = []string{
	"Sgt. Shuffles", "Corporal Flip", "Major Spades", "Private Deuce",
	"Captain Cutter", "General Rummy",
}

// WarHandler drives bots through Enhanced War. The game has one legal move,
// so the handler only decides timing.
type WarHandler struct{}

func (WarHandler) GameType() string { return war.GameType }

func (WarHandler) Styles() []Style {
	return []Style{
		{ID: StyleFlighty, Name: "Trigger Happy", Description: "Flips almost immediately", Difficulty: "easy"},
		{ID: StyleBroody, Name: "Deliberate", Description: "Pauses before every flip", Difficulty: "easy"},
	}
}

func (WarHandler) Names() []string { return warNames }

func (WarHandler) BaseDelay(style string) time.Duration {
	if style == StyleBroody {
		return 1500 * time.Millisecond
	}
	return 400 * time.Millisecond
}

func (WarHandler) Choose(g game.Game, botID string, _ *rand.Rand) (game.Action, bool) {
	for _, pending := range g.PendingBots() {
		if pending == botID {
			return game.NewAction(war.ActionFlip, nil), true
		}
	}
	return game.Action{}, false
}
