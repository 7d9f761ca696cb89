package bot

import (
	rand "math/rand/v2"
	"time"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/henhur"
)

// HenHur play styles.
const (
	StyleBroody    = "broody"    // deliberate, plays for distance
	StyleFlighty   = "flighty"   // quick and random
	StyleCluckwork = "cluckwork" // mechanical, fully predictable
)

var henNames = []string{
	"Henrietta", "Cluckles", "Brunhilde", "Omeletta",
	"Nugget", "Featherline", "Pollo Rossa", "Margarine",
}

// HenHurHandler drives bots through a HenHur game using only the projection a
// human client would see.
type HenHurHandler struct{}

func (HenHurHandler) GameType() string { return henhur.GameType }

func (HenHurHandler) Styles() []Style {
	return []Style{
		{ID: StyleBroody, Name: "Broody", Description: "Sits on the strongest card and plays for distance", Difficulty: "hard"},
		{ID: StyleFlighty, Name: "Flighty", Description: "Quick and unpredictable", Difficulty: "easy"},
		{ID: StyleCluckwork, Name: "Cluckwork", Description: "Always plays the first card in hand", Difficulty: "medium"},
	}
}

func (HenHurHandler) Names() []string { return henNames }

func (HenHurHandler) BaseDelay(style string) time.Duration {
	switch style {
	case StyleFlighty:
		return 500 * time.Millisecond
	case StyleCluckwork:
		return 1 * time.Second
	default: // broody
		return 2 * time.Second
	}
}

func (h HenHurHandler) Choose(g game.Game, botID string, rng *rand.Rand) (game.Action, bool) {
	view, ok := g.ProjectFor(botID).(henhur.View)
	if !ok || view.You == nil {
		return game.Action{}, false
	}
	me := h.findSelf(view, botID)
	if me == nil {
		return game.Action{}, false
	}

	switch view.Phase {
	case henhur.PhaseRaceSelection:
		if me.Ready || len(view.You.Hand) == 0 {
			return game.Action{}, false
		}
		card := pickCard(view.You.Hand, me.BotStyle, rng, func(c henhur.Card) int { return c.RaceNumber })
		return game.NewAction(henhur.ActionSelectCard, henhur.SelectCardPayload{
			CardInstanceID: card.InstanceID,
		}), true

	case henhur.PhaseAuctionSelection:
		if me.Ready || len(view.You.Hand) == 0 {
			return game.Action{}, false
		}
		card := pickCard(view.You.Hand, me.BotStyle, rng, func(c henhur.Card) int { return c.TrickNumber })
		return game.NewAction(henhur.ActionSubmitBid, henhur.SelectCardPayload{
			CardInstanceID: card.InstanceID,
		}), true

	case henhur.PhaseAuctionDrafting:
		if view.CurrentDrafter != botID || len(view.AuctionPool) == 0 {
			return game.Action{}, false
		}
		card := pickCard(view.AuctionPool, me.BotStyle, rng, func(c henhur.Card) int { return c.TrickNumber })
		return game.NewAction(henhur.ActionDraftCard, henhur.DraftCardPayload{
			CardInstanceID: card.InstanceID,
		}), true

	case henhur.PhaseRaceResolution:
		if view.You.PendingInput == nil || view.You.PendingInput.Kind != henhur.InputChooseOpponent {
			return game.Action{}, false
		}
		target := leadingOpponent(view, botID)
		if target == "" {
			return game.Action{}, false
		}
		return game.NewAction(henhur.ActionChooseOpponent, henhur.ChooseOpponentPayload{
			TargetPlayerID: target,
		}), true
	}
	return game.Action{}, false
}

func (HenHurHandler) findSelf(view henhur.View, botID string) *henhur.PlayerView {
	for i := range view.Players {
		if view.Players[i].ID == botID {
			return &view.Players[i]
		}
	}
	return nil
}

// pickCard applies the style: broody maximizes score, cluckwork takes the
// first card, flighty picks at random.
func pickCard(cards []henhur.Card, style string, rng *rand.Rand, score func(henhur.Card) int) henhur.Card {
	switch style {
	case StyleFlighty:
		return cards[rng.IntN(len(cards))]
	case StyleCluckwork:
		return cards[0]
	default:
		best := cards[0]
		for _, c := range cards[1:] {
			if score(c) > score(best) {
				best = c
			}
		}
		return best
	}
}

// leadingOpponent targets the rival furthest along the track.
func leadingOpponent(view henhur.View, botID string) string {
	bestID := ""
	bestKey := -1
	for _, p := range view.Players {
		if p.ID == botID {
			continue
		}
		key := p.Lap*view.SpacesPerLap + p.Space
		if key > bestKey {
			bestKey = key
			bestID = p.ID
		}
	}
	return bestID
}
