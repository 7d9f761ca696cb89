package henhur

import (
	rand "math/rand/v2"

	"github.com/kirschjd/1001-game-nights-sub000/internal/randutil"
)

// PlayerDeck holds one racer's card piles. The draw pile, hand and discard
// pile cycle; the exhaust bucket only ever grows.
type PlayerDeck struct {
	DrawPile    []Card `json:"drawPile"`
	Hand        []Card `json:"hand"`
	DiscardPile []Card `json:"discardPile"`
	Exhaust     []Card `json:"exhaust,omitempty"`
}

// DrawN removes up to n cards from the front of the draw pile into the hand.
// When the draw pile empties before n is met, the discard pile is shuffled in
// and drawing continues. Returns the cards actually drawn, which is shorter
// than n when both piles run dry.
func (d *PlayerDeck) DrawN(rng *rand.Rand, n int) []Card {
	drawn := make([]Card, 0, n)
	for len(drawn) < n {
		if len(d.DrawPile) == 0 {
			if len(d.DiscardPile) == 0 {
				break
			}
			d.DrawPile = d.DiscardPile
			d.DiscardPile = nil
			randutil.Shuffle(rng, d.DrawPile)
		}
		drawn = append(drawn, d.DrawPile[0])
		d.DrawPile = d.DrawPile[1:]
	}
	d.Hand = append(d.Hand, drawn...)
	return drawn
}

// Discard appends a card to the discard pile.
func (d *PlayerDeck) Discard(c Card) {
	d.DiscardPile = append(d.DiscardPile, c)
}

// PlaceOnTop prepends a card to the draw pile. Drafted auction cards land
// here.
func (d *PlayerDeck) PlaceOnTop(c Card) {
	d.DrawPile = append([]Card{c}, d.DrawPile...)
}

// RemoveFromHand removes and returns the hand card with the given instance
// id.
func (d *PlayerDeck) RemoveFromHand(instanceID string) (Card, bool) {
	for i, c := range d.Hand {
		if c.InstanceID == instanceID {
			d.Hand = append(d.Hand[:i], d.Hand[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}

// FindInHand returns the hand card with the given instance id without
// removing it.
func (d *PlayerDeck) FindInHand(instanceID string) (Card, bool) {
	for _, c := range d.Hand {
		if c.InstanceID == instanceID {
			return c, true
		}
	}
	return Card{}, false
}

// Size is the total card count across all piles.
func (d *PlayerDeck) Size() int {
	return len(d.DrawPile) + len(d.Hand) + len(d.DiscardPile) + len(d.Exhaust)
}
