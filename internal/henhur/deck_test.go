package henhur

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirschjd/1001-game-nights-sub000/internal/randutil"
)

func namedCards(ids ...string) []Card {
	cards := make([]Card, len(ids))
	for i, id := range ids {
		cards[i] = Card{ID: id, Title: id, InstanceID: id}
	}
	return cards
}

func TestDrawNReshufflesDiscard(t *testing.T) {
	rng := randutil.New(7)
	d := PlayerDeck{
		DrawPile:    namedCards("a"),
		DiscardPile: namedCards("b", "c", "d"),
	}

	drawn := d.DrawN(rng, 3)

	require.Len(t, drawn, 3)
	assert.Equal(t, "a", drawn[0].ID, "draw pile empties before the reshuffle")
	assert.Len(t, d.Hand, 3)
	assert.Empty(t, d.DiscardPile, "discard pile folded into the draw pile")
	assert.Len(t, d.DrawPile, 1)
	assert.Equal(t, 4, d.Size())
}

func TestDrawNShortWhenBothPilesDry(t *testing.T) {
	rng := randutil.New(7)
	d := PlayerDeck{DrawPile: namedCards("a", "b")}

	drawn := d.DrawN(rng, 5)

	assert.Len(t, drawn, 2)
	assert.Len(t, d.Hand, 2)
	assert.Empty(t, d.DrawPile)
}

func TestRemoveFromHand(t *testing.T) {
	d := PlayerDeck{Hand: namedCards("a", "b", "c")}

	card, ok := d.RemoveFromHand("b")
	require.True(t, ok)
	assert.Equal(t, "b", card.ID)
	assert.Len(t, d.Hand, 2)

	_, ok = d.RemoveFromHand("b")
	assert.False(t, ok)
}

func TestPlaceOnTopIsNextDraw(t *testing.T) {
	rng := randutil.New(7)
	d := PlayerDeck{DrawPile: namedCards("a", "b")}

	d.PlaceOnTop(Card{ID: "drafted", InstanceID: "drafted"})

	drawn := d.DrawN(rng, 1)
	require.Len(t, drawn, 1)
	assert.Equal(t, "drafted", drawn[0].ID)
}
