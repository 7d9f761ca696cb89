package henhur

// Card catalog. Base definitions seed each racer's personal deck; the lap
// sets feed the shared auction deck. A few lap-1 cards carry rules text whose
// effects are not wired to effect records yet; they play as no-ops.

// baseDeckDefs is the identical starting deck every racer begins with.
var baseDeckDefs = []Card{
	{
		ID: "base-steady-trot", Title: "Steady Trot", Deck: DeckBase,
		TrickNumber: 2, RaceNumber: 2, Priority: Priority{Base: 3},
		Text:   "Advance 2.",
		Copies: 2,
	},
	{
		ID: "base-flat-out", Title: "Flat Out", Deck: DeckBase,
		TrickNumber: 1, RaceNumber: 4, Priority: Priority{Base: 1, Dice: "d4"},
		Text:   "Advance 4. Burn: advance 2 more.",
		Copies: 2,
		BurnEffects: []Effect{
			{Type: EffectMovePlayer, Distance: 2},
		},
	},
	{
		ID: "base-wing-it", Title: "Wing It", Deck: DeckBase,
		TrickNumber: 3, RaceNumber: 1, Priority: Priority{Base: 2, Dice: "d6"},
		Text:   "Advance 1 and draw a card.",
		Copies: 2,
		Effects: []Effect{
			{Type: EffectDrawCards, Count: 1},
		},
	},
	{
		ID: "base-pecking-order", Title: "Pecking Order", Deck: DeckBase,
		TrickNumber: 4, RaceNumber: 2, Priority: Priority{Base: 5},
		Text:   "Advance 2. Jostle toward the front of the pecking order.",
		Copies: 1,
		Effects: []Effect{
			{Type: EffectModifyPriority, Adjustment: 2},
		},
	},
	{
		ID: "base-scratch-dirt", Title: "Scratch the Dirt", Deck: DeckBase,
		TrickNumber: 2, RaceNumber: 0, Priority: Priority{Base: 4},
		Text:   "Gain a race token. Burn: gain a wild token instead.",
		Copies: 1,
		Effects: []Effect{
			{Type: EffectTokenPool, TokenAction: TokenGain, TokenType: "R+", Count: 1},
		},
		BurnEffects: []Effect{
			{Type: EffectTokenPool, TokenAction: TokenGain, TokenType: "W*", Count: 1},
		},
	},
}

// lap1Defs seed the shared auction deck at game start.
var lap1Defs = []Card{
	{
		ID: "lap1-tailwind", Title: "Tailwind", Deck: DeckLap1,
		TrickNumber: 5, RaceNumber: 5, Priority: Priority{Base: 2, Dice: "d4"},
		Text: "Advance 5.",
	},
	{
		ID: "lap1-shove", Title: "Shove", Deck: DeckLap1,
		TrickNumber: 4, RaceNumber: 3, Priority: Priority{Base: 3},
		Text: "Advance 3 and push a rival back 2.",
		Effects: []Effect{
			{Type: EffectMoveOpponent, Distance: -2, TargetSelection: TargetChoose},
		},
	},
	{
		ID: "lap1-grain-cart", Title: "Grain Cart", Deck: DeckLap1,
		TrickNumber: 6, RaceNumber: 1, Priority: Priority{Base: 4},
		Text: "Advance 1 and gain 2 auction tokens.",
		Effects: []Effect{
			{Type: EffectTokenPool, TokenAction: TokenGain, TokenType: "A+", Count: 2},
		},
	},
	{
		ID: "lap1-crowd-favorite", Title: "Crowd Favorite", Deck: DeckLap1,
		TrickNumber: 7, RaceNumber: 2, Priority: Priority{Base: 3, Dice: "d6"},
		Text: "Advance 2. Burn: mark the crowd's favor.",
		BurnEffects: []Effect{
			{Type: EffectPlayerMat, Property: "crowdFavor", Value: 1, Operation: MatAdd},
		},
	},
	{
		ID: "lap1-loose-feathers", Title: "Loose Feathers", Deck: DeckLap1,
		TrickNumber: 3, RaceNumber: 3, Priority: Priority{Base: 2},
		// Rules text exists but its effects are not wired to records yet.
		Text: "Advance 3. Rivals in your lane molt.",
	},
	{
		ID: "lap1-dust-bath", Title: "Dust Bath", Deck: DeckLap1,
		TrickNumber: 2, RaceNumber: 2, Priority: Priority{Base: 1},
		Text: "Advance 2. Shake off the morning dust.",
	},
}

// lap2Defs enter the auction refill once the leading racer reaches lap 2.
var lap2Defs = []Card{
	{
		ID: "lap2-charioteer", Title: "Charioteer", Deck: DeckLap2,
		TrickNumber: 8, RaceNumber: 6, Priority: Priority{Base: 3, Dice: "d4"},
		Text: "Advance 6.",
	},
	{
		ID: "lap2-sabotage", Title: "Sabotage", Deck: DeckLap2,
		TrickNumber: 7, RaceNumber: 2, Priority: Priority{Base: 5},
		Text: "Advance 2 and push every rival back 1.",
		Effects: []Effect{
			{Type: EffectMoveOpponent, Distance: -1, TargetSelection: TargetAll},
		},
	},
	{
		ID: "lap2-second-wind", Title: "Second Wind", Deck: DeckLap2,
		TrickNumber: 5, RaceNumber: 3, Priority: Priority{Base: 2},
		Text: "Advance 3 and draw 2 cards.",
		Effects: []Effect{
			{Type: EffectDrawCards, Count: 2},
		},
	},
	{
		ID: "lap2-hoard", Title: "Hoard", Deck: DeckLap2,
		TrickNumber: 6, RaceNumber: 1, Priority: Priority{Base: 4},
		Text: "Advance 1 and gain a priority token. Burn: gain 2 wild tokens.",
		Effects: []Effect{
			{Type: EffectTokenPool, TokenAction: TokenGain, TokenType: "P+", Count: 1},
		},
		BurnEffects: []Effect{
			{Type: EffectTokenPool, TokenAction: TokenGain, TokenType: "W*", Count: 2},
		},
	},
}

// lap3Defs enter the auction refill once the leading racer reaches lap 3.
var lap3Defs = []Card{
	{
		ID: "lap3-final-sprint", Title: "Final Sprint", Deck: DeckLap3,
		TrickNumber: 9, RaceNumber: 8, Priority: Priority{Base: 1, Dice: "2d4"},
		Text: "Advance 8.",
	},
	{
		ID: "lap3-photo-finish", Title: "Photo Finish", Deck: DeckLap3,
		TrickNumber: 10, RaceNumber: 5, Priority: Priority{Base: 6},
		Text: "Advance 5. Burn: advance 3 more.",
		BurnEffects: []Effect{
			{Type: EffectMovePlayer, Distance: 3},
		},
	},
	{
		ID: "lap3-fowl-play", Title: "Fowl Play", Deck: DeckLap3,
		TrickNumber: 8, RaceNumber: 3, Priority: Priority{Base: 4, Dice: "d6"},
		Text: "Advance 3 and push a random rival back 3.",
		Effects: []Effect{
			{Type: EffectMoveOpponent, Distance: -3, TargetSelection: TargetRandom},
		},
	},
}

// BaseDeck returns a fresh copy of the per-player starting deck definitions.
func BaseDeck() []Card {
	return append([]Card(nil), baseDeckDefs...)
}

// CardsForDeck returns the definitions belonging to the given deck set.
func CardsForDeck(deck DeckType) []Card {
	switch deck {
	case DeckBase:
		return BaseDeck()
	case DeckLap1:
		return append([]Card(nil), lap1Defs...)
	case DeckLap2:
		return append([]Card(nil), lap2Defs...)
	case DeckLap3:
		return append([]Card(nil), lap3Defs...)
	}
	return nil
}

// Catalog returns every card definition across all deck sets.
func Catalog() []Card {
	out := make([]Card, 0, len(baseDeckDefs)+len(lap1Defs)+len(lap2Defs)+len(lap3Defs))
	out = append(out, baseDeckDefs...)
	out = append(out, lap1Defs...)
	out = append(out, lap2Defs...)
	out = append(out, lap3Defs...)
	return out
}

// DefaultDeckPolicy is the availability mapping used when the host supplies
// none: lap-1 cards always circulate, lap-2 from the second lap, lap-3 from
// the third onward.
func DefaultDeckPolicy(highestLap int) []DeckType {
	decks := []DeckType{DeckLap1}
	if highestLap >= 2 {
		decks = append(decks, DeckLap2)
	}
	if highestLap >= 3 {
		decks = append(decks, DeckLap3)
	}
	return decks
}
