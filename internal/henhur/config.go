package henhur

import "time"

// TokenCategory partitions token types for the bonus functions: priority
// tokens raise race resolution order, race tokens raise distance, auction
// tokens raise bid value, and wild tokens count for all three.
type TokenCategory string

const (
	CategoryPriority TokenCategory = "priority"
	CategoryRace     TokenCategory = "race"
	CategoryAuction  TokenCategory = "auction"
	CategoryWild     TokenCategory = "wild"
)

// TokenSpec declares a token type's category and per-token bonus value.
type TokenSpec struct {
	Category TokenCategory
	Value    int
}

// Config is fixed once the game starts.
type Config struct {
	TurnsPerRound  int
	HandSize       int
	MaxTokens      int
	BurnSlots      int
	SpacesPerLap   int
	LapsToWin      int
	RevealDelay    time.Duration
	SelectedCards  []string
	Tokens         map[string]TokenSpec
	StartingTokens map[string]int
	Seed           int64
}

// DefaultConfig returns the standard variant settings.
func DefaultConfig() Config {
	return Config{
		TurnsPerRound: 6,
		HandSize:      4,
		MaxTokens:     5,
		BurnSlots:     3,
		SpacesPerLap:  12,
		LapsToWin:     3,
		RevealDelay:   2 * time.Second,
		Tokens: map[string]TokenSpec{
			"P+": {Category: CategoryPriority, Value: 1},
			"R+": {Category: CategoryRace, Value: 1},
			"A+": {Category: CategoryAuction, Value: 1},
			"W*": {Category: CategoryWild, Value: 1},
		},
		StartingTokens: map[string]int{"R+": 1, "A+": 1},
	}
}

// bonus sums the values of the given tokens whose category is in cats. Each
// occurrence in tokens counts once; unknown token types contribute nothing.
func (c Config) bonus(tokens []string, cats ...TokenCategory) int {
	sum := 0
	for _, tok := range tokens {
		spec, ok := c.Tokens[tok]
		if !ok {
			continue
		}
		for _, cat := range cats {
			if spec.Category == cat {
				sum += spec.Value
				break
			}
		}
	}
	return sum
}

// PriorityBonus is the token contribution to race resolution order.
func (c Config) PriorityBonus(tokens []string) int {
	return c.bonus(tokens, CategoryPriority, CategoryWild)
}

// RaceBonus is the token contribution to race distance.
func (c Config) RaceBonus(tokens []string) int {
	return c.bonus(tokens, CategoryRace, CategoryWild)
}

// AuctionBonus is the token contribution to bid value.
func (c Config) AuctionBonus(tokens []string) int {
	return c.bonus(tokens, CategoryAuction, CategoryWild)
}

// DeckPolicy maps the current highest lap to the deck sets the auction refill
// may draw from. It is externally supplied; the engine does not hard-code the
// mapping.
type DeckPolicy func(highestLap int) []DeckType
