package henhur

// Selection is a racer's per-turn card commitment, shared between race plays
// and auction bids.
type Selection struct {
	Card       Card     `json:"card"`
	WillBurn   bool     `json:"willBurn"`
	TokensUsed []string `json:"tokensUsed,omitempty"`
}

// Stats are per-racer counters kept for the whole game.
type Stats struct {
	CardsPlayed   int `json:"cardsPlayed"`
	CardsBurned   int `json:"cardsBurned"`
	DistanceMoved int `json:"distanceMoved"`
}

// Player is one racer's full authoritative state.
type Player struct {
	ID       string
	Name     string
	Bot      bool
	BotStyle string

	// connected mirrors the lobby's view of the owning participant. Bots
	// never flip it; humans gate the all-ready check on it.
	connected bool

	Lane  int
	Space int
	Lap   int

	Tokens    map[string]int
	BurnSlots []*Card
	Deck      PlayerDeck

	// Per-turn scratch, reset after each resolution.
	Selected         *Selection
	Ready            bool
	PriorityModifier int
	MatProperties    map[string]int

	Stats Stats
}

// TokenSum is the total across all token types, checked against the cap.
func (p *Player) TokenSum() int {
	sum := 0
	for _, n := range p.Tokens {
		sum += n
	}
	return sum
}

// emptyBurnSlot returns the index of the first empty burn slot, or -1.
func (p *Player) emptyBurnSlot() int {
	for i, slot := range p.BurnSlots {
		if slot == nil {
			return i
		}
	}
	return -1
}

// occupiedBurnSlots counts the filled slots.
func (p *Player) occupiedBurnSlots() int {
	n := 0
	for _, slot := range p.BurnSlots {
		if slot != nil {
			n++
		}
	}
	return n
}

// hasTokens verifies that every occurrence in tokens is covered by the pool;
// duplicates consume multiple.
func (p *Player) hasTokens(tokens []string) bool {
	need := map[string]int{}
	for _, tok := range tokens {
		need[tok]++
	}
	for tok, n := range need {
		if p.Tokens[tok] < n {
			return false
		}
	}
	return true
}

// spendTokens decrements one pool count per occurrence.
func (p *Player) spendTokens(tokens []string) {
	for _, tok := range tokens {
		if p.Tokens[tok] > 0 {
			p.Tokens[tok]--
		}
	}
}

// resetScratch clears the per-turn selection state, including the priority
// modifier, after a resolution.
func (p *Player) resetScratch() {
	p.Selected = nil
	p.Ready = false
	p.PriorityModifier = 0
}
