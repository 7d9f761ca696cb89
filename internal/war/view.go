package war

// View is the per-viewer projection. Deck order stays hidden; flips become
// public only after the round resolves.
type View struct {
	GameType  string         `json:"gameType"`
	Round     int            `json:"round"`
	Carryover int            `json:"carryover"`
	LastFlips map[string]int `json:"lastFlips,omitempty"`
	AcesHigh  bool           `json:"acesHigh"`
	Players   []PlayerView   `json:"players"`
	You       *PrivateView   `json:"you,omitempty"`
	Winner    string         `json:"winner,omitempty"`
	Over      bool           `json:"over"`
}

// PlayerView is the public snapshot of one combatant.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bot       bool   `json:"isBot"`
	Connected bool   `json:"connected"`
	DeckCount int    `json:"deckCount"`
	Won       int    `json:"won"`
	Flipped   bool   `json:"flipped"`
}

// PrivateView shows the requesting player their own flip before resolution.
type PrivateView struct {
	Flipped *int `json:"flipped,omitempty"`
}

// ProjectFor implements game.Game.
func (g *Engine) ProjectFor(playerID string) any {
	view := View{
		GameType:  GameType,
		Round:     g.round,
		Carryover: g.carryover,
		AcesHigh:  g.acesHigh,
		Winner:    g.winner,
		Over:      g.over,
	}
	if len(g.lastFlips) > 0 {
		view.LastFlips = make(map[string]int, len(g.lastFlips))
		for id, v := range g.lastFlips {
			view.LastFlips[id] = v
		}
	}
	for _, p := range g.players {
		view.Players = append(view.Players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Bot:       p.Bot,
			Connected: p.Bot || p.connected,
			DeckCount: len(p.deck),
			Won:       p.won,
			Flipped:   p.flipped != nil,
		})
	}
	if p := g.byID[playerID]; p != nil {
		view.You = &PrivateView{Flipped: p.flipped}
	}
	return view
}
