package henhur

// View is the per-viewer projection of the game. Hidden state (other hands,
// pile contents, uncommitted selections) never appears; the viewer's own
// private section is populated only for the requesting player.
type View struct {
	GameType string   `json:"gameType"`
	Phase    Phase    `json:"phase"`
	TurnType TurnType `json:"turnType"`
	Round    int      `json:"round"`
	Turn     int      `json:"turn"`

	SpacesPerLap int `json:"spacesPerLap"`
	LapsToWin    int `json:"lapsToWin"`

	Players []PlayerView `json:"players"`
	You     *PrivateView `json:"you,omitempty"`

	AuctionPool    []Card   `json:"auctionPool,omitempty"`
	AuctionOrder   []string `json:"auctionOrder,omitempty"`
	CurrentDrafter string   `json:"currentDrafter,omitempty"`

	Winner  string       `json:"winner,omitempty"`
	History []TurnRecord `json:"history,omitempty"`
}

// PlayerView is the public snapshot of one racer: track position, counts,
// revealed burns, and readiness, but never hand contents.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bot       bool   `json:"isBot"`
	BotStyle  string `json:"botStyle,omitempty"`
	Connected bool   `json:"connected"`

	Lane  int `json:"lane"`
	Space int `json:"space"`
	Lap   int `json:"lap"`

	HandCount    int `json:"handCount"`
	DrawCount    int `json:"drawCount"`
	DiscardCount int `json:"discardCount"`
	ExhaustCount int `json:"exhaustCount"`

	Tokens    map[string]int `json:"tokens"`
	BurnSlots []*Card        `json:"burnSlots"`
	Ready     bool           `json:"ready"`

	Stats Stats `json:"stats"`
}

// PrivateView is the requesting racer's own hidden state.
type PrivateView struct {
	Hand         []Card        `json:"hand"`
	Selected     *Selection    `json:"selected,omitempty"`
	PendingInput *InputRequest `json:"pendingInput,omitempty"`
}

// ProjectFor implements game.Game.
func (g *Engine) ProjectFor(playerID string) any {
	view := View{
		GameType:       GameType,
		Phase:          g.phase,
		TurnType:       g.turnType,
		Round:          g.round,
		Turn:           g.turn,
		SpacesPerLap:   g.cfg.SpacesPerLap,
		LapsToWin:      g.cfg.LapsToWin,
		AuctionPool:    append([]Card(nil), g.auctionPool...),
		AuctionOrder:   append([]string(nil), g.auctionOrder...),
		CurrentDrafter: g.currentDrafter(),
		Winner:         g.winner,
		History:        append([]TurnRecord(nil), g.history...),
	}

	for _, p := range g.players {
		tokens := make(map[string]int, len(p.Tokens))
		for tok, n := range p.Tokens {
			tokens[tok] = n
		}
		view.Players = append(view.Players, PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Bot:          p.Bot,
			BotStyle:     p.BotStyle,
			Connected:    g.isConnected(p),
			Lane:         p.Lane,
			Space:        p.Space,
			Lap:          p.Lap,
			HandCount:    len(p.Deck.Hand),
			DrawCount:    len(p.Deck.DrawPile),
			DiscardCount: len(p.Deck.DiscardPile),
			ExhaustCount: len(p.Deck.Exhaust),
			Tokens:       tokens,
			BurnSlots:    append([]*Card(nil), p.BurnSlots...),
			Ready:        p.Ready,
			Stats:        p.Stats,
		})
	}

	if p := g.playerByID(playerID); p != nil {
		private := &PrivateView{
			Hand:     append([]Card(nil), p.Deck.Hand...),
			Selected: p.Selected,
		}
		if g.pending != nil && g.pending.playerID == p.ID {
			req := g.pending.request
			private.PendingInput = &req
		}
		view.You = private
	}
	return view
}
