// Package war implements Enhanced War: every round each player flips the top
// card of their half of a shuffled deck, and the highest value takes all the
// flipped cards. Ties carry the spoils into the next round. The game ends
// when any deck runs out; the biggest won pile takes it.
package war

import (
	"fmt"
	rand "math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/randutil"
)

// GameType is the tag the lobby layer uses to construct Enhanced War games.
const GameType = "enhanced-war"

// ActionFlip is the only player action: flip the next card.
const ActionFlip = "flip"

// VariantAcesHigh ranks aces above kings instead of below twos.
const VariantAcesHigh = "aces-high"

const (
	deckSize = 52
	ranks    = 13
)

// Player is one combatant's state.
type Player struct {
	ID       string
	Name     string
	Bot      bool
	BotStyle string

	connected bool

	deck    []int // rank values 1..13, ace low by default
	won     int
	flipped *int
}

// Engine is the authoritative Enhanced War state. Like every hosted game it
// relies on the owning lobby for serialization.
type Engine struct {
	logger   *log.Logger
	rng      *rand.Rand
	acesHigh bool

	players []*Player
	byID    map[string]*Player

	round     int
	carryover int // spoils held over from tied rounds
	lastFlips map[string]int
	winner    string
	over      bool
	started   bool
}

// Register binds the Enhanced War constructor into the game registry.
func Register(reg *game.Registry) {
	reg.Register(GameType, func(seats []game.Seat, opts game.Options, deps game.Deps) (game.Game, error) {
		return New(seats, opts.String("variant", ""), deps)
	})
}

// New constructs an engine for the given seats.
func New(seats []game.Seat, variant string, deps game.Deps) (*Engine, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("enhanced war requires at least 2 players, got %d", len(seats))
	}

	seed := deps.Seed
	if seed == 0 && deps.Clock != nil {
		seed = deps.Clock.Now().UnixNano()
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	g := &Engine{
		logger:   logger.WithPrefix("war"),
		rng:      randutil.New(seed),
		acesHigh: variant == VariantAcesHigh,
		byID:     make(map[string]*Player, len(seats)),
		round:    1,
	}
	for _, seat := range seats {
		p := &Player{
			ID:        seat.ID,
			Name:      seat.Name,
			Bot:       seat.IsBot,
			BotStyle:  seat.BotStyle,
			connected: !seat.IsBot,
		}
		g.players = append(g.players, p)
		g.byID[p.ID] = p
	}
	return g, nil
}

// Type implements game.Game.
func (g *Engine) Type() string { return GameType }

// Start shuffles one standard deck and deals it evenly; leftover cards sit
// out. Calling Start twice is a no-op.
func (g *Engine) Start() error {
	if g.started {
		return nil
	}
	g.started = true

	cards := make([]int, 0, deckSize)
	for rank := 1; rank <= ranks; rank++ {
		for suit := 0; suit < 4; suit++ {
			cards = append(cards, rank)
		}
	}
	randutil.Shuffle(g.rng, cards)

	per := len(cards) / len(g.players)
	for i, p := range g.players {
		p.deck = append([]int(nil), cards[i*per:(i+1)*per]...)
	}

	g.logger.Info("Game started", "players", len(g.players), "cardsEach", per, "acesHigh", g.acesHigh)
	return nil
}

// ApplyAction implements game.Game.
func (g *Engine) ApplyAction(playerID string, action game.Action) game.Result {
	if g.over {
		return game.Fail("the war is over")
	}
	p := g.byID[playerID]
	if p == nil {
		return game.Fail("unknown player")
	}
	if action.Type != ActionFlip {
		return game.Fail("unknown action: " + action.Type)
	}
	if p.flipped != nil {
		return game.Fail("you already flipped this round")
	}
	if len(p.deck) == 0 {
		return game.Fail("your deck is empty")
	}

	card := p.deck[0]
	p.deck = p.deck[1:]
	p.flipped = &card

	g.maybeResolve()
	return game.OK()
}

func (g *Engine) maybeResolve() {
	for _, p := range g.players {
		if g.inRound(p) && p.flipped == nil {
			return
		}
	}
	g.resolveRound()
}

// inRound reports whether a player gates round resolution: they must hold
// cards and, for humans, be connected.
func (g *Engine) inRound(p *Player) bool {
	if len(p.deck) == 0 && p.flipped == nil {
		return false
	}
	return p.Bot || p.connected
}

// rankValue orders flips; under aces-high an ace beats everything.
func (g *Engine) rankValue(rank int) int {
	if g.acesHigh && rank == 1 {
		return ranks + 1
	}
	return rank
}

func (g *Engine) resolveRound() {
	g.lastFlips = make(map[string]int)
	pot := g.carryover
	best := -1
	bestCount := 0
	var winner *Player

	for _, p := range g.players {
		if p.flipped == nil {
			continue
		}
		g.lastFlips[p.ID] = *p.flipped
		pot++
		v := g.rankValue(*p.flipped)
		switch {
		case v > best:
			best, bestCount, winner = v, 1, p
		case v == best:
			bestCount++
		}
		p.flipped = nil
	}

	if winner != nil && bestCount == 1 {
		winner.won += pot
		g.carryover = 0
		g.logger.Debug("Round won", "round", g.round, "player", winner.Name, "pot", pot)
	} else {
		// War: the spoils ride on the next round.
		g.carryover = pot
		g.logger.Debug("Round tied", "round", g.round, "carryover", pot)
	}
	g.round++

	for _, p := range g.players {
		if len(p.deck) == 0 {
			g.finish()
			return
		}
	}
}

func (g *Engine) finish() {
	g.over = true
	ranked := append([]*Player(nil), g.players...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].won > ranked[j].won
	})
	g.winner = ranked[0].ID
	g.logger.Info("War over", "winner", ranked[0].Name, "won", ranked[0].won)
}

// PendingBots implements game.Game.
func (g *Engine) PendingBots() []string {
	if g.over {
		return nil
	}
	var ids []string
	for _, p := range g.players {
		if p.Bot && p.flipped == nil && len(p.deck) > 0 {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// SetPlayerConnected implements game.PresenceAware.
func (g *Engine) SetPlayerConnected(playerID string, connected bool) {
	if p := g.byID[playerID]; p != nil {
		p.connected = connected
		if !connected && !g.over {
			g.maybeResolve()
		}
	}
}

// OnPlayerReconnect implements game.Game.
func (g *Engine) OnPlayerReconnect(oldID, newID string) {
	p := g.byID[oldID]
	if p == nil {
		return
	}
	delete(g.byID, oldID)
	p.ID = newID
	p.connected = true
	g.byID[newID] = p
	if g.winner == oldID {
		g.winner = newID
	}
}
