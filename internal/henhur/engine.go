package henhur

import (
	"encoding/json"
	"fmt"
	rand "math/rand/v2"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/randutil"
)

// GameType is the tag the lobby layer uses to construct HenHur games.
const GameType = "henhur"

// TurnType is one axis of the turn state machine, derived from turn parity:
// odd turns race, even turns auction.
type TurnType string

const (
	TurnRace    TurnType = "race"
	TurnAuction TurnType = "auction"
)

// Phase is the other axis. Reveal phases exist so clients can display a
// pause; resolution is deferred by a bounded server-side delay.
type Phase string

const (
	PhaseWaiting          Phase = "waiting"
	PhaseRaceSelection    Phase = "race_selection"
	PhaseRaceReveal       Phase = "race_reveal"
	PhaseRaceResolution   Phase = "race_resolution"
	PhaseAuctionSelection Phase = "auction_selection"
	PhaseAuctionReveal    Phase = "auction_reveal"
	PhaseAuctionDrafting  Phase = "auction_drafting"
	PhaseGameOver         Phase = "game_over"
)

// Engine action types.
const (
	ActionSelectCard     = "select-card"
	ActionSubmitBid      = "submit-bid"
	ActionDraftCard      = "draft-card"
	ActionChooseOpponent = "choose-opponent"
)

// SelectCardPayload is the payload for select-card and submit-bid actions.
type SelectCardPayload struct {
	CardInstanceID string   `json:"cardInstanceId"`
	WillBurn       bool     `json:"willBurn"`
	TokensUsed     []string `json:"tokensUsed,omitempty"`
}

// DraftCardPayload is the payload for draft-card actions.
type DraftCardPayload struct {
	CardInstanceID string `json:"cardInstanceId"`
}

// ChooseOpponentPayload answers a choose_opponent input request.
type ChooseOpponentPayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

// TurnRecord is one entry in the append-only turn history.
type TurnRecord struct {
	Round    int      `json:"round"`
	Turn     int      `json:"turn"`
	TurnType TurnType `json:"turnType"`
	Order    []string `json:"order,omitempty"`
}

// Engine is the authoritative HenHur game state and turn machine. It is not
// internally synchronized: the owning lobby serializes every entry point,
// including deferred reveal callbacks.
type Engine struct {
	logger  *log.Logger
	cfg     Config
	variant string
	rng     *rand.Rand

	deckPolicy DeckPolicy
	deferFn    func(d time.Duration, fn func()) (stop func())

	players []*Player
	byID    map[string]*Player

	round    int
	turn     int
	turnType TurnType
	phase    Phase

	sharedDeck   []Card
	auctionPool  []Card
	auctionOrder []string
	draftIndex   int

	pending *pendingEffects
	winner  string
	history []TurnRecord

	started bool
}

// Register binds the HenHur constructor into the game registry. base supplies
// the host-level defaults; lobby options may narrow the auction card set and
// name a variant.
func Register(reg *game.Registry, base Config) {
	reg.Register(GameType, func(seats []game.Seat, opts game.Options, deps game.Deps) (game.Game, error) {
		cfg := base
		if selected := opts.StringSlice("selectedCards"); len(selected) > 0 {
			cfg.SelectedCards = selected
		}
		return New(seats, cfg, opts.String("variant", "standard"), deps)
	})
}

// New constructs an engine for the given seats. The random source is seeded
// once from deps.Seed (falling back to the clock) so a game replays
// identically under the same seed.
func New(seats []game.Seat, cfg Config, variant string, deps game.Deps) (*Engine, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("henhur requires at least 2 players, got %d", len(seats))
	}

	seed := deps.Seed
	if seed == 0 && cfg.Seed != 0 {
		seed = cfg.Seed
	}
	if seed == 0 && deps.Clock != nil {
		seed = deps.Clock.Now().UnixNano()
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}

	g := &Engine{
		logger:     logger.WithPrefix("henhur"),
		cfg:        cfg,
		variant:    variant,
		rng:        randutil.New(seed),
		deckPolicy: DefaultDeckPolicy,
		deferFn:    deps.Defer,
		byID:       make(map[string]*Player, len(seats)),
		round:      1,
		turnType:   TurnRace,
		phase:      PhaseWaiting,
		draftIndex: -1,
	}

	for i, seat := range seats {
		p := &Player{
			Lane:          i,
			ID:            seat.ID,
			Name:          seat.Name,
			Bot:           seat.IsBot,
			BotStyle:      seat.BotStyle,
			connected:     !seat.IsBot,
			Lap:           1,
			Tokens:        map[string]int{},
			BurnSlots:     make([]*Card, cfg.BurnSlots),
			MatProperties: map[string]int{},
		}
		for tok, n := range cfg.StartingTokens {
			p.Tokens[tok] = n
		}
		g.players = append(g.players, p)
		g.byID[p.ID] = p
	}

	return g, nil
}

// SetDeckPolicy replaces the auction deck availability policy. Must be called
// before Start.
func (g *Engine) SetDeckPolicy(policy DeckPolicy) {
	if policy != nil {
		g.deckPolicy = policy
	}
}

// Type implements game.Game.
func (g *Engine) Type() string { return GameType }

// Start deals each racer's starting deck, seeds the shared auction deck, and
// opens the first race selection. Calling Start twice is a no-op.
func (g *Engine) Start() error {
	if g.started {
		return nil
	}
	g.started = true

	for _, p := range g.players {
		p.Deck.DrawPile = expandCopies(BaseDeck())
		randutil.Shuffle(g.rng, p.Deck.DrawPile)
		p.Deck.DrawN(g.rng, g.cfg.HandSize)
	}

	g.seedSharedDeck()
	g.turn = 1
	g.turnType = TurnRace
	g.phase = PhaseRaceSelection
	g.revealPool()

	g.logger.Info("Game started",
		"players", len(g.players),
		"spacesPerLap", g.cfg.SpacesPerLap,
		"lapsToWin", g.cfg.LapsToWin)
	return nil
}

// seedSharedDeck builds the persistent auction deck from the lap-1 set,
// honoring the selected-cards filter when the lobby provided one.
func (g *Engine) seedSharedDeck() {
	defs := CardsForDeck(DeckLap1)
	if len(g.cfg.SelectedCards) > 0 {
		selected := make(map[string]bool, len(g.cfg.SelectedCards))
		for _, id := range g.cfg.SelectedCards {
			selected[id] = true
		}
		filtered := defs[:0]
		for _, def := range defs {
			if selected[def.ID] {
				filtered = append(filtered, def)
			}
		}
		defs = filtered
	}
	g.sharedDeck = expandCopies(defs)
	randutil.Shuffle(g.rng, g.sharedDeck)
}

// ApplyAction implements game.Game. Every failure path leaves state
// unchanged and reports a message; only a set winner freezes the game.
func (g *Engine) ApplyAction(playerID string, action game.Action) game.Result {
	if g.winner != "" {
		return game.Fail("the race is over")
	}
	p := g.playerByID(playerID)
	if p == nil {
		return game.Fail("unknown player")
	}

	switch action.Type {
	case ActionSelectCard:
		return g.applySelection(p, action.Payload, TurnRace)
	case ActionSubmitBid:
		return g.applySelection(p, action.Payload, TurnAuction)
	case ActionDraftCard:
		return g.applyDraft(p, action.Payload)
	case ActionChooseOpponent:
		return g.applyChooseOpponent(p, action.Payload)
	}
	return game.Fail(fmt.Sprintf("unknown action: %s", action.Type))
}

// applySelection handles both race selections and auction bids; the two share
// validation apart from the auction burn rule.
func (g *Engine) applySelection(p *Player, payload json.RawMessage, want TurnType) game.Result {
	if want == TurnRace && g.phase != PhaseRaceSelection {
		return game.Fail("cards cannot be selected right now")
	}
	if want == TurnAuction && g.phase != PhaseAuctionSelection {
		return game.Fail("bids cannot be submitted right now")
	}
	if p.Ready {
		return game.Fail("selection already made this turn")
	}

	var sel SelectCardPayload
	if err := json.Unmarshal(payload, &sel); err != nil {
		return game.Fail("malformed selection")
	}

	card, ok := p.Deck.FindInHand(sel.CardInstanceID)
	if !ok {
		return game.Fail("card is not in your hand")
	}
	if !p.hasTokens(sel.TokensUsed) {
		return game.Fail("insufficient tokens")
	}
	if sel.WillBurn {
		if p.emptyBurnSlot() < 0 {
			return game.Fail("no empty burn slot")
		}
		if want == TurnAuction && !card.CanBurn() {
			return game.Fail("this card cannot be burned in auctions")
		}
	}

	p.Selected = &Selection{Card: card, WillBurn: sel.WillBurn, TokensUsed: sel.TokensUsed}
	p.Ready = true
	g.logger.Debug("Selection recorded", "player", p.Name, "card", card.Title, "burn", sel.WillBurn)

	g.maybeReveal()
	return game.OK()
}

// maybeReveal moves to the reveal phase once every connected racer is ready
// and arms the bounded resolution delay.
func (g *Engine) maybeReveal() {
	for _, p := range g.players {
		if g.isConnected(p) && !p.Ready {
			return
		}
	}

	switch g.phase {
	case PhaseRaceSelection:
		g.phase = PhaseRaceReveal
		g.armReveal(g.resolveRace)
	case PhaseAuctionSelection:
		g.phase = PhaseAuctionReveal
		g.armReveal(g.resolveAuction)
	}
}

func (g *Engine) armReveal(resolve func()) {
	if g.deferFn == nil {
		// No scheduler wired (direct-drive tests): resolve immediately.
		resolve()
		return
	}
	// A stale callback is a no-op: the phase guard catches turn movement and
	// the owning lobby drops callbacks from finished games.
	phase := g.phase
	g.deferFn(g.cfg.RevealDelay, func() {
		if g.phase != phase || g.winner != "" {
			return
		}
		resolve()
	})
}

// raceEntry is one racer's selection with its rolled resolution priority.
type raceEntry struct {
	index    int
	player   *Player
	sel      Selection
	priority int
}

// resolveRace executes the simultaneous race selections in descending
// priority order. Ties break toward the lower player index.
func (g *Engine) resolveRace() {
	g.phase = PhaseRaceResolution

	entries := make([]raceEntry, 0, len(g.players))
	for i, p := range g.players {
		if p.Selected == nil {
			continue
		}
		sel := *p.Selected
		entries = append(entries, raceEntry{
			index:    i,
			player:   p,
			sel:      sel,
			priority: g.rollPriority(sel.Card.Priority) + p.PriorityModifier + g.cfg.PriorityBonus(sel.TokensUsed),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority > entries[j].priority
	})

	order := make([]string, 0, len(entries))
	for _, e := range entries {
		order = append(order, e.player.ID)
		g.resolveRaceEntry(e)
	}
	g.history = append(g.history, TurnRecord{Round: g.round, Turn: g.turn, TurnType: TurnRace, Order: order})

	if g.pending != nil {
		// A choose_opponent input is outstanding; the turn finishes once it
		// arrives.
		return
	}
	g.finishRaceResolution()
}

func (g *Engine) resolveRaceEntry(e raceEntry) {
	p := e.player
	card, ok := p.Deck.RemoveFromHand(e.sel.Card.InstanceID)
	if !ok {
		g.logger.Warn("Selected card vanished from hand", "player", p.Name, "card", e.sel.Card.Title)
		p.resetScratch()
		return
	}

	distance := card.RaceNumber + g.cfg.RaceBonus(e.sel.TokensUsed)
	g.movePlayer(p, distance)

	var effects []Effect
	isBurn := false
	if e.sel.WillBurn {
		if slot := p.emptyBurnSlot(); slot >= 0 {
			burned := card
			p.BurnSlots[slot] = &burned
			p.Stats.CardsBurned++
			effects = card.BurnEffects
			isBurn = true
		} else {
			// Slot filled since validation (earlier burn this resolution);
			// fall back to a normal play.
			p.Deck.Discard(card)
			effects = card.Effects
		}
	} else {
		p.Deck.Discard(card)
		effects = card.Effects
	}
	p.Stats.CardsPlayed++

	if g.pending == nil {
		_, pending := g.executeEffects(effects, effectContext{player: p, isBurn: isBurn})
		if pending != nil {
			g.pending = pending
		}
	} else if len(effects) > 0 {
		// Only one input request is serviced per resolution; later effect
		// lists still run to completion where they can.
		g.executeDeferred(effects, p, isBurn)
	}

	p.spendTokens(e.sel.TokensUsed)
	if len(p.Deck.Hand) == 0 {
		p.Deck.DrawN(g.rng, g.cfg.HandSize)
	}
	p.resetScratch()
}

// executeDeferred runs an effect list while another player's input request is
// outstanding; choose-targets degrade to random so resolution stays total.
func (g *Engine) executeDeferred(effects []Effect, p *Player, isBurn bool) {
	for i := range effects {
		if effects[i].Type == EffectMoveOpponent && effects[i].TargetSelection == TargetChoose {
			eff := effects[i]
			eff.TargetSelection = TargetRandom
			effects[i] = eff
		}
	}
	g.executeEffects(effects, effectContext{player: p, isBurn: isBurn})
}

func (g *Engine) finishRaceResolution() {
	if winner := g.checkWin(); winner != "" {
		g.winner = winner
		g.phase = PhaseGameOver
		g.logger.Info("Race won", "winner", g.byID[winner].Name, "round", g.round, "turn", g.turn)
		return
	}
	g.advanceTurn()
}

// applyChooseOpponent answers an outstanding choose_opponent request and runs
// the suspended effect suffix.
func (g *Engine) applyChooseOpponent(p *Player, payload json.RawMessage) game.Result {
	if g.pending == nil || g.pending.playerID != p.ID {
		return game.Fail("no target choice is awaited from you")
	}

	var choice ChooseOpponentPayload
	if err := json.Unmarshal(payload, &choice); err != nil {
		return game.Fail("malformed target choice")
	}
	target := g.playerByID(choice.TargetPlayerID)
	if target == nil || target.ID == p.ID {
		return game.Fail("invalid target")
	}
	if adj, ok := g.pending.request.Params["requiresAdjacent"].(bool); ok && adj && !g.adjacent(p, target) {
		return game.Fail("target is not adjacent")
	}

	pending := g.pending
	g.pending = nil
	ctx := effectContext{player: p, targetID: target.ID, isBurn: pending.isBurn}
	if _, again := g.executeEffects(pending.remaining, ctx); again != nil {
		g.pending = again
		return game.OK()
	}

	if g.phase == PhaseRaceResolution {
		g.finishRaceResolution()
	}
	return game.OK()
}

func (g *Engine) adjacent(a, b *Player) bool {
	if a.Lap != b.Lap {
		return false
	}
	d := a.Space - b.Space
	if d < 0 {
		d = -d
	}
	return d <= 1
}

// checkWin returns the winning player id, breaking multi-candidate finishes
// by furthest space.
func (g *Engine) checkWin() string {
	var candidates []*Player
	for _, p := range g.players {
		if p.Lap > g.cfg.LapsToWin {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Space > candidates[j].Space
	})
	return candidates[0].ID
}

// advanceTurn clears turn-scoped state and opens the next selection phase.
// The auction pool is intentionally retained across the auction turn itself;
// a fresh pool is revealed when a race turn opens so bidders can plan ahead.
func (g *Engine) advanceTurn() {
	for _, p := range g.players {
		p.Selected = nil
		p.Ready = false
	}
	g.auctionOrder = nil
	g.draftIndex = -1
	g.pending = nil

	g.turn++
	if g.turn > g.cfg.TurnsPerRound {
		g.turn = 1
		g.round++
	}

	if g.turn%2 == 1 {
		g.turnType = TurnRace
		g.phase = PhaseRaceSelection
		g.revealPool()
	} else {
		g.turnType = TurnAuction
		g.phase = PhaseAuctionSelection
		if len(g.auctionPool) == 0 {
			g.revealPool()
		}
	}
}

// revealPool slices the next playerCount+1 cards off the shared deck,
// refilling it first from the decks available at the current highest lap.
func (g *Engine) revealPool() {
	needed := len(g.players) + 1
	if len(g.sharedDeck) < needed {
		g.refillSharedDeck()
	}
	if len(g.sharedDeck) < needed {
		needed = len(g.sharedDeck)
	}
	g.auctionPool = append([]Card(nil), g.sharedDeck[:needed]...)
	g.sharedDeck = g.sharedDeck[needed:]
}

func (g *Engine) refillSharedDeck() {
	highest := 1
	for _, p := range g.players {
		if p.Lap > highest {
			highest = p.Lap
		}
	}

	var defs []Card
	for _, deck := range g.deckPolicy(highest) {
		defs = append(defs, CardsForDeck(deck)...)
	}
	batch := expandCopies(defs)
	randutil.Shuffle(g.rng, batch)
	g.sharedDeck = append(g.sharedDeck, batch...)

	g.logger.Debug("Auction deck refilled", "highestLap", highest, "added", len(batch))
}

// rollPriority resolves a card's priority: fixed, or base plus a dice roll.
func (g *Engine) rollPriority(p Priority) int {
	if p.Dice == "" {
		return p.Base
	}
	roll, err := randutil.RollNotation(g.rng, p.Dice)
	if err != nil {
		g.logger.Warn("Bad priority dice notation", "notation", p.Dice, "error", err)
	}
	return p.Base + roll
}

func (g *Engine) playerByID(id string) *Player {
	return g.byID[id]
}

func (g *Engine) opponentsOf(id string) []*Player {
	opps := make([]*Player, 0, len(g.players)-1)
	for _, p := range g.players {
		if p.ID != id {
			opps = append(opps, p)
		}
	}
	return opps
}

// isConnected reports whether a racer gates the ready check. Bots are always
// counted; humans only while their connection is live.
func (g *Engine) isConnected(p *Player) bool {
	return p.Bot || p.connected
}

// SetPlayerConnected implements game.PresenceAware.
func (g *Engine) SetPlayerConnected(playerID string, connected bool) {
	if p := g.playerByID(playerID); p != nil {
		p.connected = connected
		if connected {
			return
		}
		// A departure may leave everyone else ready.
		switch g.phase {
		case PhaseRaceSelection, PhaseAuctionSelection:
			g.maybeReveal()
		}
	}
}

// OnPlayerReconnect implements game.Game: the transient connection identity
// is rebound in place. A miss on the old id is a consistency warning, not an
// error; the lobby-side rebind already succeeded.
func (g *Engine) OnPlayerReconnect(oldID, newID string) {
	p := g.playerByID(oldID)
	if p == nil {
		if g.playerByID(newID) != nil {
			return // already rebound
		}
		g.logger.Warn("Reconnect for unknown player id", "oldId", oldID, "newId", newID)
		return
	}
	delete(g.byID, oldID)
	p.ID = newID
	p.connected = true
	g.byID[newID] = p

	if g.pending != nil && g.pending.playerID == oldID {
		g.pending.playerID = newID
	}
	for i, id := range g.auctionOrder {
		if id == oldID {
			g.auctionOrder[i] = newID
		}
	}
	if g.winner == oldID {
		g.winner = newID
	}
}

// PendingBots implements game.Game.
func (g *Engine) PendingBots() []string {
	var ids []string
	switch g.phase {
	case PhaseRaceSelection, PhaseAuctionSelection:
		for _, p := range g.players {
			if p.Bot && !p.Ready {
				ids = append(ids, p.ID)
			}
		}
	case PhaseRaceResolution:
		if g.pending != nil {
			if p := g.playerByID(g.pending.playerID); p != nil && p.Bot {
				ids = append(ids, p.ID)
			}
		}
	case PhaseAuctionDrafting:
		if id := g.currentDrafter(); id != "" {
			if p := g.playerByID(id); p != nil && p.Bot {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// currentDrafter returns the id of the racer whose draft pick is awaited, or
// empty outside the drafting phase.
func (g *Engine) currentDrafter() string {
	if g.phase != PhaseAuctionDrafting {
		return ""
	}
	if g.draftIndex < 0 || g.draftIndex >= len(g.auctionOrder) || len(g.auctionPool) == 0 {
		return ""
	}
	return g.auctionOrder[g.draftIndex]
}
