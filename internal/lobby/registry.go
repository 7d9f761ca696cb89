package lobby

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

// Outbound event names carried by the Sender.
const (
	EventLobbyUpdated     = "lobby-updated"
	EventGameStarted      = "game-started"
	EventGameStateUpdated = "game-state-updated"
)

// Sender delivers an event to one connection. The transport layer implements
// it; bots never receive deliveries.
type Sender interface {
	Send(connID string, event string, payload any)
}

// BotService is the bot registry seen from the lobby side.
type BotService interface {
	// CreateBot mints a bot identity for the lobby's game type.
	CreateBot(slug, gameType, style string) (id string, name string, err error)
	// RemoveBot releases a bot identity.
	RemoveBot(slug, botID string)
	// Plan reschedules bot actions against the game's currently pending set.
	Plan(slug string, g game.Game)
	// CleanupGame cancels everything scheduled for the lobby.
	CleanupGame(slug string)
}

// Registry owns every lobby. Lock ordering is registry map lock before any
// lobby mutex; the cleanup timer table has its own lock so timer arming can
// happen under a lobby mutex.
type Registry struct {
	logger       *log.Logger
	clock        quartz.Clock
	games        *game.Registry
	cleanupAfter time.Duration
	seedFn       func() int64

	sender Sender
	bots   BotService

	mu      sync.RWMutex
	lobbies map[string]*Lobby

	cleanupMu sync.Mutex
	cleanup   map[string]*quartz.Timer
}

// NewRegistry constructs an empty lobby registry. Sender and BotService are
// wired afterwards; both sides of those edges are constructed before either
// is connected.
func NewRegistry(logger *log.Logger, clock quartz.Clock, games *game.Registry, cleanupAfter time.Duration) *Registry {
	return &Registry{
		logger:       logger.WithPrefix("lobby"),
		clock:        clock,
		games:        games,
		cleanupAfter: cleanupAfter,
		seedFn:       func() int64 { return clock.Now().UnixNano() },
		lobbies:      make(map[string]*Lobby),
		cleanup:      make(map[string]*quartz.Timer),
	}
}

// SetSender wires the delivery side.
func (r *Registry) SetSender(s Sender) { r.sender = s }

// SetBots wires the bot service.
func (r *Registry) SetBots(b BotService) { r.bots = b }

// SetSeedFunc overrides game seeding, for deterministic tests.
func (r *Registry) SetSeedFunc(fn func() int64) { r.seedFn = fn }

// withLobby runs fn under the lobby's mutex. Returns false when the slug is
// unknown.
func (r *Registry) withLobby(slug string, fn func(l *Lobby)) bool {
	r.mu.RLock()
	l := r.lobbies[slug]
	r.mu.RUnlock()
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l)
	return true
}

func (r *Registry) getOrCreate(slug string) *Lobby {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.lobbies[slug]; ok {
		return l
	}
	now := r.clock.Now()
	l := &Lobby{
		Slug:         slug,
		Title:        slug,
		GameType:     "henhur",
		Options:      game.Options{},
		CreatedAt:    now,
		LastActivity: now,
	}
	r.lobbies[slug] = l
	r.logger.Info("Lobby created", "slug", slug)
	return l
}

// Join adds a connection to a lobby, creating the lobby when the slug is
// unknown. A display name matching a disconnected participant reconnects that
// seat: the identity is rebound in place and the game, if any, is told.
// Joining twice with the same connection and name is a no-op.
func (r *Registry) Join(slug, connID, name string) game.Result {
	if name == "" {
		return game.Fail("a display name is required")
	}
	l := r.getOrCreate(slug)
	l.mu.Lock()
	defer l.mu.Unlock()

	r.cancelCleanup(slug)
	now := r.clock.Now()
	l.LastActivity = now

	if p := l.findByName(name); p != nil {
		if p.Connected && p.ID != connID {
			return game.Fail("that name is taken in this lobby")
		}
		oldID := p.ID
		p.Connected = true
		p.LastPing = now
		if oldID != connID {
			p.ID = connID
			if l.Game != nil {
				l.Game.OnPlayerReconnect(oldID, connID)
			}
			r.logger.Info("Participant reconnected", "slug", slug, "name", name)
		}
		r.notifyPresence(l, connID, true)
		l.promoteLeader()
		r.broadcastLocked(l)
		return game.OK()
	}

	p := &Participant{
		ID:        connID,
		Name:      name,
		Connected: true,
		JoinedAt:  now,
		LastPing:  now,
	}
	l.Participants = append(l.Participants, p)
	l.promoteLeader()
	r.logger.Info("Participant joined", "slug", slug, "name", name, "leader", p.Leader)
	r.broadcastLocked(l)
	return game.OK()
}

// Leave handles a connection going away. Before a game starts the seat is
// removed; during a game it is only marked disconnected so the player can
// reconnect by name. A lobby with no live humans left gets a destruction
// timer.
func (r *Registry) Leave(slug, connID string) {
	r.withLobby(slug, func(l *Lobby) {
		p := l.findByID(connID)
		if p == nil || p.Bot {
			return
		}

		if l.Game == nil {
			for i, other := range l.Participants {
				if other == p {
					l.Participants = append(l.Participants[:i], l.Participants[i+1:]...)
					break
				}
			}
		} else {
			p.Connected = false
			r.notifyPresence(l, connID, false)
		}
		l.promoteLeader()
		r.logger.Info("Participant left", "slug", slug, "name", p.Name)

		if l.connectedHumans() == 0 {
			r.armCleanup(slug)
		}
		r.broadcastLocked(l)
	})
}

// notifyPresence forwards a connectivity transition to presence-aware games.
// Caller holds the lobby mutex.
func (r *Registry) notifyPresence(l *Lobby, playerID string, connected bool) {
	if pa, ok := l.Game.(game.PresenceAware); ok {
		pa.SetPlayerConnected(playerID, connected)
	}
}

// Touch records liveness: every inbound event and heartbeat response
// refreshes the lobby's last-activity clock and the sender's last-ping stamp.
func (r *Registry) Touch(slug, connID string) {
	r.withLobby(slug, func(l *Lobby) {
		now := r.clock.Now()
		l.LastActivity = now
		if p := l.findByID(connID); p != nil {
			p.LastPing = now
		}
	})
}

// UpdateTitle renames the lobby. Leader only; silently ignored otherwise.
func (r *Registry) UpdateTitle(slug, connID, title string) {
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil || title == "" {
			return
		}
		l.Title = title
		r.broadcastLocked(l)
	})
}

// UpdateGameType switches the lobby's selected game and replaces the options
// with the sanitized subset the new type recognizes. Leader only.
func (r *Registry) UpdateGameType(slug, connID, gameType string, opts game.Options) {
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil || l.Game != nil {
			return
		}
		if !KnownGameType(gameType) {
			return
		}
		l.GameType = gameType
		l.Options = SanitizeOptions(gameType, opts)
		r.broadcastLocked(l)
	})
}

// UpdateOptions merges recognized option fields for the current game type.
// Leader only.
func (r *Registry) UpdateOptions(slug, connID string, opts game.Options) {
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil || l.Game != nil {
			return
		}
		for k, v := range SanitizeOptions(l.GameType, opts) {
			l.Options[k] = v
		}
		r.broadcastLocked(l)
	})
}

// UpdatePlayerName renames a participant. Any participant may rename
// themselves; display names stay unique within the lobby.
func (r *Registry) UpdatePlayerName(slug, connID, name string) game.Result {
	res := game.Fail("you are not in this lobby")
	r.withLobby(slug, func(l *Lobby) {
		p := l.findByID(connID)
		if p == nil {
			return
		}
		if name == "" {
			res = game.Fail("a display name is required")
			return
		}
		if other := l.findByName(name); other != nil && other != p {
			res = game.Fail("that name is taken in this lobby")
			return
		}
		p.Name = name
		r.broadcastLocked(l)
		res = game.OK()
	})
	return res
}

// TransferLeader hands leadership to another connected human. Leader only.
func (r *Registry) TransferLeader(slug, connID, targetID string) {
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil {
			return
		}
		target := l.findByID(targetID)
		if target == nil || target.Bot || !target.Connected {
			return
		}
		for _, p := range l.Participants {
			p.Leader = false
		}
		target.Leader = true
		r.logger.Info("Leadership transferred", "slug", slug, "to", target.Name)
		r.broadcastLocked(l)
	})
}

// AddBot seats a bot of the given style. Leader only, before the game starts.
func (r *Registry) AddBot(slug, connID, style string) game.Result {
	res := game.Result{}
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil {
			return
		}
		if l.Game != nil {
			res = game.Fail("the game is already running")
			return
		}
		if r.bots == nil {
			res = game.Fail("bots are not available")
			return
		}
		id, name, err := r.bots.CreateBot(slug, l.GameType, style)
		if err != nil {
			res = game.Fail(err.Error())
			return
		}
		l.Participants = append(l.Participants, &Participant{
			ID:        id,
			Name:      name,
			Bot:       true,
			BotStyle:  style,
			Connected: true,
			JoinedAt:  r.clock.Now(),
		})
		r.logger.Info("Bot added", "slug", slug, "name", name, "style", style)
		r.broadcastLocked(l)
		res = game.OK()
	})
	return res
}

// RemoveBot unseats a bot. Leader only, before the game starts.
func (r *Registry) RemoveBot(slug, connID, botID string) {
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil || l.Game != nil {
			return
		}
		for i, p := range l.Participants {
			if p.ID == botID && p.Bot {
				l.Participants = append(l.Participants[:i], l.Participants[i+1:]...)
				if r.bots != nil {
					r.bots.RemoveBot(slug, botID)
				}
				r.broadcastLocked(l)
				return
			}
		}
	})
}

// StartGame constructs and starts the lobby's selected game. Leader only
// (silent otherwise); needs at least two seats that are bots or connected.
// gameType, when non-empty, overrides the lobby selection first.
func (r *Registry) StartGame(slug, connID, gameType string, opts game.Options) game.Result {
	res := game.Result{}
	r.withLobby(slug, func(l *Lobby) {
		if l.leaderFor(connID) == nil {
			return
		}
		if l.Game != nil {
			res = game.Fail("the game is already running")
			return
		}
		if gameType != "" && KnownGameType(gameType) {
			l.GameType = gameType
			l.Options = SanitizeOptions(gameType, opts)
		}
		if l.connectedCount() < 2 {
			res = game.Fail("at least 2 players are needed to start")
			return
		}

		var seats []game.Seat
		for _, p := range l.Participants {
			if !p.Bot && !p.Connected {
				continue
			}
			seats = append(seats, game.Seat{ID: p.ID, Name: p.Name, IsBot: p.Bot, BotStyle: p.BotStyle})
		}

		l.gameGen++
		gen := l.gameGen
		deps := game.Deps{
			Logger: r.logger.With("slug", slug),
			Clock:  r.clock,
			Seed:   r.seedFn(),
			Defer:  r.deferFor(slug, gen),
		}
		g, err := r.games.New(l.GameType, seats, l.Options, deps)
		if err != nil {
			res = game.Fail(err.Error())
			return
		}
		if err := g.Start(); err != nil {
			res = game.Fail(err.Error())
			return
		}
		l.Game = g

		r.logger.Info("Game started", "slug", slug, "gameType", l.GameType, "seats", len(seats))
		r.sendToHumans(l, EventGameStarted, map[string]any{"gameType": l.GameType})
		r.broadcastLocked(l)
		r.planBotsLocked(l)
		res = game.OK()
	})
	return res
}

// deferFor builds the scheduling hook handed to a game instance. The callback
// re-enters through the lobby mutex and is dropped when the game generation
// moved on.
func (r *Registry) deferFor(slug string, gen int) func(d time.Duration, fn func()) func() {
	return func(d time.Duration, fn func()) func() {
		timer := r.clock.AfterFunc(d, func() {
			r.withLobby(slug, func(l *Lobby) {
				if l.Game == nil || l.gameGen != gen {
					return
				}
				fn()
				r.broadcastLocked(l)
				r.planBotsLocked(l)
			})
		})
		return func() { timer.Stop() }
	}
}

// GameAction forwards a player action to the lobby's game. State-changing
// successes broadcast; failures return to the caller only.
func (r *Registry) GameAction(slug, connID string, action game.Action) game.Result {
	res := game.Fail("lobby not found")
	r.withLobby(slug, func(l *Lobby) {
		if l.Game == nil {
			res = game.Fail("no game in progress")
			return
		}
		if l.findByID(connID) == nil {
			res = game.Fail("you are not in this lobby")
			return
		}
		l.LastActivity = r.clock.Now()
		res = l.Game.ApplyAction(connID, action)
		if res.Success {
			r.broadcastLocked(l)
			r.planBotsLocked(l)
		}
	})
	return res
}

// DispatchBot lets the bot scheduler act through the same serialized path as
// humans. choose runs under the lobby mutex against the live game.
func (r *Registry) DispatchBot(slug, botID string, choose func(g game.Game) (game.Action, bool)) {
	r.withLobby(slug, func(l *Lobby) {
		if l.Game == nil {
			return
		}
		action, ok := choose(l.Game)
		if !ok {
			return
		}
		res := l.Game.ApplyAction(botID, action)
		if !res.Success {
			r.logger.Warn("Bot action rejected", "slug", slug, "bot", botID, "action", action.Type, "reason", res.Message)
			return
		}
		r.broadcastLocked(l)
		r.planBotsLocked(l)
	})
}

// List returns a summary row per lobby, sorted by slug on the caller's side
// if needed.
func (r *Registry) List() []Summary {
	r.mu.RLock()
	lobbies := make([]*Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.RUnlock()

	out := make([]Summary, 0, len(lobbies))
	for _, l := range lobbies {
		l.mu.Lock()
		out = append(out, l.summary())
		l.mu.Unlock()
	}
	return out
}

// Snapshot returns the current lobby snapshot, for transports that need a
// point-in-time read.
func (r *Registry) Snapshot(slug string) (Snapshot, bool) {
	var snap Snapshot
	ok := r.withLobby(slug, func(l *Lobby) {
		snap = l.snapshot()
	})
	return snap, ok
}

// broadcastLocked delivers the lobby snapshot, and per-viewer game state when
// a game runs, to every connected human. Caller holds the lobby mutex.
func (r *Registry) broadcastLocked(l *Lobby) {
	if r.sender == nil {
		return
	}
	snap := l.snapshot()
	for _, p := range l.Participants {
		if p.Bot || !p.Connected {
			continue
		}
		r.sender.Send(p.ID, EventLobbyUpdated, snap)
		if l.Game != nil {
			r.sender.Send(p.ID, EventGameStateUpdated, l.Game.ProjectFor(p.ID))
		}
	}
}

func (r *Registry) sendToHumans(l *Lobby, event string, payload any) {
	if r.sender == nil {
		return
	}
	for _, p := range l.Participants {
		if !p.Bot && p.Connected {
			r.sender.Send(p.ID, event, payload)
		}
	}
}

func (r *Registry) planBotsLocked(l *Lobby) {
	if r.bots != nil && l.Game != nil {
		r.bots.Plan(l.Slug, l.Game)
	}
}

// armCleanup schedules lobby destruction after the idle window. An existing
// timer is replaced.
func (r *Registry) armCleanup(slug string) {
	r.cleanupMu.Lock()
	defer r.cleanupMu.Unlock()
	if t, ok := r.cleanup[slug]; ok {
		t.Stop()
	}
	r.cleanup[slug] = r.clock.AfterFunc(r.cleanupAfter, func() {
		r.destroyIfEmpty(slug)
	})
	r.logger.Debug("Cleanup armed", "slug", slug, "after", r.cleanupAfter)
}

func (r *Registry) cancelCleanup(slug string) {
	r.cleanupMu.Lock()
	defer r.cleanupMu.Unlock()
	if t, ok := r.cleanup[slug]; ok {
		t.Stop()
		delete(r.cleanup, slug)
	}
}

// destroyIfEmpty removes the lobby unless a human reconnected while the timer
// ran.
func (r *Registry) destroyIfEmpty(slug string) {
	r.mu.Lock()
	l := r.lobbies[slug]
	if l == nil {
		r.mu.Unlock()
		return
	}
	l.mu.Lock()
	if l.connectedHumans() > 0 {
		l.mu.Unlock()
		r.mu.Unlock()
		return
	}
	delete(r.lobbies, slug)
	l.Game = nil
	l.mu.Unlock()
	r.mu.Unlock()

	r.cancelCleanup(slug)
	if r.bots != nil {
		r.bots.CleanupGame(slug)
	}
	r.logger.Info("Lobby destroyed", "slug", slug)
}
