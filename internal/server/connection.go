package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
	"github.com/kirschjd/1001-game-nights-sub000/internal/war"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16384
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client. The slug and name fields are
// per-connection scratch: which lobby the connection sits in and under what
// display name, so a close can be turned into a Leave.
type Connection struct {
	id     string
	conn   *websocket.Conn
	send   chan *Event
	server *Server
	logger *log.Logger
	clock  quartz.Clock

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu       sync.RWMutex
	slug     string
	name     string
	lastPong time.Time

	hbMu    sync.Mutex
	hbTimer *quartz.Timer
}

// NewConnection creates a connection wrapper around an upgraded socket.
func NewConnection(id string, conn *websocket.Conn, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		id:     id,
		conn:   conn,
		send:   make(chan *Event, 256),
		server: server,
		logger: server.logger.WithPrefix("conn").With("connId", id),
		clock:  server.clock,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	c.setPong(c.clock.Now())
	go c.writePump()
	go c.readPump()
	c.scheduleHeartbeat()
}

// Close closes the connection once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.stopHeartbeat()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendEvent queues an event for delivery. A full buffer closes the
// connection; a slow client must not stall a lobby broadcast.
func (c *Connection) SendEvent(ev *Event) error {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("Attempted to send on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- ev:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

func (c *Connection) sendEvent(event string, payload any) {
	ev, err := NewEvent(event, payload)
	if err != nil {
		c.logger.Error("Failed to build event", "event", event, "error", err)
		return
	}
	_ = c.SendEvent(ev)
}

func (c *Connection) sendError(message string) {
	c.sendEvent(EventError, ErrorPayload{Message: message})
}

// Slug returns the lobby this connection sits in, or empty.
func (c *Connection) Slug() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slug
}

func (c *Connection) setLobby(slug, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slug = slug
	c.name = name
}

func (c *Connection) setPong(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastPong = t
}

func (c *Connection) pongAge() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clock.Now().Sub(c.lastPong)
}

// scheduleHeartbeat arms the application-level ping. A late pong is logged,
// never acted on: the socket close event stays the canonical disconnect
// signal.
func (c *Connection) scheduleHeartbeat() {
	interval := c.server.cfg.HeartbeatInterval()
	grace := c.server.cfg.HeartbeatGrace()

	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	c.hbTimer = c.clock.AfterFunc(interval, func() {
		if c.ctx.Err() != nil {
			return
		}
		if age := c.pongAge(); age > interval+grace {
			c.logger.Warn("Heartbeat pong overdue", "age", age)
		}
		c.sendEvent(EventHeartbeatPing, nil)
		c.scheduleHeartbeat()
	})
}

func (c *Connection) stopHeartbeat() {
	c.hbMu.Lock()
	defer c.hbMu.Unlock()
	if c.hbTimer != nil {
		c.hbTimer.Stop()
	}
}

// readPump handles incoming events from the client.
func (c *Connection) readPump() {
	defer func() {
		_ = c.Close()
		c.server.removeConnection(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleEvent(&ev)
	}
}

// writePump handles outgoing events to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				c.logger.Error("Failed to write event", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleEvent dispatches one inbound event. Leader-only operations that the
// lobby rejects silently produce no error event here either.
func (c *Connection) handleEvent(ev *Event) {
	c.logger.Debug("Received event", "event", ev.Event, "slug", c.Slug())
	lobbies := c.server.lobbies

	if slug := c.Slug(); slug != "" {
		lobbies.Touch(slug, c.id)
	}

	switch ev.Event {
	case EventJoinLobby:
		var p JoinLobbyPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Slug == "" || p.PlayerName == "" {
			c.sendError("join-lobby needs a slug and a player name")
			return
		}
		if old := c.Slug(); old != "" && old != p.Slug {
			lobbies.Leave(old, c.id)
		}
		if res := lobbies.Join(p.Slug, c.id, p.PlayerName); !res.Success {
			c.sendError(res.Message)
			return
		}
		c.setLobby(p.Slug, p.PlayerName)

	case EventLeaveLobby:
		if slug := c.Slug(); slug != "" {
			lobbies.Leave(slug, c.id)
			c.setLobby("", "")
		}

	case EventUpdateLobbyTitle:
		var p UpdateLobbyTitlePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("malformed payload")
			return
		}
		lobbies.UpdateTitle(c.Slug(), c.id, p.Title)

	case EventUpdatePlayerName:
		var p UpdatePlayerNamePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("malformed payload")
			return
		}
		if res := lobbies.UpdatePlayerName(c.Slug(), c.id, p.Name); !res.Success {
			c.sendError(res.Message)
			return
		}
		c.setLobby(c.Slug(), p.Name)

	case EventUpdateGameType:
		var p UpdateGameTypePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("malformed payload")
			return
		}
		lobbies.UpdateGameType(c.Slug(), c.id, p.GameType, p.Options)

	case EventUpdateGameOptions:
		var p UpdateGameOptionsPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("malformed payload")
			return
		}
		lobbies.UpdateOptions(c.Slug(), c.id, p.Options)

	case EventChangeLeader:
		var p ChangeLeaderPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("malformed payload")
			return
		}
		lobbies.TransferLeader(c.Slug(), c.id, p.PlayerID)

	case EventStartGame:
		var p StartGamePayload
		if len(ev.Payload) > 0 {
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				c.sendError("malformed payload")
				return
			}
		}
		c.reportFailure(lobbies.StartGame(c.Slug(), c.id, p.GameType, p.Options))

	case EventStartEnhancedWar:
		var p StartEnhancedWarPayload
		if len(ev.Payload) > 0 {
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				c.sendError("malformed payload")
				return
			}
		}
		opts := game.Options{}
		if p.Variant != "" {
			opts["variant"] = p.Variant
		}
		c.reportFailure(lobbies.StartGame(c.Slug(), c.id, war.GameType, opts))

	case EventHenHurAction, EventEnhancedWarAction:
		var p GameActionPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil || p.Action == "" {
			c.sendError("malformed game action")
			return
		}
		res := lobbies.GameAction(c.Slug(), c.id, game.Action{Type: p.Action, Payload: p.Data})
		c.reportFailure(res)

	case EventAddBot:
		var p AddBotPayload
		if len(ev.Payload) > 0 {
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				c.sendError("malformed payload")
				return
			}
		}
		c.reportFailure(lobbies.AddBot(c.Slug(), c.id, p.Style))

	case EventRemoveBot:
		var p RemoveBotPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			c.sendError("malformed payload")
			return
		}
		lobbies.RemoveBot(c.Slug(), c.id, p.BotID)

	case EventListBotStyles:
		var p ListBotStylesPayload
		if len(ev.Payload) > 0 {
			if err := json.Unmarshal(ev.Payload, &p); err != nil {
				c.sendError("malformed payload")
				return
			}
		}
		gameType := p.GameType
		if gameType == "" {
			if snap, ok := lobbies.Snapshot(c.Slug()); ok {
				gameType = snap.GameType
			}
		}
		payload := BotStylesPayload{GameType: gameType}
		if c.server.bots != nil {
			payload.Styles = c.server.bots.Styles(gameType)
		}
		c.sendEvent(EventBotStyles, payload)

	case EventListLobbies:
		c.sendEvent(EventLobbyList, lobbies.List())

	case EventHeartbeatPong:
		c.setPong(c.clock.Now())

	default:
		c.sendError("unknown event: " + ev.Event)
	}
}

// reportFailure forwards a failed Result's message to the sender. Empty
// messages stay silent; that is how leader-only rejections pass through.
func (c *Connection) reportFailure(res game.Result) {
	if !res.Success && res.Message != "" {
		c.sendError(res.Message)
	}
}
