// Package server carries the WebSocket transport: connection lifecycle,
// inbound event dispatch into the lobby layer, outbound delivery, and the
// application-level heartbeat.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/kirschjd/1001-game-nights-sub000/internal/bot"
	"github.com/kirschjd/1001-game-nights-sub000/internal/lobby"
)

// BotCatalog lists the selectable bot styles per game type, for clients that
// offer a choice before add-bot.
type BotCatalog interface {
	Styles(gameType string) []bot.Style
}

// Server owns the listener and the connection registry. It implements
// lobby.Sender so lobby broadcasts reach clients.
type Server struct {
	cfg     *Config
	logger  *log.Logger
	clock   quartz.Clock
	lobbies *lobby.Registry
	bots    BotCatalog

	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*Connection

	httpServer *http.Server
}

// New constructs the transport server.
func New(cfg *Config, logger *log.Logger, clock quartz.Clock, lobbies *lobby.Registry) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger.WithPrefix("server"),
		clock:   clock,
		lobbies: lobbies,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The lobby layer has its own identity model; any origin may
			// connect.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*Connection),
	}
}

// SetBotCatalog wires the style listing. Optional; without it list-bot-styles
// answers with an empty catalog.
func (s *Server) SetBotCatalog(b BotCatalog) { s.bots = b }

// Send implements lobby.Sender. Unknown connection ids (bots, just-closed
// sockets) are dropped silently.
func (s *Server) Send(connID string, event string, payload any) {
	s.mu.RLock()
	c := s.conns[connID]
	s.mu.RUnlock()
	if c == nil {
		return
	}
	ev, err := NewEvent(event, payload)
	if err != nil {
		s.logger.Error("Failed to encode event", "event", event, "error", err)
		return
	}
	_ = c.SendEvent(ev)
}

// HandleWebSocket upgrades an HTTP request and starts the connection pumps.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	c := NewConnection(uuid.NewString(), ws, s)
	s.mu.Lock()
	s.conns[c.id] = c
	total := len(s.conns)
	s.mu.Unlock()

	s.logger.Info("Client connected", "connId", c.id, "connections", total)
	c.Start()
}

// removeConnection unregisters a closed connection and turns the close into a
// lobby Leave. The close event is the canonical disconnect signal.
func (s *Server) removeConnection(c *Connection) {
	s.mu.Lock()
	if s.conns[c.id] != c {
		s.mu.Unlock()
		return
	}
	delete(s.conns, c.id)
	total := len(s.conns)
	s.mu.Unlock()

	if slug := c.Slug(); slug != "" {
		s.lobbies.Leave(slug, c.id)
	}
	s.logger.Info("Client disconnected", "connId", c.id, "connections", total)
}

// ListenAndServe blocks serving the WebSocket endpoint until Shutdown.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	s.httpServer = &http.Server{
		Addr:    s.cfg.GetServerAddress(),
		Handler: mux,
	}

	s.logger.Info("Listening", "address", s.cfg.GetServerAddress())
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown closes every connection and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
