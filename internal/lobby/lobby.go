// Package lobby hosts the session layer: named rooms where participants
// gather, pick a game type, and play. Each lobby serializes every mutation of
// itself and its game behind one mutex; the registry owns lobby lifecycle.
package lobby

import (
	"sync"
	"time"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

// Participant is one seat in a lobby. ID is the transient connection identity
// (or bot id); Name is the stable rejoin key.
type Participant struct {
	ID        string
	Name      string
	Leader    bool
	Connected bool
	Bot       bool
	BotStyle  string
	JoinedAt  time.Time
	LastPing  time.Time
}

// Lobby is one room. All fields are guarded by mu, which also serializes the
// hosted game.
type Lobby struct {
	mu sync.Mutex

	Slug     string
	Title    string
	GameType string
	Options  game.Options

	CreatedAt    time.Time
	LastActivity time.Time

	Participants []*Participant
	Game         game.Game

	// gameGen distinguishes game instances so stale deferred callbacks from a
	// finished game never touch a newer one.
	gameGen int
}

// ParticipantView is the public snapshot of one seat.
type ParticipantView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Leader    bool      `json:"isLeader"`
	Connected bool      `json:"connected"`
	Bot       bool      `json:"isBot"`
	BotStyle  string    `json:"botStyle,omitempty"`
	LastPing  time.Time `json:"lastPing"`
}

// Snapshot is the lobby-updated payload broadcast after every mutation.
type Snapshot struct {
	Slug           string            `json:"slug"`
	Title          string            `json:"title"`
	GameType       string            `json:"gameType"`
	Options        game.Options      `json:"options,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
	LastActivity   time.Time         `json:"lastActivity"`
	Players        []ParticipantView `json:"players"`
	GameInProgress bool              `json:"gameInProgress"`
}

// Summary is one row of the lobby listing.
type Summary struct {
	Slug           string `json:"slug"`
	Title          string `json:"title"`
	GameType       string `json:"gameType"`
	Players        int    `json:"players"`
	Connected      int    `json:"connected"`
	GameInProgress bool   `json:"gameInProgress"`
}

// snapshot builds the broadcast payload. Caller holds mu.
func (l *Lobby) snapshot() Snapshot {
	snap := Snapshot{
		Slug:           l.Slug,
		Title:          l.Title,
		GameType:       l.GameType,
		Options:        l.Options,
		CreatedAt:      l.CreatedAt,
		LastActivity:   l.LastActivity,
		GameInProgress: l.Game != nil,
	}
	for _, p := range l.Participants {
		snap.Players = append(snap.Players, ParticipantView{
			ID:        p.ID,
			Name:      p.Name,
			Leader:    p.Leader,
			Connected: p.Connected,
			Bot:       p.Bot,
			BotStyle:  p.BotStyle,
			LastPing:  p.LastPing,
		})
	}
	return snap
}

// summary builds the listing row. Caller holds mu.
func (l *Lobby) summary() Summary {
	s := Summary{
		Slug:           l.Slug,
		Title:          l.Title,
		GameType:       l.GameType,
		Players:        len(l.Participants),
		GameInProgress: l.Game != nil,
	}
	for _, p := range l.Participants {
		if p.Connected {
			s.Connected++
		}
	}
	return s
}

// findByID returns the participant bound to the given identity. Caller holds
// mu.
func (l *Lobby) findByID(id string) *Participant {
	for _, p := range l.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// findByName returns the human participant with the given display name.
// Caller holds mu.
func (l *Lobby) findByName(name string) *Participant {
	for _, p := range l.Participants {
		if !p.Bot && p.Name == name {
			return p
		}
	}
	return nil
}

// leaderFor returns the participant if it is the connected leader, nil
// otherwise. Leader-only operations go silent on nil. Caller holds mu.
func (l *Lobby) leaderFor(connID string) *Participant {
	p := l.findByID(connID)
	if p == nil || !p.Leader {
		return nil
	}
	return p
}

// promoteLeader moves leadership to the first connected human when the
// current leader is gone. Caller holds mu.
func (l *Lobby) promoteLeader() {
	for _, p := range l.Participants {
		if p.Leader && p.Connected && !p.Bot {
			return
		}
	}
	for _, p := range l.Participants {
		p.Leader = false
	}
	for _, p := range l.Participants {
		if !p.Bot && p.Connected {
			p.Leader = true
			return
		}
	}
}

// connectedHumans counts live human connections. Caller holds mu.
func (l *Lobby) connectedHumans() int {
	n := 0
	for _, p := range l.Participants {
		if !p.Bot && p.Connected {
			n++
		}
	}
	return n
}

// connectedCount counts seats eligible to play: bots plus connected humans.
// Caller holds mu.
func (l *Lobby) connectedCount() int {
	n := 0
	for _, p := range l.Participants {
		if p.Bot || p.Connected {
			n++
		}
	}
	return n
}
