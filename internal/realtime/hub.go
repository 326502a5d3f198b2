// Package realtime pushes balance and queue changes to connected clients over
// WebSocket. Each player has a private channel; with Redis enabled, events are
// published through it so every server instance reaches its own sessions.
package realtime

import (
	"log/slog"
	"sync"
)

const sessionSendBuffer = 32

// Session is one connected WebSocket client. Messages are handed over through
// a buffered channel; the connection's writer goroutine drains it.
type Session struct {
	playerID int
	send     chan []byte

	closeOnce sync.Once
}

func newSession(playerID int) *Session {
	return &Session{
		playerID: playerID,
		send:     make(chan []byte, sessionSendBuffer),
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.send)
	})
}

// Hub tracks which sessions belong to which player and delivers messages to
// all of a player's sessions.
type Hub struct {
	mu       sync.RWMutex
	sessions map[int]map[*Session]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[int]map[*Session]struct{}),
		logger:   logger,
	}
}

func (h *Hub) register(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[session.playerID] == nil {
		h.sessions[session.playerID] = make(map[*Session]struct{})
	}
	h.sessions[session.playerID][session] = struct{}{}
}

func (h *Hub) unregister(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	players := h.sessions[session.playerID]
	if players == nil {
		return
	}
	if _, ok := players[session]; !ok {
		return
	}
	delete(players, session)
	if len(players) == 0 {
		delete(h.sessions, session.playerID)
	}
	session.close()
}

// Deliver hands a message to every session of one player. A session whose
// buffer is full is skipped; the client reconciles through the overview
// endpoint anyway.
func (h *Hub) Deliver(playerID int, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for session := range h.sessions[playerID] {
		select {
		case session.send <- message:
		default:
			h.logger.Warn("Dropping realtime message, session buffer full", "player_id", playerID)
		}
	}
}

// SessionCount returns the number of sessions connected for one player.
func (h *Hub) SessionCount(playerID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[playerID])
}
