package realtime

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"astraxis-server/internal/auth"
	"astraxis-server/internal/shared/config"
	"astraxis-server/internal/shared/cookies"
	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/shared/response"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// Handler upgrades authenticated requests to WebSocket sessions. A session is
// bound to the player id in the token; clients cannot subscribe to anyone
// else's channel.
type Handler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewHandler(hub *Hub, logger *slog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		logger: logger.With("component", "realtime"),
	}
}

func (h *Handler) upgrader() websocket.Upgrader {
	frontendURL := config.GlobalConfig.Frontend.URL
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || strings.EqualFold(origin, frontendURL)
		},
	}
}

// ServeWS handles GET /ws. Auth comes from the cookie or, for clients that
// cannot send cookies on WebSocket requests, a token query parameter.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token, ok := cookies.AuthToken(r)
	if !ok {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		response.Error(w, r, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn("WebSocket upgrade failed", "error", err, "player_id", claims.PlayerID)
		return
	}

	session := newSession(claims.PlayerID)
	h.hub.register(session)
	h.logger.Info("WebSocket session opened", "player_id", claims.PlayerID)

	go h.writePump(conn, session)
	go h.readPump(conn, session)
}

// writePump drains the session's send buffer onto the connection and keeps it
// alive with pings.
func (h *Handler) writePump(conn *websocket.Conn, session *Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-session.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages; the protocol is push-only. It exists to
// process pongs and to notice the peer going away.
func (h *Handler) readPump(conn *websocket.Conn, session *Session) {
	defer func() {
		h.hub.unregister(session)
		conn.Close()
		h.logger.Info("WebSocket session closed", "player_id", session.playerID)
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
