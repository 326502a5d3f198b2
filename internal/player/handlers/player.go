// Package handlers exposes the player HTTP surface: the profile, research
// state and the player-wide queue.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"astraxis-server/internal/auth"
	"astraxis-server/internal/economy"
	"astraxis-server/internal/middleware"
	"astraxis-server/internal/player"
	"astraxis-server/internal/queue"
	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/shared/response"
)

type PlayerHandlers struct {
	playerRepo *player.Repository
	queueSvc   *queue.Service
	logger     *slog.Logger
}

func NewPlayerHandlers(playerRepo *player.Repository, queueSvc *queue.Service, logger *slog.Logger) *PlayerHandlers {
	return &PlayerHandlers{
		playerRepo: playerRepo,
		queueSvc:   queueSvc,
		logger:     logger.With("component", "player_handlers"),
	}
}

func (h *PlayerHandlers) claims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperrors.Unauthorized("authentication required"))
		return nil, false
	}
	return claims, true
}

// Me handles GET /api/players/me.
func (h *PlayerHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	p, err := h.playerRepo.GetByID(r.Context(), claims.PlayerID, nil)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	if p == nil {
		response.Error(w, r, h.logger, apperrors.NotFound("player not found"))
		return
	}

	research, err := h.playerRepo.GetResearchLevels(r.Context(), claims.PlayerID, nil)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	response.Success(w, http.StatusOK, map[string]any{
		"player":   p,
		"research": research,
	})
}

// StartResearch handles POST /api/research/start. The optional planet_id names the
// planet that pays; omitted means the oldest planet.
func (h *PlayerHandlers) StartResearch(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	var req struct {
		Key      economy.ResearchKey `json:"key"`
		PlanetID *int                `json:"planet_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.logger, apperrors.WrapValidation("invalid request body", err))
		return
	}

	item, err := h.queueSvc.StartResearch(r.Context(), claims.PlayerID, req.PlanetID, req.Key)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusCreated, item)
}

// Queue handles GET /api/queue across all of the player's planets.
func (h *PlayerHandlers) Queue(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claims(w, r)
	if !ok {
		return
	}

	items, err := h.queueSvc.GetPlayerQueue(r.Context(), claims.PlayerID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"items": items})
}
