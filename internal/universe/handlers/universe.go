// Package handlers exposes universe administration endpoints.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/shared/response"
	"astraxis-server/internal/universe"
)

type UniverseHandlers struct {
	service *universe.Service
	logger  *slog.Logger
}

func NewUniverseHandlers(service *universe.Service, logger *slog.Logger) *UniverseHandlers {
	return &UniverseHandlers{
		service: service,
		logger:  logger.With("component", "universe_handlers"),
	}
}

// List handles GET /api/universes.
func (h *UniverseHandlers) List(w http.ResponseWriter, r *http.Request) {
	universes, err := h.service.List(r.Context())
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"universes": universes})
}

// Create handles POST /api/universes. Admin only; the route wraps it in
// RequireAdmin.
func (h *UniverseHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string `json:"name"`
		SpeedBuild    int    `json:"speed_build"`
		SpeedResearch int    `json:"speed_research"`
		Galaxies      int    `json:"galaxies"`
		Systems       int    `json:"systems"`
		Positions     int    `json:"positions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.logger, apperrors.WrapValidation("invalid request body", err))
		return
	}

	created, err := h.service.CreateUniverse(r.Context(), req.Name,
		req.SpeedBuild, req.SpeedResearch, req.Galaxies, req.Systems, req.Positions)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusCreated, created)
}
