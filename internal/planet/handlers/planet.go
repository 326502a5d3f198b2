// Package handlers exposes the planet HTTP surface: listings, the overview
// read and the upgrade actions.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"astraxis-server/internal/auth"
	"astraxis-server/internal/economy"
	"astraxis-server/internal/middleware"
	"astraxis-server/internal/planet"
	"astraxis-server/internal/queue"
	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/shared/response"
)

type PlanetHandlers struct {
	planetRepo *planet.Repository
	queueSvc   *queue.Service
	logger     *slog.Logger
}

func NewPlanetHandlers(planetRepo *planet.Repository, queueSvc *queue.Service, logger *slog.Logger) *PlanetHandlers {
	return &PlanetHandlers{
		planetRepo: planetRepo,
		queueSvc:   queueSvc,
		logger:     logger.With("component", "planet_handlers"),
	}
}

// List handles GET /api/planets.
func (h *PlanetHandlers) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, h.logger, apperrors.Unauthorized("authentication required"))
		return
	}

	planets, err := h.planetRepo.GetPlanetsByPlayer(r.Context(), claims.PlayerID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"planets": planets})
}

// Overview handles GET /api/planets/{id}/overview. Accrues first, so the returned
// balances are current as of this request.
func (h *PlanetHandlers) Overview(w http.ResponseWriter, r *http.Request) {
	claims, planetID, ok := h.authedPlanet(w, r)
	if !ok {
		return
	}

	overview, err := h.queueSvc.GetOverview(r.Context(), claims.PlayerID, planetID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusOK, overview)
}

// StartBuilding handles POST /api/planets/{id}/buildings/start.
func (h *PlanetHandlers) StartBuilding(w http.ResponseWriter, r *http.Request) {
	claims, planetID, ok := h.authedPlanet(w, r)
	if !ok {
		return
	}

	var req struct {
		Key economy.BuildingKey `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.logger, apperrors.WrapValidation("invalid request body", err))
		return
	}

	item, err := h.queueSvc.StartBuilding(r.Context(), claims.PlayerID, planetID, req.Key)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusCreated, item)
}

// StartShips handles POST /api/planets/{id}/ships/start.
func (h *PlanetHandlers) StartShips(w http.ResponseWriter, r *http.Request) {
	claims, planetID, ok := h.authedPlanet(w, r)
	if !ok {
		return
	}

	var req struct {
		Key economy.ShipKey `json:"key"`
		Qty int             `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.logger, apperrors.WrapValidation("invalid request body", err))
		return
	}

	item, err := h.queueSvc.StartShips(r.Context(), claims.PlayerID, planetID, req.Key, req.Qty)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusCreated, item)
}

// UpdateProduction handles POST /api/planets/{id}/production.
func (h *PlanetHandlers) UpdateProduction(w http.ResponseWriter, r *http.Request) {
	claims, planetID, ok := h.authedPlanet(w, r)
	if !ok {
		return
	}

	var req struct {
		Key    economy.BuildingKey `json:"key"`
		Factor int                 `json:"factor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, r, h.logger, apperrors.WrapValidation("invalid request body", err))
		return
	}

	if err := h.queueSvc.UpdateProductionFactor(r.Context(), claims.PlayerID, planetID, req.Key, req.Factor); err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"key": req.Key, "factor": req.Factor})
}

// Queue handles GET /api/planets/{id}/queue.
func (h *PlanetHandlers) Queue(w http.ResponseWriter, r *http.Request) {
	claims, planetID, ok := h.authedPlanet(w, r)
	if !ok {
		return
	}

	items, err := h.queueSvc.GetPlanetQueue(r.Context(), claims.PlayerID, planetID)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}
	response.Success(w, http.StatusOK, map[string]any{"items": items})
}

func (h *PlanetHandlers) authedPlanet(w http.ResponseWriter, r *http.Request) (claims *auth.Claims, planetID int, ok bool) {
	c, found := middleware.ClaimsFromContext(r.Context())
	if !found {
		response.Error(w, r, h.logger, apperrors.Unauthorized("authentication required"))
		return nil, 0, false
	}

	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		response.Error(w, r, h.logger, apperrors.Validation("invalid planet id"))
		return nil, 0, false
	}
	return c, id, true
}
