package server

import (
	"log/slog"
	"net/http"

	"astraxis-server/internal/auth"
	"astraxis-server/internal/middleware"
	planethandlers "astraxis-server/internal/planet/handlers"
	playerhandlers "astraxis-server/internal/player/handlers"
	"astraxis-server/internal/realtime"
	universehandlers "astraxis-server/internal/universe/handlers"
)

// Handlers carries the HTTP surface of every domain.
type Handlers struct {
	Auth     *auth.Handlers
	Planet   *planethandlers.PlanetHandlers
	Player   *playerhandlers.PlayerHandlers
	Universe *universehandlers.UniverseHandlers
	Realtime *realtime.Handler
	Health   *HealthHandler
}

func buildRoutes(h *Handlers, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	requireAuth := middleware.Auth(logger)
	requireAdmin := middleware.RequireAdmin(logger)

	mux.HandleFunc("GET /api/server/health", h.Health.Check)

	mux.HandleFunc("GET /auth/{provider}", h.Auth.Login)
	mux.HandleFunc("GET /auth/{provider}/callback", h.Auth.Callback)
	mux.HandleFunc("POST /auth/logout", h.Auth.Logout)

	// The WebSocket endpoint authenticates itself; browsers cannot attach
	// custom headers to upgrade requests.
	mux.HandleFunc("GET /ws", h.Realtime.ServeWS)

	mux.Handle("GET /api/players/me", requireAuth(http.HandlerFunc(h.Player.Me)))
	mux.Handle("POST /api/research/start", requireAuth(http.HandlerFunc(h.Player.StartResearch)))
	mux.Handle("GET /api/queue", requireAuth(http.HandlerFunc(h.Player.Queue)))

	mux.Handle("GET /api/planets", requireAuth(http.HandlerFunc(h.Planet.List)))
	mux.Handle("GET /api/planets/{id}/overview", requireAuth(http.HandlerFunc(h.Planet.Overview)))
	mux.Handle("POST /api/planets/{id}/buildings/start", requireAuth(http.HandlerFunc(h.Planet.StartBuilding)))
	mux.Handle("POST /api/planets/{id}/ships/start", requireAuth(http.HandlerFunc(h.Planet.StartShips)))
	mux.Handle("POST /api/planets/{id}/production", requireAuth(http.HandlerFunc(h.Planet.UpdateProduction)))
	mux.Handle("GET /api/planets/{id}/queue", requireAuth(http.HandlerFunc(h.Planet.Queue)))

	mux.Handle("GET /api/universes", requireAuth(http.HandlerFunc(h.Universe.List)))
	mux.Handle("POST /api/universes", requireAuth(requireAdmin(http.HandlerFunc(h.Universe.Create))))

	rateLimiter := middleware.NewRateLimiter(logger)
	return rateLimiter.Middleware(middleware.CORS()(mux))
}
