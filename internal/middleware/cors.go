package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"astraxis-server/internal/shared/config"
)

// CORS allows the configured frontend origin with credentials, since auth
// rides on a cookie.
func CORS() func(http.Handler) http.Handler {
	cfg := config.GlobalConfig

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.URL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
		Debug:            cfg.Frontend.CORSDebug,
	})

	return c.Handler
}
