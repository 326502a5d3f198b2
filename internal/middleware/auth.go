package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"astraxis-server/internal/auth"
	"astraxis-server/internal/shared/cookies"
	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/shared/response"
)

type contextKey string

const claimsContextKey contextKey = "auth_claims"

// Auth rejects requests without a valid auth cookie and stores the token
// claims in the request context.
func Auth(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := cookies.AuthToken(r)
			if !ok {
				response.Error(w, r, logger, apperrors.Unauthorized("authentication required"))
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				response.Error(w, r, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a handler behind the admin flag. Must run after Auth.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Error(w, r, logger, apperrors.Unauthorized("authentication required"))
				return
			}
			if !claims.IsAdmin {
				response.Error(w, r, logger, apperrors.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext returns the authenticated claims stored by Auth.
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}
