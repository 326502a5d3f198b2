package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"astraxis-server/internal/shared/config"
)

const (
	stateCookieName = "oauth_state"
	stateCookieAge  = 600
)

// issueState generates a CSRF state token and stores it in a short-lived
// cookie for the callback to compare against.
func issueState(w http.ResponseWriter) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieAge,
		HttpOnly: true,
		Secure:   config.GlobalConfig.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return state, nil
}

// consumeState clears the state cookie and reports whether the callback state
// matches it.
func consumeState(w http.ResponseWriter, r *http.Request, state string) bool {
	cookie, err := r.Cookie(stateCookieName)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   config.GlobalConfig.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	return err == nil && state != "" && cookie.Value == state
}
