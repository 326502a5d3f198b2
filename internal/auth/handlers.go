package auth

import (
	"log/slog"
	"net/http"

	"astraxis-server/internal/shared/config"
	"astraxis-server/internal/shared/cookies"
	apperrors "astraxis-server/internal/shared/errors"
	"astraxis-server/internal/shared/response"
)

type Handlers struct {
	service   *Service
	providers map[string]*Provider
	logger    *slog.Logger
}

func NewHandlers(service *Service, logger *slog.Logger) *Handlers {
	return &Handlers{
		service:   service,
		providers: Providers(),
		logger:    logger.With("component", "auth"),
	}
}

// Login handles GET /auth/{provider} by redirecting to the provider's consent
// page with a fresh CSRF state.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		response.Error(w, r, h.logger, apperrors.NotFoundf("unknown auth provider %q", r.PathValue("provider")))
		return
	}

	state, err := issueState(w)
	if err != nil {
		response.Error(w, r, h.logger, apperrors.WrapInternal("failed to start login", err))
		return
	}

	http.Redirect(w, r, provider.Config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/{provider}/callback: state check, code exchange,
// identity fetch, onboarding and the auth cookie.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[r.PathValue("provider")]
	if !ok {
		response.Error(w, r, h.logger, apperrors.NotFoundf("unknown auth provider %q", r.PathValue("provider")))
		return
	}

	if !consumeState(w, r, r.URL.Query().Get("state")) {
		response.Error(w, r, h.logger, apperrors.Unauthorized("invalid oauth state"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		response.Error(w, r, h.logger, apperrors.Validation("missing authorization code"))
		return
	}

	token, err := provider.Config.Exchange(r.Context(), code)
	if err != nil {
		response.Error(w, r, h.logger, apperrors.WrapExternal("failed to exchange authorization code", err))
		return
	}

	user, err := provider.FetchUser(r.Context(), provider.Config.Client(r.Context(), token))
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	p, err := h.service.LoginOrOnboard(r.Context(), provider.Name, user)
	if err != nil {
		response.Error(w, r, h.logger, err)
		return
	}

	jwt, err := GenerateToken(p)
	if err != nil {
		response.Error(w, r, h.logger, apperrors.WrapInternal("failed to issue token", err))
		return
	}
	cookies.SetAuthCookie(w, jwt)

	http.Redirect(w, r, config.GlobalConfig.Frontend.URL, http.StatusTemporaryRedirect)
}

// Logout handles POST /auth/logout.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	cookies.ClearAuthCookie(w)
	response.Success(w, http.StatusOK, map[string]string{"status": "logged out"})
}
