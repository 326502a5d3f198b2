package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"astraxis-server/internal/shared/config"
	apperrors "astraxis-server/internal/shared/errors"
)

// ProviderUser is the normalized identity returned by every OAuth provider.
type ProviderUser struct {
	ID          string
	Email       string
	Username    string
	DisplayName string
	AvatarURL   string
}

// Provider bundles an OAuth2 config with the provider-specific user lookup.
type Provider struct {
	Name      string
	Config    *oauth2.Config
	FetchUser func(ctx context.Context, client *http.Client) (*ProviderUser, error)
}

var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// Providers returns the configured OAuth providers keyed by name. Providers
// without credentials are left out.
func Providers() map[string]*Provider {
	cfg := config.GlobalConfig
	providers := make(map[string]*Provider)

	if cfg.GoogleOAuthConfigured() {
		providers["google"] = &Provider{
			Name: "google",
			Config: &oauth2.Config{
				ClientID:     cfg.OAuth.Google.ClientID,
				ClientSecret: cfg.OAuth.Google.ClientSecret,
				RedirectURL:  cfg.OAuth.Google.RedirectURL,
				Scopes:       cfg.OAuth.Google.Scopes,
				Endpoint:     google.Endpoint,
			},
			FetchUser: fetchGoogleUser,
		}
	}
	if cfg.GitHubOAuthConfigured() {
		providers["github"] = &Provider{
			Name: "github",
			Config: &oauth2.Config{
				ClientID:     cfg.OAuth.GitHub.ClientID,
				ClientSecret: cfg.OAuth.GitHub.ClientSecret,
				RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
				Scopes:       cfg.OAuth.GitHub.Scopes,
				Endpoint:     github.Endpoint,
			},
			FetchUser: fetchGitHubUser,
		}
	}
	if cfg.DiscordOAuthConfigured() {
		providers["discord"] = &Provider{
			Name: "discord",
			Config: &oauth2.Config{
				ClientID:     cfg.OAuth.Discord.ClientID,
				ClientSecret: cfg.OAuth.Discord.ClientSecret,
				RedirectURL:  cfg.OAuth.Discord.RedirectURL,
				Scopes:       cfg.OAuth.Discord.Scopes,
				Endpoint:     discordEndpoint,
			},
			FetchUser: fetchDiscordUser,
		}
	}

	return providers
}

func fetchJSON(ctx context.Context, client *http.Client, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build user info request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return apperrors.WrapExternal("failed to fetch user info", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return apperrors.External(fmt.Sprintf("user info request returned %d: %s", resp.StatusCode, body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return apperrors.WrapExternal("failed to decode user info", err)
	}
	return nil
}

func fetchGoogleUser(ctx context.Context, client *http.Client) (*ProviderUser, error) {
	var info struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := fetchJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, apperrors.External("google user info missing id")
	}

	return &ProviderUser{
		ID:          info.ID,
		Email:       info.Email,
		Username:    info.Email,
		DisplayName: info.Name,
		AvatarURL:   info.Picture,
	}, nil
}

func fetchGitHubUser(ctx context.Context, client *http.Client) (*ProviderUser, error) {
	var info struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := fetchJSON(ctx, client, "https://api.github.com/user", &info); err != nil {
		return nil, err
	}
	if info.ID == 0 {
		return nil, apperrors.External("github user info missing id")
	}

	email := info.Email
	if email == "" {
		// The profile email is often hidden; the emails endpoint still lists
		// the verified primary address when user:email is granted.
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := fetchJSON(ctx, client, "https://api.github.com/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
		}
	}

	displayName := info.Name
	if displayName == "" {
		displayName = info.Login
	}

	return &ProviderUser{
		ID:          strconv.FormatInt(info.ID, 10),
		Email:       email,
		Username:    info.Login,
		DisplayName: displayName,
		AvatarURL:   info.AvatarURL,
	}, nil
}

func fetchDiscordUser(ctx context.Context, client *http.Client) (*ProviderUser, error) {
	var info struct {
		ID         string `json:"id"`
		Username   string `json:"username"`
		GlobalName string `json:"global_name"`
		Email      string `json:"email"`
		Avatar     string `json:"avatar"`
	}
	if err := fetchJSON(ctx, client, "https://discord.com/api/users/@me", &info); err != nil {
		return nil, err
	}
	if info.ID == "" {
		return nil, apperrors.External("discord user info missing id")
	}

	displayName := info.GlobalName
	if displayName == "" {
		displayName = info.Username
	}

	avatarURL := ""
	if info.Avatar != "" {
		avatarURL = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", info.ID, info.Avatar)
	}

	return &ProviderUser{
		ID:          info.ID,
		Email:       info.Email,
		Username:    info.Username,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
	}, nil
}
