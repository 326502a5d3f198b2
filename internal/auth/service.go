// Package auth handles OAuth login, JWT issuance and new-player onboarding.
package auth

import (
	"context"
	"log/slog"

	"astraxis-server/internal/player"
	"astraxis-server/internal/shared/config"
	"astraxis-server/internal/shared/database"
	"astraxis-server/internal/universe"
)

type Service struct {
	db          *database.DB
	playerRepo  *player.Repository
	universeSvc *universe.Service
	logger      *slog.Logger
}

func NewService(db *database.DB, playerRepo *player.Repository, universeSvc *universe.Service, logger *slog.Logger) *Service {
	return &Service{
		db:          db,
		playerRepo:  playerRepo,
		universeSvc: universeSvc,
		logger:      logger,
	}
}

// LoginOrOnboard resolves an OAuth identity to a player, creating the player
// together with their starter planet on first login. Player creation and
// planet placement share one transaction so a failed placement never leaves a
// planetless player behind.
func (s *Service) LoginOrOnboard(ctx context.Context, provider string, user *ProviderUser) (*player.Player, error) {
	existing, err := s.playerRepo.GetByProviderIdentity(ctx, provider, user.ID, nil)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	uni, err := s.universeSvc.EnsureDefault(ctx)
	if err != nil {
		return nil, err
	}

	isAdmin := user.Email != "" && user.Email == config.GlobalConfig.Admin.Email

	tx, err := s.db.BeginSerializableTx(ctx)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	created, err := s.playerRepo.CreatePlayer(ctx, provider, user.ID,
		user.Email, user.Username, user.DisplayName, user.AvatarURL, isAdmin, tx)
	if err != nil {
		// A concurrent first login for the same identity may have won the
		// insert; fall back to reading the row it created.
		if winner, readErr := s.playerRepo.GetByProviderIdentity(ctx, provider, user.ID, nil); readErr == nil && winner != nil {
			return winner, nil
		}
		return nil, err
	}

	if _, err := s.universeSvc.CreateStarterPlanet(ctx, uni, created.ID, tx); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.logger.Info("Player onboarded",
		"player_id", created.ID,
		"provider", provider,
		"username", created.Username,
		"is_admin", created.IsAdmin,
	)
	return created, nil
}
