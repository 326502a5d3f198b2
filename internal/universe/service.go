// Package universe manages game worlds and places new players into them.
package universe

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"astraxis-server/internal/economy"
	"astraxis-server/internal/ledger"
	"astraxis-server/internal/planet"
	"astraxis-server/internal/shared/config"
	"astraxis-server/internal/shared/database"
	apperrors "astraxis-server/internal/shared/errors"
)

const starterPlanetName = "Homeworld"

// starterBuildings are the levels every new colony begins with.
var starterBuildings = map[economy.BuildingKey]int{
	economy.BuildingMetalMine:       1,
	economy.BuildingCrystalMine:     1,
	economy.BuildingSolarPlant:      1,
	economy.BuildingRoboticsFactory: 1,
	economy.BuildingShipyard:        1,
	economy.BuildingResearchLab:     1,
}

var starterBalance = economy.Resources{Metal: 500, Crystal: 500, Deuterium: 0}

type Service struct {
	repo       *Repository
	planetRepo *planet.Repository
	ledger     *ledger.Service
	logger     *slog.Logger
}

func NewService(repo *Repository, planetRepo *planet.Repository, ledgerService *ledger.Service, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		planetRepo: planetRepo,
		ledger:     ledgerService,
		logger:     logger,
	}
}

// EnsureDefault returns the default universe, creating it from configuration
// on first boot.
func (s *Service) EnsureDefault(ctx context.Context) (*Universe, error) {
	existing, err := s.repo.GetDefault(ctx, nil)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	cfg := config.GlobalConfig.Universe
	created, err := s.repo.CreateUniverse(ctx, cfg.DefaultName, cfg.SpeedBuild, cfg.SpeedResearch,
		cfg.Galaxies, cfg.Systems, cfg.Positions, nil)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Default universe created",
		"universe_id", created.ID,
		"name", created.Name,
		"speed_build", created.SpeedBuild,
		"speed_research", created.SpeedResearch,
	)
	return created, nil
}

// CreateUniverse creates an additional game world. Admin only; the handler
// enforces that.
func (s *Service) CreateUniverse(ctx context.Context, name string, speedBuild, speedResearch, galaxies, systems, positions int) (*Universe, error) {
	if name == "" {
		return nil, apperrors.Validation("universe name is required")
	}
	if speedBuild < 1 || speedResearch < 1 {
		return nil, apperrors.Validation("universe speeds must be at least 1")
	}
	if galaxies < 1 || systems < 1 || positions < 1 {
		return nil, apperrors.Validation("universe dimensions must be positive")
	}
	return s.repo.CreateUniverse(ctx, name, speedBuild, speedResearch, galaxies, systems, positions, nil)
}

// List returns every universe.
func (s *Service) List(ctx context.Context) ([]Universe, error) {
	return s.repo.List(ctx)
}

// CreateStarterPlanet places a new player's homeworld on a random free slot
// and seeds its starting buildings, balance and production cache. Runs inside
// the caller's onboarding transaction so a failed signup leaves nothing
// behind. The slot's unique constraint remains the final arbiter under
// concurrent signups.
func (s *Service) CreateStarterPlanet(ctx context.Context, uni *Universe, playerID int, tx *database.Tx) (*planet.Planet, error) {
	now := time.Now().UTC()

	galaxy, system, position, err := s.pickFreeSlot(ctx, uni, tx)
	if err != nil {
		return nil, err
	}

	temperature := economy.PositionTemperature(position)
	p, err := s.planetRepo.CreatePlanet(ctx, uni.ID, playerID, galaxy, system, position, starterPlanetName, temperature, tx)
	if err != nil {
		return nil, err
	}

	for key, level := range starterBuildings {
		if err := s.planetRepo.UpsertBuildingLevel(ctx, p.ID, key, level, tx); err != nil {
			return nil, err
		}
	}
	if err := s.ledger.CreateBalance(ctx, p.ID, starterBalance, now, tx); err != nil {
		return nil, err
	}
	if _, err := s.ledger.RecomputeProduction(ctx, p, now, tx); err != nil {
		return nil, err
	}

	s.logger.Info("Starter planet created",
		"player_id", playerID,
		"planet_id", p.ID,
		"galaxy", galaxy,
		"system", system,
		"position", position,
	)
	return p, nil
}

// pickFreeSlot draws random coordinates until it finds an unoccupied slot,
// bounded by the configured attempt limit.
func (s *Service) pickFreeSlot(ctx context.Context, uni *Universe, tx *database.Tx) (galaxy, system, position int, err error) {
	maxAttempts := config.GlobalConfig.Game.SlotMaxAttempts

	for attempt := 0; attempt < maxAttempts; attempt++ {
		galaxy = rand.Intn(uni.Galaxies) + 1
		system = rand.Intn(uni.Systems) + 1
		position = rand.Intn(uni.Positions) + 1

		taken, err := s.repo.SlotTaken(ctx, uni.ID, galaxy, system, position, tx)
		if err != nil {
			return 0, 0, 0, err
		}
		if !taken {
			return galaxy, system, position, nil
		}
	}

	return 0, 0, 0, apperrors.WrapInternal(fmt.Sprintf("no free planet slot found after %d attempts", maxAttempts), nil)
}
