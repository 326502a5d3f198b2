// Package ledger owns per-planet resource balances and the derived
// production cache. Balances are brought up to date lazily: every read or
// spend first accrues what the planet produced since it was last observed.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"astraxis-server/internal/economy"
	"astraxis-server/internal/planet"
	"astraxis-server/internal/shared/database"
	apperrors "astraxis-server/internal/shared/errors"
)

type Service struct {
	repo       *Repository
	planetRepo *planet.Repository
	logger     *slog.Logger
}

func NewService(repo *Repository, planetRepo *planet.Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		planetRepo: planetRepo,
		logger:     logger,
	}
}

// ApplyAccrual brings a planet's balance up to now inside the caller's
// serializable transaction and returns the updated balance and the current
// production rates. Must run before any cost check that reads the balance.
func (s *Service) ApplyAccrual(ctx context.Context, p *planet.Planet, now time.Time, tx *database.Tx) (*Balance, economy.ProductionRates, error) {
	balance, err := s.repo.GetBalance(ctx, p.ID, tx)
	if err != nil {
		return nil, economy.ProductionRates{}, err
	}
	if balance == nil {
		return nil, economy.ProductionRates{}, apperrors.NotFoundf("resource balance missing for planet %d", p.ID)
	}

	levels, err := s.planetRepo.GetBuildingLevels(ctx, p.ID, tx)
	if err != nil {
		return nil, economy.ProductionRates{}, err
	}

	production, err := s.repo.GetProduction(ctx, p.ID, tx)
	if err != nil {
		return nil, economy.ProductionRates{}, err
	}
	var rates economy.ProductionRates
	if production == nil {
		// No cache yet; rebuild from current levels and settings.
		rates, err = s.RecomputeProduction(ctx, p, now, tx)
		if err != nil {
			return nil, economy.ProductionRates{}, err
		}
	} else {
		rates = production.Rates
	}

	capacities := economy.StorageCapacities(levels)
	accrued, changed := Accrue(balance.Resources, rates, capacities, balance.LastCalculatedAt, now)
	if !changed {
		return balance, rates, nil
	}

	if err := s.repo.UpdateBalance(ctx, p.ID, accrued, now, tx); err != nil {
		return nil, economy.ProductionRates{}, err
	}

	balance.Resources = accrued
	balance.LastCalculatedAt = now
	return balance, rates, nil
}

// Debit subtracts cost from a freshly accrued balance. The caller is
// responsible for the sufficiency check; this only persists the remainder.
func (s *Service) Debit(ctx context.Context, balance *Balance, cost economy.Resources, now time.Time, tx *database.Tx) (economy.Resources, error) {
	remaining := economy.Subtract(balance.Resources, cost)
	if remaining.Metal < 0 || remaining.Crystal < 0 || remaining.Deuterium < 0 {
		return economy.Resources{}, fmt.Errorf("debit below zero for planet %d", balance.PlanetID)
	}
	if err := s.repo.UpdateBalance(ctx, balance.PlanetID, remaining, now, tx); err != nil {
		return economy.Resources{}, err
	}
	balance.Resources = remaining
	return remaining, nil
}

// CreateBalance seeds the initial balance row for a freshly created planet.
func (s *Service) CreateBalance(ctx context.Context, planetID int, resources economy.Resources, now time.Time, tx *database.Tx) error {
	return s.repo.CreateBalance(ctx, planetID, resources, now, tx)
}

// RecomputeProduction rebuilds the production cache from the planet's current
// building levels, settings and position. Called at onboarding, after every
// building completion and after every production-factor change, always inside
// the same transaction as the mutation that invalidated the cache.
func (s *Service) RecomputeProduction(ctx context.Context, p *planet.Planet, now time.Time, tx *database.Tx) (economy.ProductionRates, error) {
	levels, err := s.planetRepo.GetBuildingLevels(ctx, p.ID, tx)
	if err != nil {
		return economy.ProductionRates{}, err
	}
	settings, err := s.planetRepo.GetBuildingSettings(ctx, p.ID, tx)
	if err != nil {
		return economy.ProductionRates{}, err
	}

	rates := economy.ProductionFromLevels(levels, p.Position, settings)
	if err := s.repo.UpsertProduction(ctx, p.ID, rates, now, tx); err != nil {
		return economy.ProductionRates{}, err
	}

	s.logger.Debug("Production cache rebuilt",
		"planet_id", p.ID,
		"metal_per_hour", rates.MetalPerHour,
		"crystal_per_hour", rates.CrystalPerHour,
		"deut_per_hour", rates.DeutPerHour,
		"energy", rates.Energy,
	)
	return rates, nil
}

// Accrue computes the balance after elapsed production, clamped per resource
// to storage capacity. Reports false when nothing changed. Time never runs
// backwards here: a now at or before the last observation leaves the balance
// untouched. A balance already above capacity is preserved, never reduced.
func Accrue(current economy.Resources, rates economy.ProductionRates, capacities economy.Resources, lastAt, now time.Time) (economy.Resources, bool) {
	elapsed := now.Sub(lastAt).Seconds()
	if elapsed <= 0 {
		return current, false
	}

	delta := economy.DeltaForSeconds(rates, elapsed)
	next := economy.Resources{
		Metal:     accrueOne(current.Metal, delta.Metal, capacities.Metal),
		Crystal:   accrueOne(current.Crystal, delta.Crystal, capacities.Crystal),
		Deuterium: accrueOne(current.Deuterium, delta.Deuterium, capacities.Deuterium),
	}
	return next, true
}

func accrueOne(current, delta, capacity float64) float64 {
	next := current + delta
	if next > capacity {
		next = capacity
	}
	if next < current {
		return current
	}
	return next
}
