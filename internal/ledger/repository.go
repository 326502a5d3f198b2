package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"astraxis-server/internal/economy"
	"astraxis-server/internal/shared/database"
)

type Repository struct {
	db     *database.DB
	logger *slog.Logger
}

func NewRepository(db *database.DB, logger *slog.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) getExecutor(tx *database.Tx) database.Executor {
	if tx != nil {
		return tx
	}
	return r.db
}

// GetBalance loads a planet's resource balance. Returns (nil, nil) when the
// planet has no balance row, which indicates a data-integrity problem for any
// planet created through onboarding.
func (r *Repository) GetBalance(ctx context.Context, planetID int, tx *database.Tx) (*Balance, error) {
	exec := r.getExecutor(tx)

	var b Balance
	b.PlanetID = planetID
	err := exec.QueryRowContext(ctx,
		`SELECT metal, crystal, deuterium, last_calculated_at FROM resource_balances WHERE planet_id = $1`,
		planetID,
	).Scan(&b.Resources.Metal, &b.Resources.Crystal, &b.Resources.Deuterium, &b.LastCalculatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query resource balance: %w", err)
	}
	return &b, nil
}

// CreateBalance inserts the initial balance row for a new planet.
func (r *Repository) CreateBalance(ctx context.Context, planetID int, resources economy.Resources, at time.Time, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO resource_balances (planet_id, metal, crystal, deuterium, last_calculated_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := exec.ExecContext(ctx, query, planetID, resources.Metal, resources.Crystal, resources.Deuterium, at); err != nil {
		return fmt.Errorf("failed to create resource balance: %w", err)
	}
	return nil
}

// UpdateBalance overwrites a planet's balance and observation timestamp.
// Only called from inside an accrual-then-debit transaction.
func (r *Repository) UpdateBalance(ctx context.Context, planetID int, resources economy.Resources, at time.Time, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		UPDATE resource_balances
		SET metal = $2, crystal = $3, deuterium = $4, last_calculated_at = $5
		WHERE planet_id = $1`

	result, err := exec.ExecContext(ctx, query, planetID, resources.Metal, resources.Crystal, resources.Deuterium, at)
	if err != nil {
		return fmt.Errorf("failed to update resource balance: %w", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("no resource balance row for planet %d", planetID)
	}
	return nil
}

// GetProduction loads a planet's cached production rates. Returns (nil, nil)
// when no cache exists yet.
func (r *Repository) GetProduction(ctx context.Context, planetID int, tx *database.Tx) (*CachedProduction, error) {
	exec := r.getExecutor(tx)

	var p CachedProduction
	p.PlanetID = planetID
	err := exec.QueryRowContext(ctx,
		`SELECT metal_per_hour, crystal_per_hour, deut_per_hour, energy, energy_produced, energy_used, calculated_at
		 FROM production_cache WHERE planet_id = $1`,
		planetID,
	).Scan(
		&p.Rates.MetalPerHour,
		&p.Rates.CrystalPerHour,
		&p.Rates.DeutPerHour,
		&p.Rates.Energy,
		&p.Rates.EnergyProduced,
		&p.Rates.EnergyUsed,
		&p.CalculatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query production cache: %w", err)
	}
	return &p, nil
}

// UpsertProduction replaces a planet's cached production rates.
func (r *Repository) UpsertProduction(ctx context.Context, planetID int, rates economy.ProductionRates, at time.Time, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO production_cache (planet_id, metal_per_hour, crystal_per_hour, deut_per_hour, energy, energy_produced, energy_used, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (planet_id) DO UPDATE SET
			metal_per_hour = EXCLUDED.metal_per_hour,
			crystal_per_hour = EXCLUDED.crystal_per_hour,
			deut_per_hour = EXCLUDED.deut_per_hour,
			energy = EXCLUDED.energy,
			energy_produced = EXCLUDED.energy_produced,
			energy_used = EXCLUDED.energy_used,
			calculated_at = EXCLUDED.calculated_at`

	_, err := exec.ExecContext(ctx, query,
		planetID,
		rates.MetalPerHour,
		rates.CrystalPerHour,
		rates.DeutPerHour,
		rates.Energy,
		rates.EnergyProduced,
		rates.EnergyUsed,
		at,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert production cache: %w", err)
	}
	return nil
}
