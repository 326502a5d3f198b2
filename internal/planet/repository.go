package planet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

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

const planetColumns = "id, universe_id, player_id, galaxy, system, position, name, temperature, created_at, updated_at"

func scanPlanet(row *sql.Row) (*Planet, error) {
	var p Planet
	err := row.Scan(
		&p.ID,
		&p.UniverseID,
		&p.PlayerID,
		&p.Galaxy,
		&p.System,
		&p.Position,
		&p.Name,
		&p.Temperature,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePlanet inserts a planet at the given slot. A unique violation on the
// coordinate constraint surfaces as-is so callers can retry another slot.
func (r *Repository) CreatePlanet(ctx context.Context, universeID, playerID, galaxy, system, position int, name string, temperature int, tx *database.Tx) (*Planet, error) {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO planets (universe_id, player_id, galaxy, system, position, name, temperature)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + planetColumns

	return scanPlanet(exec.QueryRowContext(ctx, query, universeID, playerID, galaxy, system, position, name, temperature))
}

// GetPlanet loads a planet by id regardless of owner. Returns (nil, nil)
// when the planet does not exist.
func (r *Repository) GetPlanet(ctx context.Context, planetID int, tx *database.Tx) (*Planet, error) {
	exec := r.getExecutor(tx)

	query := `SELECT ` + planetColumns + ` FROM planets WHERE id = $1`

	p, err := scanPlanet(exec.QueryRowContext(ctx, query, planetID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query planet: %w", err)
	}
	return p, nil
}

// GetOldestPlanet returns the player's first-created planet, or (nil, nil)
// when the player has none.
func (r *Repository) GetOldestPlanet(ctx context.Context, playerID int, tx *database.Tx) (*Planet, error) {
	exec := r.getExecutor(tx)

	query := `SELECT ` + planetColumns + ` FROM planets WHERE player_id = $1 ORDER BY created_at, id LIMIT 1`

	p, err := scanPlanet(exec.QueryRowContext(ctx, query, playerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query oldest planet: %w", err)
	}
	return p, nil
}

// GetPlanetsByPlayer lists all of a player's planets ordered by coordinates.
func (r *Repository) GetPlanetsByPlayer(ctx context.Context, playerID int) ([]Planet, error) {
	query := `SELECT ` + planetColumns + ` FROM planets WHERE player_id = $1 ORDER BY galaxy, system, position`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer rows.Close()

	var planets []Planet
	for rows.Next() {
		var p Planet
		err := rows.Scan(
			&p.ID,
			&p.UniverseID,
			&p.PlayerID,
			&p.Galaxy,
			&p.System,
			&p.Position,
			&p.Name,
			&p.Temperature,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		planets = append(planets, p)
	}

	return planets, rows.Err()
}

// GetBuildingLevels returns the planet's building levels keyed by building.
// Buildings never built are absent (level 0).
func (r *Repository) GetBuildingLevels(ctx context.Context, planetID int, tx *database.Tx) (map[economy.BuildingKey]int, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx, `SELECT building_key, level FROM building_levels WHERE planet_id = $1`, planetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query building levels: %w", err)
	}
	defer rows.Close()

	levels := make(map[economy.BuildingKey]int)
	for rows.Next() {
		var key economy.BuildingKey
		var level int
		if err := rows.Scan(&key, &level); err != nil {
			return nil, fmt.Errorf("failed to scan building level: %w", err)
		}
		levels[key] = level
	}

	return levels, rows.Err()
}

// UpsertBuildingLevel sets one building to the given level.
func (r *Repository) UpsertBuildingLevel(ctx context.Context, planetID int, key economy.BuildingKey, level int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO building_levels (planet_id, building_key, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (planet_id, building_key) DO UPDATE SET level = EXCLUDED.level`

	if _, err := exec.ExecContext(ctx, query, planetID, key, level); err != nil {
		return fmt.Errorf("failed to upsert building level: %w", err)
	}
	return nil
}

// GetBuildingSettings returns the planet's production factors keyed by
// building. Buildings without an explicit setting are absent (factor 100).
func (r *Repository) GetBuildingSettings(ctx context.Context, planetID int, tx *database.Tx) (map[economy.BuildingKey]int, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx, `SELECT building_key, factor FROM building_settings WHERE planet_id = $1`, planetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query building settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[economy.BuildingKey]int)
	for rows.Next() {
		var key economy.BuildingKey
		var factor int
		if err := rows.Scan(&key, &factor); err != nil {
			return nil, fmt.Errorf("failed to scan building setting: %w", err)
		}
		settings[key] = factor
	}

	return settings, rows.Err()
}

// UpsertBuildingSetting sets the production factor for one building.
func (r *Repository) UpsertBuildingSetting(ctx context.Context, planetID int, key economy.BuildingKey, factor int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO building_settings (planet_id, building_key, factor)
		VALUES ($1, $2, $3)
		ON CONFLICT (planet_id, building_key) DO UPDATE SET factor = EXCLUDED.factor`

	if _, err := exec.ExecContext(ctx, query, planetID, key, factor); err != nil {
		return fmt.Errorf("failed to upsert building setting: %w", err)
	}
	return nil
}

// GetShipCounts returns the planet's ship counts keyed by ship type.
func (r *Repository) GetShipCounts(ctx context.Context, planetID int, tx *database.Tx) (map[economy.ShipKey]int, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx, `SELECT ship_key, count FROM ship_counts WHERE planet_id = $1`, planetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ship counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[economy.ShipKey]int)
	for rows.Next() {
		var key economy.ShipKey
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan ship count: %w", err)
		}
		counts[key] = count
	}

	return counts, rows.Err()
}

// AddShips increments the planet's count for one ship type. Additive so that
// repeated batches never overwrite each other.
func (r *Repository) AddShips(ctx context.Context, planetID int, key economy.ShipKey, qty int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO ship_counts (planet_id, ship_key, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (planet_id, ship_key) DO UPDATE SET count = ship_counts.count + EXCLUDED.count`

	if _, err := exec.ExecContext(ctx, query, planetID, key, qty); err != nil {
		return fmt.Errorf("failed to add ships: %w", err)
	}
	return nil
}
