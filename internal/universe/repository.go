package universe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

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

const universeColumns = "id, name, speed_build, speed_research, galaxies, systems, positions, created_at"

func scanUniverse(row *sql.Row) (*Universe, error) {
	var u Universe
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.SpeedBuild,
		&u.SpeedResearch,
		&u.Galaxies,
		&u.Systems,
		&u.Positions,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUniverse inserts a new game world.
func (r *Repository) CreateUniverse(ctx context.Context, name string, speedBuild, speedResearch, galaxies, systems, positions int, tx *database.Tx) (*Universe, error) {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO universes (name, speed_build, speed_research, galaxies, systems, positions)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + universeColumns

	u, err := scanUniverse(exec.QueryRowContext(ctx, query, name, speedBuild, speedResearch, galaxies, systems, positions))
	if err != nil {
		return nil, fmt.Errorf("failed to create universe: %w", err)
	}
	return u, nil
}

// GetByID loads a universe, returning (nil, nil) for unknown ids.
func (r *Repository) GetByID(ctx context.Context, id int, tx *database.Tx) (*Universe, error) {
	exec := r.getExecutor(tx)

	query := `SELECT ` + universeColumns + ` FROM universes WHERE id = $1`

	u, err := scanUniverse(exec.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query universe: %w", err)
	}
	return u, nil
}

// GetDefault returns the oldest universe, or (nil, nil) when none exists yet.
// New players land here.
func (r *Repository) GetDefault(ctx context.Context, tx *database.Tx) (*Universe, error) {
	exec := r.getExecutor(tx)

	query := `SELECT ` + universeColumns + ` FROM universes ORDER BY created_at, id LIMIT 1`

	u, err := scanUniverse(exec.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query default universe: %w", err)
	}
	return u, nil
}

// List returns every universe ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]Universe, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+universeColumns+` FROM universes ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query universes: %w", err)
	}
	defer rows.Close()

	var universes []Universe
	for rows.Next() {
		var u Universe
		err := rows.Scan(
			&u.ID,
			&u.Name,
			&u.SpeedBuild,
			&u.SpeedResearch,
			&u.Galaxies,
			&u.Systems,
			&u.Positions,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan universe: %w", err)
		}
		universes = append(universes, u)
	}

	return universes, rows.Err()
}

// SlotTaken reports whether a planet already occupies the given coordinates.
func (r *Repository) SlotTaken(ctx context.Context, universeID, galaxy, system, position int, tx *database.Tx) (bool, error) {
	exec := r.getExecutor(tx)

	var exists bool
	err := exec.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM planets WHERE universe_id = $1 AND galaxy = $2 AND system = $3 AND position = $4)`,
		universeID, galaxy, system, position,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check planet slot: %w", err)
	}
	return exists, nil
}
