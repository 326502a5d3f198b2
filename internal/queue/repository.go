package queue

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

const itemColumns = `id, type, player_id, planet_id, item_key, level_or_qty, start_at, end_at, status, created_at`

func scanItem(row interface{ Scan(...any) error }) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ID,
		&item.Type,
		&item.PlayerID,
		&item.PlanetID,
		&item.Key,
		&item.LevelOrQty,
		&item.StartAt,
		&item.EndAt,
		&item.Status,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue items: %w", err)
	}
	return items, nil
}

// Insert stores a new PENDING item.
func (r *Repository) Insert(ctx context.Context, item *Item, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO queue_items (id, type, player_id, planet_id, item_key, level_or_qty, start_at, end_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	err := exec.QueryRowContext(ctx, query,
		item.ID,
		item.Type,
		item.PlayerID,
		item.PlanetID,
		item.Key,
		item.LevelOrQty,
		item.StartAt,
		item.EndAt,
		item.Status,
	).Scan(&item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert queue item: %w", err)
	}
	return nil
}

// GetByID loads a single item. Returns (nil, nil) when the id is unknown.
func (r *Repository) GetByID(ctx context.Context, id string, tx *database.Tx) (*Item, error) {
	exec := r.getExecutor(tx)

	item, err := scanItem(exec.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM queue_items WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query queue item: %w", err)
	}
	return item, nil
}

// GetPendingForScope lists the PENDING items of one exclusivity scope, ordered
// by end time. Building and ship scopes are per planet; the research scope is
// per player with planetID nil.
func (r *Repository) GetPendingForScope(ctx context.Context, playerID int, planetID *int, itemType Type, tx *database.Tx) ([]Item, error) {
	exec := r.getExecutor(tx)

	var rows *sql.Rows
	var err error
	if planetID != nil {
		rows, err = exec.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM queue_items
			 WHERE player_id = $1 AND planet_id = $2 AND type = $3 AND status = 'PENDING'
			 ORDER BY end_at ASC`,
			playerID, *planetID, itemType)
	} else {
		rows, err = exec.QueryContext(ctx,
			`SELECT `+itemColumns+` FROM queue_items
			 WHERE player_id = $1 AND type = $2 AND status = 'PENDING'
			 ORDER BY end_at ASC`,
			playerID, itemType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query pending queue items: %w", err)
	}
	return scanItems(rows)
}

// GetPendingByPlanet lists all PENDING items targeting one planet.
func (r *Repository) GetPendingByPlanet(ctx context.Context, planetID int, tx *database.Tx) ([]Item, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM queue_items
		 WHERE planet_id = $1 AND status = 'PENDING'
		 ORDER BY end_at ASC`,
		planetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planet queue: %w", err)
	}
	return scanItems(rows)
}

// GetPendingByPlayer lists all PENDING items of one player across every scope.
func (r *Repository) GetPendingByPlayer(ctx context.Context, playerID int, tx *database.Tx) ([]Item, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM queue_items
		 WHERE player_id = $1 AND status = 'PENDING'
		 ORDER BY end_at ASC`,
		playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query player queue: %w", err)
	}
	return scanItems(rows)
}

// GetAllPending lists every PENDING item in the universe, ordered by end time.
// Used by the scheduler rescan at boot.
func (r *Repository) GetAllPending(ctx context.Context) ([]Item, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM queue_items WHERE status = 'PENDING' ORDER BY end_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending queue items: %w", err)
	}
	return scanItems(rows)
}

// MarkDone flips one item from PENDING to DONE. Reports whether a row actually
// changed; finalization relies on this for its idempotency guard.
func (r *Repository) MarkDone(ctx context.Context, id string, tx *database.Tx) (bool, error) {
	exec := r.getExecutor(tx)

	result, err := exec.ExecContext(ctx,
		`UPDATE queue_items SET status = 'DONE' WHERE id = $1 AND status = 'PENDING'`, id)
	if err != nil {
		return false, fmt.Errorf("failed to mark queue item done: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read queue update result: %w", err)
	}
	return rows > 0, nil
}
