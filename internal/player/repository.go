package player

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

const playerColumns = "id, provider, provider_id, email, username, display_name, avatar_url, is_admin, created_at, updated_at"

func scanPlayer(row *sql.Row) (*Player, error) {
	var p Player
	err := row.Scan(
		&p.ID,
		&p.Provider,
		&p.ProviderID,
		&p.Email,
		&p.Username,
		&p.DisplayName,
		&p.AvatarURL,
		&p.IsAdmin,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByProviderIdentity loads a player by OAuth identity. Returns (nil, nil)
// when the identity is unknown.
func (r *Repository) GetByProviderIdentity(ctx context.Context, provider, providerID string, tx *database.Tx) (*Player, error) {
	exec := r.getExecutor(tx)

	query := `SELECT ` + playerColumns + ` FROM players WHERE provider = $1 AND provider_id = $2`

	p, err := scanPlayer(exec.QueryRowContext(ctx, query, provider, providerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player by identity: %w", err)
	}
	return p, nil
}

// GetByID loads a player, returning (nil, nil) for unknown ids.
func (r *Repository) GetByID(ctx context.Context, id int, tx *database.Tx) (*Player, error) {
	exec := r.getExecutor(tx)

	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	p, err := scanPlayer(exec.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query player: %w", err)
	}
	return p, nil
}

// CreatePlayer inserts a new player record.
func (r *Repository) CreatePlayer(ctx context.Context, provider, providerID, email, username, displayName, avatarURL string, isAdmin bool, tx *database.Tx) (*Player, error) {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO players (provider, provider_id, email, username, display_name, avatar_url, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + playerColumns

	p, err := scanPlayer(exec.QueryRowContext(ctx, query, provider, providerID, email, username, displayName, avatarURL, isAdmin))
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return p, nil
}

// GetResearchLevels returns the player's technology levels keyed by tech.
// Technologies never researched are absent (level 0).
func (r *Repository) GetResearchLevels(ctx context.Context, playerID int, tx *database.Tx) (map[economy.ResearchKey]int, error) {
	exec := r.getExecutor(tx)

	rows, err := exec.QueryContext(ctx, `SELECT tech_key, level FROM research_levels WHERE player_id = $1`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query research levels: %w", err)
	}
	defer rows.Close()

	levels := make(map[economy.ResearchKey]int)
	for rows.Next() {
		var key economy.ResearchKey
		var level int
		if err := rows.Scan(&key, &level); err != nil {
			return nil, fmt.Errorf("failed to scan research level: %w", err)
		}
		levels[key] = level
	}

	return levels, rows.Err()
}

// GetResearchLevel returns the player's level for one technology.
func (r *Repository) GetResearchLevel(ctx context.Context, playerID int, key economy.ResearchKey, tx *database.Tx) (int, error) {
	exec := r.getExecutor(tx)

	var level int
	err := exec.QueryRowContext(ctx,
		`SELECT level FROM research_levels WHERE player_id = $1 AND tech_key = $2`,
		playerID, key,
	).Scan(&level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query research level: %w", err)
	}
	return level, nil
}

// UpsertResearchLevel sets one technology to the given level.
func (r *Repository) UpsertResearchLevel(ctx context.Context, playerID int, key economy.ResearchKey, level int, tx *database.Tx) error {
	exec := r.getExecutor(tx)

	query := `
		INSERT INTO research_levels (player_id, tech_key, level)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id, tech_key) DO UPDATE SET level = EXCLUDED.level`

	if _, err := exec.ExecContext(ctx, query, playerID, key, level); err != nil {
		return fmt.Errorf("failed to upsert research level: %w", err)
	}
	return nil
}
