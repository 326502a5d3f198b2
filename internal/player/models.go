package player

import (
	"time"

	"astraxis-server/internal/economy"
)

// Player is the authenticated identity owning planets and research levels.
type Player struct {
	ID          int       `json:"id"`
	Provider    string    `json:"provider"`
	ProviderID  string    `json:"-"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ResearchLevel is the current level of one technology. Research is shared
// across all of a player's planets.
type ResearchLevel struct {
	PlayerID int                 `json:"player_id"`
	TechKey  economy.ResearchKey `json:"tech_key"`
	Level    int                 `json:"level"`
}
