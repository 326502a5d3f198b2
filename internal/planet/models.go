package planet

import (
	"time"

	"astraxis-server/internal/economy"
)

// Planet is a player-owned world at a unique (galaxy, system, position) slot
// in its universe. Coordinates and temperature never change after creation.
type Planet struct {
	ID          int       `json:"id"`
	UniverseID  int       `json:"universe_id"`
	PlayerID    int       `json:"player_id"`
	Galaxy      int       `json:"galaxy"`
	System      int       `json:"system"`
	Position    int       `json:"position"`
	Name        string    `json:"name"`
	Temperature int       `json:"temperature"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BuildingLevel is the current level of one building type on a planet.
// Levels only move at queue finalization, one step at a time.
type BuildingLevel struct {
	PlanetID    int                 `json:"planet_id"`
	BuildingKey economy.BuildingKey `json:"building_key"`
	Level       int                 `json:"level"`
}

// BuildingSetting is the production throttle for one extraction building,
// an integer percentage in [0,100].
type BuildingSetting struct {
	PlanetID    int                 `json:"planet_id"`
	BuildingKey economy.BuildingKey `json:"building_key"`
	Factor      int                 `json:"factor"`
}

// ShipCount is the number of ships of one type stationed at a planet.
type ShipCount struct {
	PlanetID int             `json:"planet_id"`
	ShipKey  economy.ShipKey `json:"ship_key"`
	Count    int             `json:"count"`
}
