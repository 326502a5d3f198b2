package queue

import (
	"time"

	"astraxis-server/internal/economy"
	"astraxis-server/internal/planet"
)

// Type is the category of a queued action. Each category holds its own
// exclusivity slot: research per player, building and ship per planet.
type Type string

const (
	TypeBuilding Type = "BUILDING"
	TypeResearch Type = "RESEARCH"
	TypeShip     Type = "SHIP"
)

// Status is the lifecycle state of a queue item. The only transition is
// PENDING to DONE, performed exactly once by finalization. Items are never
// deleted; DONE rows remain as an audit trail.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusDone    Status = "DONE"
)

// Item is one scheduled upgrade action: a building level, a research level
// or a batch of ships.
type Item struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	PlayerID   int       `json:"player_id"`
	PlanetID   *int      `json:"planet_id,omitempty"`
	Key        string    `json:"key"`
	LevelOrQty int       `json:"level_or_qty"`
	StartAt    time.Time `json:"start_at"`
	EndAt      time.Time `json:"end_at"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

// Overview is the authoritative full read of one planet, returned after
// accrual so balances are current. Clients that miss a push reconcile
// against this.
type Overview struct {
	Planet     *planet.Planet              `json:"planet"`
	Resources  economy.Resources           `json:"resources"`
	Production economy.ProductionRates     `json:"production"`
	Capacities economy.Resources           `json:"capacities"`
	Buildings  map[economy.BuildingKey]int `json:"buildings"`
	Settings   map[economy.BuildingKey]int `json:"settings"`
	Ships      map[economy.ShipKey]int     `json:"ships"`
	Research   map[economy.ResearchKey]int `json:"research"`
	Queue      []Item                      `json:"queue"`
}
