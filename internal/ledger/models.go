package ledger

import (
	"time"

	"astraxis-server/internal/economy"
)

// Balance is a planet's stored resources plus the moment they were last
// brought up to date. Between observations the true balance is implied by the
// cached production rates; accrual materializes it lazily.
type Balance struct {
	PlanetID         int               `json:"planet_id"`
	Resources        economy.Resources `json:"resources"`
	LastCalculatedAt time.Time         `json:"last_calculated_at"`
}

// CachedProduction is the derived per-hour output of a planet. It is rebuilt
// whenever building levels or settings change and is never authoritative on
// its own.
type CachedProduction struct {
	PlanetID     int                     `json:"planet_id"`
	Rates        economy.ProductionRates `json:"rates"`
	CalculatedAt time.Time               `json:"calculated_at"`
}
