package universe

import "time"

// Universe is one game world. Speeds divide construction and research
// durations; the dimensions bound planet coordinates.
type Universe struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	SpeedBuild    int       `json:"speed_build"`
	SpeedResearch int       `json:"speed_research"`
	Galaxies      int       `json:"galaxies"`
	Systems       int       `json:"systems"`
	Positions     int       `json:"positions"`
	CreatedAt     time.Time `json:"created_at"`
}
