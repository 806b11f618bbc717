package domain

import "time"

// Spot is a parking spot from the directory. Available is derived, never
// stored: true iff no pending/confirmed booking's window contains "now".
type Spot struct {
	ID          string
	Label       string
	Description string
	Latitude    float64
	Longitude   float64
	Available   bool
	CreatedAt   time.Time
}
