package entities

import "time"

// AvailableSpot is one row of a listAvailable result: a spot with its lot
// context, free for the whole requested window.
type AvailableSpot struct {
	LotID        int64   `json:"lot_id"`
	SpotID       int     `json:"spot_id"`
	Category     string  `json:"category"`
	PricePerHour float64 `json:"price_per_hour"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// AvailabilityFilter narrows the spots a listAvailable scan considers.
// Zero values mean "no filter".
type AvailabilityFilter struct {
	LotID    int64
	Category string
}

// AvailabilityResponse wraps a listAvailable result with the window it
// answers for.
type AvailabilityResponse struct {
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Spots     []AvailableSpot `json:"spots"`
}
