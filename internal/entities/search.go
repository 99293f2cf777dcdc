package entities

import "time"

// SearchRequest is the smart-search payload: a free-text request plus an
// optional window. A missing or inverted window defaults to the next hour.
type SearchRequest struct {
	UserRequest string    `json:"user_request"`
	StartTime   time.Time `json:"start_time,omitempty"`
	EndTime     time.Time `json:"end_time,omitempty"`
}

// SearchResult is the matched spot with a price quote for the window and the
// spot's upcoming bookings. EstimatedCost uses the same calculator as final
// booking pricing.
type SearchResult struct {
	Spot          AvailableSpot   `json:"spot"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	DurationHours float64         `json:"duration_hours"`
	PricePerHour  float64         `json:"price_per_hour"`
	EstimatedCost float64         `json:"estimated_cost"`
	Bookings      []FutureBooking `json:"bookings"`
}
