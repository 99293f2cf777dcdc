package entities

// SpotSpec describes a run of identical spots to create inside a lot.
// PricePerHour of 0 means "use the category default".
type SpotSpec struct {
	Category     string  `json:"category"`
	Count        int     `json:"count"`
	PricePerHour float64 `json:"price_per_hour"`
}

// CreateLotRequest is the owner payload for creating a lot with its initial
// spot layout.
type CreateLotRequest struct {
	Location  string     `json:"location"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Spots     []SpotSpec `json:"spots"`
}

// UpdateLotRequest mutates a lot's fields. A non-nil Spots slice rewrites the
// whole spot layout, cascade-deleting existing spots and their bookings.
type UpdateLotRequest struct {
	Location  string     `json:"location"`
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Spots     []SpotSpec `json:"spots,omitempty"`
}

// SpotRequest creates or updates a single spot.
type SpotRequest struct {
	Category     string  `json:"category"`
	PricePerHour float64 `json:"price_per_hour"`
}

// LotSummary is one row of an owner's lot overview. Occupancy figures are
// derived from the bookings ledger at request time, never stored.
type LotSummary struct {
	LotID            int64              `json:"lot_id"`
	Location         string             `json:"location"`
	Latitude         float64            `json:"latitude"`
	Longitude        float64            `json:"longitude"`
	TotalSpots       int                `json:"total_spots"`
	SpotsByCategory  map[string]int     `json:"spots_by_category"`
	AveragePrice     float64            `json:"average_price_per_hour"`
	PriceByCategory  map[string]float64 `json:"price_by_category"`
	OccupiedSpots    int                `json:"occupied_spots"`
	UpcomingBookings int                `json:"upcoming_bookings"`
}

// SpotDetail is a spot within a lot detail view, with its upcoming bookings
// when the caller owns the lot.
type SpotDetail struct {
	SpotID       int             `json:"spot_id"`
	Category     string          `json:"category"`
	PricePerHour float64         `json:"price_per_hour"`
	Bookings     []FutureBooking `json:"bookings,omitempty"`
}

// LotDetail is the full view of a single lot.
type LotDetail struct {
	LotID      int64        `json:"lot_id"`
	OwnerID    int64        `json:"owner_id"`
	Location   string       `json:"location"`
	Latitude   float64      `json:"latitude"`
	Longitude  float64      `json:"longitude"`
	TotalSpots int          `json:"total_spots"`
	Spots      []SpotDetail `json:"spots"`
}
