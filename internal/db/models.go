package db

import "time"

// Lot is an owned parking facility. Spots hang off it with per-lot numbering.
type Lot struct {
	ID        int64
	OwnerID   int64
	Location  string
	Latitude  float64
	Longitude float64
}

// Spot is one reservable unit inside a lot. Its identity is the composite
// (LotID, SpotID); SpotID is 1-based and unique only within its lot.
// There is deliberately no occupied/available column: status is always
// derived from the bookings ledger.
type Spot struct {
	LotID        int64
	SpotID       int
	Category     string
	PricePerHour float64
}

// Booking is a committed reservation of one spot for the half-open interval
// [StartTime, EndTime). Immutable once created; removed only when its spot or
// lot is deleted. PricePerHour is snapshotted at booking time.
type Booking struct {
	ID           int64
	Code         string
	LotID        int64
	SpotID       int
	UserID       int64
	StartTime    time.Time
	EndTime      time.Time
	PricePerHour float64
	TotalCost    float64
	CreatedAt    time.Time
}
