package entities

import "time"

// BookingRequest is the create-booking payload. Email and Phone are optional
// contact points for the confirmation notification; they are not persisted.
type BookingRequest struct {
	LotID     int64     `json:"lot_id"`
	SpotID    int       `json:"spot_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
}

// Contact carries the optional notification targets for a booking.
type Contact struct {
	Email string
	Phone string
}

// BookingResponse is the committed booking returned to the caller.
type BookingResponse struct {
	BookingID    int64     `json:"booking_id"`
	Code         string    `json:"code"`
	LotID        int64     `json:"lot_id"`
	SpotID       int       `json:"spot_id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	PricePerHour float64   `json:"price_per_hour"`
	TotalCost    float64   `json:"total_cost"`
}

// FutureBooking is the reduced shape exposed when listing a spot's upcoming
// reservations.
type FutureBooking struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	TotalCost float64   `json:"total_cost"`
}

// UserBooking is one row of a customer's booking history, joined with the
// spot category and lot location.
type UserBooking struct {
	BookingID    int64     `json:"booking_id"`
	LotID        int64     `json:"lot_id"`
	SpotID       int       `json:"spot_id"`
	Category     string    `json:"category"`
	Location     string    `json:"location"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	PricePerHour float64   `json:"price_per_hour"`
	TotalCost    float64   `json:"total_cost"`
}
