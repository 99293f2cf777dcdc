package service

import (
	"context"
	"time"

	"smartparking/internal/entities"
	"smartparking/internal/repository"
)

// AvailabilityService is the read side of the reservation engine. It decides
// free/occupied by consulting the bookings ledger; nothing here blocks
// writers, and results may be stale by the time a caller acts on them. The
// booking coordinator re-validates, always.
type AvailabilityService struct {
	Catalog  *repository.CatalogRepository
	Bookings *repository.BookingRepository
}

func NewAvailabilityService(catalog *repository.CatalogRepository, bookings *repository.BookingRepository) *AvailabilityService {
	return &AvailabilityService{Catalog: catalog, Bookings: bookings}
}

// IsFree reports whether the spot has no booking overlapping [start, end).
func (s *AvailabilityService) IsFree(ctx context.Context, lotID int64, spotID int, start, end time.Time) (bool, error) {
	overlaps, err := s.Bookings.Overlaps(ctx, s.Bookings.DB, lotID, spotID, start, end)
	if err != nil {
		return false, err
	}
	return !overlaps, nil
}

// ListAvailable enumerates the spots in scope that are free for the whole
// window. This is a linear scan testing each spot against the ledger:
// O(spots x bookings-per-spot). Fine at the target scale, but callers must
// not assume sub-linear cost.
func (s *AvailabilityService) ListAvailable(ctx context.Context, start, end time.Time, filter entities.AvailabilityFilter) ([]entities.AvailableSpot, error) {
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	spots, err := s.Catalog.ListSpotsInScope(ctx, filter)
	if err != nil {
		return nil, err
	}

	var free []entities.AvailableSpot
	for _, spot := range spots {
		ok, err := s.IsFree(ctx, spot.LotID, spot.SpotID, start, end)
		if err != nil {
			return nil, err
		}
		if ok {
			spot.PricePerHour = EffectiveRate(spot.Category, spot.PricePerHour)
			free = append(free, spot)
		}
	}
	return free, nil
}

// FutureBookings returns the spot's bookings that have not yet ended,
// earliest first, capped at limit.
func (s *AvailabilityService) FutureBookings(ctx context.Context, lotID int64, spotID int, limit int) ([]entities.FutureBooking, error) {
	if limit <= 0 {
		limit = 20
	}
	// Surface NotFound for a missing spot rather than an empty list.
	if _, err := s.Catalog.GetSpot(ctx, lotID, spotID); err != nil {
		return nil, err
	}
	return s.Bookings.FutureBookings(ctx, lotID, spotID, time.Now().UTC(), limit)
}
