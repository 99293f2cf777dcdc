package service

import (
	"context"
	"time"

	"smartparking/internal/apperr"
	"smartparking/internal/db"
	"smartparking/internal/entities"
	"smartparking/internal/repository"
)

// CatalogService fronts the catalog repository, normalizing categories and
// coercing prices before anything reaches the store.
type CatalogService struct {
	Catalog  *repository.CatalogRepository
	Bookings *repository.BookingRepository
}

func NewCatalogService(catalog *repository.CatalogRepository, bookings *repository.BookingRepository) *CatalogService {
	return &CatalogService{Catalog: catalog, Bookings: bookings}
}

// CreateLot creates a lot with a fresh 1..N spot sequence.
func (s *CatalogService) CreateLot(ctx context.Context, ownerID int64, req entities.CreateLotRequest) (*db.Lot, error) {
	if req.Location == "" {
		return nil, apperr.New(apperr.Validation, "location is required")
	}
	lot := &db.Lot{
		OwnerID:   ownerID,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	return s.Catalog.CreateLot(ctx, lot, normalizeSpecs(req.Spots))
}

// UpdateLot updates a lot's fields and, when a spot layout is supplied,
// rewrites the spots. The rewrite cascade-deletes existing spots and their
// bookings; the repository logs a warning with the dropped row counts.
func (s *CatalogService) UpdateLot(ctx context.Context, lotID, ownerID int64, req entities.UpdateLotRequest) error {
	if req.Location == "" {
		return apperr.New(apperr.Validation, "location is required")
	}
	req.Spots = normalizeSpecs(req.Spots)
	return s.Catalog.UpdateLot(ctx, lotID, ownerID, req)
}

// DeleteLot removes a lot, its spots and all their bookings.
func (s *CatalogService) DeleteLot(ctx context.Context, lotID, ownerID int64) error {
	return s.Catalog.DeleteLot(ctx, lotID, ownerID)
}

// AddSpot appends one spot to a lot and returns its per-lot id.
func (s *CatalogService) AddSpot(ctx context.Context, lotID, ownerID int64, req entities.SpotRequest) (int, error) {
	category := NormalizeCategory(req.Category)
	price := CoercePrice(req.PricePerHour, DefaultRate(category))
	return s.Catalog.AddSpot(ctx, lotID, ownerID, category, price)
}

// UpdateSpot changes a spot's category and price.
func (s *CatalogService) UpdateSpot(ctx context.Context, lotID int64, spotID int, ownerID int64, req entities.SpotRequest) error {
	category := NormalizeCategory(req.Category)
	price := CoercePrice(req.PricePerHour, DefaultRate(category))
	return s.Catalog.UpdateSpot(ctx, lotID, spotID, ownerID, category, price)
}

// DeleteSpot removes a spot and its bookings.
func (s *CatalogService) DeleteSpot(ctx context.Context, lotID int64, spotID int, ownerID int64) error {
	return s.Catalog.DeleteSpot(ctx, lotID, spotID, ownerID)
}

// ListLots returns an owner's lots with aggregates derived from the catalog
// and the ledger at call time.
func (s *CatalogService) ListLots(ctx context.Context, ownerID int64) ([]entities.LotSummary, error) {
	lots, err := s.Catalog.ListLotsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summaries := make([]entities.LotSummary, 0, len(lots))
	for _, lot := range lots {
		spots, err := s.Catalog.ListSpots(ctx, lot.ID)
		if err != nil {
			return nil, err
		}

		summary := entities.LotSummary{
			LotID:           lot.ID,
			Location:        lot.Location,
			Latitude:        lot.Latitude,
			Longitude:       lot.Longitude,
			TotalSpots:      len(spots),
			SpotsByCategory: map[string]int{},
			PriceByCategory: map[string]float64{},
		}

		var priceSum float64
		categorySums := map[string]float64{}
		for _, spot := range spots {
			rate := EffectiveRate(spot.Category, spot.PricePerHour)
			summary.SpotsByCategory[spot.Category]++
			categorySums[spot.Category] += rate
			priceSum += rate
		}
		if len(spots) > 0 {
			summary.AveragePrice = round2(priceSum / float64(len(spots)))
		}
		for category, sum := range categorySums {
			summary.PriceByCategory[category] = round2(sum / float64(summary.SpotsByCategory[category]))
		}

		if summary.OccupiedSpots, err = s.Bookings.CountOccupied(ctx, lot.ID, now); err != nil {
			return nil, err
		}
		if summary.UpcomingBookings, err = s.Bookings.CountUpcoming(ctx, lot.ID, now); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetLotDetail returns a lot with its spots. When the caller owns the lot,
// each spot also carries its upcoming bookings.
func (s *CatalogService) GetLotDetail(ctx context.Context, lotID, callerID int64) (*entities.LotDetail, error) {
	lot, err := s.Catalog.GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	spots, err := s.Catalog.ListSpots(ctx, lotID)
	if err != nil {
		return nil, err
	}

	detail := &entities.LotDetail{
		LotID:      lot.ID,
		OwnerID:    lot.OwnerID,
		Location:   lot.Location,
		Latitude:   lot.Latitude,
		Longitude:  lot.Longitude,
		TotalSpots: len(spots),
	}

	now := time.Now().UTC()
	isOwner := callerID != 0 && callerID == lot.OwnerID
	for _, spot := range spots {
		sd := entities.SpotDetail{
			SpotID:       spot.SpotID,
			Category:     spot.Category,
			PricePerHour: EffectiveRate(spot.Category, spot.PricePerHour),
		}
		if isOwner {
			if sd.Bookings, err = s.Bookings.FutureBookings(ctx, lotID, spot.SpotID, now, 20); err != nil {
				return nil, err
			}
		}
		detail.Spots = append(detail.Spots, sd)
	}
	return detail, nil
}

func normalizeSpecs(specs []entities.SpotSpec) []entities.SpotSpec {
	if specs == nil {
		return nil
	}
	out := make([]entities.SpotSpec, 0, len(specs))
	for _, spec := range specs {
		spec.Category = NormalizeCategory(spec.Category)
		spec.PricePerHour = CoercePrice(spec.PricePerHour, DefaultRate(spec.Category))
		out = append(out, spec)
	}
	return out
}
