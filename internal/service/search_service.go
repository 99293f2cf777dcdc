package service

import (
	"context"
	"time"

	"smartparking/internal/apperr"
	"smartparking/internal/entities"
)

// SearchService answers free-text spot searches: list what is free in the
// window, let the matcher pick, then re-validate the pick against the ledger
// before quoting. The matcher is an external collaborator whose view may be
// stale; its selection is never trusted as-is.
type SearchService struct {
	Availability *AvailabilityService
	Matcher      SpotMatcher
}

func NewSearchService(availability *AvailabilityService, matcher SpotMatcher) *SearchService {
	if matcher == nil {
		matcher = CheapestMatcher{}
	}
	return &SearchService{Availability: availability, Matcher: matcher}
}

// Search resolves a SearchRequest to a quoted spot. A missing or inverted
// window defaults to the next hour.
func (s *SearchService) Search(ctx context.Context, req entities.SearchRequest) (*entities.SearchResult, error) {
	if req.UserRequest == "" {
		return nil, apperr.New(apperr.Validation, "user_request is required")
	}

	start, end := req.StartTime, req.EndTime
	if start.IsZero() || end.IsZero() || !end.After(start) {
		start, end = defaultWindow()
	}

	available, err := s.Availability.ListAvailable(ctx, start, end, entities.AvailabilityFilter{})
	if err != nil {
		return nil, err
	}
	if len(available) == 0 {
		return nil, apperr.New(apperr.NotFound, "no spots available for the selected time window")
	}

	selected, err := s.Matcher.Match(req.UserRequest, available)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "spot matcher failed")
	}
	if selected == nil {
		return nil, apperr.New(apperr.NotFound, "no spot matched the request")
	}

	// The matcher may return a stale or fabricated selection; check it is
	// still free before quoting.
	free, err := s.Availability.IsFree(ctx, selected.LotID, selected.SpotID, start, end)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, apperr.New(apperr.Conflict, "matched spot is no longer available for the requested window")
	}

	rate := EffectiveRate(selected.Category, selected.PricePerHour)
	hours, err := DurationHours(start, end)
	if err != nil {
		return nil, err
	}
	estimate, err := TotalCost(rate, start, end)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Availability.FutureBookings(ctx, selected.LotID, selected.SpotID, 20)
	if err != nil {
		return nil, err
	}

	return &entities.SearchResult{
		Spot:          *selected,
		StartTime:     start,
		EndTime:       end,
		DurationHours: hours,
		PricePerHour:  rate,
		EstimatedCost: estimate,
		Bookings:      bookings,
	}, nil
}

// defaultWindow is the next hour, truncated to the minute.
func defaultWindow() (time.Time, time.Time) {
	start := time.Now().UTC().Truncate(time.Minute)
	return start, start.Add(time.Hour)
}
