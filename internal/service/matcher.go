package service

import "smartparking/internal/entities"

// SpotMatcher selects one spot from a list the availability oracle already
// filtered to "free in window". Real implementations live outside the core
// (natural-language matching, preference models) and may hold a stale view,
// so the search service re-validates the selection before quoting it.
type SpotMatcher interface {
	Match(userRequest string, spots []entities.AvailableSpot) (*entities.AvailableSpot, error)
}

// CheapestMatcher is the fallback matcher: it ignores the request text and
// picks the cheapest spot, lowest (lot_id, spot_id) on ties.
type CheapestMatcher struct{}

func (CheapestMatcher) Match(_ string, spots []entities.AvailableSpot) (*entities.AvailableSpot, error) {
	if len(spots) == 0 {
		return nil, nil
	}
	best := spots[0]
	for _, s := range spots[1:] {
		if s.PricePerHour < best.PricePerHour {
			best = s
		}
	}
	return &best, nil
}
