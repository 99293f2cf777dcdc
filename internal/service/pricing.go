package service

import (
	"math"
	"strings"
	"time"

	"smartparking/internal/apperr"
)

// DefaultPricing holds the fallback hourly rate per spot category, used when
// a spot has no valid configured price. Unknown categories fall back to car.
var DefaultPricing = map[string]float64{
	"large":      50.0,
	"car":        40.0,
	"motorcycle": 15.0,
	"bike":       15.0,
	"truck":      75.0,
}

// NormalizeCategory lowercases a category and maps legacy aliases.
// "small" spots were renamed to "motorcycle"; empty means "car".
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	switch c {
	case "":
		return "car"
	case "small":
		return "motorcycle"
	}
	return c
}

// DefaultRate returns the fallback hourly rate for a category.
func DefaultRate(category string) float64 {
	if rate, ok := DefaultPricing[NormalizeCategory(category)]; ok {
		return rate
	}
	return DefaultPricing["car"]
}

// EffectiveRate resolves the rate to charge for a spot: its configured price
// when valid, the category default otherwise.
func EffectiveRate(category string, configured float64) float64 {
	if configured > 0 {
		return round2(configured)
	}
	return DefaultRate(category)
}

// CoercePrice validates a caller-supplied price, falling back when it is
// unset or negative.
func CoercePrice(price, fallback float64) float64 {
	if price <= 0 {
		return round2(fallback)
	}
	return round2(price)
}

// ValidateWindow rejects zero-duration and inverted intervals.
func ValidateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return apperr.New(apperr.Validation, "start_time and end_time are required")
	}
	if !end.After(start) {
		return apperr.New(apperr.Validation, "end_time must be after start_time")
	}
	return nil
}

// DurationHours returns the window length in hours, rounded to two decimals.
func DurationHours(start, end time.Time) (float64, error) {
	if err := ValidateWindow(start, end); err != nil {
		return 0, err
	}
	return round2(end.Sub(start).Hours()), nil
}

// TotalCost prices a window at the given hourly rate. Pure and deterministic:
// search-time estimates and booking-time finals agree bit-for-bit.
func TotalCost(pricePerHour float64, start, end time.Time) (float64, error) {
	hours, err := DurationHours(start, end)
	if err != nil {
		return 0, err
	}
	return round2(pricePerHour * hours), nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
