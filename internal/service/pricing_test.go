package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartparking/internal/apperr"
)

func TestTotalCost(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		rate  float64
		start time.Time
		end   time.Time
		want  float64
	}{
		{"two hours at 40", 40.0, day.Add(10 * time.Hour), day.Add(12 * time.Hour), 80.00},
		{"half hour at 15", 15.0, day.Add(9 * time.Hour), day.Add(9*time.Hour + 30*time.Minute), 7.50},
		{"one hour at 40", 40.0, day.Add(12 * time.Hour), day.Add(13 * time.Hour), 40.00},
		{"ninety minutes at 50", 50.0, day, day.Add(90 * time.Minute), 75.00},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TotalCost(tc.rate, tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)

			// Search-time estimates and booking-time finals must agree
			// bit-for-bit.
			again, err := TotalCost(tc.rate, tc.start, tc.end)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestTotalCostRejectsBadWindows(t *testing.T) {
	now := time.Now()

	_, err := TotalCost(40.0, now, now)
	assert.True(t, apperr.Is(err, apperr.Validation), "zero-duration window must be rejected")

	_, err = TotalCost(40.0, now.Add(time.Hour), now)
	assert.True(t, apperr.Is(err, apperr.Validation), "inverted window must be rejected")

	_, err = TotalCost(40.0, time.Time{}, now)
	assert.True(t, apperr.Is(err, apperr.Validation), "missing start must be rejected")
}

func TestDurationHours(t *testing.T) {
	start := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	hours, err := DurationHours(start, start.Add(150*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2.5, hours)

	_, err = DurationHours(start, start)
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestDefaultRate(t *testing.T) {
	assert.Equal(t, 50.0, DefaultRate("large"))
	assert.Equal(t, 40.0, DefaultRate("car"))
	assert.Equal(t, 15.0, DefaultRate("motorcycle"))
	assert.Equal(t, 15.0, DefaultRate("bike"))
	assert.Equal(t, 75.0, DefaultRate("truck"))

	// Unknown categories fall back to the car rate.
	assert.Equal(t, 40.0, DefaultRate("hovercraft"))
	assert.Equal(t, 40.0, DefaultRate(""))
}

func TestEffectiveRate(t *testing.T) {
	assert.Equal(t, 12.5, EffectiveRate("car", 12.5))
	assert.Equal(t, 40.0, EffectiveRate("car", 0))
	assert.Equal(t, 75.0, EffectiveRate("truck", -3))
}

func TestCoercePrice(t *testing.T) {
	assert.Equal(t, 22.0, CoercePrice(22.0, 40.0))
	assert.Equal(t, 40.0, CoercePrice(0, 40.0))
	assert.Equal(t, 40.0, CoercePrice(-1, 40.0))
	assert.Equal(t, 22.35, CoercePrice(22.346, 40.0))
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "car", NormalizeCategory(""))
	assert.Equal(t, "car", NormalizeCategory("Car"))
	assert.Equal(t, "motorcycle", NormalizeCategory("small"))
	assert.Equal(t, "truck", NormalizeCategory(" TRUCK "))
}
