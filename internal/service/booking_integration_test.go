package service

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartparking/internal/apperr"
	"smartparking/internal/db"
	"smartparking/internal/entities"
	"smartparking/internal/repository"
)

// The tests below run against a real Postgres instance because the
// coordinator's guarantees live in its transaction behavior. Set
// TEST_DATABASE_URL to run them.
func openIntegrationDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}
	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, conn.Ping())
	require.NoError(t, db.InitSchema(context.Background(), conn))
	_, err = conn.Exec(`TRUNCATE bookings, spots, lots RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

type engine struct {
	conn         *sql.DB
	catalog      *CatalogService
	availability *AvailabilityService
	bookings     *BookingService
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	conn := openIntegrationDB(t)
	catalogRepo := repository.NewCatalogRepository(conn)
	bookingRepo := repository.NewBookingRepository(conn)
	return &engine{
		conn:         conn,
		catalog:      NewCatalogService(catalogRepo, bookingRepo),
		availability: NewAvailabilityService(catalogRepo, bookingRepo),
		bookings:     NewBookingService(conn, catalogRepo, bookingRepo, NoopNotifier{}),
	}
}

func (e *engine) createLot(t *testing.T, ownerID int64, specs ...entities.SpotSpec) int64 {
	t.Helper()
	lot, err := e.catalog.CreateLot(context.Background(), ownerID, entities.CreateLotRequest{
		Location: "Test Garage",
		Spots:    specs,
	})
	require.NoError(t, err)
	return lot.ID
}

func (e *engine) countRows(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, e.conn.QueryRow(query, args...).Scan(&n))
	return n
}

func TestBookingScenarioEndToEnd(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 1, PricePerHour: 40.0})

	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Booking A: 10:00-12:00 succeeds at 80.00.
	a, err := e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1,
		StartTime: day.Add(10 * time.Hour), EndTime: day.Add(12 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 80.00, a.TotalCost)
	assert.Equal(t, 40.00, a.PricePerHour)
	assert.NotEmpty(t, a.Code)

	// Booking B: 11:00-13:00 overlaps A and must conflict.
	_, err = e.bookings.CreateBooking(ctx, 101, entities.BookingRequest{
		LotID: lotID, SpotID: 1,
		StartTime: day.Add(11 * time.Hour), EndTime: day.Add(13 * time.Hour),
	})
	assert.True(t, apperr.Is(err, apperr.Conflict), "overlapping booking must conflict, got %v", err)

	// Booking C: 12:00-13:00 is adjacent to A and must succeed at 40.00.
	c, err := e.bookings.CreateBooking(ctx, 102, entities.BookingRequest{
		LotID: lotID, SpotID: 1,
		StartTime: day.Add(12 * time.Hour), EndTime: day.Add(13 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 40.00, c.TotalCost)

	assert.Equal(t, 2, e.countRows(t, `SELECT COUNT(*) FROM bookings WHERE lot_id = $1`, lotID))
}

func TestExactlyOneWinnerUnderContention(t *testing.T) {
	e := newEngine(t)
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 1, PricePerHour: 40.0})

	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	const workers = 32

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			// Every window overlaps every other: [10:00+i*5m, 12:00+i*5m).
			offset := time.Duration(userID) * 5 * time.Minute
			_, err := e.bookings.CreateBooking(context.Background(), userID, entities.BookingRequest{
				LotID: lotID, SpotID: 1,
				StartTime: day.Add(10*time.Hour + offset),
				EndTime:   day.Add(12*time.Hour + offset),
			})
			results <- err
		}(int64(i + 1))
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case apperr.Is(err, apperr.Conflict):
			conflicts++
		default:
			t.Fatalf("unexpected error under contention: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one concurrent attempt must win")
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, 1, e.countRows(t, `SELECT COUNT(*) FROM bookings WHERE lot_id = $1`, lotID))
}

func TestNoOverlapInvariantHoldsAfterRandomLoad(t *testing.T) {
	e := newEngine(t)
	lotID := e.createLot(t, 1,
		entities.SpotSpec{Category: "car", Count: 2, PricePerHour: 40.0},
		entities.SpotSpec{Category: "motorcycle", Count: 1, PricePerHour: 15.0},
	)

	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	const attempts = 60

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			start := day.Add(time.Duration(n%12) * time.Hour)
			end := start.Add(time.Duration(1+n%3) * time.Hour)
			e.bookings.CreateBooking(context.Background(), int64(n+1), entities.BookingRequest{
				LotID: lotID, SpotID: 1 + n%3,
				StartTime: start, EndTime: end,
			})
		}(i)
	}
	wg.Wait()

	// No two committed bookings on the same spot may overlap.
	overlapping := e.countRows(t, `
		SELECT COUNT(*)
		FROM bookings a
		JOIN bookings b
		  ON a.lot_id = b.lot_id AND a.spot_id = b.spot_id AND a.booking_id < b.booking_id
		WHERE a.start_time < b.end_time AND b.start_time < a.end_time`)
	assert.Zero(t, overlapping, "ledger contains overlapping bookings")
}

func TestStaleSelectionRejected(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 1, PricePerHour: 40.0})

	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	start, end := day.Add(9*time.Hour), day.Add(11*time.Hour)

	free, err := e.availability.IsFree(ctx, lotID, 1, start, end)
	require.NoError(t, err)
	require.True(t, free)

	// Another caller books before the first acts on its stale answer.
	_, err = e.bookings.CreateBooking(ctx, 200, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)

	_, err = e.bookings.CreateBooking(ctx, 201, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: start.Add(30 * time.Minute), EndTime: end.Add(30 * time.Minute),
	})
	assert.True(t, apperr.Is(err, apperr.Conflict), "stale selection must be rejected, got %v", err)
}

func TestCascadeIntegrityOnLotDeletion(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 2, PricePerHour: 40.0})

	day := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	_, err := e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: day.Add(8 * time.Hour), EndTime: day.Add(10 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, e.catalog.DeleteLot(ctx, lotID, 1))

	assert.Zero(t, e.countRows(t, `SELECT COUNT(*) FROM spots WHERE lot_id = $1`, lotID))
	assert.Zero(t, e.countRows(t, `SELECT COUNT(*) FROM bookings WHERE lot_id = $1`, lotID))
}

func TestSpotRewriteCascadesBookings(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 1, PricePerHour: 40.0})

	day := time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC)
	_, err := e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: day.Add(8 * time.Hour), EndTime: day.Add(9 * time.Hour),
	})
	require.NoError(t, err)

	err = e.catalog.UpdateLot(ctx, lotID, 1, entities.UpdateLotRequest{
		Location: "Rebuilt Garage",
		Spots:    []entities.SpotSpec{{Category: "truck", Count: 2, PricePerHour: 75.0}},
	})
	require.NoError(t, err)

	assert.Zero(t, e.countRows(t, `SELECT COUNT(*) FROM bookings WHERE lot_id = $1`, lotID))
	assert.Equal(t, 2, e.countRows(t, `SELECT COUNT(*) FROM spots WHERE lot_id = $1`, lotID))
}

func TestPerLotSpotNumbering(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()

	lotA := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 2, PricePerHour: 40.0})
	lotB := e.createLot(t, 1, entities.SpotSpec{Category: "bike", Count: 3, PricePerHour: 15.0})

	// Spot ids restart at 1 inside each lot.
	assert.Equal(t, 2, e.countRows(t, `SELECT COUNT(*) FROM spots WHERE lot_id = $1`, lotA))
	assert.Equal(t, 1, e.countRows(t, `SELECT COUNT(*) FROM spots WHERE lot_id = $1 AND spot_id = 1`, lotA))
	assert.Equal(t, 1, e.countRows(t, `SELECT COUNT(*) FROM spots WHERE lot_id = $1 AND spot_id = 1`, lotB))

	spotID, err := e.catalog.AddSpot(ctx, lotB, 1, entities.SpotRequest{Category: "car", PricePerHour: 40.0})
	require.NoError(t, err)
	assert.Equal(t, 4, spotID)
}

func TestCreateBookingValidation(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 1, PricePerHour: 40.0})

	now := time.Date(2025, 1, 5, 10, 0, 0, 0, time.UTC)

	_, err := e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: now, EndTime: now,
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: now, EndTime: now.Add(-time.Hour),
	})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 99, StartTime: now, EndTime: now.Add(time.Hour),
	})
	assert.True(t, apperr.Is(err, apperr.NotFound))

	// Nothing leaked into the ledger.
	assert.Zero(t, e.countRows(t, `SELECT COUNT(*) FROM bookings`))
}

func TestDefaultRateAppliedWhenSpotPriceUnset(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "truck", Count: 1})

	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	b, err := e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: day.Add(10 * time.Hour), EndTime: day.Add(11 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 75.00, b.PricePerHour)
	assert.Equal(t, 75.00, b.TotalCost)
}

func TestListAvailableExcludesBookedSpots(t *testing.T) {
	e := newEngine(t)
	ctx := context.Background()
	lotID := e.createLot(t, 1, entities.SpotSpec{Category: "car", Count: 2, PricePerHour: 40.0})

	day := time.Date(2025, 1, 7, 0, 0, 0, 0, time.UTC)
	start, end := day.Add(10*time.Hour), day.Add(12*time.Hour)

	_, err := e.bookings.CreateBooking(ctx, 100, entities.BookingRequest{
		LotID: lotID, SpotID: 1, StartTime: start, EndTime: end,
	})
	require.NoError(t, err)

	free, err := e.availability.ListAvailable(ctx, start, end, entities.AvailabilityFilter{LotID: lotID})
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, 2, free[0].SpotID)

	// The booked spot reappears for a disjoint window.
	later, err := e.availability.ListAvailable(ctx, end, end.Add(time.Hour), entities.AvailabilityFilter{LotID: lotID})
	require.NoError(t, err)
	assert.Len(t, later, 2)
}
