package repository

import (
	"context"
	"database/sql"
	"time"

	"smartparking/internal/apperr"
	"smartparking/internal/db"
	"smartparking/internal/entities"
)

// BookingRepository is the append-mostly reservation ledger. Rows are written
// only through the booking coordinator's transaction and removed only by
// catalog cascades; there is no update path.
type BookingRepository struct {
	DB *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

// Overlaps reports whether any booking on the spot intersects [start, end).
// Two intervals [a,b) and [c,d) overlap iff a < d and c < b, so bookings that
// merely touch at an endpoint do not collide. Runs against q so the
// coordinator can issue it under the spot row lock.
func (r *BookingRepository) Overlaps(ctx context.Context, q Queryer, lotID int64, spotID int, start, end time.Time) (bool, error) {
	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE lot_id = $1 AND spot_id = $2
			  AND start_time < $4 AND end_time > $3
		)`,
		lotID, spotID, start, end,
	).Scan(&exists)
	if err != nil {
		return false, apperr.Wrap(apperr.Storage, err, "error checking booking overlap")
	}
	return exists, nil
}

// Insert appends a booking row and fills in its generated id and timestamp.
func (r *BookingRepository) Insert(ctx context.Context, q Queryer, b *db.Booking) error {
	err := q.QueryRowContext(ctx,
		`INSERT INTO bookings
			(code, lot_id, spot_id, user_id, start_time, end_time, price_per_hour, total_cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING booking_id, created_at`,
		b.Code, b.LotID, b.SpotID, b.UserID, b.StartTime, b.EndTime, b.PricePerHour, b.TotalCost,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "error inserting booking")
	}
	return nil
}

// FutureBookings returns bookings on a spot that have not ended at the given
// instant, earliest first, capped at limit.
func (r *BookingRepository) FutureBookings(ctx context.Context, lotID int64, spotID int, now time.Time, limit int) ([]entities.FutureBooking, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT start_time, end_time, total_cost
		 FROM bookings
		 WHERE lot_id = $1 AND spot_id = $2 AND end_time >= $3
		 ORDER BY start_time ASC
		 LIMIT $4`,
		lotID, spotID, now, limit,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying future bookings")
	}
	defer rows.Close()

	var bookings []entities.FutureBooking
	for rows.Next() {
		var b entities.FutureBooking
		if err := rows.Scan(&b.StartTime, &b.EndTime, &b.TotalCost); err != nil {
			return nil, apperr.Wrap(apperr.Storage, err, "error scanning future booking")
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error iterating future bookings")
	}
	return bookings, nil
}

// ListForUser returns a customer's booking history joined with spot category
// and lot location, newest first.
func (r *BookingRepository) ListForUser(ctx context.Context, userID int64) ([]entities.UserBooking, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT b.booking_id, b.lot_id, b.spot_id, s.category, l.location,
		        b.start_time, b.end_time, b.price_per_hour, b.total_cost
		 FROM bookings b
		 JOIN spots s ON b.lot_id = s.lot_id AND b.spot_id = s.spot_id
		 JOIN lots l ON b.lot_id = l.lot_id
		 WHERE b.user_id = $1
		 ORDER BY b.start_time DESC`,
		userID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying user bookings")
	}
	defer rows.Close()

	var bookings []entities.UserBooking
	for rows.Next() {
		var b entities.UserBooking
		err := rows.Scan(&b.BookingID, &b.LotID, &b.SpotID, &b.Category, &b.Location,
			&b.StartTime, &b.EndTime, &b.PricePerHour, &b.TotalCost)
		if err != nil {
			return nil, apperr.Wrap(apperr.Storage, err, "error scanning user booking")
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error iterating user bookings")
	}
	return bookings, nil
}

// CountOccupied counts distinct spots in a lot with a booking covering the
// given instant. Derived occupancy; the spots table has no status column to
// drift out of date.
func (r *BookingRepository) CountOccupied(ctx context.Context, lotID int64, at time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT spot_id) FROM bookings
		 WHERE lot_id = $1 AND start_time <= $2 AND end_time > $2`,
		lotID, at,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(apperr.Storage, err, "error counting occupied spots")
	}
	return n, nil
}

// CountUpcoming counts bookings in a lot starting at or after the given
// instant.
func (r *BookingRepository) CountUpcoming(ctx context.Context, lotID int64, from time.Time) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE lot_id = $1 AND start_time >= $2`,
		lotID, from,
	).Scan(&n)
	if err != nil {
		return 0, apperr.Wrap(apperr.Storage, err, "error counting upcoming bookings")
	}
	return n, nil
}
