package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"smartparking/internal/apperr"
	"smartparking/internal/db"
	"smartparking/internal/entities"
	"smartparking/internal/repository"
)

// BookingService is the booking transaction coordinator. The availability
// check and the insert of the new booking run in one transaction holding the
// spot's row lock, so two concurrent attempts on the same spot serialize:
// exactly one wins, the loser sees the winner's row and gets a conflict.
type BookingService struct {
	DB       *sql.DB
	Catalog  *repository.CatalogRepository
	Bookings *repository.BookingRepository
	Notifier Notifier

	// LockTimeout bounds how long one attempt may wait on the spot lock
	// before failing as retryable. MaxRetries caps coordinator-internal
	// retries of transient failures.
	LockTimeout time.Duration
	MaxRetries  int
}

func NewBookingService(sqlDB *sql.DB, catalog *repository.CatalogRepository, bookings *repository.BookingRepository, notifier Notifier) *BookingService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &BookingService{
		DB:          sqlDB,
		Catalog:     catalog,
		Bookings:    bookings,
		Notifier:    notifier,
		LockTimeout: 5 * time.Second,
		MaxRetries:  3,
	}
}

// CreateBooking validates the window, then atomically re-checks availability
// and commits the booking. Any prior isFree answer the caller holds is
// treated as stale. Returns a Conflict error when the interval is taken, a
// NotFound error for a missing spot, and a Storage error once retries are
// exhausted.
func (s *BookingService) CreateBooking(ctx context.Context, userID int64, req entities.BookingRequest) (*db.Booking, error) {
	if err := ValidateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.LotID == 0 || req.SpotID == 0 {
		return nil, apperr.New(apperr.Validation, "lot_id and spot_id are required")
	}

	var booking *db.Booking
	var err error
	for attempt := 1; ; attempt++ {
		booking, err = s.tryCreate(ctx, userID, req)
		if err == nil || !retryable(err) || attempt >= s.MaxRetries {
			break
		}
		log.Printf("Booking attempt %d/%d for lot %d spot %d failed transiently: %v",
			attempt, s.MaxRetries, req.LotID, req.SpotID, err)
	}
	if err != nil {
		if retryable(err) {
			return nil, apperr.Wrap(apperr.Storage, err, "booking transaction did not complete")
		}
		return nil, err
	}

	s.Notifier.BookingConfirmed(booking, entities.Contact{Email: req.Email, Phone: req.Phone})
	return booking, nil
}

// tryCreate runs one check-and-insert transaction.
func (s *BookingService) tryCreate(ctx context.Context, userID int64, req entities.BookingRequest) (*db.Booking, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "could not begin booking transaction")
	}
	defer tx.Rollback()

	// Bound the wait for the spot row lock; a blocked attempt fails as
	// retryable instead of hanging.
	_, err = tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.LockTimeout.Milliseconds()))
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "could not set lock timeout")
	}

	spot, err := s.Catalog.SpotForUpdate(ctx, tx, req.LotID, req.SpotID)
	if err != nil {
		return nil, err
	}

	overlaps, err := s.Bookings.Overlaps(ctx, tx, req.LotID, req.SpotID, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if overlaps {
		// Expected under contention; not an error worth logging.
		return nil, apperr.Newf(apperr.Conflict, "spot %d in lot %d is no longer free for that time window", req.SpotID, req.LotID)
	}

	rate := EffectiveRate(spot.Category, spot.PricePerHour)
	total, err := TotalCost(rate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	booking := &db.Booking{
		Code:         uuid.NewString(),
		LotID:        req.LotID,
		SpotID:       req.SpotID,
		UserID:       userID,
		StartTime:    req.StartTime.UTC(),
		EndTime:      req.EndTime.UTC(),
		PricePerHour: rate,
		TotalCost:    total,
	}
	if err := s.Bookings.Insert(ctx, tx, booking); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error committing booking")
	}
	return booking, nil
}

// ListForUser returns the caller's booking history.
func (s *BookingService) ListForUser(ctx context.Context, userID int64) ([]entities.UserBooking, error) {
	return s.Bookings.ListForUser(ctx, userID)
}

// retryable classifies transient transaction failures worth another attempt:
// serialization failures, deadlocks and lock timeouts.
func retryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
