package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"

	"smartparking/internal/apperr"
	"smartparking/internal/db"
	"smartparking/internal/entities"
)

// CatalogRepository is the durable store of lots and spots. Every mutation
// verifies ownership inside the same transaction that changes the rows, so an
// unauthorized call can never leave a side effect.
type CatalogRepository struct {
	DB *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

// CreateLot inserts a lot and its initial spot layout. Spot ids are a fresh
// 1..N sequence in spec order.
func (r *CatalogRepository) CreateLot(ctx context.Context, lot *db.Lot, specs []entities.SpotSpec) (*db.Lot, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "could not begin transaction")
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO lots (owner_id, location, latitude, longitude)
		 VALUES ($1, $2, $3, $4) RETURNING lot_id`,
		lot.OwnerID, lot.Location, lot.Latitude, lot.Longitude,
	).Scan(&lot.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error inserting lot")
	}

	if err := insertSpotSequence(ctx, tx, lot.ID, specs); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error committing lot")
	}
	return lot, nil
}

// GetLot fetches a single lot.
func (r *CatalogRepository) GetLot(ctx context.Context, lotID int64) (*db.Lot, error) {
	var lot db.Lot
	err := r.DB.QueryRowContext(ctx,
		`SELECT lot_id, owner_id, location, latitude, longitude FROM lots WHERE lot_id = $1`,
		lotID,
	).Scan(&lot.ID, &lot.OwnerID, &lot.Location, &lot.Latitude, &lot.Longitude)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.NotFound, "lot %d not found", lotID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying lot")
	}
	return &lot, nil
}

// ListLotsByOwner returns the lots owned by a user, oldest first.
func (r *CatalogRepository) ListLotsByOwner(ctx context.Context, ownerID int64) ([]db.Lot, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT lot_id, owner_id, location, latitude, longitude
		 FROM lots WHERE owner_id = $1 ORDER BY lot_id ASC`,
		ownerID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying lots")
	}
	defer rows.Close()

	var lots []db.Lot
	for rows.Next() {
		var lot db.Lot
		if err := rows.Scan(&lot.ID, &lot.OwnerID, &lot.Location, &lot.Latitude, &lot.Longitude); err != nil {
			return nil, apperr.Wrap(apperr.Storage, err, "error scanning lot")
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error iterating lots")
	}
	return lots, nil
}

// ListSpots returns a lot's spots ordered by spot id.
func (r *CatalogRepository) ListSpots(ctx context.Context, lotID int64) ([]db.Spot, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT lot_id, spot_id, category, price_per_hour
		 FROM spots WHERE lot_id = $1 ORDER BY spot_id ASC`,
		lotID,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying spots")
	}
	defer rows.Close()

	var spots []db.Spot
	for rows.Next() {
		var s db.Spot
		if err := rows.Scan(&s.LotID, &s.SpotID, &s.Category, &s.PricePerHour); err != nil {
			return nil, apperr.Wrap(apperr.Storage, err, "error scanning spot")
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error iterating spots")
	}
	return spots, nil
}

// ListSpotsInScope returns spots joined with their lot, narrowed by the
// filter, in (lot_id, spot_id) order. The availability oracle scans this.
func (r *CatalogRepository) ListSpotsInScope(ctx context.Context, filter entities.AvailabilityFilter) ([]entities.AvailableSpot, error) {
	query := `
		SELECT s.lot_id, s.spot_id, s.category, s.price_per_hour,
		       l.location, l.latitude, l.longitude
		FROM spots s
		JOIN lots l ON s.lot_id = l.lot_id
		WHERE 1=1`
	args := []any{}
	idx := 1

	if filter.LotID != 0 {
		query += " AND s.lot_id = $" + strconv.Itoa(idx)
		args = append(args, filter.LotID)
		idx++
	}
	if filter.Category != "" {
		query += " AND s.category = $" + strconv.Itoa(idx)
		args = append(args, filter.Category)
		idx++
	}
	query += " ORDER BY s.lot_id ASC, s.spot_id ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying spots in scope")
	}
	defer rows.Close()

	var spots []entities.AvailableSpot
	for rows.Next() {
		var s entities.AvailableSpot
		err := rows.Scan(&s.LotID, &s.SpotID, &s.Category, &s.PricePerHour,
			&s.Location, &s.Latitude, &s.Longitude)
		if err != nil {
			return nil, apperr.Wrap(apperr.Storage, err, "error scanning spot in scope")
		}
		spots = append(spots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error iterating spots in scope")
	}
	return spots, nil
}

// GetSpot fetches one spot by its composite key.
func (r *CatalogRepository) GetSpot(ctx context.Context, lotID int64, spotID int) (*db.Spot, error) {
	return scanSpot(r.DB.QueryRowContext(ctx,
		`SELECT lot_id, spot_id, category, price_per_hour
		 FROM spots WHERE lot_id = $1 AND spot_id = $2`,
		lotID, spotID), lotID, spotID)
}

// SpotForUpdate fetches a spot inside tx and locks its row. The booking
// coordinator serializes all check-and-insert work for one spot on this lock.
func (r *CatalogRepository) SpotForUpdate(ctx context.Context, tx *sql.Tx, lotID int64, spotID int) (*db.Spot, error) {
	return scanSpot(tx.QueryRowContext(ctx,
		`SELECT lot_id, spot_id, category, price_per_hour
		 FROM spots WHERE lot_id = $1 AND spot_id = $2 FOR UPDATE`,
		lotID, spotID), lotID, spotID)
}

func scanSpot(row *sql.Row, lotID int64, spotID int) (*db.Spot, error) {
	var s db.Spot
	err := row.Scan(&s.LotID, &s.SpotID, &s.Category, &s.PricePerHour)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Newf(apperr.NotFound, "spot %d in lot %d not found", spotID, lotID)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying spot")
	}
	return &s, nil
}

// UpdateLot changes a lot's fields. When specs is non-nil the whole spot
// layout is rewritten: existing spots AND their bookings are deleted before
// the replacement sequence is inserted. Destructive on purpose and loud
// about it.
func (r *CatalogRepository) UpdateLot(ctx context.Context, lotID, ownerID int64, upd entities.UpdateLotRequest) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "could not begin transaction")
	}
	defer tx.Rollback()

	if err := r.requireOwner(ctx, tx, lotID, ownerID); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE lots SET location = $1, latitude = $2, longitude = $3 WHERE lot_id = $4`,
		upd.Location, upd.Latitude, upd.Longitude, lotID,
	)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "error updating lot")
	}

	if upd.Spots != nil {
		delBookings, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE lot_id = $1`, lotID)
		if err != nil {
			return apperr.Wrap(apperr.Storage, err, "error deleting lot bookings")
		}
		delSpots, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE lot_id = $1`, lotID)
		if err != nil {
			return apperr.Wrap(apperr.Storage, err, "error deleting lot spots")
		}
		nb, _ := delBookings.RowsAffected()
		ns, _ := delSpots.RowsAffected()
		log.Printf("WARNING: lot %d spot layout rewritten by owner %d: dropped %d spots and %d bookings", lotID, ownerID, ns, nb)

		if err := insertSpotSequence(ctx, tx, lotID, upd.Spots); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error committing lot update")
	}
	return nil
}

// DeleteLot removes a lot with all its spots and bookings. No orphan booking
// may survive a lot deletion.
func (r *CatalogRepository) DeleteLot(ctx context.Context, lotID, ownerID int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "could not begin transaction")
	}
	defer tx.Rollback()

	if err := r.requireOwner(ctx, tx, lotID, ownerID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE lot_id = $1`, lotID); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error deleting lot bookings")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM spots WHERE lot_id = $1`, lotID); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error deleting lot spots")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM lots WHERE lot_id = $1`, lotID); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error deleting lot")
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error committing lot deletion")
	}
	return nil
}

// AddSpot appends one spot to a lot. The new spot id is max(existing)+1,
// computed under the lot row lock so concurrent adds cannot collide.
func (r *CatalogRepository) AddSpot(ctx context.Context, lotID, ownerID int64, category string, pricePerHour float64) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperr.Wrap(apperr.Storage, err, "could not begin transaction")
	}
	defer tx.Rollback()

	if err := r.requireOwner(ctx, tx, lotID, ownerID); err != nil {
		return 0, err
	}

	var nextID int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(spot_id), 0) + 1 FROM spots WHERE lot_id = $1`, lotID,
	).Scan(&nextID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Storage, err, "error computing next spot id")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO spots (lot_id, spot_id, category, price_per_hour) VALUES ($1, $2, $3, $4)`,
		lotID, nextID, category, pricePerHour,
	)
	if err != nil {
		return 0, apperr.Wrap(apperr.Storage, err, "error inserting spot")
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Wrap(apperr.Storage, err, "error committing spot")
	}
	return nextID, nil
}

// UpdateSpot changes a spot's category and price. Existing bookings keep
// their snapshotted rate.
func (r *CatalogRepository) UpdateSpot(ctx context.Context, lotID int64, spotID int, ownerID int64, category string, pricePerHour float64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "could not begin transaction")
	}
	defer tx.Rollback()

	if err := r.requireOwner(ctx, tx, lotID, ownerID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE spots SET category = $1, price_per_hour = $2 WHERE lot_id = $3 AND spot_id = $4`,
		category, pricePerHour, lotID, spotID,
	)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "error updating spot")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.NotFound, "spot %d in lot %d not found", spotID, lotID)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error committing spot update")
	}
	return nil
}

// DeleteSpot removes a spot and its bookings.
func (r *CatalogRepository) DeleteSpot(ctx context.Context, lotID int64, spotID int, ownerID int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "could not begin transaction")
	}
	defer tx.Rollback()

	if err := r.requireOwner(ctx, tx, lotID, ownerID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE lot_id = $1 AND spot_id = $2`, lotID, spotID); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error deleting spot bookings")
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM spots WHERE lot_id = $1 AND spot_id = $2`, lotID, spotID)
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "error deleting spot")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Newf(apperr.NotFound, "spot %d in lot %d not found", spotID, lotID)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Wrap(apperr.Storage, err, "error committing spot deletion")
	}
	return nil
}

// requireOwner locks the lot row and checks the caller owns it. Locking here
// also serializes catalog rewrites against concurrent AddSpot calls.
func (r *CatalogRepository) requireOwner(ctx context.Context, tx *sql.Tx, lotID, ownerID int64) error {
	var owner int64
	err := tx.QueryRowContext(ctx,
		`SELECT owner_id FROM lots WHERE lot_id = $1 FOR UPDATE`, lotID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.Newf(apperr.NotFound, "lot %d not found", lotID)
	}
	if err != nil {
		return apperr.Wrap(apperr.Storage, err, "error checking lot ownership")
	}
	if owner != ownerID {
		return apperr.New(apperr.Authorization, "not the owner of this lot")
	}
	return nil
}

func insertSpotSequence(ctx context.Context, tx *sql.Tx, lotID int64, specs []entities.SpotSpec) error {
	spotID := 1
	for _, spec := range specs {
		for i := 0; i < spec.Count; i++ {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO spots (lot_id, spot_id, category, price_per_hour) VALUES ($1, $2, $3, $4)`,
				lotID, spotID, spec.Category, spec.PricePerHour,
			)
			if err != nil {
				return apperr.Wrap(apperr.Storage, err, fmt.Sprintf("error inserting spot %d", spotID))
			}
			spotID++
		}
	}
	return nil
}
