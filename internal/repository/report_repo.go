package repository

import (
	"context"
	"database/sql"
	"time"

	"smartparking/internal/apperr"
)

// LotOccupancy is one lot's derived occupancy at a point in time.
type LotOccupancy struct {
	LotID            int64
	Location         string
	TotalSpots       int
	OccupiedSpots    int
	UpcomingBookings int
}

// ReportRepository serves the read-only queries of the periodic occupancy
// report job. It never mutates the ledger or the catalog.
type ReportRepository struct {
	DB *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{DB: db}
}

// OccupancySnapshot derives per-lot occupancy at the given instant from the
// bookings ledger.
func (r *ReportRepository) OccupancySnapshot(ctx context.Context, at time.Time) ([]LotOccupancy, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT l.lot_id, l.location,
		        (SELECT COUNT(*) FROM spots s WHERE s.lot_id = l.lot_id) AS total_spots,
		        (SELECT COUNT(DISTINCT b.spot_id) FROM bookings b
		          WHERE b.lot_id = l.lot_id AND b.start_time <= $1 AND b.end_time > $1) AS occupied_spots,
		        (SELECT COUNT(*) FROM bookings b
		          WHERE b.lot_id = l.lot_id AND b.start_time >= $1) AS upcoming_bookings
		 FROM lots l
		 ORDER BY l.lot_id ASC`,
		at,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error querying occupancy snapshot")
	}
	defer rows.Close()

	var snapshot []LotOccupancy
	for rows.Next() {
		var lo LotOccupancy
		if err := rows.Scan(&lo.LotID, &lo.Location, &lo.TotalSpots, &lo.OccupiedSpots, &lo.UpcomingBookings); err != nil {
			return nil, apperr.Wrap(apperr.Storage, err, "error scanning occupancy snapshot")
		}
		snapshot = append(snapshot, lo)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.Storage, err, "error iterating occupancy snapshot")
	}
	return snapshot, nil
}
