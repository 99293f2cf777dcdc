package service

import (
	"context"
	"log"
	"time"

	"smartparking/internal/repository"
)

// ReportService drives the periodic occupancy snapshot. It reads the catalog
// and the ledger, logs a per-lot summary and never mutates either.
type ReportService struct {
	Repo *repository.ReportRepository
}

func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{Repo: repo}
}

// LogOccupancySnapshot logs each lot's derived occupancy right now.
func (s *ReportService) LogOccupancySnapshot(ctx context.Context) error {
	now := time.Now().UTC()
	snapshot, err := s.Repo.OccupancySnapshot(ctx, now)
	if err != nil {
		log.Printf("Occupancy report: snapshot failed: %v", err)
		return err
	}
	if len(snapshot) == 0 {
		log.Println("Occupancy report: no lots registered")
		return nil
	}
	for _, lot := range snapshot {
		log.Printf("Occupancy report: lot %d (%s): %d/%d spots occupied, %d upcoming bookings",
			lot.LotID, lot.Location, lot.OccupiedSpots, lot.TotalSpots, lot.UpcomingBookings)
	}
	return nil
}
