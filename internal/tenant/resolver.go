package tenant

import (
	"database/sql"
	"time"

	"smartparking/internal/apperr"
	"smartparking/internal/repository"
	"smartparking/internal/service"
)

// Partition names. The core never mixes rows across partitions: each one is
// a fully separate store with its own wired service set.
const (
	Production = "production"
	Demo       = "demo"
)

// Bundle is everything wired on top of one partition's store handle.
type Bundle struct {
	Store        *sql.DB
	Catalog      *service.CatalogService
	Availability *service.AvailabilityService
	Bookings     *service.BookingService
	Search       *service.SearchService
}

// NewBundle wires repositories and services over one *sql.DB.
func NewBundle(sqlDB *sql.DB, notifier service.Notifier, matcher service.SpotMatcher, lockTimeout time.Duration, maxRetries int) *Bundle {
	catalogRepo := repository.NewCatalogRepository(sqlDB)
	bookingRepo := repository.NewBookingRepository(sqlDB)

	availability := service.NewAvailabilityService(catalogRepo, bookingRepo)
	bookings := service.NewBookingService(sqlDB, catalogRepo, bookingRepo, notifier)
	if lockTimeout > 0 {
		bookings.LockTimeout = lockTimeout
	}
	if maxRetries > 0 {
		bookings.MaxRetries = maxRetries
	}

	return &Bundle{
		Store:        sqlDB,
		Catalog:      service.NewCatalogService(catalogRepo, bookingRepo),
		Availability: availability,
		Bookings:     bookings,
		Search:       service.NewSearchService(availability, matcher),
	}
}

// Resolver hands out the service bundle for a named partition. The demo
// partition is optional.
type Resolver struct {
	production *Bundle
	demo       *Bundle
}

func NewResolver(production, demo *Bundle) *Resolver {
	return &Resolver{production: production, demo: demo}
}

// Resolve maps a partition name to its bundle. An empty name means
// production.
func (r *Resolver) Resolve(partition string) (*Bundle, error) {
	switch partition {
	case "", Production:
		return r.production, nil
	case Demo:
		if r.demo == nil {
			return nil, apperr.New(apperr.Validation, "demo partition is not configured")
		}
		return r.demo, nil
	}
	return nil, apperr.Newf(apperr.Validation, "unknown partition %q", partition)
}
