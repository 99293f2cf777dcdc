package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"smartparking/internal/api"
	"smartparking/internal/config"
	"smartparking/internal/db"
	"smartparking/internal/repository"
	"smartparking/internal/service"
	"smartparking/internal/tenant"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	ctx := context.Background()

	production := openStore(ctx, cfg.DatabaseURL)
	defer production.Close()

	var notifier service.Notifier = service.NoopNotifier{}
	if cfg.SendGridAPIKey != "" || cfg.TwilioAccountSID != "" {
		notifier = service.NewNotifyService(
			cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName,
			cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber,
		)
	}
	matcher := service.CheapestMatcher{}

	prodBundle := tenant.NewBundle(production, notifier, matcher, cfg.BookingLockTimeout, cfg.BookingMaxRetries)

	var demoBundle *tenant.Bundle
	if cfg.DemoDatabaseURL != "" {
		demo := openStore(ctx, cfg.DemoDatabaseURL)
		defer demo.Close()
		// Demo bookings never notify anyone.
		demoBundle = tenant.NewBundle(demo, service.NoopNotifier{}, matcher, cfg.BookingLockTimeout, cfg.BookingMaxRetries)
	}

	resolver := tenant.NewResolver(prodBundle, demoBundle)
	handler := api.NewHandler(resolver)
	router := api.NewRouter(handler, cfg.JWTSecret)

	reportSvc := service.NewReportService(repository.NewReportRepository(production))
	c := cron.New()
	if _, err := c.AddFunc(cfg.ReportCron, func() {
		if err := reportSvc.LogOccupancySnapshot(context.Background()); err != nil {
			log.Printf("Occupancy report run failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid REPORT_CRON %q: %v", cfg.ReportCron, err)
	}
	c.Start()
	defer c.Stop()

	corsMiddleware := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Partition"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(os.Stdout, corsMiddleware(router))))
}

func openStore(ctx context.Context, url string) *sql.DB {
	conn, err := sql.Open("postgres", url)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.InitSchema(ctx, conn); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	return conn
}
