package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config gathers everything the server reads from the environment.
// godotenv.Load in main makes a local .env file work during development.
type Config struct {
	Port            string
	DatabaseURL     string
	DemoDatabaseURL string
	JWTSecret       string

	// ReportCron is the robfig/cron schedule for the occupancy snapshot job.
	ReportCron string

	// BookingLockTimeout bounds how long a booking attempt may wait on the
	// spot row lock before failing as retryable.
	BookingLockTimeout time.Duration
	// BookingMaxRetries caps coordinator-internal retries of transient
	// transaction failures.
	BookingMaxRetries int

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// Load reads the configuration from the environment, applying defaults for
// optional values. DATABASE_URL is the only hard requirement and is checked
// by the caller.
func Load() *Config {
	cfg := &Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DemoDatabaseURL: os.Getenv("DEMO_DATABASE_URL"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ReportCron:      getenv("REPORT_CRON", "@hourly"),

		SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendGridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendGridFromName:  getenv("SENDGRID_FROM_NAME", "SmartParking"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),
	}

	cfg.BookingLockTimeout = getduration("BOOKING_LOCK_TIMEOUT", 5*time.Second)
	cfg.BookingMaxRetries = getint("BOOKING_MAX_RETRIES", 3)
	if cfg.BookingMaxRetries < 1 {
		log.Printf("BOOKING_MAX_RETRIES below 1, using 1")
		cfg.BookingMaxRetries = 1
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
