package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"fitnessbooking/internal/pkg/tz"
)

const (
	defaultHTTPAddr          = ":8080"
	defaultDatabaseURL       = "fitness_booking.db"
	defaultStaffTokenTTL     = "24h"
	defaultBookingRatePerMin = "30"
	defaultBookingRateBurst  = "10"
	defaultKafkaTopic        = "fitness.bookings"
	defaultStaffJWTSecret    = "change-me-staff-secret"
)

type AppConfig struct {
	AppEnv          string
	HTTPAddr        string
	DatabaseURL     string
	DefaultTimezone string

	StaffJWTSecret string
	StaffTokenTTL  time.Duration

	BookingRatePerMin int
	BookingRateBurst  int

	KafkaBrokers []string
	KafkaTopic   string

	CORSAllowedOrigins []string
}

// StaffAuthEnabled reports whether class creation requires a staff token.
func (c *AppConfig) StaffAuthEnabled() bool {
	return c.StaffJWTSecret != ""
}

func (c *AppConfig) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.DefaultTimezone = strings.TrimSpace(getEnv("DEFAULT_TIMEZONE", tz.DefaultZone))
	cfg.StaffJWTSecret = strings.TrimSpace(os.Getenv("STAFF_JWT_SECRET"))
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))
	cfg.KafkaTopic = strings.TrimSpace(getEnv("KAFKA_TOPIC", defaultKafkaTopic))
	cfg.CORSAllowedOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	cfg.StaffTokenTTL, err = parseDurationEnv("STAFF_TOKEN_TTL", defaultStaffTokenTTL)
	if err != nil {
		return nil, err
	}

	cfg.BookingRatePerMin, err = parseIntEnv("BOOKING_RATE_PER_MIN", defaultBookingRatePerMin)
	if err != nil {
		return nil, err
	}

	cfg.BookingRateBurst, err = parseIntEnv("BOOKING_RATE_BURST", defaultBookingRateBurst)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("app config: env=%s addr=%s timezone=%s staff_auth=%t events=%t",
		cfg.AppEnv, cfg.HTTPAddr, cfg.DefaultTimezone, cfg.StaffAuthEnabled(), cfg.EventsEnabled())

	return cfg, nil
}

func validateConfig(cfg *AppConfig) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if _, err := tz.LoadZone(cfg.DefaultTimezone); err != nil {
		return fmt.Errorf("DEFAULT_TIMEZONE: %w", err)
	}
	if cfg.StaffTokenTTL <= 0 {
		return fmt.Errorf("STAFF_TOKEN_TTL must be > 0")
	}
	if cfg.BookingRatePerMin <= 0 {
		return fmt.Errorf("BOOKING_RATE_PER_MIN must be > 0")
	}
	if cfg.BookingRateBurst <= 0 {
		return fmt.Errorf("BOOKING_RATE_BURST must be > 0")
	}
	if cfg.EventsEnabled() && cfg.KafkaTopic == "" {
		return fmt.Errorf("KAFKA_TOPIC must not be empty when KAFKA_BROKERS is set")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.StaffJWTSecret, defaultStaffJWTSecret) {
			return fmt.Errorf("in prod/release STAFF_JWT_SECRET must be set and not default")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
