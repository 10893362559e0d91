package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "ENV", "HTTP_ADDR", "DATABASE_URL", "DEFAULT_TIMEZONE",
		"STAFF_JWT_SECRET", "STAFF_TOKEN_TTL", "BOOKING_RATE_PER_MIN",
		"BOOKING_RATE_BURST", "KAFKA_BROKERS", "KAFKA_TOPIC", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "fitness_booking.db", cfg.DatabaseURL)
	assert.Equal(t, "Asia/Kolkata", cfg.DefaultTimezone)
	assert.Equal(t, 24*time.Hour, cfg.StaffTokenTTL)
	assert.Equal(t, 30, cfg.BookingRatePerMin)
	assert.Equal(t, 10, cfg.BookingRateBurst)
	assert.False(t, cfg.StaffAuthEnabled())
	assert.False(t, cfg.EventsEnabled())
}

func TestLoadAppConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STAFF_JWT_SECRET", "s3cret")
	t.Setenv("DEFAULT_TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://studio.example")

	cfg, err := LoadAppConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fitness.bookings", cfg.KafkaTopic)
	assert.True(t, cfg.StaffAuthEnabled())
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, []string{"https://studio.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadAppConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"DEFAULT_TIMEZONE":     "Mars/Base",
		"STAFF_TOKEN_TTL":      "soon",
		"BOOKING_RATE_PER_MIN": "0",
		"BOOKING_RATE_BURST":   "-1",
	}
	for key, value := range cases {
		clearEnv(t)
		t.Setenv(key, value)

		_, err := LoadAppConfig()
		assert.Error(t, err, key)
	}
}

func TestLoadAppConfig_ProdRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := LoadAppConfig()
	assert.Error(t, err)

	t.Setenv("STAFF_JWT_SECRET", "real-secret")
	_, err = LoadAppConfig()
	assert.NoError(t, err)
}
