package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("BOOKING_TIMEZONE", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8081", cfg.HTTPAddr)
	require.Equal(t, BackendPostgres, cfg.StoreBackend)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, time.UTC, cfg.Booking.Location)
	require.False(t, cfg.Booking.EnforceOverlap)
	require.Equal(t, []string{"http://localhost:5173", "http://localhost:4173"}, cfg.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("BOOKING_TIMEZONE", "America/Mexico_City")
	t.Setenv("BOOKING_ENFORCE_OVERLAP", "true")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.edu , ,https://b.edu")
	t.Setenv("REQUEST_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, BackendMemory, cfg.StoreBackend)
	require.Equal(t, "America/Mexico_City", cfg.Booking.Location.String())
	require.True(t, cfg.Booking.EnforceOverlap)
	require.Equal(t, "db.internal", cfg.DB.Host)
	require.Equal(t, []string{"https://a.edu", "https://b.edu"}, cfg.AllowedOrigins)
	require.Equal(t, 2*time.Second, cfg.RequestTimeout)
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("BOOKING_TIMEZONE", "Mars/Olympus")
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{StoreBackend: BackendPostgres, RequestTimeout: time.Second}
	require.NoError(t, base.Validate())

	prod := base
	prod.AppEnv = "prod"
	require.Error(t, prod.Validate(), "prod without jwt secret")

	prod.Auth.JWTSecret = "s3cret"
	require.NoError(t, prod.Validate())

	prod.StoreBackend = BackendMemory
	require.Error(t, prod.Validate())

	hook := base
	hook.Notify.WebhookURL = "https://hooks.campus.edu"
	require.Error(t, hook.Validate())

	unknown := base
	unknown.StoreBackend = "redis"
	require.Error(t, unknown.Validate())
}
