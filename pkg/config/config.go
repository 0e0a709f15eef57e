package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string
	LogLevel       string

	// StoreBackend selects where requests live: "postgres" or "memory" (local demos, tests).
	StoreBackend string

	// RequestTimeout bounds every store read/write and notification dispatch of one HTTP request.
	RequestTimeout time.Duration

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Auth AuthConfig

	Booking BookingConfig

	Notify NotifyConfig

	// AllowedOrigins is a comma-separated allowlist of dashboard origins. Example:
	//   https://dashboard.campus.edu,http://localhost:5173
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type AuthConfig struct {
	// JWTSecret signs and verifies HS256 session tokens issued by the campus login service.
	JWTSecret string
	Issuer    string
	Audience  string
}

type BookingConfig struct {
	// Timezone is the institution's wall clock; business hours and weekdays are evaluated in it.
	Timezone string
	Location *time.Location

	// EnforceOverlap rejects requests that collide with an approved reservation of the same
	// resource. Off by default: the availability calendar is informational.
	EnforceOverlap bool
}

type NotifyConfig struct {
	WebhookURL    string
	WebhookSecret string
	Timeout       time.Duration
}

// Load reads configuration from the environment. A .env file is honoured for local dev
// but never overrides variables that are already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Cloud Run sets PORT. Prefer it when HTTP_ADDR isn't explicitly set.
	httpAddr := v.GetString("http_addr")
	if httpAddr == "" {
		if port := v.GetString("port"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	cfg := Config{
		AppEnv:         v.GetString("app_env"),
		HTTPAddr:       httpAddr,
		MigrationsPath: v.GetString("migrations_path"),
		LogLevel:       v.GetString("log_level"),
		StoreBackend:   strings.ToLower(v.GetString("store_backend")),
		RequestTimeout: v.GetDuration("request_timeout"),
		DatabaseURL:    v.GetString("database_url"),
		DirectURL:      v.GetString("direct_url"),
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			Name:     v.GetString("db.name"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			Issuer:    v.GetString("auth.issuer"),
			Audience:  v.GetString("auth.audience"),
		},
		Booking: BookingConfig{
			Timezone:       v.GetString("booking.timezone"),
			EnforceOverlap: v.GetBool("booking.enforce_overlap"),
		},
		Notify: NotifyConfig{
			WebhookURL:    v.GetString("notify.webhook_url"),
			WebhookSecret: v.GetString("notify.webhook_secret"),
			Timeout:       v.GetDuration("notify.timeout"),
		},
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}

	loc, err := time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("booking timezone %q: %w", cfg.Booking.Timezone, err)
	}
	cfg.Booking.Location = loc

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_env", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("store_backend", BackendPostgres)
	v.SetDefault("request_timeout", 5*time.Second)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "campusreserve")
	v.SetDefault("db.user", "campusreserve")
	v.SetDefault("db.password", "campusreserve")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.audience", "")

	v.SetDefault("booking.timezone", "UTC")
	v.SetDefault("booking.enforce_overlap", false)

	v.SetDefault("notify.webhook_url", "")
	v.SetDefault("notify.webhook_secret", "")
	v.SetDefault("notify.timeout", 5*time.Second)

	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://localhost:4173")
}

// Validate ensures the combination of settings can actually run.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown store backend: %s", c.StoreBackend)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be > 0")
	}
	if c.AppEnv == "prod" {
		if c.Auth.JWTSecret == "" {
			return errors.New("AUTH_JWT_SECRET is required in prod")
		}
		if c.StoreBackend == BackendMemory {
			return errors.New("memory store backend is not allowed in prod")
		}
	}
	if c.Notify.WebhookURL != "" && c.Notify.WebhookSecret == "" {
		return errors.New("NOTIFY_WEBHOOK_SECRET is required when NOTIFY_WEBHOOK_URL is set")
	}
	return nil
}

// Lookup is a tiny escape hatch for dev tools that read one-off variables.
func Lookup(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
