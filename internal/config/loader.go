package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session store backends.
const (
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"
)

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort     int
	SQLiteDSN    string
	PublicURL    string
	LogLevel     string
	LogFormat    string
	OTLPEndpoint string

	SessionStore       string
	RedisURL           string
	SessionTTL         time.Duration
	SessionIdleTimeout time.Duration

	AdminEmail    string
	AdminPassword string
	PasswordHash  string

	ResetTokenTTL           time.Duration
	ConcealResetEnumeration bool
	MaxUploadBytes          int64

	SMTPAddr     string
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		HTTPPort:           8080,
		SQLiteDSN:          "file:portal.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		PublicURL:          "http://localhost:8080",
		LogLevel:           "info",
		LogFormat:          "json",
		SessionStore:       SessionStoreSQLite,
		SessionTTL:         12 * time.Hour,
		SessionIdleTimeout: 30 * time.Minute,
		AdminEmail:         "admin@admin.com",
		AdminPassword:      "12345",
		PasswordHash:       "argon2id",
		ResetTokenTTL:      time.Hour,
		MaxUploadBytes:     5 << 20,
	}
}

// LoadDotEnv merges variables from the given .env files into the process
// environment without overriding values that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// Load parses configuration values from the current process environment.
//
// Optional values fall back to Default. Every malformed variable is reported
// in a single error.
func Load() (Config, error) {
	cfg := Default()
	p := parser{}

	p.int("PORTAL_HTTP_PORT", &cfg.HTTPPort)
	p.str("PORTAL_SQLITE_DSN", &cfg.SQLiteDSN)
	p.str("PORTAL_PUBLIC_URL", &cfg.PublicURL)
	p.str("PORTAL_LOG_LEVEL", &cfg.LogLevel)
	p.str("PORTAL_LOG_FORMAT", &cfg.LogFormat)
	p.str("OTEL_EXPORTER_OTLP_ENDPOINT", &cfg.OTLPEndpoint)

	p.str("PORTAL_SESSION_STORE", &cfg.SessionStore)
	p.str("PORTAL_REDIS_URL", &cfg.RedisURL)
	p.duration("PORTAL_SESSION_TTL", &cfg.SessionTTL)
	p.duration("PORTAL_SESSION_IDLE_TIMEOUT", &cfg.SessionIdleTimeout)

	p.str("PORTAL_ADMIN_EMAIL", &cfg.AdminEmail)
	p.str("PORTAL_ADMIN_PASSWORD", &cfg.AdminPassword)
	p.str("PORTAL_PASSWORD_HASH", &cfg.PasswordHash)

	p.duration("PORTAL_RESET_TOKEN_TTL", &cfg.ResetTokenTTL)
	p.bool("PORTAL_CONCEAL_RESET_ENUMERATION", &cfg.ConcealResetEnumeration)
	p.int64("PORTAL_MAX_UPLOAD_BYTES", &cfg.MaxUploadBytes)

	p.str("PORTAL_SMTP_ADDR", &cfg.SMTPAddr)
	p.str("PORTAL_SMTP_USER", &cfg.SMTPUser)
	p.str("PORTAL_SMTP_PASSWORD", &cfg.SMTPPassword)
	p.str("PORTAL_SMTP_FROM", &cfg.SMTPFrom)

	cfg.PublicURL = strings.TrimRight(cfg.PublicURL, "/")
	cfg.SessionStore = strings.ToLower(cfg.SessionStore)

	switch cfg.SessionStore {
	case SessionStoreSQLite:
	case SessionStoreRedis:
		if cfg.RedisURL == "" {
			p.missing = append(p.missing, "PORTAL_REDIS_URL")
		}
	default:
		p.invalid = append(p.invalid, "PORTAL_SESSION_STORE")
	}
	if cfg.PasswordHash != "argon2id" && cfg.PasswordHash != "bcrypt" {
		p.invalid = append(p.invalid, "PORTAL_PASSWORD_HASH")
	}
	if cfg.SMTPAddr != "" && cfg.SMTPFrom == "" {
		p.missing = append(p.missing, "PORTAL_SMTP_FROM")
	}
	if cfg.AdminEmail == "" {
		p.missing = append(p.missing, "PORTAL_ADMIN_EMAIL")
	}

	if len(p.missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables are not set: %s", strings.Join(p.missing, ", "))
	}
	if len(p.invalid) > 0 {
		return Config{}, fmt.Errorf("environment variables have invalid values: %s", strings.Join(p.invalid, ", "))
	}
	return cfg, nil
}

type parser struct {
	missing []string
	invalid []string
}

func lookup(key string) (string, bool) {
	value := strings.TrimSpace(os.Getenv(key))
	return value, value != ""
}

func (p *parser) str(key string, dst *string) {
	if value, ok := lookup(key); ok {
		*dst = value
	}
}

func (p *parser) int(key string, dst *int) {
	if value, ok := lookup(key); ok {
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			p.invalid = append(p.invalid, key)
			return
		}
		*dst = n
	}
}

func (p *parser) int64(key string, dst *int64) {
	if value, ok := lookup(key); ok {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			p.invalid = append(p.invalid, key)
			return
		}
		*dst = n
	}
}

func (p *parser) duration(key string, dst *time.Duration) {
	if value, ok := lookup(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			p.invalid = append(p.invalid, key)
			return
		}
		*dst = d
	}
}

func (p *parser) bool(key string, dst *bool) {
	if value, ok := lookup(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			p.invalid = append(p.invalid, key)
			return
		}
		*dst = b
	}
}
