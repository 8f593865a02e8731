package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	BaseURL      string
	Timezone     string

	// Secrets
	SessionSecret string
	AdminKey      string

	// Google OAuth; login is disabled when ClientID is empty
	OAuthClientID     string
	OAuthClientSecret string

	// Open quiz attempts older than this are swept
	AttemptTTL time.Duration

	// One-shot content import (server does not start)
	ImportPath string
	ImportSlug string
}

// Location resolves the configured timezone used for day bucketing
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OAuthEnabled reports whether Google login is configured
func (c Config) OAuthEnabled() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// ParseFlags validates flags and fills unset values from the environment.
// A .env file in the working directory is loaded first if present.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// Missing .env is fine; real environment variables are never overridden
	_ = godotenv.Load()

	fs := flag.NewFlagSet("sabacan365", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.BaseURL, "base-url", "", "Public base URL used for OAuth redirects")
	fs.StringVar(&cfg.Timezone, "tz", "", "Timezone for learning-day boundaries")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.SessionSecret, "session-secret", "", "Session signing secret (prefer env)")
	fs.StringVar(&cfg.AdminKey, "admin-key", "", "Admin key for content import (prefer env)")
	fs.StringVar(&cfg.OAuthClientID, "oauth-client-id", "", "Google OAuth client ID")
	fs.StringVar(&cfg.OAuthClientSecret, "oauth-client-secret", "", "Google OAuth client secret (prefer env)")

	fs.DurationVar(&cfg.AttemptTTL, "attempt-ttl", 0, "Age after which open quiz attempts are swept")

	fs.StringVar(&cfg.ImportPath, "import", "", "Import content from a .yaml or .xlsx file and exit")
	fs.StringVar(&cfg.ImportSlug, "slug", "", "Article slug for .xlsx vocabulary imports")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseType != DatabaseSQLite && cfg.DatabaseType != DatabasePostgres {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("BASE_URL")
		if cfg.BaseURL == "" {
			cfg.BaseURL = "http://localhost:" + strconv.Itoa(cfg.Port)
		}
	}

	if cfg.Timezone == "" {
		cfg.Timezone = os.Getenv("APP_TIMEZONE")
		if cfg.Timezone == "" {
			cfg.Timezone = "UTC"
		}
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return Config{}, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	if cfg.AttemptTTL == 0 {
		if ttl := os.Getenv("ATTEMPT_TTL"); ttl != "" {
			d, err := time.ParseDuration(ttl)
			if err != nil {
				return Config{}, errors.New("invalid ATTEMPT_TTL env variable")
			}
			cfg.AttemptTTL = d
		} else {
			cfg.AttemptTTL = 6 * time.Hour
		}
	}

	if cfg.OAuthClientID == "" {
		cfg.OAuthClientID = os.Getenv("OAUTH_CLIENT_ID")
	}
	if cfg.OAuthClientSecret == "" {
		cfg.OAuthClientSecret = os.Getenv("OAUTH_CLIENT_SECRET")
	}

	// Imports only touch the database, secrets are not needed
	if cfg.ImportPath != "" {
		return cfg, nil
	}

	// Secrets - MUST be provided
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	}
	if cfg.SessionSecret == "" {
		return Config{}, errors.New("SESSION_SECRET required")
	}

	if cfg.AdminKey == "" {
		cfg.AdminKey = os.Getenv("ADMIN_KEY")
	}
	if cfg.AdminKey == "" {
		return Config{}, errors.New("ADMIN_KEY required")
	}

	return cfg, nil
}
