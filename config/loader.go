package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies PRICEQUOTE_* environment variable overrides, and
// returns the final Config. An empty path or a missing file leaves the
// defaults in place. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads PRICEQUOTE_* environment variables and overwrites
// the corresponding Config fields when a variable is set. Secrets such as
// the seed password are expected to arrive this way.
func applyEnvOverrides(cfg *Config) {
	setStr(&cfg.Catalog.Path, "PRICEQUOTE_CATALOG_PATH")

	setStr(&cfg.Auth.AllowedDomain, "PRICEQUOTE_AUTH_ALLOWED_DOMAIN")
	setStr(&cfg.Auth.CookieName, "PRICEQUOTE_AUTH_COOKIE_NAME")
	setDuration(&cfg.Auth.CookieMaxAge, "PRICEQUOTE_AUTH_COOKIE_MAX_AGE")
	setBool(&cfg.Auth.SecureCookie, "PRICEQUOTE_AUTH_SECURE_COOKIE")
	setStr(&cfg.Auth.SeedEmail, "PRICEQUOTE_AUTH_SEED_EMAIL")
	setStr(&cfg.Auth.SeedPassword, "PRICEQUOTE_AUTH_SEED_PASSWORD")

	setStr(&cfg.Quote.BifocalFallback, "PRICEQUOTE_QUOTE_BIFOCAL_FALLBACK")
	setStr(&cfg.Quote.Title, "PRICEQUOTE_QUOTE_TITLE")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
