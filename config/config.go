// Package config defines the runtime configuration of the price lookup
// service and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by PRICEQUOTE_* environment variables.
type Config struct {
	Catalog CatalogConfig `toml:"catalog"`
	Auth    AuthConfig    `toml:"auth"`
	Quote   QuoteConfig   `toml:"quote"`
}

// CatalogConfig locates the pricing workbook.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// AuthConfig controls who may log in and how long a login lasts.
type AuthConfig struct {
	// AllowedDomain restricts logins to one email domain; empty allows any.
	AllowedDomain string   `toml:"allowed_domain"`
	CookieName    string   `toml:"cookie_name"`
	CookieMaxAge  duration `toml:"cookie_max_age"`
	SecureCookie  bool     `toml:"secure_cookie"`
	SeedEmail     string   `toml:"seed_email"`
	SeedPassword  string   `toml:"seed_password"`
}

// QuoteConfig holds quoting defaults.
type QuoteConfig struct {
	// BifocalFallback is charged when a loupe row has no bifocal price.
	BifocalFallback string `toml:"bifocal_fallback"`
	Title           string `toml:"title"`
}

// duration wraps time.Duration for TOML text decoding ("168h", "30m").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the configuration used when no file or env override sets
// a value.
func Defaults() Config {
	return Config{
		Catalog: CatalogConfig{
			Path: "Pricing Sheet for Development.xlsx",
		},
		Auth: AuthConfig{
			CookieName:   "orascoptic_cookie",
			CookieMaxAge: duration{7 * 24 * time.Hour},
		},
		Quote: QuoteConfig{
			BifocalFallback: "100",
			Title:           "Orascoptic Price Search",
		},
	}
}

// Bifocal returns the parsed bifocal fallback surcharge.
func (c *Config) Bifocal() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(c.Quote.BifocalFallback))
	if err != nil {
		return decimal.NewFromInt(100)
	}
	return d
}

// CookieMaxAge returns the auth cookie lifetime.
func (c *Config) CookieMaxAge() time.Duration {
	return c.Auth.CookieMaxAge.Duration
}

// EmailAllowed reports whether email may log in under the domain allowlist.
func (c *Config) EmailAllowed(email string) bool {
	domain := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c.Auth.AllowedDomain), "@"))
	if domain == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+domain)
}

// Validate checks the configuration for consistency and returns a combined
// error listing every problem.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Catalog.Path) == "" {
		errs = append(errs, "catalog: path must not be empty")
	}

	if c.Auth.CookieName == "" {
		errs = append(errs, "auth: cookie_name must not be empty")
	}
	if c.Auth.CookieMaxAge.Duration <= 0 {
		errs = append(errs, "auth: cookie_max_age must be positive")
	}
	if strings.Contains(strings.TrimPrefix(c.Auth.AllowedDomain, "@"), "@") {
		errs = append(errs, fmt.Sprintf("auth: allowed_domain %q is not a domain", c.Auth.AllowedDomain))
	}
	if c.Auth.SeedEmail != "" {
		if c.Auth.SeedPassword == "" {
			errs = append(errs, "auth: seed_password is required when seed_email is set")
		}
		if !c.EmailAllowed(c.Auth.SeedEmail) {
			errs = append(errs, fmt.Sprintf("auth: seed_email %q is outside allowed_domain", c.Auth.SeedEmail))
		}
	}

	if d, err := decimal.NewFromString(strings.TrimSpace(c.Quote.BifocalFallback)); err != nil {
		errs = append(errs, fmt.Sprintf("quote: bifocal_fallback %q is not a number", c.Quote.BifocalFallback))
	} else if d.IsNegative() {
		errs = append(errs, "quote: bifocal_fallback must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
