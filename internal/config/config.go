// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading functions accept context.Context as the first parameter.
// - Loader failures wrap this package's sentinel errors.
package config

import (
	"fmt"
	"strings"

	"github.com/okian/scorebook/internal/domain/stats"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Roster lists the starters every new match begins with. A match created
	// with its own starters ignores it.
	Roster []string `koanf:"roster"`

	// CatalogFile points at a YAML event catalog. Empty selects the
	// built-in volleyball catalog.
	CatalogFile string `koanf:"catalog_file"`

	// DedupeSize bounds remembered append request ids. Zero or less means
	// unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxMatches caps concurrently held matches; 0 means unlimited.
	MaxMatches int `koanf:"max_matches"`

	// CORSOrigins lists origins allowed to call the API from a browser.
	CORSOrigins []string `koanf:"cors_origins"`
}

// DefaultRoster mirrors the squad numbers of a typical scoresheet.
func DefaultRoster() []string {
	return []string{"#1", "#7", "#10", "#12"}
}

// DefaultCORSOrigins allows any origin.
func DefaultCORSOrigins() []string {
	return []string{"*"}
}

// New creates a Config with defaults. Slice fields are left nil so that a
// file or env value replaces them instead of merging element-wise; Load
// fills them afterwards.
func New() *Config {
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Addr:       ":9080",
		DedupeSize: 50_000,
		MaxMatches: 1_000,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.MaxMatches < 0 {
		return fmt.Errorf("%w: max_matches must not be negative", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	for _, id := range c.Roster {
		if stats.IsReservedColumn(strings.TrimSpace(id)) {
			return fmt.Errorf("%w: roster id %q is a reserved column label", ErrInvalidConfig, id)
		}
	}
	return nil
}

func (c *Config) applySliceDefaults() {
	if len(c.Roster) == 0 {
		c.Roster = DefaultRoster()
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = DefaultCORSOrigins()
	}
	c.Roster = trimAll(c.Roster)
	c.CORSOrigins = trimAll(c.CORSOrigins)
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
