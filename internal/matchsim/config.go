// Package matchsim drives a running scorebook service through a scripted
// match and verifies its answers against a local ledger.
package matchsim

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/scorebook/internal/domain/catalog"
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:9080"
	DefaultRallies = 25
	DefaultEdits   = 3
	DefaultDeletes = 2
	DefaultTimeout = 10 * time.Second

	// maxNeutralPerRally bounds the continuation events before a rally ends.
	maxNeutralPerRally = 3
)

// Config holds the simulator settings.
type Config struct {
	BaseURL string
	Rallies int
	Edits   int
	Deletes int
	Seed    int64
	Roster  []string
	Timeout time.Duration
	Verbose bool
	// Cleanup deletes the match once it has been verified.
	Cleanup bool

	// Catalog must match the one the service was started with.
	Catalog *catalog.Catalog
}

// DefaultConfig returns a configuration for a local service on the default
// port, using the built-in catalog.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Rallies: DefaultRallies,
		Edits:   DefaultEdits,
		Deletes: DefaultDeletes,
		Seed:    time.Now().UnixNano(),
		Roster:  []string{"#1", "#7", "#10", "#12"},
		Timeout: DefaultTimeout,
		Catalog: catalog.Default(),
	}
}

// Validate checks the configuration and normalizes the base URL.
func (c *Config) Validate() error {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Rallies <= 0:
		return fmt.Errorf("%w: rallies must be positive, got %d", ErrInvalidConfig, c.Rallies)
	case c.Edits < 0 || c.Deletes < 0:
		return fmt.Errorf("%w: edits and deletes must not be negative", ErrInvalidConfig)
	case len(c.Roster) == 0:
		return fmt.Errorf("%w: roster is empty", ErrInvalidConfig)
	case c.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	case c.Catalog == nil:
		return fmt.Errorf("%w: catalog is required", ErrInvalidConfig)
	}
	return nil
}
