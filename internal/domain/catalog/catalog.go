// Package catalog defines the static table of known event types: which side
// an event scores for and which statistics bucket it rolls up to.
//
// A Catalog is immutable after New returns; it is safe for concurrent use.
package catalog

import (
	"fmt"
	"strings"
)

// Effect is the scoring consequence of an event type.
type Effect string

// Known effects.
const (
	EffectHome    Effect = "home"
	EffectAway    Effect = "away"
	EffectNeutral Effect = "neutral"
)

// ParseEffect maps a configuration string to an Effect (case-insensitive).
func ParseEffect(s string) (Effect, error) {
	switch e := Effect(strings.ToLower(strings.TrimSpace(s))); e {
	case EffectHome, EffectAway, EffectNeutral:
		return e, nil
	default:
		return "", fmt.Errorf("%w: unknown effect %q", ErrInvalidCatalog, s)
	}
}

// EventTypeDef describes one event type.
type EventTypeDef struct {
	Key    string
	Effect Effect
	Bucket string
	// Opponent marks opponent-sourced keys; their participant is always the
	// opponent sentinel.
	Opponent bool
}

// EventConfig is the configuration shape of one event type.
type EventConfig struct {
	Key      string `koanf:"key"`
	Effect   string `koanf:"effect"`
	Bucket   string `koanf:"bucket"`
	Opponent bool   `koanf:"opponent"`
}

// Config is the configuration shape of a whole catalog.
type Config struct {
	Buckets        []string      `koanf:"buckets"`
	ScoringBuckets []string      `koanf:"scoring_buckets"`
	ErrorBuckets   []string      `koanf:"error_buckets"`
	Events         []EventConfig `koanf:"events"`
}

// Catalog is the validated, read-only event catalog.
type Catalog struct {
	defs    map[string]EventTypeDef
	keys    []string
	buckets []string
	scoring map[string]bool
	errs    map[string]bool
}

// New validates cfg and builds a Catalog.
func New(cfg Config) (*Catalog, error) {
	c := &Catalog{
		defs:    make(map[string]EventTypeDef, len(cfg.Events)),
		scoring: make(map[string]bool, len(cfg.ScoringBuckets)),
		errs:    make(map[string]bool, len(cfg.ErrorBuckets)),
	}

	known := make(map[string]bool, len(cfg.Buckets))
	for _, b := range cfg.Buckets {
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, fmt.Errorf("%w: empty bucket name", ErrInvalidCatalog)
		}
		if known[b] {
			return nil, fmt.Errorf("%w: duplicate bucket %q", ErrInvalidCatalog, b)
		}
		known[b] = true
		c.buckets = append(c.buckets, b)
	}

	for _, b := range cfg.ScoringBuckets {
		b = strings.TrimSpace(b)
		if !known[b] {
			return nil, fmt.Errorf("%w: scoring bucket %q is not a known bucket", ErrInvalidCatalog, b)
		}
		c.scoring[b] = true
	}
	for _, b := range cfg.ErrorBuckets {
		b = strings.TrimSpace(b)
		if !known[b] {
			return nil, fmt.Errorf("%w: error bucket %q is not a known bucket", ErrInvalidCatalog, b)
		}
		if c.scoring[b] {
			return nil, fmt.Errorf("%w: bucket %q", ErrInvalidCatalogClassification, b)
		}
		c.errs[b] = true
	}

	for _, ec := range cfg.Events {
		key := strings.TrimSpace(ec.Key)
		if key == "" {
			return nil, fmt.Errorf("%w: event with empty key", ErrInvalidCatalog)
		}
		if _, dup := c.defs[key]; dup {
			return nil, fmt.Errorf("%w: duplicate event key %q", ErrInvalidCatalog, key)
		}
		effect, err := ParseEffect(ec.Effect)
		if err != nil {
			return nil, fmt.Errorf("event %q: %w", key, err)
		}
		bucket := strings.TrimSpace(ec.Bucket)
		if !known[bucket] {
			return nil, fmt.Errorf("%w: event %q rolls up to unknown bucket %q", ErrInvalidCatalog, key, bucket)
		}
		// Opponent errors are home points.
		if ec.Opponent && effect != EffectHome {
			return nil, fmt.Errorf("%w: opponent-sourced event %q must have effect home", ErrInvalidCatalog, key)
		}
		c.defs[key] = EventTypeDef{Key: key, Effect: effect, Bucket: bucket, Opponent: ec.Opponent}
		c.keys = append(c.keys, key)
	}

	return c, nil
}

// Lookup returns the definition for key or ErrUnknownEventKey.
func (c *Catalog) Lookup(key string) (EventTypeDef, error) {
	def, ok := c.defs[key]
	if !ok {
		return EventTypeDef{}, fmt.Errorf("%w: %q", ErrUnknownEventKey, key)
	}
	return def, nil
}

// AllBuckets returns the fixed row order of the statistics pivot.
func (c *Catalog) AllBuckets() []string {
	out := make([]string, len(c.buckets))
	copy(out, c.buckets)
	return out
}

// Keys returns every event key in declaration order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// IsScoring reports whether bucket counts toward the scored summary row.
func (c *Catalog) IsScoring(bucket string) bool { return c.scoring[bucket] }

// IsError reports whether bucket counts toward the error summary row.
func (c *Catalog) IsError(bucket string) bool { return c.errs[bucket] }

// ScoringBuckets returns the scoring classification in row order.
func (c *Catalog) ScoringBuckets() []string { return c.filter(c.scoring) }

// ErrorBuckets returns the error classification in row order.
func (c *Catalog) ErrorBuckets() []string { return c.filter(c.errs) }

func (c *Catalog) filter(set map[string]bool) []string {
	var out []string
	for _, b := range c.buckets {
		if set[b] {
			out = append(out, b)
		}
	}
	return out
}
