// Package repository holds the match sessions served by the process.
package repository

import (
	"context"
	"time"

	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/internal/domain/model"
)

// Match is one hosted match session.
type Match struct {
	ID      string
	Created time.Time
	Ledger  *ledger.Ledger
}

// Summary is a listing row for a match.
type Summary struct {
	ID      string      `json:"match_id"`
	Created time.Time   `json:"created_at"`
	Events  int         `json:"events"`
	Score   model.Score `json:"score"`
}

// Store provides access to hosted matches. Each match is guarded by its own
// ledger; the store only guards the index.
type Store interface {
	// Create registers l under a fresh match id.
	// Returns ErrCapacity when the store is full.
	Create(ctx context.Context, l *ledger.Ledger) (Match, error)

	// Get returns the match with id or ErrNotFound.
	Get(ctx context.Context, id string) (Match, error)

	// Delete drops the match with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// List returns every match ordered by creation time.
	List(ctx context.Context) []Summary

	// Count returns the number of hosted matches.
	Count(ctx context.Context) int
}
