package ledger

import (
	"strings"
	"time"

	"github.com/okian/scorebook/internal/domain/stats"
)

// Option applies a configuration option to the Ledger.
type Option func(*Ledger)

// WithStarters sets the roster starters that seed the seen participants on
// creation and after every reset. Reserved column labels are skipped.
func WithStarters(starters ...string) Option {
	return func(l *Ledger) {
		l.starters = nil
		for _, id := range starters {
			if !stats.IsReservedColumn(strings.TrimSpace(id)) {
				l.starters = append(l.starters, id)
			}
		}
	}
}

// WithClock overrides the wall clock used to timestamp recorded events.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}
