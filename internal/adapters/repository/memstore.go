package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/pkg/metrics"
)

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]Match

	maxMatches            int
	newID                 func() string
	now                   func() time.Time
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		matches:               make(map[string]Match),
		newID:                 uuid.NewString,
		now:                   time.Now,
		metricsUpdateInterval: metrics.RefreshInterval(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) Create(_ context.Context, l *ledger.Ledger) (Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxMatches > 0 && len(s.matches) >= s.maxMatches {
		return Match{}, fmt.Errorf("create match: %w (max %d)", ErrCapacity, s.maxMatches)
	}

	id := s.newID()
	if _, taken := s.matches[id]; taken {
		return Match{}, fmt.Errorf("create match: id %q already in use", id)
	}
	m := Match{ID: id, Created: s.now(), Ledger: l}
	s.matches[id] = m
	metrics.UpdateActiveMatches(len(s.matches))
	return m, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return Match{}, fmt.Errorf("match %q: %w", id, ErrNotFound)
	}
	return m, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[id]; !ok {
		return fmt.Errorf("match %q: %w", id, ErrNotFound)
	}
	delete(s.matches, id)
	metrics.UpdateActiveMatches(len(s.matches))
	return nil
}

func (s *MemoryStore) List(_ context.Context) []Summary {
	s.mu.RLock()
	all := make([]Match, 0, len(s.matches))
	for _, m := range s.matches {
		all = append(all, m)
	}
	s.mu.RUnlock()

	// Ledger reads take each match's own lock, so they happen outside ours.
	out := make([]Summary, len(all))
	for i, m := range all {
		out[i] = Summary{
			ID:      m.ID,
			Created: m.Created,
			Events:  m.Ledger.Len(),
			Score:   m.Ledger.Score(),
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Created.Equal(out[j].Created) {
			return out[i].Created.Before(out[j].Created)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// startMetricsUpdater periodically publishes store gauges.
func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

// updateMetrics publishes the number of matches and recorded events.
func (s *MemoryStore) updateMetrics() {
	s.mu.RLock()
	ledgers := make([]*ledger.Ledger, 0, len(s.matches))
	for _, m := range s.matches {
		ledgers = append(ledgers, m.Ledger)
	}
	s.mu.RUnlock()

	total := 0
	for _, l := range ledgers {
		total += l.Len()
	}
	metrics.UpdateActiveMatches(len(ledgers))
	metrics.UpdateRecordedEvents(total)
}
