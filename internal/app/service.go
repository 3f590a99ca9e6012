// Package service orchestrates match sessions for the HTTP API: it owns the
// match registry, the request id cache, and the command logging and metrics.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/okian/scorebook/internal/adapters/export"
	"github.com/okian/scorebook/internal/adapters/repository"
	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/internal/domain/dedupe"
	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/stats"
	"github.com/okian/scorebook/pkg/logger"
	"github.com/okian/scorebook/pkg/metrics"
)

// Rejection reasons reported to metrics and logs.
const (
	reasonUnknownEventKey     = "unknown_event_key"
	reasonMissingParticipant  = "missing_participant"
	reasonReservedParticipant = "reserved_participant"
	reasonUnknownSequenceID   = "unknown_sequence_id"
	reasonNotFound            = "match_not_found"
	reasonIntegrity           = "integrity"
	reasonOther               = "other"
)

// Service implements the API dependencies for the scorebook.
type Service struct {
	mu sync.RWMutex

	// Core components
	matches *repository.MemoryStore
	deduper dedupe.Deduper
	catalog *catalog.Catalog

	// Configuration
	roster     []string
	dedupeSize int
	maxMatches int

	// State
	started   bool
	startedAt time.Time

	// Request ids whose append is still running, keyed like the deduper.
	inflightMu sync.Mutex
	inflight   map[string]chan struct{}

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		catalog:    catalog.Default(),
		dedupeSize: 50_000,
		inflight:   make(map[string]chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the match registry and request id cache.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting scorebook service...")

	s.matches = repository.NewMemoryStore(ctx, repository.WithMaxMatches(s.maxMatches))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.started = true
	s.startedAt = time.Now()

	s.logger.Info(ctx, "scorebook service started",
		logger.Int("buckets", len(s.catalog.AllBuckets())),
		logger.Int("eventKeys", len(s.catalog.Keys())),
		logger.Any("roster", s.roster),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxMatches", s.maxMatches),
	)
	return nil
}

// Stop releases background resources. Hosted matches are dropped.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping scorebook service...")
	if s.matches != nil {
		_ = s.matches.Close()
	}
	s.matches = nil
	s.deduper = nil
	s.started = false
	metrics.UpdateActiveMatches(0)
	s.logger.Info(context.Background(), "scorebook service stopped")
}

// Catalog returns the catalog every match validates against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// CreateMatch opens a new match. Empty starters select the configured roster.
func (s *Service) CreateMatch(ctx context.Context, starters []string) (repository.Match, error) {
	store, _, err := s.components()
	if err != nil {
		return repository.Match{}, err
	}
	if len(starters) == 0 {
		starters = s.roster
	}
	for _, id := range starters {
		if stats.IsReservedColumn(strings.TrimSpace(id)) {
			return repository.Match{}, fmt.Errorf("create match: starter %q: %w", id, ledger.ErrReservedParticipant)
		}
	}

	m, err := store.Create(ctx, ledger.New(s.catalog, ledger.WithStarters(starters...)))
	if err != nil {
		s.logger.Warn(ctx, "create match refused", logger.Error(err))
		return repository.Match{}, err
	}
	s.logger.Info(ctx, "match created",
		logger.String("match", m.ID),
		logger.Any("starters", m.Ledger.Participants()),
	)
	return m, nil
}

// ListMatches returns a summary of every hosted match.
func (s *Service) ListMatches(ctx context.Context) ([]repository.Summary, error) {
	store, _, err := s.components()
	if err != nil {
		return nil, err
	}
	return store.List(ctx), nil
}

// DeleteMatch drops a match and the request ids recorded for it.
func (s *Service) DeleteMatch(ctx context.Context, matchID string) error {
	store, deduper, err := s.components()
	if err != nil {
		return err
	}
	if err := store.Delete(ctx, matchID); err != nil {
		return err
	}
	deduper.Forget(ctx, dedupeKey(matchID, ""))
	s.logger.Info(ctx, "match deleted", logger.String("match", matchID))
	return nil
}

// RecordEvent appends an event. A non-empty requestID makes the call
// idempotent per match: a repeated id records nothing and reports
// duplicate. A rejected append releases its request id for a retry. While
// an append with the same id is running, a retry waits for its outcome.
func (s *Service) RecordEvent(ctx context.Context, matchID, participant, key, requestID string) (ledger.AppendResult, bool, error) {
	l, deduper, err := s.ledger(ctx, matchID)
	if err != nil {
		return ledger.AppendResult{}, false, err
	}

	requestID = strings.TrimSpace(requestID)
	if requestID != "" {
		rkey := dedupeKey(matchID, requestID)
		release, err := s.claim(ctx, rkey)
		if err != nil {
			return ledger.AppendResult{}, false, err
		}
		defer release()

		if deduper.SeenAndRecord(ctx, rkey) {
			metrics.RecordDuplicateAppend()
			s.logger.Debug(ctx, "duplicate append skipped",
				logger.String("match", matchID),
				logger.String("requestID", requestID),
			)
			return ledger.AppendResult{}, true, nil
		}
	}

	start := time.Now()
	res, err := l.Append(participant, key)
	s.observe(ctx, metrics.CommandAppend, matchID, start, l, err,
		logger.String("participant", participant),
		logger.String("key", key),
	)
	if err != nil {
		if requestID != "" {
			deduper.Unrecord(ctx, dedupeKey(matchID, requestID))
		}
		return ledger.AppendResult{}, false, err
	}
	return res, false, nil
}

// claim marks key as in flight, first waiting for any running append that
// holds it. The returned func releases the key and wakes the waiters.
func (s *Service) claim(ctx context.Context, key string) (func(), error) {
	for {
		s.inflightMu.Lock()
		busy, ok := s.inflight[key]
		if !ok {
			done := make(chan struct{})
			s.inflight[key] = done
			s.inflightMu.Unlock()
			return func() {
				s.inflightMu.Lock()
				delete(s.inflight, key)
				s.inflightMu.Unlock()
				close(done)
			}, nil
		}
		s.inflightMu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, fmt.Errorf("await request %q: %w", key, ctx.Err())
		}
	}
}

// EditEvent retroactively changes an event and returns it re-annotated.
func (s *Service) EditEvent(ctx context.Context, matchID string, seq int64, participant, key string) (model.Event, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return model.Event{}, err
	}

	start := time.Now()
	err = l.Edit(seq, participant, key)
	s.observe(ctx, metrics.CommandEdit, matchID, start, l, err,
		logger.Int64("seq", seq),
		logger.String("participant", participant),
		logger.String("key", key),
	)
	if err != nil {
		return model.Event{}, err
	}
	return l.Event(seq)
}

// DeleteEvent retroactively removes an event.
func (s *Service) DeleteEvent(ctx context.Context, matchID string, seq int64) error {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return err
	}

	start := time.Now()
	err = l.Delete(seq)
	s.observe(ctx, metrics.CommandDelete, matchID, start, l, err, logger.Int64("seq", seq))
	return err
}

// ResetMatch clears a match back to its starters.
func (s *Service) ResetMatch(ctx context.Context, matchID string) error {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return err
	}

	start := time.Now()
	l.Reset()
	s.observe(ctx, metrics.CommandReset, matchID, start, l, nil)
	return nil
}

// IntroduceParticipant gives id a pivot column before it records anything.
func (s *Service) IntroduceParticipant(ctx context.Context, matchID, id string) (bool, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return false, err
	}

	added, err := l.Introduce(id)
	if err != nil {
		metrics.RecordCommand(metrics.CommandIntroduce, metrics.ResultRejected)
		metrics.RecordRejection(metrics.CommandIntroduce, rejectionReason(err))
		return false, err
	}
	metrics.RecordCommand(metrics.CommandIntroduce, metrics.ResultOK)
	s.logger.Debug(ctx, "participant introduced",
		logger.String("match", matchID),
		logger.String("participant", id),
		logger.Bool("added", added),
	)
	return added, nil
}

// Score returns the current score of a match.
func (s *Service) Score(ctx context.Context, matchID string) (model.Score, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return model.Score{}, err
	}
	return l.Score(), nil
}

// EventLog returns the annotated events of a match, newest first.
func (s *Service) EventLog(ctx context.Context, matchID string) ([]model.Event, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return l.Events(), nil
}

// StatsPivot returns the statistics pivot of a match.
func (s *Service) StatsPivot(ctx context.Context, matchID string) (stats.Pivot, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return stats.Pivot{}, err
	}
	return l.Pivot(), nil
}

// SeenParticipants returns participants of a match in first-seen order.
func (s *Service) SeenParticipants(ctx context.Context, matchID string) ([]string, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return nil, err
	}
	return l.Participants(), nil
}

// Snapshot returns a consistent view of a match.
func (s *Service) Snapshot(ctx context.Context, matchID string) (ledger.Snapshot, error) {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return ledger.Snapshot{}, err
	}
	return l.Snapshot(), nil
}

// ExportEventLog writes the event log of a match as CSV.
func (s *Service) ExportEventLog(ctx context.Context, matchID string, w io.Writer) error {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return err
	}
	if err := export.EventLogCSV(w, l.Events()); err != nil {
		return err
	}
	metrics.RecordExport(export.KindEventLog)
	return nil
}

// ExportPivot writes the statistics pivot of a match as CSV.
func (s *Service) ExportPivot(ctx context.Context, matchID string, w io.Writer) error {
	l, _, err := s.ledger(ctx, matchID)
	if err != nil {
		return err
	}
	if err := export.PivotCSV(w, l.Pivot()); err != nil {
		return err
	}
	metrics.RecordExport(export.KindPivot)
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	out := map[string]any{
		"started":    s.started,
		"dedupeSize": s.dedupeSize,
		"maxMatches": s.maxMatches,
		"eventKeys":  len(s.catalog.Keys()),
	}
	if s.started {
		out["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		out["activeMatches"] = s.matches.Count(ctx)
		out["requestIDs"] = s.deduper.Size()
	}
	return out
}

func (s *Service) components() (*repository.MemoryStore, dedupe.Deduper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.matches, s.deduper, nil
}

func (s *Service) ledger(ctx context.Context, matchID string) (*ledger.Ledger, dedupe.Deduper, error) {
	store, deduper, err := s.components()
	if err != nil {
		return nil, nil, err
	}
	m, err := store.Get(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return m.Ledger, deduper, nil
}

// observe records metrics and logs for one ledger command.
func (s *Service) observe(ctx context.Context, command, matchID string, start time.Time, l *ledger.Ledger, err error, fields ...logger.Field) {
	fields = append(fields, logger.String("match", matchID), logger.String("command", command))

	switch {
	case err == nil:
		events := l.Len()
		metrics.RecordCommand(command, metrics.ResultOK)
		metrics.RecordReplay(float64(time.Since(start).Microseconds())/1000, events)
		fields = append(fields, logger.Int("events", events), logger.String("score", l.Score().String()))
		s.logger.Debug(ctx, "ledger command applied", fields...)
	case errors.Is(err, ledger.ErrIntegrity):
		metrics.RecordCommand(command, metrics.ResultFailed)
		metrics.RecordRejection(command, reasonIntegrity)
		s.logger.Error(ctx, "ledger integrity failure", append(fields, logger.Error(err))...)
	default:
		reason := rejectionReason(err)
		metrics.RecordCommand(command, metrics.ResultRejected)
		metrics.RecordRejection(command, reason)
		s.logger.Warn(ctx, "ledger command rejected",
			append(fields, logger.String("reason", reason), logger.Error(err))...)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrUnknownEventKey):
		return reasonUnknownEventKey
	case errors.Is(err, ledger.ErrMissingParticipant):
		return reasonMissingParticipant
	case errors.Is(err, ledger.ErrReservedParticipant):
		return reasonReservedParticipant
	case errors.Is(err, ledger.ErrUnknownSequenceID):
		return reasonUnknownSequenceID
	case errors.Is(err, repository.ErrNotFound):
		return reasonNotFound
	default:
		return reasonOther
	}
}

// dedupeKey scopes a request id to its match so DeleteMatch can forget them
// by prefix.
func dedupeKey(matchID, requestID string) string {
	return fmt.Sprintf("%s/%s", matchID, requestID)
}
