// Package ledger is the authoritative event store of one match session.
//
// Every command validates its input, builds a candidate history, replays the
// candidate from scratch and only then commits it. A rejected command leaves
// the ledger exactly as it was. All state lives behind one mutex, so a
// Ledger is the single mutual-exclusion boundary for its match.
package ledger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/participants"
	"github.com/okian/scorebook/internal/domain/replay"
	"github.com/okian/scorebook/internal/domain/stats"
)

// AppendResult is returned by Append.
type AppendResult struct {
	Event model.Event
	// ClearSelection tells the presentation layer to drop its currently
	// selected participant. The ledger never stores selection itself.
	ClearSelection bool
}

// Snapshot is a consistent read of everything a presentation or export
// layer needs, taken under a single lock.
type Snapshot struct {
	Score        model.Score
	Events       []model.Event // newest first
	Pivot        stats.Pivot
	Participants []string
}

// Ledger holds the ordered events of one match.
type Ledger struct {
	mu sync.Mutex

	cat      *catalog.Catalog
	starters []string
	now      func() time.Time

	events  []model.Event // oldest first
	nextSeq int64
	score   model.Score
	seen    *participants.Seen
}

// New creates an empty ledger bound to cat.
func New(cat *catalog.Catalog, opts ...Option) *Ledger {
	l := &Ledger{
		cat:     cat,
		now:     time.Now,
		nextSeq: 1,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.seen = participants.New(l.starters...)
	return l
}

// Append records a new event and replays the history.
func (l *Ledger) Append(participant, key string) (AppendResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	participant, err := l.resolve(participant, key)
	if err != nil {
		return AppendResult{}, err
	}

	candidate := make([]model.Event, len(l.events), len(l.events)+1)
	copy(candidate, l.events)
	candidate = append(candidate, model.Event{
		Seq:         l.nextSeq,
		Recorded:    l.now(),
		Participant: participant,
		Key:         key,
	})
	if err := l.commit(candidate); err != nil {
		return AppendResult{}, err
	}
	l.nextSeq++

	return AppendResult{Event: l.events[len(l.events)-1].Clone(), ClearSelection: true}, nil
}

// Edit replaces the participant and key of the event addressed by seq. The
// recording timestamp is kept.
func (l *Ledger) Edit(seq int64, participant, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(seq)
	if idx < 0 {
		return fmt.Errorf("edit %d: %w", seq, ErrUnknownSequenceID)
	}
	participant, err := l.resolve(participant, key)
	if err != nil {
		return err
	}

	candidate := make([]model.Event, len(l.events))
	copy(candidate, l.events)
	candidate[idx].Participant = participant
	candidate[idx].Key = key
	return l.commit(candidate)
}

// Delete removes the event addressed by seq. Remaining events keep their
// sequence ids.
func (l *Ledger) Delete(seq int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(seq)
	if idx < 0 {
		return fmt.Errorf("delete %d: %w", seq, ErrUnknownSequenceID)
	}

	candidate := make([]model.Event, 0, len(l.events)-1)
	candidate = append(candidate, l.events[:idx]...)
	candidate = append(candidate, l.events[idx+1:]...)
	return l.commit(candidate)
}

// Reset clears all events and the score and forgets every participant that
// is not a roster starter. Sequence ids are not reused.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = nil
	l.score = model.Score{}
	l.seen.Reset(l.starters...)
}

// Introduce records a participant placed into an active slot, so it gets a
// pivot column before recording any event. It reports whether the id was new.
func (l *Ledger) Introduce(id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("introduce: %w", ErrMissingParticipant)
	}
	if stats.IsReservedColumn(id) {
		return false, fmt.Errorf("introduce %q: %w", id, ErrReservedParticipant)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen.Add(id), nil
}

// Score returns the score published by the latest replay.
func (l *Ledger) Score() model.Score {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.score
}

// Len returns the number of recorded events.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// Events returns the annotated event log, newest first.
func (l *Ledger) Events() []model.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.displayOrder()
}

// Event returns one annotated event.
func (l *Ledger) Event(seq int64) (model.Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.indexOf(seq)
	if idx < 0 {
		return model.Event{}, fmt.Errorf("event %d: %w", seq, ErrUnknownSequenceID)
	}
	return l.events[idx].Clone(), nil
}

// Participants returns the seen participants in first-seen order.
func (l *Ledger) Participants() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.seen.List()
}

// Pivot builds the statistics pivot from the current history.
func (l *Ledger) Pivot() stats.Pivot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return stats.Build(l.cat, l.events, l.seen.List())
}

// Snapshot returns score, log, pivot and participants read atomically.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	seen := l.seen.List()
	return Snapshot{
		Score:        l.score,
		Events:       l.displayOrder(),
		Pivot:        stats.Build(l.cat, l.events, seen),
		Participants: seen,
	}
}

// Catalog returns the catalog the ledger validates against.
func (l *Ledger) Catalog() *catalog.Catalog { return l.cat }

// resolve validates key and participant and returns the participant to store.
func (l *Ledger) resolve(participant, key string) (string, error) {
	def, err := l.cat.Lookup(key)
	if err != nil {
		return "", err
	}
	if def.Opponent {
		return model.Opponent, nil
	}
	participant = strings.TrimSpace(participant)
	if participant == "" {
		return "", fmt.Errorf("event %q: %w", key, ErrMissingParticipant)
	}
	if stats.IsReservedColumn(participant) {
		return "", fmt.Errorf("event %q: %q: %w", key, participant, ErrReservedParticipant)
	}
	return participant, nil
}

// commit replays candidate and, on success, makes it the ledger state.
func (l *Ledger) commit(candidate []model.Event) error {
	res, err := replay.Replay(l.cat, candidate)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrIntegrity, err)
	}
	l.events = res.Events
	l.score = res.Score
	for _, p := range res.Participants {
		l.seen.Add(p)
	}
	return nil
}

func (l *Ledger) indexOf(seq int64) int {
	for i := range l.events {
		if l.events[i].Seq == seq {
			return i
		}
	}
	return -1
}

func (l *Ledger) displayOrder() []model.Event {
	out := make([]model.Event, len(l.events))
	for i, e := range l.events {
		out[len(l.events)-1-i] = e.Clone()
	}
	return out
}
