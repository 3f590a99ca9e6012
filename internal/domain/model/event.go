// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"time"
)

// Opponent is the participant sentinel for actions attributed to the other team.
const Opponent = "opponent"

// Outcome is the derived result of a single event.
type Outcome string

// Known outcomes.
const (
	OutcomeContinue   Outcome = "continue"
	OutcomeHomeScored Outcome = "home_scored"
	OutcomeAwayScored Outcome = "away_scored"
)

// Score is a (home, away) pair.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// String renders the score as "home:away".
func (s Score) String() string { return fmt.Sprintf("%d:%d", s.Home, s.Away) }

// Event is one recorded rally action. Seq, Recorded, Participant and Key are
// the stored fields; Bucket, Outcome and Snapshot are derived on every replay.
type Event struct {
	Seq         int64     `json:"sequence_id"` // stable identity, independent of position
	Recorded    time.Time `json:"timestamp"`   // informational only
	Participant string    `json:"participant"`
	Key         string    `json:"event_key"`

	Bucket   string  `json:"bucket"`
	Outcome  Outcome `json:"outcome"`
	Snapshot *Score  `json:"score,omitempty"` // nil when Outcome is continue
}

// Clone returns a deep copy so callers cannot alias ledger state.
func (e Event) Clone() Event {
	if e.Snapshot != nil {
		s := *e.Snapshot
		e.Snapshot = &s
	}
	return e
}

// ResultLabel is the short export label of the outcome.
func (e Event) ResultLabel() string {
	switch e.Outcome {
	case OutcomeHomeScored:
		return "Scored"
	case OutcomeAwayScored:
		return "Lost"
	default:
		return ""
	}
}

// ScoreLabel is the snapshot as "home:away", or empty for continuation events.
func (e Event) ScoreLabel() string {
	if e.Snapshot == nil {
		return ""
	}
	return e.Snapshot.String()
}
