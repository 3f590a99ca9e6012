// Package replay recomputes scores from a full event history.
//
// Replay always starts from 0:0 and walks every event, so an edit or delete
// anywhere in the past changes every later snapshot.
package replay

import (
	"fmt"

	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/internal/domain/model"
)

// Catalog resolves event keys to their definitions.
type Catalog interface {
	Lookup(key string) (catalog.EventTypeDef, error)
}

// Result is the outcome of a replay.
type Result struct {
	// Events are annotated copies of the input, oldest first.
	Events []model.Event
	// Score is the final (home, away) score.
	Score model.Score
	// Participants lists non-opponent participants in first-seen order.
	Participants []string
}

// Replay annotates events (oldest first) with bucket, outcome and score
// snapshot. The input slice is not modified. An unknown key means the
// history is inconsistent with the catalog and is reported as an error
// wrapping catalog.ErrUnknownEventKey.
func Replay(cat Catalog, events []model.Event) (Result, error) {
	res := Result{Events: make([]model.Event, len(events))}
	seen := make(map[string]struct{})

	var score model.Score
	for i, e := range events {
		def, err := cat.Lookup(e.Key)
		if err != nil {
			return Result{}, fmt.Errorf("replay event %d: %w", e.Seq, err)
		}

		out := e
		out.Bucket = def.Bucket
		out.Snapshot = nil
		if def.Opponent {
			out.Participant = model.Opponent
		}

		switch def.Effect {
		case catalog.EffectHome:
			score.Home++
			out.Outcome = model.OutcomeHomeScored
			snap := score
			out.Snapshot = &snap
		case catalog.EffectAway:
			score.Away++
			out.Outcome = model.OutcomeAwayScored
			snap := score
			out.Snapshot = &snap
		default:
			out.Outcome = model.OutcomeContinue
		}

		if p := out.Participant; p != "" && p != model.Opponent {
			if _, ok := seen[p]; !ok {
				seen[p] = struct{}{}
				res.Participants = append(res.Participants, p)
			}
		}
		res.Events[i] = out
	}

	res.Score = score
	return res, nil
}
