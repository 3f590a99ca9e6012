package matchsim

import (
	"context"
	"fmt"

	"github.com/okian/scorebook/internal/adapters/export"
	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/internal/domain/model"
)

// verify compares the service's final score, event log and pivot with the
// local snapshot. Differences are added to report; transport failures are
// returned.
func verify(ctx context.Context, c *client, matchID string, want ledger.Snapshot, report *Report) error {
	score, err := c.score(ctx, matchID)
	if err != nil {
		return err
	}
	if score != want.Score {
		report.mismatch("final score %s, local %s", score, want.Score)
	}

	got, err := c.eventLog(ctx, matchID)
	if err != nil {
		return err
	}
	if len(got.Events) != len(want.Events) {
		report.mismatch("event log has %d events, local %d", len(got.Events), len(want.Events))
	} else {
		for i := range got.Events {
			if a, b := eventLine(got.Events[i]), eventLine(want.Events[i]); a != b {
				report.mismatch("event log row %d: service %q, local %q", i, a, b)
			}
		}
	}
	if got.Score != want.Score {
		report.mismatch("event log score %s, local %s", got.Score, want.Score)
	}

	pivot, err := c.pivot(ctx, matchID)
	if err != nil {
		return err
	}
	if a, b := export.PivotText(pivot), export.PivotText(want.Pivot); a != b {
		report.mismatch("pivot differs:\nservice:\n%s\nlocal:\n%s", a, b)
	}
	return nil
}

// eventLine renders the replay-relevant fields of an event; the recording
// timestamp is left out since it differs between the two ledgers.
func eventLine(e model.Event) string {
	return fmt.Sprintf("%d %s %s %s %s %s", e.Seq, e.Participant, e.Key, e.Bucket, e.Outcome, e.ScoreLabel())
}
