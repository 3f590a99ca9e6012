package matchsim

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/stats"
	"github.com/okian/scorebook/pkg/logger"
)

// Report summarizes one simulator run.
type Report struct {
	MatchID    string
	Seed       int64
	Appended   int
	Duplicates int
	Edited     int
	Deleted    int
	Score      model.Score
	Events     int
	Pivot      stats.Pivot
	Mismatches []string
	Duration   time.Duration
}

// OK reports whether the service agreed with the local ledger everywhere.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

func (r *Report) mismatch(format string, args ...any) {
	r.Mismatches = append(r.Mismatches, fmt.Sprintf(format, args...))
}

// Run executes a complete simulated match against the service at
// cfg.BaseURL. The returned report is non-nil whenever the match was
// created; a verification failure wraps ErrMismatch.
func Run(ctx context.Context, cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.Named("matchsim")
	start := time.Now()

	log.Info(ctx, "starting match simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("rallies", cfg.Rallies),
		logger.Int("edits", cfg.Edits),
		logger.Int("deletes", cfg.Deletes),
		logger.Int64("seed", cfg.Seed))

	c := newClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := c.health(ctx); err != nil {
		return nil, err
	}

	// Step 2: Generate the script
	script, err := GenerateScript(cfg)
	if err != nil {
		return nil, fmt.Errorf("script generation failed: %w", err)
	}
	log.Info(ctx, "script generated",
		logger.Int("commands", len(script.Commands)),
		logger.Int("appends", script.Appends))

	// Step 3: Create the match on both sides
	m, err := c.createMatch(ctx, cfg.Roster)
	if err != nil {
		return nil, fmt.Errorf("match creation failed: %w", err)
	}
	local := ledger.New(cfg.Catalog, ledger.WithStarters(cfg.Roster...))
	report := &Report{MatchID: m.MatchID, Seed: cfg.Seed}
	log = log.With(logger.String("match", m.MatchID))
	log.Info(ctx, "match created", logger.Any("participants", m.Participants))

	// Step 4: Play the script
	ex := &executor{c: c, local: local, matchID: m.MatchID, report: report, log: log, verbose: cfg.Verbose}
	for i, cmd := range script.Commands {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := ex.apply(ctx, cmd); err != nil {
			return report, fmt.Errorf("command %d (%s): %w", i, cmd.Kind, err)
		}
	}

	// Step 5: Verify final state
	snap := local.Snapshot()
	report.Score = snap.Score
	report.Events = len(snap.Events)
	report.Pivot = snap.Pivot
	if err := verify(ctx, c, m.MatchID, snap, report); err != nil {
		return report, fmt.Errorf("verification failed: %w", err)
	}
	report.Duration = time.Since(start)

	// Step 6: Clean up
	if cfg.Cleanup {
		if err := c.deleteMatch(ctx, m.MatchID); err != nil {
			log.Warn(ctx, "failed to delete match", logger.Error(err))
		}
	}

	if !report.OK() {
		log.Error(ctx, "simulation found mismatches", logger.Int("count", len(report.Mismatches)))
		return report, fmt.Errorf("%w: %d mismatches", ErrMismatch, len(report.Mismatches))
	}
	log.Info(ctx, "simulation passed",
		logger.String("score", report.Score.String()),
		logger.Duration("duration", report.Duration))
	return report, nil
}

// executor applies one command to the service and the local ledger.
type executor struct {
	c       *client
	local   *ledger.Ledger
	matchID string
	report  *Report
	log     logger.Logger
	verbose bool

	// seqs maps append ordinals to the sequence ids the service assigned.
	seqs []int64
}

func (e *executor) apply(ctx context.Context, cmd Command) error {
	if e.verbose {
		e.log.Debug(ctx, "command",
			logger.String("kind", string(cmd.Kind)),
			logger.String("participant", cmd.Participant),
			logger.String("key", cmd.Key),
			logger.Int("target", cmd.Target))
	}

	switch cmd.Kind {
	case KindAppend:
		return e.appendEvent(ctx, cmd)
	case KindRetry:
		ack, err := e.c.retry(ctx, e.matchID, cmd)
		if err != nil {
			return err
		}
		if !ack.Duplicate {
			e.report.mismatch("retry of append %d was not reported as a duplicate", cmd.Target)
		}
		e.report.Duplicates++
		return nil
	case KindEdit:
		return e.editEvent(ctx, cmd)
	case KindDelete:
		return e.deleteEvent(ctx, cmd)
	default:
		return fmt.Errorf("unknown command kind %q", cmd.Kind)
	}
}

func (e *executor) appendEvent(ctx context.Context, cmd Command) error {
	got, err := e.c.record(ctx, e.matchID, cmd)
	if err != nil {
		return err
	}
	want, err := e.local.Append(cmd.Participant, cmd.Key)
	if err != nil {
		return fmt.Errorf("local append: %w", err)
	}
	e.seqs = append(e.seqs, got.Event.Seq)
	e.report.Appended++

	if a, b := eventLine(got.Event), eventLine(want.Event); a != b {
		e.report.mismatch("append %d: service recorded %q, local %q", cmd.Target, a, b)
	}
	if got.ClearSelection != want.ClearSelection {
		e.report.mismatch("append %d: clear_selection %t, local %t", cmd.Target, got.ClearSelection, want.ClearSelection)
	}
	if score := e.local.Score(); got.Score != score {
		e.report.mismatch("append %d: score %s, local %s", cmd.Target, got.Score, score)
	}
	return nil
}

func (e *executor) editEvent(ctx context.Context, cmd Command) error {
	seq := e.seqs[cmd.Target]
	got, err := e.c.edit(ctx, e.matchID, seq, cmd)
	if err != nil {
		return err
	}
	if err := e.local.Edit(seq, cmd.Participant, cmd.Key); err != nil {
		return fmt.Errorf("local edit: %w", err)
	}
	e.report.Edited++

	want, err := e.local.Event(seq)
	if err != nil {
		return fmt.Errorf("local read: %w", err)
	}
	if a, b := eventLine(got.Event), eventLine(want); a != b {
		e.report.mismatch("edit of seq %d: service has %q, local %q", seq, a, b)
	}
	if score := e.local.Score(); got.Score != score {
		e.report.mismatch("edit of seq %d: score %s, local %s", seq, got.Score, score)
	}
	return nil
}

func (e *executor) deleteEvent(ctx context.Context, cmd Command) error {
	seq := e.seqs[cmd.Target]
	got, err := e.c.deleteEvent(ctx, e.matchID, seq)
	if err != nil {
		return err
	}
	if err := e.local.Delete(seq); err != nil {
		return fmt.Errorf("local delete: %w", err)
	}
	e.report.Deleted++

	if score := e.local.Score(); got.Score != score {
		e.report.mismatch("delete of seq %d: score %s, local %s", seq, got.Score, score)
	}
	return nil
}
