package matchsim

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/okian/scorebook/internal/adapters/export"
)

// Print writes a human-readable summary of r to w: the counters, the final
// pivot and a colored verdict.
func Print(w io.Writer, r *Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(w, "match %s (seed %d)\n", r.MatchID, r.Seed)
	fmt.Fprintf(w, "  appended %d, duplicates %d, edited %d, deleted %d, events %d\n",
		r.Appended, r.Duplicates, r.Edited, r.Deleted, r.Events)
	fmt.Fprintf(w, "  final score %s in %s\n\n", r.Score, r.Duration.Round(time.Millisecond))
	fmt.Fprintln(w, export.PivotText(r.Pivot))
	fmt.Fprintln(w)

	if r.OK() {
		color.New(color.FgGreen, color.Bold).Fprintln(w, "PASS: service matches local ledger")
		return
	}
	color.New(color.FgRed, color.Bold).Fprintf(w, "FAIL: %d mismatches\n", len(r.Mismatches))
	warn := color.New(color.FgYellow)
	for _, m := range r.Mismatches {
		warn.Fprintf(w, "  - %s\n", m)
	}
}
