// Package stats builds the per-participant statistics pivot from annotated
// events. The pivot is derived on demand and never maintained incrementally.
package stats

import "github.com/okian/scorebook/internal/domain/model"

// Fixed column and summary row labels.
const (
	ColumnTotal    = "Total"
	ColumnOpponent = "Opponent"
	RowScoreSum    = "Total Scored"
	RowErrorSum    = "Total Errors"
)

// IsReservedColumn reports whether id is one of the fixed column labels and
// therefore cannot name a participant.
func IsReservedColumn(id string) bool {
	return id == ColumnTotal || id == ColumnOpponent
}

// Catalog exposes the row layout and the summary classification.
type Catalog interface {
	AllBuckets() []string
	IsScoring(bucket string) bool
	IsError(bucket string) bool
}

// Row is one pivot row; Counts is aligned with Pivot.Columns.
type Row struct {
	Bucket string `json:"bucket"`
	Counts []int  `json:"counts"`
}

// Pivot is the statistics table: one row per catalog bucket, one column per
// seen participant, then Total and (when present) Opponent.
type Pivot struct {
	Columns  []string `json:"columns"`
	Rows     []Row    `json:"rows"`
	ScoreSum Row      `json:"score_sum"`
	ErrorSum Row      `json:"error_sum"`
}

// Build counts events by (bucket, participant). seen gives the participant
// column order; participants found in events but missing from seen are
// appended rather than dropped.
func Build(cat Catalog, events []model.Event, seen []string) Pivot {
	players := make([]string, 0, len(seen))
	col := make(map[string]int, len(seen))
	addPlayer := func(id string) {
		if _, ok := col[id]; ok || id == "" || id == model.Opponent || IsReservedColumn(id) {
			return
		}
		col[id] = len(players)
		players = append(players, id)
	}
	for _, id := range seen {
		addPlayer(id)
	}

	hasOpponent := false
	for _, e := range events {
		if e.Participant == model.Opponent {
			hasOpponent = true
			continue
		}
		addPlayer(e.Participant)
	}

	totalCol := len(players)
	width := totalCol + 1
	opponentCol := -1
	if hasOpponent {
		opponentCol = width
		width++
	}

	p := Pivot{Columns: make([]string, 0, width)}
	p.Columns = append(p.Columns, players...)
	p.Columns = append(p.Columns, ColumnTotal)
	if hasOpponent {
		p.Columns = append(p.Columns, ColumnOpponent)
	}

	buckets := cat.AllBuckets()
	rowOf := make(map[string]int, len(buckets))
	p.Rows = make([]Row, len(buckets))
	for i, b := range buckets {
		rowOf[b] = i
		p.Rows[i] = Row{Bucket: b, Counts: make([]int, width)}
	}

	for _, e := range events {
		r, ok := rowOf[e.Bucket]
		if !ok {
			continue
		}
		counts := p.Rows[r].Counts
		if e.Participant == model.Opponent {
			counts[opponentCol]++
			continue
		}
		if c, ok := col[e.Participant]; ok {
			counts[c]++
			// Opponent actions never count toward the home total.
			counts[totalCol]++
		}
	}

	p.ScoreSum = Row{Bucket: RowScoreSum, Counts: make([]int, width)}
	p.ErrorSum = Row{Bucket: RowErrorSum, Counts: make([]int, width)}
	for _, row := range p.Rows {
		var dst []int
		switch {
		case cat.IsScoring(row.Bucket):
			dst = p.ScoreSum.Counts
		case cat.IsError(row.Bucket):
			dst = p.ErrorSum.Counts
		default:
			continue
		}
		for i, n := range row.Counts {
			dst[i] += n
		}
	}

	return p
}

// Cell returns the count at (bucket, column). Summary rows are addressable
// by their labels.
func (p Pivot) Cell(bucket, column string) (int, bool) {
	c := -1
	for i, name := range p.Columns {
		if name == column {
			c = i
			break
		}
	}
	if c < 0 {
		return 0, false
	}
	for _, r := range p.allRows() {
		if r.Bucket == bucket {
			return r.Counts[c], true
		}
	}
	return 0, false
}

// Table returns every row including the two summary rows, in display order.
func (p Pivot) Table() []Row { return p.allRows() }

func (p Pivot) allRows() []Row {
	rows := make([]Row, 0, len(p.Rows)+2)
	rows = append(rows, p.Rows...)
	return append(rows, p.ScoreSum, p.ErrorSum)
}
