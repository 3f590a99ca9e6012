// Package export renders match data for spreadsheets and terminals. It only
// reads snapshots; nothing here mutates a ledger.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/stats"
)

// Export kinds, used as metric labels and file names.
const (
	KindEventLog = "events"
	KindPivot    = "pivot"
)

// utf8BOM lets spreadsheet tools detect UTF-8 in the CSV files.
const utf8BOM = "\ufeff"

// pivotCorner labels the bucket column of the pivot.
const pivotCorner = "Action"

// TimeLayout is the wall-clock format of the exported Time column.
const TimeLayout = "15:04:05"

// EventLogHeader is the column layout of the event log export.
var EventLogHeader = []string{"Seq", "Time", "Player", "Action", "Bucket", "Result", "Score"}

// EventLogCSV writes events oldest first, whatever order they are given in.
func EventLogCSV(w io.Writer, events []model.Event) error {
	ordered := make([]model.Event, len(events))
	copy(ordered, events)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seq < ordered[j].Seq })

	records := make([][]string, 0, len(ordered)+1)
	records = append(records, EventLogHeader)
	for _, e := range ordered {
		records = append(records, []string{
			strconv.FormatInt(e.Seq, 10),
			e.Recorded.Format(TimeLayout),
			e.Participant,
			e.Key,
			e.Bucket,
			e.ResultLabel(),
			e.ScoreLabel(),
		})
	}
	return writeCSV(w, records)
}

// PivotCSV writes the pivot with its two summary rows.
func PivotCSV(w io.Writer, p stats.Pivot) error {
	records := make([][]string, 0, len(p.Rows)+3)
	records = append(records, append([]string{pivotCorner}, p.Columns...))
	for _, r := range p.Rows {
		records = append(records, pivotRecord(r))
	}
	records = append(records, pivotRecord(p.ScoreSum), pivotRecord(p.ErrorSum))
	return writeCSV(w, records)
}

// PivotText renders the pivot as an aligned table for terminals.
func PivotText(p stats.Pivot) string {
	tbl := pivotTable(p)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Header = text.FormatDefault
	return tbl.Render()
}

func pivotTable(p stats.Pivot) table.Writer {
	tbl := table.NewWriter()

	header := make(table.Row, 0, len(p.Columns)+1)
	header = append(header, pivotCorner)
	for _, c := range p.Columns {
		header = append(header, c)
	}
	tbl.AppendHeader(header)

	for _, r := range p.Rows {
		tbl.AppendRow(pivotRow(r))
	}
	tbl.AppendSeparator()
	tbl.AppendRow(pivotRow(p.ScoreSum))
	tbl.AppendRow(pivotRow(p.ErrorSum))
	return tbl
}

func pivotRow(r stats.Row) table.Row {
	row := make(table.Row, 0, len(r.Counts)+1)
	row = append(row, r.Bucket)
	for _, n := range r.Counts {
		row = append(row, n)
	}
	return row
}

func pivotRecord(r stats.Row) []string {
	rec := make([]string, 0, len(r.Counts)+1)
	rec = append(rec, r.Bucket)
	for _, n := range r.Counts {
		rec = append(rec, strconv.Itoa(n))
	}
	return rec
}

// writeCSV writes the BOM followed by RFC 4180 records.
func writeCSV(w io.Writer, records [][]string) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
