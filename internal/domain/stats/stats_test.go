package stats_test

import (
	"testing"

	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/replay"
	"github.com/okian/scorebook/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func annotated(cat *catalog.Catalog, pairs ...string) []model.Event {
	in := make([]model.Event, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		in = append(in, model.Event{Seq: int64(i/2 + 1), Participant: pairs[i], Key: pairs[i+1]})
	}
	res, err := replay.Replay(cat, in)
	if err != nil {
		panic(err)
	}
	return res.Events
}

func TestBuild(t *testing.T) {
	cat := catalog.Default()

	Convey("Given an empty ledger", t, func() {
		p := stats.Build(cat, nil, nil)

		Convey("Then every bucket row is present with only the Total column", func() {
			So(p.Columns, ShouldResemble, []string{stats.ColumnTotal})
			So(p.Rows, ShouldHaveLength, len(cat.AllBuckets()))
			for i, b := range cat.AllBuckets() {
				So(p.Rows[i].Bucket, ShouldEqual, b)
				So(p.Rows[i].Counts, ShouldResemble, []int{0})
			}
			So(p.ScoreSum.Counts, ShouldResemble, []int{0})
			So(p.ErrorSum.Counts, ShouldResemble, []int{0})
		})
	})

	Convey("Given starters with no events", t, func() {
		p := stats.Build(cat, nil, []string{"#1", "#7"})

		Convey("Then seen participants appear as zero columns", func() {
			So(p.Columns, ShouldResemble, []string{"#1", "#7", stats.ColumnTotal})
			n, ok := p.Cell(catalog.BucketServeAce, "#7")
			So(ok, ShouldBeTrue)
			So(n, ShouldEqual, 0)
		})
	})

	Convey("Given seen ids that match the fixed column labels", t, func() {
		p := stats.Build(cat, nil, []string{stats.ColumnTotal, "#1", stats.ColumnOpponent})

		Convey("Then they never become participant columns", func() {
			So(stats.IsReservedColumn(stats.ColumnTotal), ShouldBeTrue)
			So(stats.IsReservedColumn("opponent"), ShouldBeFalse)
			So(p.Columns, ShouldResemble, []string{"#1", stats.ColumnTotal})
		})
	})

	Convey("Given a recorded match", t, func() {
		events := annotated(cat,
			"#1", "serve_ace",
			"#1", "attack_kill",
			"#7", "attack_tip",
			"#7", "attack_error",
			"#10", "dig",
			"", "opp_serve_out",
			"", "opp_net_fault",
			"#12", "block_point",
		)
		p := stats.Build(cat, events, []string{"#1", "#7", "#10", "#12"})

		Convey("Then the Opponent column is appended after Total", func() {
			So(p.Columns, ShouldResemble, []string{"#1", "#7", "#10", "#12", stats.ColumnTotal, stats.ColumnOpponent})
		})

		Convey("Then aliased keys roll up to one bucket", func() {
			n, _ := p.Cell(catalog.BucketAttackKill, stats.ColumnTotal)
			So(n, ShouldEqual, 2)
			n, _ = p.Cell(catalog.BucketOpponentErrors, stats.ColumnOpponent)
			So(n, ShouldEqual, 2)
		})

		Convey("Then Total equals the sum of participant columns excluding Opponent", func() {
			for _, row := range p.Table() {
				sum := 0
				for i, col := range p.Columns {
					if col == stats.ColumnTotal || col == stats.ColumnOpponent {
						continue
					}
					sum += row.Counts[i]
				}
				total, _ := p.Cell(row.Bucket, stats.ColumnTotal)
				So(total, ShouldEqual, sum)
			}
			total, _ := p.Cell(catalog.BucketOpponentErrors, stats.ColumnTotal)
			So(total, ShouldEqual, 0)
		})

		Convey("Then summary rows sum the classified buckets", func() {
			scored, _ := p.Cell(stats.RowScoreSum, stats.ColumnTotal)
			So(scored, ShouldEqual, 4)
			scored1, _ := p.Cell(stats.RowScoreSum, "#1")
			So(scored1, ShouldEqual, 2)
			errs, _ := p.Cell(stats.RowErrorSum, "#7")
			So(errs, ShouldEqual, 1)
			oppScored, _ := p.Cell(stats.RowScoreSum, stats.ColumnOpponent)
			So(oppScored, ShouldEqual, 0)
		})

		Convey("Then unknown cells are reported as missing", func() {
			_, ok := p.Cell("Nope", stats.ColumnTotal)
			So(ok, ShouldBeFalse)
			_, ok = p.Cell(catalog.BucketDig, "#99")
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given an event whose participant is missing from the seen list", t, func() {
		events := annotated(cat, "#4", "dig")
		p := stats.Build(cat, events, []string{"#1"})

		Convey("Then the participant still gets a column", func() {
			So(p.Columns, ShouldResemble, []string{"#1", "#4", stats.ColumnTotal})
			n, _ := p.Cell(catalog.BucketDig, "#4")
			So(n, ShouldEqual, 1)
		})
	})
}
