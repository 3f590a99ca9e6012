package ledger_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/scorebook/internal/domain/catalog"
	"github.com/okian/scorebook/internal/domain/ledger"
	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

// scenarioCatalog is the three-key catalog used by the worked example.
func scenarioCatalog() *catalog.Catalog {
	c, err := catalog.New(catalog.Config{
		Buckets:        []string{"Serve Ace", "Serve Error", "Opponent Errors (Total)"},
		ScoringBuckets: []string{"Serve Ace"},
		ErrorBuckets:   []string{"Serve Error"},
		Events: []catalog.EventConfig{
			{Key: "serve_ace", Effect: "home", Bucket: "Serve Ace"},
			{Key: "serve_error", Effect: "away", Bucket: "Serve Error"},
			{Key: "opp_serve_out", Effect: "home", Bucket: "Opponent Errors (Total)", Opponent: true},
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 16, 19, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func chronological(l *ledger.Ledger) []model.Event {
	display := l.Events()
	out := make([]model.Event, len(display))
	for i, e := range display {
		out[len(display)-1-i] = e
	}
	return out
}

func TestLedger_Scenario(t *testing.T) {
	Convey("Given the worked scenario catalog", t, func() {
		l := ledger.New(scenarioCatalog(), ledger.WithStarters("P1", "P2"), ledger.WithClock(fixedClock()))

		Convey("When P1 serves an ace", func() {
			res, err := l.Append("P1", "serve_ace")
			So(err, ShouldBeNil)

			Convey("Then home leads 1:0 and the UI is told to clear selection", func() {
				So(res.ClearSelection, ShouldBeTrue)
				So(res.Event.Seq, ShouldEqual, 1)
				So(res.Event.Outcome, ShouldEqual, model.OutcomeHomeScored)
				So(l.Score(), ShouldResemble, model.Score{Home: 1, Away: 0})
			})

			Convey("And P2 misses a serve", func() {
				res, err := l.Append("P2", "serve_error")
				So(err, ShouldBeNil)
				So(res.Event.Outcome, ShouldEqual, model.OutcomeAwayScored)
				So(l.Score(), ShouldResemble, model.Score{Home: 1, Away: 1})

				Convey("And the opponent serves out with no participant chosen", func() {
					res, err := l.Append("", "opp_serve_out")
					So(err, ShouldBeNil)
					So(res.Event.Participant, ShouldEqual, model.Opponent)
					So(res.Event.Outcome, ShouldEqual, model.OutcomeHomeScored)
					So(l.Score(), ShouldResemble, model.Score{Home: 2, Away: 1})

					Convey("Then the log is newest first", func() {
						log := l.Events()
						So(log[0].Seq, ShouldEqual, 3)
						So(log[2].Seq, ShouldEqual, 1)
					})

					Convey("When event #2 is corrected to an ace for P2", func() {
						So(l.Edit(2, "P2", "serve_ace"), ShouldBeNil)

						Convey("Then every snapshot is recomputed to 3:0", func() {
							So(l.Score(), ShouldResemble, model.Score{Home: 3, Away: 0})
							ev := chronological(l)
							So(*ev[0].Snapshot, ShouldResemble, model.Score{Home: 1, Away: 0})
							So(*ev[1].Snapshot, ShouldResemble, model.Score{Home: 2, Away: 0})
							So(*ev[2].Snapshot, ShouldResemble, model.Score{Home: 3, Away: 0})
							So(ev[1].Outcome, ShouldEqual, model.OutcomeHomeScored)
						})
					})
				})
			})
		})
	})
}

func TestLedger_RetroactiveEdits(t *testing.T) {
	Convey("Given a ledger with five events", t, func() {
		l := ledger.New(catalog.Default(), ledger.WithStarters("#1", "#7"))
		keys := []string{"serve_ace", "dig", "attack_error", "attack_kill", "serve_error"}
		for _, k := range keys {
			_, err := l.Append("#1", k)
			So(err, ShouldBeNil)
		}
		before := chronological(l)

		Convey("When event #3 is edited into a point", func() {
			So(l.Edit(3, "#7", "block_point"), ShouldBeNil)
			after := chronological(l)

			Convey("Then earlier events are untouched", func() {
				So(after[0], ShouldResemble, before[0])
				So(after[1], ShouldResemble, before[1])
			})

			Convey("Then later snapshots shift accordingly", func() {
				So(*after[2].Snapshot, ShouldResemble, model.Score{Home: 2, Away: 0})
				So(*after[3].Snapshot, ShouldResemble, model.Score{Home: 3, Away: 0})
				So(*after[4].Snapshot, ShouldResemble, model.Score{Home: 3, Away: 1})
				So(l.Score(), ShouldResemble, model.Score{Home: 3, Away: 1})
			})

			Convey("Then the timestamp is preserved", func() {
				So(after[2].Recorded, ShouldEqual, before[2].Recorded)
				So(after[2].Participant, ShouldEqual, "#7")
			})
		})

		Convey("When event #1 is deleted", func() {
			So(l.Delete(1), ShouldBeNil)
			after := chronological(l)

			Convey("Then the rest replay as if it never existed", func() {
				So(after, ShouldHaveLength, 4)
				So(after[0].Seq, ShouldEqual, 2)
				So(*after[1].Snapshot, ShouldResemble, model.Score{Home: 0, Away: 1})
				So(*after[2].Snapshot, ShouldResemble, model.Score{Home: 1, Away: 1})
				So(l.Score(), ShouldResemble, model.Score{Home: 1, Away: 2})
			})

			Convey("Then sequence ids are stable and never reused", func() {
				So([]int64{after[0].Seq, after[1].Seq, after[2].Seq, after[3].Seq}, ShouldResemble, []int64{2, 3, 4, 5})
				res, err := l.Append("#1", "dig")
				So(err, ShouldBeNil)
				So(res.Event.Seq, ShouldEqual, 6)
			})
		})
	})
}

func TestLedger_Rejections(t *testing.T) {
	Convey("Given a ledger with one event", t, func() {
		l := ledger.New(catalog.Default(), ledger.WithStarters("#1"))
		_, err := l.Append("#1", "serve_ace")
		So(err, ShouldBeNil)
		snap := l.Snapshot()

		Convey("When an unknown key is recorded", func() {
			_, err := l.Append("#1", "not_a_real_key")

			Convey("Then it fails with UnknownEventKey and nothing changes", func() {
				So(errors.Is(err, ledger.ErrUnknownEventKey), ShouldBeTrue)
				So(l.Len(), ShouldEqual, 1)
				So(l.Snapshot(), ShouldResemble, snap)
			})
		})

		Convey("When a player event has no participant", func() {
			_, err := l.Append("   ", "attack_kill")
			So(errors.Is(err, ledger.ErrMissingParticipant), ShouldBeTrue)
			So(l.Len(), ShouldEqual, 1)
		})

		Convey("When editing to a missing participant", func() {
			err := l.Edit(1, "", "attack_kill")
			So(errors.Is(err, ledger.ErrMissingParticipant), ShouldBeTrue)
			So(l.Snapshot(), ShouldResemble, snap)
		})

		Convey("When editing to an unknown key", func() {
			err := l.Edit(1, "#1", "nope")
			So(errors.Is(err, ledger.ErrUnknownEventKey), ShouldBeTrue)
			So(l.Snapshot(), ShouldResemble, snap)
		})

		Convey("When addressing an unknown sequence id", func() {
			So(errors.Is(l.Edit(42, "#1", "dig"), ledger.ErrUnknownSequenceID), ShouldBeTrue)
			So(errors.Is(l.Delete(42), ledger.ErrUnknownSequenceID), ShouldBeTrue)
			_, err := l.Event(42)
			So(errors.Is(err, ledger.ErrUnknownSequenceID), ShouldBeTrue)
			So(l.Snapshot(), ShouldResemble, snap)
		})

		Convey("When the opponent sentinel is chosen for a player key", func() {
			res, err := l.Append(model.Opponent, "attack_error")
			So(err, ShouldBeNil)
			So(res.Event.Participant, ShouldEqual, model.Opponent)
			So(l.Participants(), ShouldResemble, []string{"#1"})
		})

		Convey("When a participant is named after a fixed pivot column", func() {
			_, appendErr := l.Append(stats.ColumnTotal, "attack_kill")
			editErr := l.Edit(1, " Opponent ", "serve_ace")
			_, introErr := l.Introduce(stats.ColumnOpponent)

			Convey("Then every command is rejected and nothing changes", func() {
				So(errors.Is(appendErr, ledger.ErrReservedParticipant), ShouldBeTrue)
				So(errors.Is(editErr, ledger.ErrReservedParticipant), ShouldBeTrue)
				So(errors.Is(introErr, ledger.ErrReservedParticipant), ShouldBeTrue)
				So(l.Snapshot(), ShouldResemble, snap)
			})
		})
	})

	Convey("Given a starter named after the Total column", t, func() {
		l := ledger.New(catalog.Default(), ledger.WithStarters("Total", "#1"))
		_, err := l.Append("#1", "serve_ace")
		So(err, ShouldBeNil)
		_, err = l.Append("", "opp_error")
		So(err, ShouldBeNil)

		Convey("Then the pivot columns stay unique", func() {
			So(l.Participants(), ShouldResemble, []string{"#1"})
			So(l.Pivot().Columns, ShouldResemble, []string{"#1", stats.ColumnTotal, stats.ColumnOpponent})
		})
	})
}

func TestLedger_ParticipantsAndReset(t *testing.T) {
	Convey("Given a ledger with starters", t, func() {
		l := ledger.New(catalog.Default(), ledger.WithStarters("#1", "#7"))

		Convey("When a substitute is introduced without an event", func() {
			added, err := l.Introduce(" #12 ")
			So(err, ShouldBeNil)
			So(added, ShouldBeTrue)

			Convey("Then the pivot has a zero column for them", func() {
				p := l.Pivot()
				So(p.Columns, ShouldResemble, []string{"#1", "#7", "#12", stats.ColumnTotal})
			})
		})

		Convey("When introducing an empty id", func() {
			_, err := l.Introduce("")
			So(errors.Is(err, ledger.ErrMissingParticipant), ShouldBeTrue)
		})

		Convey("When an unseen player records an event", func() {
			_, err := l.Append("#3", "dig")
			So(err, ShouldBeNil)
			So(l.Participants(), ShouldResemble, []string{"#1", "#7", "#3"})

			Convey("Then deleting that event keeps them seen", func() {
				So(l.Delete(1), ShouldBeNil)
				So(l.Participants(), ShouldResemble, []string{"#1", "#7", "#3"})
			})
		})

		Convey("When the match is reset", func() {
			_, _ = l.Append("#3", "serve_ace")
			_, _ = l.Append("", "opp_error")
			_, _ = l.Introduce("#14")
			l.Reset()

			Convey("Then everything is cleared back to the starters", func() {
				So(l.Score(), ShouldResemble, model.Score{})
				So(l.Events(), ShouldBeEmpty)
				So(l.Participants(), ShouldResemble, []string{"#1", "#7"})
				p := l.Pivot()
				So(p.Columns, ShouldResemble, []string{"#1", "#7", stats.ColumnTotal})
			})
		})
	})
}

func TestLedger_Concurrency(t *testing.T) {
	Convey("Given concurrent appends on one ledger", t, func() {
		l := ledger.New(catalog.Default())
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = l.Append("#1", "serve_ace")
			}()
		}
		wg.Wait()

		Convey("Then every command is applied exactly once", func() {
			So(l.Len(), ShouldEqual, 50)
			So(l.Score(), ShouldResemble, model.Score{Home: 50})
		})
	})
}
