package participants_test

import (
	"testing"

	"github.com/okian/scorebook/internal/domain/model"
	"github.com/okian/scorebook/internal/domain/participants"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeen(t *testing.T) {
	Convey("Given a set seeded with starters", t, func() {
		s := participants.New("#1", "#7", "#10")

		Convey("Then starters keep their order", func() {
			So(s.List(), ShouldResemble, []string{"#1", "#7", "#10"})
			So(s.Len(), ShouldEqual, 3)
		})

		Convey("When a substitute appears", func() {
			added := s.Add("#12")

			Convey("Then it is appended after the starters", func() {
				So(added, ShouldBeTrue)
				So(s.List(), ShouldResemble, []string{"#1", "#7", "#10", "#12"})
			})
		})

		Convey("When an existing id is added again", func() {
			So(s.Add("#7"), ShouldBeFalse)
			So(s.List(), ShouldResemble, []string{"#1", "#7", "#10"})
		})

		Convey("When the opponent sentinel or an empty id is added", func() {
			So(s.Add(model.Opponent), ShouldBeFalse)
			So(s.Add(""), ShouldBeFalse)
			So(s.Contains(model.Opponent), ShouldBeFalse)
			So(s.Len(), ShouldEqual, 3)
		})

		Convey("When reset with new starters", func() {
			s.Add("#12")
			s.Reset("#2", "#3")

			Convey("Then only the new starters remain", func() {
				So(s.List(), ShouldResemble, []string{"#2", "#3"})
				So(s.Contains("#12"), ShouldBeFalse)
			})
		})

		Convey("Then List returns a copy", func() {
			l := s.List()
			l[0] = "x"
			So(s.List()[0], ShouldEqual, "#1")
		})
	})

	Convey("Given a zero value set", t, func() {
		var s participants.Seen
		So(s.Add("#5"), ShouldBeTrue)
		So(s.List(), ShouldResemble, []string{"#5"})
	})
}
