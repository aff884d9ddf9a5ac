package ui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a notifier", t, func() {
		var m Model

		Convey("When a notification arrives", func() {
			cmd := m.Update(Notify("Audio: English")())

			Convey("Then it is shown until cleared", func() {
				So(cmd, ShouldNotBeNil)
				So(m.Current(), ShouldEqual, "Audio: English")
				So(m.View("a\nb"), ShouldStartWith, "a\nb  ")

				m.Update(ClearNotificationMsg{})
				So(m.Current(), ShouldBeEmpty)
				So(m.View("a\nb"), ShouldEqual, "a\nb")
			})
		})
	})
}
