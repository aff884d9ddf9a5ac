package nowplaying

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/marquee-cli/marquee/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBridge(t *testing.T) {
	Convey("Given a bridge over a memory surface", t, func() {
		surface := NewMemory()
		b := NewBridge(surface)
		item := media.Item{ID: "105", Title: "Five", GrandparentTitle: "Show X", ParentTitle: "Season 2", Duration: time.Hour}

		Convey("When nothing has been published", func() {
			b.SetStatus(true, time.Minute)

			Convey("Then status updates are held back", func() {
				_, status, _, _, cleared := surface.State()
				So(cleared, ShouldBeTrue)
				So(status.Playing, ShouldBeFalse)
			})
		})

		Convey("When an item is published", func() {
			b.SetMetadata(item, "http://art")
			b.SetStatus(true, time.Minute)
			b.SetControlsEnabled(true, false)

			Convey("Then the surface mirrors it", func() {
				md, status, canNext, canPrev, cleared := surface.State()
				So(cleared, ShouldBeFalse)
				So(md.Title, ShouldEqual, "Five")
				So(md.Show, ShouldEqual, "Show X")
				So(md.Duration, ShouldEqual, time.Hour)
				So(status, ShouldResemble, Status{Playing: true, Position: time.Minute, Rate: 1})
				So(canNext, ShouldBeTrue)
				So(canPrev, ShouldBeFalse)
			})

			Convey("And the app goes inactive", func() {
				b.OnLifecycle(Inactive)

				Convey("Then the surface stays populated", func() {
					_, _, _, _, cleared := surface.State()
					So(cleared, ShouldBeFalse)
				})
			})

			Convey("And the app is backgrounded then resumed", func() {
				b.OnLifecycle(Background)
				_, _, _, _, cleared := surface.State()
				So(cleared, ShouldBeTrue)

				b.SetStatus(false, 2*time.Minute)
				b.OnLifecycle(Resumed)

				Convey("Then the latest state is repopulated", func() {
					md, status, canNext, _, cleared := surface.State()
					So(cleared, ShouldBeFalse)
					So(md.ID, ShouldEqual, "105")
					So(status.Position, ShouldEqual, 2*time.Minute)
					So(status.Playing, ShouldBeFalse)
					So(canNext, ShouldBeTrue)
				})
			})

			Convey("And the session exits", func() {
				b.Forget()
				b.OnLifecycle(Resumed)

				Convey("Then nothing comes back", func() {
					_, _, _, _, cleared := surface.State()
					So(cleared, ShouldBeTrue)
				})
			})
		})

		Convey("When the surface issues commands", func() {
			surface.Send(Command{Kind: CommandNext})

			Convey("Then they are relayed", func() {
				cmd := <-b.Commands()
				So(cmd.Kind, ShouldEqual, CommandNext)
				So(cmd.Kind.String(), ShouldEqual, "next")
			})
		})

		Convey("When the surface is closed twice", func() {
			So(surface.Close(), ShouldBeNil)
			So(surface.Close(), ShouldBeNil)
			_, ok := <-surface.Commands()
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMetadataMap(t *testing.T) {
	Convey("Given metadata", t, func() {
		md := Metadata{ID: "105/x", Title: "Five", Show: "Show X", Duration: 2 * time.Second}

		Convey("Then it maps onto xesam and mpris keys", func() {
			m := metadataMap(md)
			So(m["mpris:trackid"].Value(), ShouldEqual, dbus.ObjectPath("/org/marquee/track/105_x"))
			So(m["mpris:length"].Value(), ShouldEqual, int64(2000000))
			So(m["xesam:artist"].Value(), ShouldResemble, []string{"Show X"})
			_, hasArt := m["mpris:artUrl"]
			So(hasArt, ShouldBeFalse)
		})

		Convey("Then an empty id has no track", func() {
			So(trackPath(""), ShouldEqual, noTrack)
		})
	})
}
