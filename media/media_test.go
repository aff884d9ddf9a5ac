package media

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestItem(t *testing.T) {
	Convey("Given an episode", t, func() {
		ep := Item{ID: "105", Kind: KindEpisode, Title: "Pilot", GrandparentID: "9", GrandparentTitle: "Show", SeasonNumber: 2, EpisodeNumber: 5}

		Convey("It renders a display title", func() {
			So(ep.DisplayTitle(), ShouldEqual, "Show - S02E05 - Pilot")
		})

		Convey("WithServer tags a copy and leaves the original alone", func() {
			tagged := ep.WithServer("srv-1")
			So(tagged.ServerID, ShouldEqual, "srv-1")
			So(ep.ServerID, ShouldBeEmpty)
			So(tagged.Same(ep), ShouldBeTrue)
		})

		Convey("SeriesID is the show", func() {
			So(ep.SeriesID(), ShouldEqual, "9")
			So(Item{ID: "1", Kind: KindMovie, GrandparentID: "x"}.SeriesID(), ShouldBeEmpty)
		})
	})
}

func TestMarker(t *testing.T) {
	Convey("Marker windows are half-open", t, func() {
		m := Marker{Type: MarkerIntro, Start: 10 * time.Second, End: 20 * time.Second}
		So(m.Contains(10*time.Second), ShouldBeTrue)
		So(m.Contains(19*time.Second), ShouldBeTrue)
		So(m.Contains(20*time.Second), ShouldBeFalse)
		So(m.Contains(9*time.Second), ShouldBeFalse)

		found, ok := MarkerAt([]Marker{m}, 15*time.Second)
		So(ok, ShouldBeTrue)
		So(found, ShouldResemble, m)

		_, ok = MarkerAt([]Marker{m}, time.Minute)
		So(ok, ShouldBeFalse)
	})
}

func TestSelectVersion(t *testing.T) {
	Convey("SelectVersion", t, func() {
		versions := []Version{
			{ID: 1, Parts: []Part{{ID: 11}}},
			{ID: 2},
		}

		_, part, err := SelectVersion(versions, 0)
		So(err, ShouldBeNil)
		So(part.ID, ShouldEqual, 11)

		_, _, err = SelectVersion(versions, 1)
		So(err, ShouldNotBeNil)

		_, _, err = SelectVersion(versions, 5)
		So(err, ShouldNotBeNil)
	})
}

func TestPart(t *testing.T) {
	Convey("Part stream helpers", t, func() {
		p := Part{Streams: []Stream{
			{ID: 1, Kind: StreamVideo},
			{ID: 2, Kind: StreamAudio, Selected: true},
			{ID: 3, Kind: StreamSubtitle},
			{ID: 4, Kind: StreamSubtitle, Selected: true},
		}}
		So(len(p.StreamsOf(StreamSubtitle)), ShouldEqual, 2)

		s, ok := p.Selected(StreamSubtitle)
		So(ok, ShouldBeTrue)
		So(s.ID, ShouldEqual, 4)
	})
}

func TestPlayQueue(t *testing.T) {
	Convey("PlayQueue lookups", t, func() {
		q := PlayQueue{
			SelectedItemID: 501,
			Items: []QueueItem{
				{Item: Item{ID: "a", PlayQueueItemID: 500}, Position: 10},
				{Item: Item{ID: "b", PlayQueueItemID: 501}, Position: 11},
			},
		}

		i, ok := q.IndexOf("b")
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, 1)

		sel, ok := q.Selected()
		So(ok, ShouldBeTrue)
		So(sel.Item.ID, ShouldEqual, "b")

		at, ok := q.AtPosition(10)
		So(ok, ShouldBeTrue)
		So(at.Item.ID, ShouldEqual, "a")

		_, ok = q.AtPosition(12)
		So(ok, ShouldBeFalse)
	})
}
