package marker

import (
	"testing"
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/media"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeActions struct {
	seeks   []time.Duration
	nexts   int
	hasNext bool
}

func (f *fakeActions) SeekTo(pos time.Duration) { f.seeks = append(f.seeks, pos) }
func (f *fakeActions) PlayNext() bool           { f.nexts++; return f.hasNext }
func (f *fakeActions) HasNext() bool            { return f.hasNext }

// manualTimer collects scheduled callbacks so tests decide when time passes.
type manualTimer struct {
	pending []*timer
}

type timer struct {
	d         time.Duration
	f         func()
	cancelled bool
}

func (m *manualTimer) schedule(d time.Duration, f func()) func() bool {
	t := &timer{d: d, f: f}
	m.pending = append(m.pending, t)
	return func() bool {
		was := !t.cancelled
		t.cancelled = true
		return was
	}
}

// elapse fires every timer, cancelled or not, the way a racing AfterFunc could.
func (m *manualTimer) elapse() {
	for _, t := range m.pending {
		t.f()
	}
	m.pending = nil
}

var (
	intro   = media.Marker{Type: media.MarkerIntro, Start: 30 * time.Second, End: 90 * time.Second}
	credits = media.Marker{Type: media.MarkerCredits, Start: 20 * time.Minute, End: 22 * time.Minute}
)

func TestController(t *testing.T) {
	Convey("Given auto-skip of intros after 5 seconds", t, func() {
		actions := &fakeActions{}
		clock := &manualTimer{}
		var fired []uint64

		cfg := config.PlaybackConfig{AutoSkipIntro: true, AutoSkipDelay: 5 * time.Second}
		c := New([]media.Marker{intro, credits}, cfg, actions, func(g uint64) { fired = append(fired, g) }, WithScheduler(clock.schedule))
		deliver := func() {
			clock.elapse()
			for _, g := range fired {
				c.Fire(g)
			}
			fired = nil
		}

		Convey("When the playhead enters the intro", func() {
			So(c.Update(31*time.Second), ShouldEqual, PhaseActive)
			So(clock.pending, ShouldHaveLength, 1)
			So(clock.pending[0].d, ShouldEqual, 5*time.Second)

			Convey("And the countdown elapses", func() {
				deliver()

				Convey("Then exactly one seek to the marker end happens", func() {
					So(actions.seeks, ShouldResemble, []time.Duration{90 * time.Second})
					So(c.Snapshot().Phase, ShouldEqual, PhaseSkipped)

					c.Fire(c.gen)
					So(c.PerformSkip(), ShouldBeFalse)
					So(actions.seeks, ShouldHaveLength, 1)
				})

				Convey("Then landing on the end leaves the marker", func() {
					So(c.Update(90*time.Second), ShouldEqual, PhaseNone)
					So(c.Snapshot().Marker.IsAbsent(), ShouldBeTrue)
				})
			})

			Convey("And the user seeks within the window", func() {
				c.CancelCountdown()
				So(c.Update(40*time.Second), ShouldEqual, PhaseActive)
				deliver()

				Convey("Then no skip happens but the marker stays visible", func() {
					So(actions.seeks, ShouldBeEmpty)
					snap := c.Snapshot()
					So(snap.Phase, ShouldEqual, PhaseActive)
					So(snap.Counting, ShouldBeFalse)
					So(snap.Marker.MustGet(), ShouldResemble, intro)
				})

				Convey("Then the user can still skip manually", func() {
					So(c.PerformSkip(), ShouldBeTrue)
					So(actions.seeks, ShouldResemble, []time.Duration{90 * time.Second})
				})
			})

			Convey("And the playhead leaves the window", func() {
				phase := c.Update(2 * time.Minute)
				deliver()

				Convey("Then the marker expires and the countdown is dropped", func() {
					So(phase, ShouldEqual, PhaseExpired)
					So(c.Snapshot().Phase, ShouldEqual, PhaseNone)
					So(actions.seeks, ShouldBeEmpty)
				})
			})

			Convey("And the controller stops", func() {
				c.Stop()
				deliver()
				So(actions.seeks, ShouldBeEmpty)
			})
		})

		Convey("When the playhead enters credits with auto-skip off", func() {
			So(c.Update(21*time.Minute), ShouldEqual, PhaseActive)

			Convey("Then no countdown starts", func() {
				So(clock.pending, ShouldBeEmpty)
				So(c.Snapshot().Counting, ShouldBeFalse)
			})
		})

		Convey("When no marker contains the position", func() {
			So(c.Update(10*time.Minute), ShouldEqual, PhaseNone)
		})
	})

	Convey("Given auto-skip of credits with a next episode", t, func() {
		actions := &fakeActions{hasNext: true}
		clock := &manualTimer{}
		var fired []uint64

		cfg := config.PlaybackConfig{AutoSkipCredits: true, AutoSkipDelay: 3 * time.Second}
		c := New([]media.Marker{credits}, cfg, actions, func(g uint64) { fired = append(fired, g) }, WithScheduler(clock.schedule))

		c.Update(20 * time.Minute)
		clock.elapse()
		for _, g := range fired {
			c.Fire(g)
		}

		Convey("Then the session advances instead of seeking", func() {
			So(actions.nexts, ShouldEqual, 1)
			So(actions.seeks, ShouldBeEmpty)
		})
	})

	Convey("Given credits without a next episode", t, func() {
		actions := &fakeActions{}
		c := New([]media.Marker{credits}, config.PlaybackConfig{}, actions, func(uint64) {})
		c.Update(21 * time.Minute)

		Convey("Then a manual skip seeks to the end", func() {
			So(c.PerformSkip(), ShouldBeTrue)
			So(actions.nexts, ShouldEqual, 0)
			So(actions.seeks, ShouldResemble, []time.Duration{22 * time.Minute})
		})
	})

	Convey("Given a zero delay", t, func() {
		clock := &manualTimer{}
		cfg := config.PlaybackConfig{AutoSkipIntro: true}
		c := New([]media.Marker{intro}, cfg, &fakeActions{}, func(uint64) {}, WithScheduler(clock.schedule))
		c.Update(45 * time.Second)

		Convey("Then no countdown starts", func() {
			So(clock.pending, ShouldBeEmpty)
		})
	})
}

func TestWallClock(t *testing.T) {
	Convey("Given the real scheduler", t, func() {
		fired := make(chan uint64, 1)
		cfg := config.PlaybackConfig{AutoSkipIntro: true, AutoSkipDelay: 10 * time.Millisecond}
		actions := &fakeActions{}
		c := New([]media.Marker{intro}, cfg, actions, func(g uint64) { fired <- g })

		c.Update(time.Minute)

		Convey("Then the countdown posts its generation", func() {
			g := <-fired
			c.Fire(g)
			So(actions.seeks, ShouldResemble, []time.Duration{90 * time.Second})
		})
	})
}
