package progress

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/media"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

type fakeReporter struct {
	mu      sync.Mutex
	reports []media.Report
	gate    chan struct{}
	err     error
}

func (f *fakeReporter) ReportProgress(_ context.Context, r media.Report) error {
	if f.gate != nil && r.State != media.StateStopped {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, r)
	return f.err
}

func (f *fakeReporter) states() []media.ReportState {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]media.ReportState, len(f.reports))
	for i, r := range f.reports {
		out[i] = r.State
	}
	return out
}

var item = media.Item{ID: "105", Duration: time.Hour, ViewOffset: time.Minute}

func TestTracker(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a tracker", t, func() {
		rep := &fakeReporter{}
		tr := New(rep, config.PlaybackConfig{ProgressInterval: time.Hour})
		tr.Start(item)

		Convey("When the state changes", func() {
			tr.Update(2 * time.Minute)
			tr.OnStateChange(media.StatePlaying)
			tr.OnStateChange(media.StatePlaying)
			tr.Stop(context.Background())

			Convey("Then one report per transition plus the final stop is sent", func() {
				So(rep.states(), ShouldResemble, []media.ReportState{media.StatePlaying, media.StateStopped})
				So(rep.reports[1].Position, ShouldEqual, 2*time.Minute)
				So(rep.reports[1].Duration, ShouldEqual, time.Hour)
			})

			Convey("Then stopping again sends nothing", func() {
				tr.Stop(context.Background())
				So(rep.states(), ShouldHaveLength, 2)
			})
		})

		Convey("When stopped is sent twice", func() {
			tr.Stop(context.Background())
			tr.SendProgress(media.StateStopped)
			tr.SendProgress(media.StateStopped)
			tr.inflight.Wait()

			Convey("Then every report is delivered", func() {
				So(rep.states(), ShouldResemble, []media.ReportState{media.StateStopped, media.StateStopped, media.StateStopped})
			})
		})

		Convey("When the server rejects reports", func() {
			rep.err = errors.New("offline")
			tr.OnStateChange(media.StatePaused)
			tr.Stop(context.Background())

			Convey("Then nothing is surfaced", func() {
				So(rep.states(), ShouldHaveLength, 2)
			})
		})
	})
}

func TestStopWaitsForInflight(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a report stuck in flight", t, func() {
		rep := &fakeReporter{gate: make(chan struct{})}
		tr := New(rep, config.PlaybackConfig{ProgressInterval: time.Hour})
		tr.Start(item)
		tr.OnStateChange(media.StatePlaying)

		stopped := make(chan struct{})
		go func() {
			tr.Stop(context.Background())
			close(stopped)
		}()

		Convey("Then Stop returns only after it lands, followed by the final report", func() {
			select {
			case <-stopped:
				t.Fatal("stop returned while a report was in flight")
			case <-time.After(50 * time.Millisecond):
			}

			close(rep.gate)
			<-stopped
			So(rep.states(), ShouldResemble, []media.ReportState{media.StatePlaying, media.StateStopped})
		})
	})
}

func TestTicker(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	Convey("Given a short interval", t, func() {
		rep := &fakeReporter{}
		tr := New(rep, config.PlaybackConfig{ProgressInterval: 10 * time.Millisecond})
		tr.Start(item)

		Convey("Then nothing is sent while buffering", func() {
			time.Sleep(40 * time.Millisecond)
			So(rep.states(), ShouldBeEmpty)
			tr.Stop(context.Background())
		})

		Convey("Then playing is reported periodically", func() {
			tr.OnStateChange(media.StatePlaying)
			time.Sleep(60 * time.Millisecond)
			tr.Stop(context.Background())
			So(len(rep.states()), ShouldBeGreaterThanOrEqualTo, 3)
		})
	})
}
