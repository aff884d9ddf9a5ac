// Package progress reports playback position and state to the media server.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
)

const reportTimeout = 10 * time.Second

// Reporter delivers a report to the server.
type Reporter interface {
	ReportProgress(ctx context.Context, r media.Report) error
}

// Tracker sends a report on every state change and periodically while playing.
// Reports are fire-and-forget: failures are logged and the next tick tries again.
type Tracker struct {
	reporter Reporter
	interval time.Duration

	mu       sync.Mutex
	item     media.Item
	position time.Duration
	state    media.ReportState
	running  bool
	stop     chan struct{}
	done     chan struct{}

	inflight sync.WaitGroup
}

func New(reporter Reporter, cfg config.PlaybackConfig) *Tracker {
	interval := cfg.ProgressInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Tracker{reporter: reporter, interval: interval}
}

// Start begins tracking item from its view offset.
func (t *Tracker) Start(item media.Item) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}

	t.item = item
	t.position = item.ViewOffset
	t.state = media.StateBuffering
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.tick(t.stop, t.done)
}

func (t *Tracker) tick(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			state := t.state
			t.mu.Unlock()

			if state == media.StatePlaying || state == media.StatePaused {
				t.SendProgress(state)
			}
		}
	}
}

// Update records the latest position.
func (t *Tracker) Update(pos time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.position = pos
}

// Position returns the last recorded position.
func (t *Tracker) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

// OnStateChange reports transitions immediately. Repeated states are ignored.
func (t *Tracker) OnStateChange(state media.ReportState) {
	t.mu.Lock()
	changed := t.state != state
	t.state = state
	t.mu.Unlock()

	if changed {
		t.SendProgress(state)
	}
}

// SendProgress reports state without waiting for the server.
func (t *Tracker) SendProgress(state media.ReportState) {
	report := t.report(state)

	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		t.send(context.Background(), report)
	}()
}

// Stop halts the ticker, waits for in-flight reports and then sends the final stopped
// report synchronously. Calling it again is a no-op.
func (t *Tracker) Stop(ctx context.Context) {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.state = media.StateStopped
	close(t.stop)
	done := t.done
	t.mu.Unlock()

	<-done
	t.inflight.Wait()

	t.send(ctx, t.report(media.StateStopped))
}

func (t *Tracker) report(state media.ReportState) media.Report {
	t.mu.Lock()
	defer t.mu.Unlock()

	return media.Report{
		ItemID:   t.item.ID,
		Position: t.position,
		State:    state,
		Duration: t.item.Duration,
	}
}

func (t *Tracker) send(ctx context.Context, r media.Report) {
	if r.ItemID == "" {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()

	if err := t.reporter.ReportProgress(ctx, r); err != nil {
		log.With(log.Fields{"item": r.ItemID, "state": string(r.State)}).Warnf("progress report dropped: %v", err)
	}
}
