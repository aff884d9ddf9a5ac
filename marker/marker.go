// Package marker tracks which intro or credits window the playhead is in and runs the
// auto-skip countdown for it. State is derived from position only; it is never sticky.
//
// A Controller is confined to the session's control loop. The countdown timer fires on
// its own goroutine and only posts its generation back through the dispatch function;
// the loop then calls Fire, which discards anything stale.
package marker

import (
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/samber/mo"
)

// Phase of the current marker.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseActive
	PhaseSkipped
	PhaseExpired
)

func (p Phase) String() string {
	return [...]string{"none", "active", "skipped", "expired"}[p]
}

// Actions are carried out by the session when a skip happens.
type Actions interface {
	SeekTo(pos time.Duration)
	// PlayNext advances to the next item through the session's navigation path.
	// It reports false when there is no next item.
	PlayNext() bool
	HasNext() bool
}

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (cancel func() bool)

func afterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Option customizes a Controller.
type Option func(*Controller)

// WithScheduler replaces the wall-clock timer.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.schedule = s }
}

// WithClock replaces time.Now for countdown deadlines.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// Controller is the marker state machine.
type Controller struct {
	markers  []media.Marker
	intro    bool
	credits  bool
	delay    time.Duration
	actions  Actions
	dispatch func(generation uint64)
	schedule Scheduler
	now      func() time.Time

	phase    Phase
	current  mo.Option[media.Marker]
	counting bool
	deadline time.Time
	cancel   func() bool
	gen      uint64
}

func New(markers []media.Marker, cfg config.PlaybackConfig, actions Actions, dispatch func(uint64), opts ...Option) *Controller {
	c := &Controller{
		markers:  markers,
		intro:    cfg.AutoSkipIntro,
		credits:  cfg.AutoSkipCredits,
		delay:    cfg.AutoSkipDelay,
		actions:  actions,
		dispatch: dispatch,
		schedule: afterFunc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot is the marker state shown to the user.
type Snapshot struct {
	Phase    Phase
	Marker   mo.Option[media.Marker]
	Counting bool
	Deadline time.Time
}

func (c *Controller) Snapshot() Snapshot {
	return Snapshot{Phase: c.phase, Marker: c.current, Counting: c.counting, Deadline: c.deadline}
}

// Update derives the phase from pos and returns it. Leaving a marker that was never
// skipped reports PhaseExpired once; the controller itself is back in PhaseNone.
func (c *Controller) Update(pos time.Duration) Phase {
	m, inside := media.MarkerAt(c.markers, pos)
	cur, hasCurrent := c.current.Get()

	if inside && hasCurrent && cur == m {
		return c.phase
	}

	left := PhaseNone
	if hasCurrent {
		left = c.leave(cur)
	}

	if inside {
		c.enter(m)
		return c.phase
	}
	return left
}

func (c *Controller) enter(m media.Marker) {
	c.current = mo.Some(m)
	c.phase = PhaseActive

	if c.autoSkip(m.Type) && c.delay > 0 {
		c.startCountdown()
	}
}

func (c *Controller) leave(m media.Marker) Phase {
	c.stopCountdown()

	result := PhaseNone
	if c.phase == PhaseActive {
		log.Debugf("%s marker expired without a skip", m.Type)
		result = PhaseExpired
	}

	c.phase = PhaseNone
	c.current = mo.None[media.Marker]()
	return result
}

func (c *Controller) autoSkip(t media.MarkerType) bool {
	switch t {
	case media.MarkerIntro:
		return c.intro
	case media.MarkerCredits:
		return c.credits
	default:
		return false
	}
}

func (c *Controller) startCountdown() {
	c.gen++
	gen := c.gen
	c.counting = true
	c.deadline = c.now().Add(c.delay)
	c.cancel = c.schedule(c.delay, func() { c.dispatch(gen) })
}

func (c *Controller) stopCountdown() {
	if !c.counting {
		return
	}
	c.gen++
	c.counting = false
	c.deadline = time.Time{}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// CancelCountdown stops a pending auto-skip after user interaction. The marker stays
// visible while the playhead remains inside it.
func (c *Controller) CancelCountdown() {
	c.stopCountdown()
}

// Fire is called on the control loop when a countdown elapses.
func (c *Controller) Fire(generation uint64) {
	if generation != c.gen || !c.counting || c.phase != PhaseActive {
		return
	}
	c.counting = false
	c.cancel = nil
	c.PerformSkip()
}

// PerformSkip skips the active marker. Credits with a next item advance to it; anything
// else seeks to the marker's end. It returns false when there is nothing to skip.
func (c *Controller) PerformSkip() bool {
	m, ok := c.current.Get()
	if !ok || c.phase != PhaseActive {
		return false
	}

	c.stopCountdown()
	c.phase = PhaseSkipped

	if m.Type == media.MarkerCredits && c.actions.HasNext() && c.actions.PlayNext() {
		return true
	}

	c.actions.SeekTo(m.End)
	return true
}

// Stop cancels any countdown. Fires already in flight are discarded.
func (c *Controller) Stop() {
	c.stopCountdown()
	c.gen++
}
