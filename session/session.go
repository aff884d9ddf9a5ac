// Package session owns one playback of one item: it opens the engine, wires the
// progress tracker, the marker controller, the track selector and the now-playing bridge
// to it, and tears everything down deterministically before the next item starts.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/marker"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/navigator"
	"github.com/marquee-cli/marquee/nowplaying"
	"github.com/marquee-cli/marquee/progress"
	"github.com/marquee-cli/marquee/queue"
	"github.com/marquee-cli/marquee/track"
	"github.com/samber/mo"
)

// State is the lifecycle of a Session.
type State int

const (
	Uninitialized State = iota
	Initializing
	Ready
	Failed
	Disposed
)

func (s State) String() string {
	return [...]string{"uninitialized", "initializing", "ready", "failed", "disposed"}[s]
}

// Service is everything a session asks of the media server.
type Service interface {
	Resolve(ctx context.Context, id string, versionIndex int) (*media.Playable, error)
	SeriesLanguages(ctx context.Context, seriesID string) (media.SeriesLanguages, error)
	track.Service
	progress.Reporter
	navigator.Catalog
}

// Chrome is the terminal or window state a full exit gives back.
type Chrome interface {
	Restore()
}

type nopChrome struct{}

func (nopChrome) Restore() {}

// Deps are the collaborators shared by every session of a Player.
type Deps struct {
	Service   Service
	NewEngine func() engine.Engine
	Config    config.PlaybackConfig

	// Queue is optional. Without it adjacency comes from season siblings only.
	Queue  *queue.Manager
	Bridge *nowplaying.Bridge
	Chrome Chrome

	// Artwork turns an item's thumb into a URL for the now-playing surface.
	Artwork func(thumb string) string
	// History is called at teardown with the last known position.
	History func(item media.Item, position time.Duration, versionIndex int)

	Scheduler marker.Scheduler
}

// Outcome tells the caller of Run what happens next.
type Outcome struct {
	Kind      OutcomeKind
	Next      media.Item
	Overrides track.Overrides
	Position  time.Duration
}

type OutcomeKind int

const (
	Finished OutcomeKind = iota
	Quitted
	Navigate
)

func (k OutcomeKind) String() string {
	return [...]string{"finished", "quit", "navigate"}[k]
}

// Snapshot is a consistent view of the session for a UI.
type Snapshot struct {
	State     State
	Item      media.Item
	Position  time.Duration
	Duration  time.Duration
	Playing   bool
	Buffering bool

	Marker     marker.Snapshot
	PromptNext bool
	Next       mo.Option[media.Item]
	Previous   mo.Option[media.Item]
	Tracks     []engine.Track

	ControlsVisible bool
	Width, Height   int
	Landscape       bool
}

// Session is one playback. Create it with New, then Initialize, Run and Dispose.
type Session struct {
	deps     Deps
	selector *track.Selector
	nav      *navigator.Navigator

	events chan event
	done   chan struct{}
	once   sync.Once
	async  sync.WaitGroup
	actx   context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	state        State
	gen          uint64
	handle       *engine.Handle
	playable     *media.Playable
	item         media.Item
	versionIndex int
	overrides    track.Overrides
	replacing    bool
	disposed     bool

	tracker *progress.Tracker
	markers *marker.Controller

	position  time.Duration
	duration  time.Duration
	playing   bool
	buffering bool
	tracks    []engine.Track
	adjacent  navigator.Adjacent
	prompt    bool
	controls  bool
	width     int
	height    int
	landscape bool

	prefs         media.SeriesLanguages
	prefsReady    bool
	tracksLoaded  bool
	tracksApplied bool
	expected      map[engine.TrackKind]int

	lastStatus time.Time
	outcome    mo.Option[Outcome]
}

func New(deps Deps) *Session {
	if deps.Chrome == nil {
		deps.Chrome = nopChrome{}
	}
	if deps.Bridge == nil {
		deps.Bridge = nowplaying.NewBridge(nowplaying.NewMemory())
	}

	var q navigator.Queue
	if deps.Queue != nil {
		q = deps.Queue
	}

	return &Session{
		deps:     deps,
		selector: track.NewSelector(deps.Service, deps.Config),
		nav:      navigator.New(deps.Service, q),
		events:   make(chan event, 64),
		done:     make(chan struct{}),
		gen:      1,
		expected: make(map[engine.TrackKind]int),
	}
}

// Initialize resolves item, opens the engine and starts the per-session components.
// A failed engine open is not retried.
func (s *Session) Initialize(ctx context.Context, item media.Item, versionIndex int, overrides track.Overrides) error {
	s.mu.Lock()
	if s.state != Uninitialized {
		s.mu.Unlock()
		return fmt.Errorf("initialize: session is %s", s.state)
	}
	s.state = Initializing
	s.mu.Unlock()

	logger := log.With(log.Fields{"item": item.ID, "version": versionIndex})

	playable, err := s.deps.Service.Resolve(ctx, item.ID, versionIndex)
	if err != nil {
		s.fail()
		logger.Errorf("resolve: %v", err)
		return &InitError{Kind: ErrResolution, Err: err}
	}

	resumed := playable.Item
	if item.ViewOffset > 0 {
		resumed = resumed.WithViewOffset(item.ViewOffset)
	}
	if item.ServerID != "" {
		resumed = resumed.WithServer(item.ServerID)
	}
	if resumed.PlayQueueItemID == 0 {
		resumed.PlayQueueItemID = item.PlayQueueItemID
	}

	start := resumeFrom(resumed)
	opts := engine.OptionsFrom(s.deps.Config, resumed.DisplayTitle(), start, playable.Headers)

	handle, err := engine.Open(ctx, s.deps.NewEngine(), playable.URL, opts)
	if err != nil {
		s.fail()
		logger.Errorf("open engine: %v", err)
		return &InitError{Kind: ErrEngine, Err: err}
	}

	eng := handle.Engine()
	if err := eng.SetChapters(engine.ChapterList(playable.Chapters, playable.Markers)); err != nil {
		logger.Warnf("chapters: %v", err)
	}

	tracker := progress.New(s.deps.Service, s.deps.Config)
	tracker.Start(resumed)

	opt := []marker.Option{}
	if s.deps.Scheduler != nil {
		opt = append(opt, marker.WithScheduler(s.deps.Scheduler))
	}

	s.mu.Lock()
	s.playable = playable
	s.item = resumed
	s.versionIndex = versionIndex
	s.overrides = overrides
	s.handle = handle
	s.tracker = tracker
	s.position = start
	s.duration = resumed.Duration
	s.markers = marker.New(playable.Markers, s.deps.Config, actions{s}, s.dispatchMarker, opt...)
	s.state = Ready
	gen := s.gen
	s.mu.Unlock()

	s.deps.Bridge.SetMetadata(resumed, s.artwork(resumed))
	s.deps.Bridge.SetControlsEnabled(false, false)

	if err := eng.Play(); err != nil {
		logger.Warnf("play: %v", err)
	}

	logger.Infof("session %d ready: %s from %s", gen, resumed, start)
	return nil
}

// resumeFrom starts from the view offset unless the item was practically finished.
func resumeFrom(item media.Item) time.Duration {
	if item.ViewOffset <= 0 {
		return 0
	}
	if item.Duration > 0 && item.ViewOffset >= item.Duration*95/100 {
		return 0
	}
	return item.ViewOffset
}

func (s *Session) fail() {
	s.mu.Lock()
	s.state = Failed
	s.mu.Unlock()
}

func (s *Session) artwork(item media.Item) string {
	if s.deps.Artwork == nil || item.Thumb == "" {
		return ""
	}
	return s.deps.Artwork(item.Thumb)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot returns the state a UI renders.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:           s.state,
		Item:            s.item,
		Position:        s.position,
		Duration:        s.duration,
		Playing:         s.playing,
		Buffering:       s.buffering,
		PromptNext:      s.prompt,
		Next:            s.adjacent.Next,
		Previous:        s.adjacent.Previous,
		Tracks:          append([]engine.Track(nil), s.tracks...),
		ControlsVisible: s.controls,
		Width:           s.width,
		Height:          s.height,
		Landscape:       s.landscape,
	}
	if s.markers != nil {
		snap.Marker = s.markers.Snapshot()
	}
	return snap
}

// Post hands a command to the control loop. It never blocks past teardown.
func (s *Session) Post(cmd Command) {
	s.post(event{payload: cmd})
}

// PrepareForNavigation tears down playback before a successor session is built: the
// final progress report is flushed after in-flight reports, then the engine is closed
// synchronously. The later Dispose leaves the chrome alone.
func (s *Session) PrepareForNavigation(ctx context.Context) error {
	s.mu.Lock()
	s.replacing = true
	s.mu.Unlock()

	return s.teardown(ctx)
}

// Dispose fully tears the session down. It is idempotent.
func (s *Session) Dispose(ctx context.Context) error {
	err := s.teardown(ctx)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return err
	}
	s.disposed = true
	s.state = Disposed
	replacing := s.replacing
	item, pos, version := s.item, s.position, s.versionIndex
	s.mu.Unlock()

	s.async.Wait()

	if s.deps.History != nil && item.ID != "" {
		s.deps.History(item, pos, version)
	}

	if !replacing {
		s.deps.Chrome.Restore()
		s.deps.Bridge.Forget()
	}

	return err
}

// teardown stops everything that touches the engine or the server. Repeated calls
// only wait for the first to finish.
func (s *Session) teardown(ctx context.Context) error {
	var err error

	s.once.Do(func() {
		s.mu.Lock()
		s.gen++
		if s.markers != nil {
			s.markers.Stop()
		}
		tracker, handle := s.tracker, s.handle
		s.handle = nil
		if s.state == Ready {
			s.state = Disposed
		}
		cancel := s.cancel
		s.mu.Unlock()

		close(s.done)
		if cancel != nil {
			cancel()
		}

		if tracker != nil {
			tracker.Stop(context.WithoutCancel(ctx))
		}
		err = handle.Dispose()
	})

	return err
}

func (s *Session) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

func (s *Session) generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *Session) dispatchMarker(g uint64) {
	s.post(event{gen: s.generation(), payload: markerFire(g)})
}

// actions exposes the loop's navigation to the marker controller. Its methods run on
// the control loop with s.mu held.
type actions struct{ s *Session }

func (a actions) SeekTo(pos time.Duration) { a.s.seekLocked(pos) }
func (a actions) HasNext() bool            { return a.s.adjacent.Next.IsPresent() }

func (a actions) PlayNext() bool {
	next, ok := a.s.adjacent.Next.Get()
	if !ok {
		return false
	}
	a.s.navigateLocked(next)
	return true
}
