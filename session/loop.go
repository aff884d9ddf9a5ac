package session

import (
	"context"
	"fmt"
	"time"

	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/marker"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/navigator"
	"github.com/marquee-cli/marquee/nowplaying"
	"github.com/marquee-cli/marquee/queue"
	"github.com/marquee-cli/marquee/track"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	persistTimeout = 15 * time.Second
	statusInterval = time.Second
	restartWindow  = 3 * time.Second
)

// event is a tagged input of the control loop. A zero gen means "always current".
type event struct {
	gen     uint64
	payload any
}

type (
	markerFire     uint64
	adjacentResult navigator.Adjacent

	queueResult struct {
		state queue.State
		err   error
	}

	prefsResult struct {
		prefs media.SeriesLanguages
		err   error
	}

	persistResult struct {
		track  engine.Track
		result track.PersistResult
	}
)

// Run drives the session until it finishes, the user quits or playback moves to another
// item. Before a Navigate outcome is returned the engine has already been disposed.
func (s *Session) Run(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	if s.state != Ready || s.handle == nil {
		s.mu.Unlock()
		return Outcome{Kind: Quitted}, ErrNotReady
	}
	eng := s.handle.Engine()
	item, gen := s.item, s.gen
	actx, cancel := context.WithCancel(ctx)
	s.actx, s.cancel = actx, cancel
	if item.SeriesID() == "" {
		s.prefsReady = true
	}
	s.mu.Unlock()

	s.forward(eng.Events(), gen)
	s.resolve(actx, item, gen)

	// Surface commands are only consumed while this loop runs. Later ones stay queued
	// for the next session.
	commands := s.deps.Bridge.Commands()

	var runErr error
	for {
		var ev event

		select {
		case <-ctx.Done():
			s.mu.Lock()
			pos := s.position
			s.mu.Unlock()
			return Outcome{Kind: Quitted, Position: pos}, ctx.Err()

		case c, ok := <-commands:
			if !ok {
				commands = nil
				continue
			}
			ev = event{gen: gen, payload: c}

		case ev = <-s.events:
		}

		s.mu.Lock()
		err := s.apply(ev)
		out, done := s.outcome.Get()
		s.mu.Unlock()

		if err != nil {
			runErr = err
		}
		if !done {
			continue
		}

		if out.Kind == Navigate {
			if err := s.PrepareForNavigation(ctx); err != nil {
				log.Warnf("prepare for navigation: %v", err)
			}
		}
		return out, runErr
	}
}

func (s *Session) spawn(f func()) {
	s.async.Add(1)
	go func() {
		defer s.async.Done()
		f()
	}()
}

// forward feeds engine events into the loop until the engine closes.
func (s *Session) forward(events <-chan engine.Event, gen uint64) {
	s.spawn(func() {
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				s.post(event{gen: gen, payload: ev})
			case <-s.done:
				return
			}
		}
	})
}

// resolve ensures a play queue, then resolves neighbours, and fetches the series
// language preference in parallel.
func (s *Session) resolve(ctx context.Context, item media.Item, gen uint64) {
	s.spawn(func() {
		if s.deps.Queue != nil {
			state, err := s.deps.Queue.Ensure(ctx, item)
			s.post(event{gen: gen, payload: queueResult{state: state, err: err}})
		}
		s.post(event{gen: gen, payload: adjacentResult(s.nav.Resolve(ctx, item))})
	})

	if series := item.SeriesID(); series != "" {
		s.spawn(func() {
			prefs, err := s.deps.Service.SeriesLanguages(ctx, series)
			s.post(event{gen: gen, payload: prefsResult{prefs: prefs, err: err}})
		})
	}
}

// apply handles one event with s.mu held. Results from an older generation, or arriving
// after teardown began, are dropped.
func (s *Session) apply(ev event) error {
	if (ev.gen != 0 && ev.gen != s.gen) || s.disposed || s.replacing || s.handle == nil {
		log.Debugf("dropping stale %T (generation %d, current %d)", ev.payload, ev.gen, s.gen)
		return nil
	}

	switch p := ev.payload.(type) {
	case engine.Event:
		return s.onEngine(p)
	case Command:
		s.onCommand(p)
	case nowplaying.Command:
		s.onSurface(p)
	case markerFire:
		s.markers.Fire(uint64(p))
	case queueResult:
		if p.err != nil {
			log.Warnf("play queue: %v", p.err)
		} else {
			log.Debugf("play queue %s for %s", p.state, s.item)
		}
	case adjacentResult:
		s.adjacent = navigator.Adjacent(p)
		s.deps.Bridge.SetControlsEnabled(s.adjacent.Next.IsPresent(), s.adjacent.Previous.IsPresent())
	case prefsResult:
		if p.err != nil {
			log.Warnf("series preferences for %s: %v", s.item.SeriesID(), p.err)
		}
		s.prefs = p.prefs
		s.prefsReady = true
		s.applyTracks()
	case persistResult:
		if p.result.Err != nil {
			log.Warnf("%s track %d not remembered: %v", p.track.Kind, p.track.Index, p.result.Err)
		}
	}
	return nil
}

func (s *Session) eng() engine.Engine {
	return s.handle.Engine()
}

func (s *Session) onEngine(ev engine.Event) error {
	switch ev.Kind {
	case engine.EventPosition:
		s.position = ev.Position
		s.tracker.Update(ev.Position)
		if s.buffering {
			s.buffering = false
			s.tracker.OnStateChange(lo.Ternary(s.playing, media.StatePlaying, media.StatePaused))
		}
		if s.markers.Update(ev.Position) == marker.PhaseExpired {
			log.Debugf("marker passed without skipping at %s", ev.Position)
		}
		s.publish(false)
	case engine.EventDuration:
		s.duration = ev.Duration
	case engine.EventPaused:
		s.playing = false
		s.tracker.OnStateChange(media.StatePaused)
		s.publish(true)
	case engine.EventResumed:
		s.playing = true
		s.prompt = false
		s.tracker.OnStateChange(media.StatePlaying)
		s.publish(true)
	case engine.EventBuffering:
		s.buffering = true
		s.tracker.OnStateChange(media.StateBuffering)
	case engine.EventTracksLoaded:
		s.tracksLoaded = true
		s.refreshTracks()
		s.applyTracks()
	case engine.EventTrackSelected:
		s.onTrackSelected(ev.Track.Kind)
	case engine.EventEndOfFile:
		s.onEnd()
	case engine.EventExit:
		s.finish(Quitted)
	case engine.EventError:
		s.finish(Quitted)
		return fmt.Errorf("%w: %v", ErrEngine, ev.Err)
	}
	return nil
}

// onEnd offers the next item instead of advancing on its own.
func (s *Session) onEnd() {
	s.playing = false
	if s.adjacent.Next.IsPresent() {
		s.prompt = true
		s.tracker.OnStateChange(media.StatePaused)
		s.publish(true)
		return
	}
	s.finish(Finished)
}

func (s *Session) onCommand(c Command) {
	eng := s.eng()

	switch c.Kind {
	case CmdTogglePause:
		s.check("pause", lo.Ternary(s.playing, eng.Pause, eng.Play)())
	case CmdPlay:
		s.check("play", eng.Play())
	case CmdPause:
		s.check("pause", eng.Pause())
	case CmdSeek:
		s.markers.CancelCountdown()
		s.seekLocked(c.Position)
	case CmdSeekStep:
		step := lo.Ternary(c.Large, s.deps.Config.SeekLarge, s.deps.Config.SeekSmall)
		s.markers.CancelCountdown()
		s.seekLocked(s.position + lo.Ternary(c.Forward, step, -step))
	case CmdShowControls:
		s.controls = true
		s.markers.CancelCountdown()
	case CmdHideControls:
		s.controls = false
	case CmdSkipMarker:
		s.markers.PerformSkip()
	case CmdNext, CmdAcceptNext:
		if c.Kind == CmdAcceptNext && !s.prompt {
			return
		}
		if next, ok := s.adjacent.Next.Get(); ok {
			s.navigateLocked(next)
		}
	case CmdDismissNext:
		if s.prompt {
			s.finish(Finished)
		}
	case CmdPrevious:
		prev, ok := s.adjacent.Previous.Get()
		if !ok || s.position > restartWindow {
			s.seekLocked(0)
			return
		}
		s.navigateLocked(prev)
	case CmdSelectAudio:
		s.selectTrack(engine.TrackAudio, c.Index)
	case CmdSelectSubtitle:
		s.selectTrack(engine.TrackSubtitle, c.Index)
	case CmdCycleAudio, CmdCycleSubtitle:
		kind := lo.Ternary(c.Kind == CmdCycleAudio, engine.TrackAudio, engine.TrackSubtitle)
		if t, ok := track.Next(s.tracks, kind); ok {
			s.selectTrack(kind, t.Index)
		}
	case CmdLifecycle:
		s.onLifecycle(c.Lifecycle)
	case CmdResize:
		s.width, s.height = c.Width, c.Height
	case CmdRotate:
		if !s.deps.Config.RotationLock {
			s.landscape = c.Landscape
		}
	case CmdShuffle:
		s.shuffleLocked()
	case CmdQuit:
		s.finish(Quitted)
	}
}

// shuffleLocked reshuffles the active play queue and resolves neighbours again.
func (s *Session) shuffleLocked() {
	if s.deps.Queue == nil || s.actx == nil {
		return
	}

	ctx, item, gen := s.actx, s.item, s.gen
	s.spawn(func() {
		if _, err := s.deps.Queue.Shuffle(ctx); err != nil {
			s.post(event{gen: gen, payload: queueResult{err: err}})
			return
		}
		s.post(event{gen: gen, payload: adjacentResult(s.nav.Resolve(ctx, item))})
	})
}

func (s *Session) onSurface(c nowplaying.Command) {
	switch c.Kind {
	case nowplaying.CommandPlay:
		s.onCommand(Command{Kind: CmdPlay})
	case nowplaying.CommandPause:
		s.onCommand(Command{Kind: CmdPause})
	case nowplaying.CommandToggle:
		s.onCommand(TogglePause())
	case nowplaying.CommandSeek:
		s.onCommand(SeekTo(c.Position))
	case nowplaying.CommandNext:
		s.onCommand(Next())
	case nowplaying.CommandPrevious:
		s.onCommand(Previous())
	case nowplaying.CommandStop:
		s.onCommand(Quit())
	}
}

func (s *Session) onLifecycle(l nowplaying.Lifecycle) {
	switch l {
	case nowplaying.Background, nowplaying.Inactive:
		s.check("pause", s.eng().Pause())
	}
	s.deps.Bridge.OnLifecycle(l)
}

func (s *Session) seekLocked(pos time.Duration) {
	pos = max(pos, 0)
	if s.duration > 0 {
		pos = min(pos, s.duration)
	}

	if err := s.eng().Seek(pos); err != nil {
		log.Warnf("seek to %s: %v", pos, err)
		return
	}
	s.position = pos
	s.tracker.Update(pos)
	s.publish(true)
}

func (s *Session) navigateLocked(next media.Item) {
	overrides := s.overrides
	if s.tracksApplied {
		overrides = track.OverridesFrom(s.tracks)
	}
	s.outcome = mo.Some(Outcome{Kind: Navigate, Next: next, Overrides: overrides, Position: s.position})
}

func (s *Session) finish(kind OutcomeKind) {
	if s.outcome.IsPresent() {
		return
	}
	s.outcome = mo.Some(Outcome{Kind: kind, Position: s.position})
}

func (s *Session) publish(force bool) {
	if !force && time.Since(s.lastStatus) < statusInterval {
		return
	}
	s.lastStatus = time.Now()
	s.deps.Bridge.SetStatus(s.playing, s.position)
}

func (s *Session) check(what string, err error) {
	if err != nil {
		log.Warnf("%s: %v", what, err)
	}
}

func (s *Session) refreshTracks() {
	tracks, err := s.eng().Tracks()
	if err != nil {
		log.Warnf("tracks: %v", err)
		return
	}
	s.tracks = tracks
}

// selectedIndex is the engine index of the selected track, 0 for subtitles off.
func (s *Session) selectedIndex(kind engine.TrackKind) int {
	t, ok := lo.Find(s.tracks, func(t engine.Track) bool { return t.Kind == kind && t.Selected })
	if !ok {
		return lo.Ternary(kind == engine.TrackSubtitle, 0, -1)
	}
	return t.Index
}

// applyTracks runs once, when both the engine tracks and the series preference are known.
func (s *Session) applyTracks() {
	if !s.tracksLoaded || !s.prefsReady || s.tracksApplied {
		return
	}
	s.tracksApplied = true

	if _, err := s.selector.SelectAndApply(context.Background(), s.eng(), s.playable, s.prefs, s.overrides); err != nil {
		log.Warnf("apply track preferences: %v", err)
	}

	s.refreshTracks()
	s.expected[engine.TrackAudio] = s.selectedIndex(engine.TrackAudio)
	s.expected[engine.TrackSubtitle] = s.selectedIndex(engine.TrackSubtitle)
}

// onTrackSelected notices selections made inside the engine's own window.
func (s *Session) onTrackSelected(kind engine.TrackKind) {
	s.refreshTracks()
	if !s.tracksApplied {
		return
	}

	index := s.selectedIndex(kind)
	if index == s.expected[kind] || index < 0 {
		return
	}
	s.expected[kind] = index
	s.remember(kind, index)
}

func (s *Session) selectTrack(kind engine.TrackKind, index int) {
	eng := s.eng()
	err := lo.Ternary(kind == engine.TrackAudio, eng.SetAudioTrack, eng.SetSubtitleTrack)(index)
	if err != nil {
		log.Warnf("select %s track %d: %v", kind, index, err)
		return
	}

	s.refreshTracks()
	s.expected[kind] = index
	s.remember(kind, index)
}

// remember persists the choice in the background.
func (s *Session) remember(kind engine.TrackKind, index int) {
	t, ok := lo.Find(s.tracks, func(t engine.Track) bool { return t.Kind == kind && t.Index == index })
	if !ok {
		t = engine.Track{Kind: kind, Index: index}
	}

	choice := mo.Some(track.ChoiceOf(t))
	if kind == engine.TrackAudio {
		s.overrides.Audio = choice
	} else {
		s.overrides.Subtitle = choice
	}

	playable, gen := s.playable, s.gen
	s.spawn(func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		result := s.selector.OnTrackChanged(ctx, playable, t)
		s.post(event{gen: gen, payload: persistResult{track: t, result: result}})
	})
}
