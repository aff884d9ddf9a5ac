// Package enginetest provides an in-memory Engine for tests.
package enginetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/media"
)

// Fake records every command it receives. Tests drive it with Emit.
type Fake struct {
	mu sync.Mutex

	OpenErr   error
	TracksErr error
	AudioErr  error

	URL      string
	Options  engine.Options
	Opened   bool
	Closed   bool
	Paused   bool
	Seeks    []time.Duration
	Chapters []media.Chapter
	Audio    []int
	Subtitle []int

	// LiveAtOpen is the number of live handles observed when Open was called.
	LiveAtOpen int

	tracks []engine.Track
	events chan engine.Event
	once   sync.Once
}

func New(tracks ...engine.Track) *Fake {
	return &Fake{
		tracks: tracks,
		events: make(chan engine.Event, 64),
		Paused: true,
	}
}

func (f *Fake) Open(_ context.Context, url string, opts engine.Options) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.LiveAtOpen = engine.LiveHandles()
	if f.OpenErr != nil {
		return f.OpenErr
	}
	f.URL, f.Options, f.Opened = url, opts, true
	return nil
}

func (f *Fake) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paused = false
	return nil
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paused = true
	return nil
}

func (f *Fake) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Seeks = append(f.Seeks, pos)
	return nil
}

func (f *Fake) Tracks() ([]engine.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TracksErr != nil {
		return nil, f.TracksErr
	}
	return append([]engine.Track(nil), f.tracks...), nil
}

func (f *Fake) SetAudioTrack(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AudioErr != nil {
		return f.AudioErr
	}
	if !f.selectLocked(engine.TrackAudio, index) {
		return fmt.Errorf("%w: audio #%d", engine.ErrNoSuchTrack, index)
	}
	f.Audio = append(f.Audio, index)
	return nil
}

func (f *Fake) SetSubtitleTrack(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index != 0 && !f.selectLocked(engine.TrackSubtitle, index) {
		return fmt.Errorf("%w: subtitle #%d", engine.ErrNoSuchTrack, index)
	}
	if index == 0 {
		f.selectLocked(engine.TrackSubtitle, 0)
	}
	f.Subtitle = append(f.Subtitle, index)
	return nil
}

func (f *Fake) selectLocked(kind engine.TrackKind, index int) bool {
	found := false
	for i := range f.tracks {
		if f.tracks[i].Kind != kind {
			continue
		}
		f.tracks[i].Selected = f.tracks[i].Index == index
		found = found || f.tracks[i].Selected
	}
	return found
}

func (f *Fake) SetChapters(chapters []media.Chapter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Chapters = chapters
	return nil
}

func (f *Fake) Events() <-chan engine.Event {
	return f.events
}

func (f *Fake) Close() error {
	f.once.Do(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.Closed = true
		close(f.events)
	})
	return nil
}

// Emit pushes an event as if the decoder produced it. Events after Close are dropped.
func (f *Fake) Emit(ev engine.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Closed {
		f.events <- ev
	}
}

// Snapshot returns the recorded seeks and track selections under the lock.
func (f *Fake) Snapshot() (seeks []time.Duration, audio, subtitle []int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.Seeks...), append([]int(nil), f.Audio...), append([]int(nil), f.Subtitle...)
}

// IsClosed reports whether Close was called.
func (f *Fake) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Closed
}

// IsPaused reports the fake's pause state.
func (f *Fake) IsPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Paused
}
