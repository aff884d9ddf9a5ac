// Package engine abstracts the native media decoder. The orchestration layer only ever
// talks to an Engine through a Handle, which enforces that at most one decoder is live.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/media"
)

var (
	ErrNotOpen     = errors.New("engine: not open")
	ErrNoSuchTrack = errors.New("engine: no such track")
)

// Engine is a native decoder/renderer. Implementations perform decoding on their own
// threads but are only commanded from the session's control loop.
type Engine interface {
	// Open starts playback of url. It returns once the engine accepts commands.
	Open(ctx context.Context, url string, opts Options) error
	Play() error
	Pause() error
	Seek(pos time.Duration) error
	// Tracks lists audio and subtitle tracks. See Track.Index for numbering.
	Tracks() ([]Track, error)
	SetAudioTrack(index int) error
	// SetSubtitleTrack selects a subtitle track; index 0 turns subtitles off.
	SetSubtitleTrack(index int) error
	SetChapters(chapters []media.Chapter) error
	// Events is closed after Close returns.
	Events() <-chan Event
	// Close stops the decoder and releases every resource. It is synchronous.
	Close() error
}

// Options is the configuration block the engine is opened with.
type Options struct {
	Title          string
	Headers        map[string]string
	Start          time.Duration
	HardwareDecode bool
	BufferSizeMiB  int
	AudioDelay     time.Duration
	SubtitleDelay  time.Duration
	Subtitle       config.SubtitleStyle
}

// OptionsFrom builds engine options from the session's playback snapshot.
func OptionsFrom(cfg config.PlaybackConfig, title string, start time.Duration, headers map[string]string) Options {
	return Options{
		Title:          title,
		Headers:        headers,
		Start:          start,
		HardwareDecode: cfg.HardwareDecode,
		BufferSizeMiB:  cfg.BufferSizeMiB,
		AudioDelay:     cfg.AudioDelay,
		SubtitleDelay:  cfg.SubtitleDelay,
		Subtitle:       cfg.Subtitle,
	}
}

// TrackKind separates audio from subtitle tracks.
type TrackKind int

const (
	TrackAudio TrackKind = iota + 1
	TrackSubtitle
)

func (k TrackKind) String() string {
	if k == TrackAudio {
		return "audio"
	}
	return "subtitle"
}

// Track is a native track.
//
// Index numbering is asymmetric: audio tracks are numbered from 0, while subtitle
// tracks are numbered from 1 because index 0 is reserved for "subtitles off".
type Track struct {
	Kind     TrackKind
	Index    int
	ID       int
	Language string
	Title    string
	Codec    string
	Selected bool
	Default  bool
	External bool
}

// Off reports whether the track is the reserved "no subtitles" slot.
func (t Track) Off() bool {
	return t.Kind == TrackSubtitle && t.Index == 0
}

// EventKind tags engine events.
type EventKind int

const (
	EventPosition EventKind = iota + 1
	EventDuration
	EventPaused
	EventResumed
	EventSeeked
	EventBuffering
	EventTracksLoaded
	EventTrackSelected
	EventEndOfFile
	EventExit
	EventError
)

// Event is a signal emitted by the engine.
type Event struct {
	Kind     EventKind
	Position time.Duration
	Duration time.Duration
	Track    Track
	Err      error
}
