// Package track reconciles the engine's audio and subtitle tracks with the streams the
// media server knows about, and persists the user's choices back to the server.
//
// Engine tracks and server streams are correlated by position when nothing better is
// available. The engine numbers audio tracks from 0 and subtitle tracks from 1, keeping
// 0 for "subtitles off"; the server lists neither an "off" entry nor any offset. So a
// subtitle at engine index n is the server's subtitle stream at position n-1, while an
// audio track at engine index n is the server's audio stream at position n. The offset
// applies to subtitles only and must stay that way.
package track

import (
	"context"
	"errors"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/language"
	"github.com/marquee-cli/marquee/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// ErrPreferenceWrite wraps failures while persisting a selection.
var ErrPreferenceWrite = errors.New("track preference write failed")

// Service persists preferences on the media server.
type Service interface {
	SetPartStreams(ctx context.Context, sel media.PartSelection) error
	SetSeriesLanguages(ctx context.Context, seriesID string, prefs media.SeriesLanguages) error
}

// Choice describes a track independently of any one file, so it can be carried from one
// episode to the next.
type Choice struct {
	Language string
	Title    string
	Off      bool
}

// ChoiceOf captures t as a Choice.
func ChoiceOf(t engine.Track) Choice {
	if t.Off() {
		return Choice{Off: true}
	}
	return Choice{Language: t.Language, Title: t.Title}
}

// Overrides are explicit choices for one playback. They beat every persisted preference.
type Overrides struct {
	Audio    mo.Option[Choice]
	Subtitle mo.Option[Choice]
}

// OverridesFrom builds overrides from the currently selected engine tracks. A missing
// subtitle selection is carried as "off".
func OverridesFrom(tracks []engine.Track) Overrides {
	var o Overrides

	if a, ok := selected(tracks, engine.TrackAudio); ok {
		o.Audio = mo.Some(ChoiceOf(a))
	}

	if s, ok := selected(tracks, engine.TrackSubtitle); ok {
		o.Subtitle = mo.Some(ChoiceOf(s))
	} else if len(ofKind(tracks, engine.TrackSubtitle)) > 0 {
		o.Subtitle = mo.Some(Choice{Off: true})
	}
	return o
}

// Selector applies and persists track preferences for one session.
type Selector struct {
	svc      Service
	remember bool
}

func NewSelector(svc Service, cfg config.PlaybackConfig) *Selector {
	return &Selector{svc: svc, remember: cfg.RememberTracks}
}

func ofKind(tracks []engine.Track, kind engine.TrackKind) []engine.Track {
	return lo.Filter(tracks, func(t engine.Track, _ int) bool { return t.Kind == kind })
}

func selected(tracks []engine.Track, kind engine.TrackKind) (engine.Track, bool) {
	return lo.Find(tracks, func(t engine.Track) bool { return t.Kind == kind && t.Selected })
}

func streamKind(kind engine.TrackKind) media.StreamKind {
	if kind == engine.TrackAudio {
		return media.StreamAudio
	}
	return media.StreamSubtitle
}

// offset is the difference between an engine index and a server stream position.
func offset(kind engine.TrackKind) int {
	if kind == engine.TrackSubtitle {
		return 1
	}
	return 0
}

// Next returns the track after the selected one, wrapping around. Subtitle cycling
// passes through "off".
func Next(tracks []engine.Track, kind engine.TrackKind) (engine.Track, bool) {
	list := ofKind(tracks, kind)
	if kind == engine.TrackSubtitle {
		list = append([]engine.Track{{Kind: engine.TrackSubtitle, Index: 0}}, list...)
	}
	if len(list) == 0 {
		return engine.Track{}, false
	}

	current := 0
	for i, t := range list {
		if t.Selected {
			current = i
		}
	}
	return list[(current+1)%len(list)], true
}

func sameLanguage(a, b string) bool {
	return a != "" && language.Equal(a, b)
}
