package track

import (
	"context"
	"errors"

	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Source tells which rule produced a selection.
type Source int

const (
	SourceDefault Source = iota
	SourceSeries
	SourcePart
	SourceOverride
)

func (s Source) String() string {
	return [...]string{"default", "series", "part", "override"}[s]
}

// Decision is the outcome for one track kind.
type Decision struct {
	Track  mo.Option[engine.Track]
	Off    bool
	Source Source
}

// Applied reports what SelectAndApply did.
type Applied struct {
	Audio    Decision
	Subtitle Decision
}

// SelectAndApply picks audio and subtitle tracks and applies them to the engine.
//
// Precedence, highest first: an explicit override, the stream the server has selected
// for this part, the series language preference, the engine's own default.
func (s *Selector) SelectAndApply(
	ctx context.Context,
	eng engine.Engine,
	playable *media.Playable,
	prefs media.SeriesLanguages,
	overrides Overrides,
) (Applied, error) {
	tracks, err := eng.Tracks()
	if err != nil {
		return Applied{}, err
	}

	applied := Applied{
		Audio:    decide(tracks, engine.TrackAudio, playable, prefs.AudioLanguage, overrides.Audio),
		Subtitle: decide(tracks, engine.TrackSubtitle, playable, prefs.SubtitleLanguage, overrides.Subtitle),
	}

	var errs []error
	if t, ok := applied.Audio.Track.Get(); ok && !t.Selected {
		errs = append(errs, eng.SetAudioTrack(t.Index))
	}

	switch sub := applied.Subtitle; {
	case sub.Off:
		if _, on := selected(tracks, engine.TrackSubtitle); on {
			errs = append(errs, eng.SetSubtitleTrack(0))
		}
	case sub.Track.IsPresent():
		if t := sub.Track.MustGet(); !t.Selected {
			errs = append(errs, eng.SetSubtitleTrack(t.Index))
		}
	}

	log.With(log.Fields{"item": playable.Item.ID}).Debugf(
		"tracks applied: audio from %s, subtitle from %s", applied.Audio.Source, applied.Subtitle.Source,
	)
	return applied, errors.Join(errs...)
}

func decide(
	tracks []engine.Track,
	kind engine.TrackKind,
	playable *media.Playable,
	seriesLanguage string,
	override mo.Option[Choice],
) Decision {
	candidates := ofKind(tracks, kind)

	if choice, ok := override.Get(); ok {
		if choice.Off && kind == engine.TrackSubtitle {
			return Decision{Off: true, Source: SourceOverride}
		}
		if t, ok := matchChoice(candidates, choice); ok {
			return Decision{Track: mo.Some(t), Source: SourceOverride}
		}
	}

	if stream, ok := playable.Part.Selected(streamKind(kind)); ok {
		if t, ok := trackForStream(candidates, playable.Streams(streamKind(kind)), stream, kind); ok {
			return Decision{Track: mo.Some(t), Source: SourcePart}
		}
	}

	if seriesLanguage != "" {
		if t, ok := lo.Find(candidates, func(t engine.Track) bool {
			return sameLanguage(t.Language, seriesLanguage)
		}); ok {
			return Decision{Track: mo.Some(t), Source: SourceSeries}
		}
	}

	return Decision{Source: SourceDefault}
}

// matchChoice prefers language and title, then language alone.
func matchChoice(candidates []engine.Track, choice Choice) (engine.Track, bool) {
	if t, ok := lo.Find(candidates, func(t engine.Track) bool {
		return sameLanguage(t.Language, choice.Language) && t.Title == choice.Title
	}); ok {
		return t, true
	}

	return lo.Find(candidates, func(t engine.Track) bool {
		return sameLanguage(t.Language, choice.Language)
	})
}

// trackForStream locates the engine track for a server stream by its position among
// the part's streams of that kind.
func trackForStream(candidates []engine.Track, streams []media.Stream, stream media.Stream, kind engine.TrackKind) (engine.Track, bool) {
	_, position, ok := lo.FindIndexOf(streams, func(s media.Stream) bool { return s.ID == stream.ID })
	if !ok {
		return engine.Track{}, false
	}

	return lo.Find(candidates, func(t engine.Track) bool {
		return t.Index == position+offset(kind)
	})
}
