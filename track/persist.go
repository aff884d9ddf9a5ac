package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/language"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"golang.org/x/sync/errgroup"
)

// Match tells how an engine track was correlated with a server stream.
type Match int

const (
	MatchNone Match = iota
	MatchExact
	MatchPositional
	MatchOff
)

func (m Match) String() string {
	return [...]string{"none", "exact", "positional", "off"}[m]
}

// PersistResult describes what OnTrackChanged wrote.
type PersistResult struct {
	Skipped bool
	Match   Match
	Stream  mo.Option[media.Stream]
	Err     error
}

// OnTrackChanged persists a user's track choice: the exact stream for the part and the
// language for the series. Both writes are attempted even when one fails. Nothing is
// written when remembering selections is disabled or the stream cannot be identified.
func (s *Selector) OnTrackChanged(ctx context.Context, playable *media.Playable, t engine.Track) PersistResult {
	if !s.remember {
		return PersistResult{Skipped: true}
	}

	logger := log.With(log.Fields{"item": playable.Item.ID, "kind": t.Kind.String(), "index": t.Index})

	if t.Off() {
		err := s.write(ctx, playable, media.PartSelection{PartID: playable.Part.ID, SubtitleOff: true}, media.SeriesLanguages{})
		if err != nil {
			logger.Warnf("%v", err)
		}
		return PersistResult{Match: MatchOff, Err: err}
	}

	stream, match := Resolve(playable.Streams(streamKind(t.Kind)), t)
	if match == MatchNone {
		logger.Infof("no server stream matches track %q (%s), nothing persisted", t.Title, t.Language)
		return PersistResult{Match: MatchNone}
	}

	sel := media.PartSelection{PartID: playable.Part.ID}
	var langs media.SeriesLanguages
	code := language.Normalize(lo.Ternary(stream.LanguageCode != "", stream.LanguageCode, t.Language))

	if t.Kind == engine.TrackAudio {
		sel.AudioStreamID = stream.ID
		langs.AudioLanguage = code
	} else {
		sel.SubtitleStreamID = stream.ID
		langs.SubtitleLanguage = code
	}

	err := s.write(ctx, playable, sel, langs)
	if err != nil {
		logger.Warnf("%v", err)
	}
	return PersistResult{Match: match, Stream: mo.Some(stream), Err: err}
}

// Resolve finds the server stream behind an engine track. An exact, unambiguous match
// on normalized language and title wins; otherwise the track's position is used,
// shifted by one for subtitles.
func Resolve(streams []media.Stream, t engine.Track) (media.Stream, Match) {
	exact := lo.Filter(streams, func(s media.Stream, _ int) bool {
		return language.Equal(s.LanguageCode, t.Language) && s.Title == t.Title
	})
	if len(exact) == 1 {
		return exact[0], MatchExact
	}

	position := t.Index - offset(t.Kind)
	if position < 0 || position >= len(streams) {
		return media.Stream{}, MatchNone
	}
	return streams[position], MatchPositional
}

func (s *Selector) write(ctx context.Context, playable *media.Playable, sel media.PartSelection, langs media.SeriesLanguages) error {
	var g errgroup.Group
	var partErr, seriesErr error
	seriesID := playable.Item.SeriesID()

	g.Go(func() error {
		if err := s.svc.SetPartStreams(ctx, sel); err != nil {
			partErr = fmt.Errorf("%w: part %d: %w", ErrPreferenceWrite, sel.PartID, err)
		}
		return nil
	})

	if seriesID != "" && langs != (media.SeriesLanguages{}) {
		g.Go(func() error {
			if err := s.svc.SetSeriesLanguages(ctx, seriesID, langs); err != nil {
				seriesErr = fmt.Errorf("%w: series %s: %w", ErrPreferenceWrite, seriesID, err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(partErr, seriesErr)
}
