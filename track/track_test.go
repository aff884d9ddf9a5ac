package track

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/engine/enginetest"
	"github.com/marquee-cli/marquee/media"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeService struct {
	mu        sync.Mutex
	parts     []media.PartSelection
	series    []media.SeriesLanguages
	partErr   error
	seriesErr error
}

func (f *fakeService) SetPartStreams(_ context.Context, sel media.PartSelection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.parts = append(f.parts, sel)
	return f.partErr
}

func (f *fakeService) SetSeriesLanguages(_ context.Context, _ string, prefs media.SeriesLanguages) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.series = append(f.series, prefs)
	return f.seriesErr
}

func engineTracks() []engine.Track {
	return []engine.Track{
		{Kind: engine.TrackAudio, Index: 0, ID: 1, Language: "ja", Selected: true},
		{Kind: engine.TrackAudio, Index: 1, ID: 2, Language: "en", Title: "Dub"},
		{Kind: engine.TrackSubtitle, Index: 1, ID: 1, Language: "en", Title: "Signs"},
		{Kind: engine.TrackSubtitle, Index: 2, ID: 2, Language: "en", Title: "Full"},
		{Kind: engine.TrackSubtitle, Index: 3, ID: 3, Language: "de"},
	}
}

func playable() *media.Playable {
	return &media.Playable{
		Item: media.Item{ID: "105", Kind: media.KindEpisode, GrandparentID: "1"},
		Part: media.Part{ID: 70, Streams: []media.Stream{
			{ID: 701, Kind: media.StreamAudio, LanguageCode: "jpn"},
			{ID: 702, Kind: media.StreamAudio, LanguageCode: "eng", Title: "Dub"},
			{ID: 711, Kind: media.StreamSubtitle, LanguageCode: "eng", Title: "Signs & Songs"},
			{ID: 712, Kind: media.StreamSubtitle, LanguageCode: "eng", Title: "Full Subtitles"},
			{ID: 713, Kind: media.StreamSubtitle, LanguageCode: "ger"},
		}},
	}
}

// persistInto marks streams selected the way the server would after a part write.
func persistInto(p *media.Playable, sel media.PartSelection) {
	for i := range p.Part.Streams {
		s := &p.Part.Streams[i]
		switch s.Kind {
		case media.StreamAudio:
			if sel.AudioStreamID != 0 {
				s.Selected = s.ID == sel.AudioStreamID
			}
		case media.StreamSubtitle:
			if sel.SubtitleStreamID != 0 || sel.SubtitleOff {
				s.Selected = s.ID == sel.SubtitleStreamID
			}
		}
	}
}

func TestResolve(t *testing.T) {
	Convey("Given the server subtitle streams", t, func() {
		subs := playable().Streams(media.StreamSubtitle)

		Convey("When the engine subtitle at index 2 has no exact match", func() {
			stream, match := Resolve(subs, engine.Track{Kind: engine.TrackSubtitle, Index: 2, Language: "en", Title: "Full"})

			Convey("Then the stream at position 1 is used", func() {
				So(match, ShouldEqual, MatchPositional)
				So(stream.ID, ShouldEqual, 712)
			})
		})

		Convey("When language and title match exactly once", func() {
			stream, match := Resolve(subs, engine.Track{Kind: engine.TrackSubtitle, Index: 1, Language: "de"})
			So(match, ShouldEqual, MatchExact)
			So(stream.ID, ShouldEqual, 713)
		})

		Convey("When the exact match is ambiguous", func() {
			dup := append(subs, media.Stream{ID: 714, Kind: media.StreamSubtitle, LanguageCode: "deu"})
			stream, match := Resolve(dup, engine.Track{Kind: engine.TrackSubtitle, Index: 4, Language: "de"})

			Convey("Then the position decides", func() {
				So(match, ShouldEqual, MatchPositional)
				So(stream.ID, ShouldEqual, 714)
			})
		})

		Convey("When the position is out of range", func() {
			_, match := Resolve(subs, engine.Track{Kind: engine.TrackSubtitle, Index: 9, Language: "fr"})
			So(match, ShouldEqual, MatchNone)
		})
	})

	Convey("Given the server audio streams", t, func() {
		audio := playable().Streams(media.StreamAudio)

		Convey("Then audio positions carry no offset", func() {
			stream, match := Resolve(audio, engine.Track{Kind: engine.TrackAudio, Index: 1, Language: "fr"})
			So(match, ShouldEqual, MatchPositional)
			So(stream.ID, ShouldEqual, 702)
		})
	})
}

func TestOnTrackChanged(t *testing.T) {
	Convey("Given a selector that remembers selections", t, func() {
		ctx := context.Background()
		svc := &fakeService{}
		sel := NewSelector(svc, config.PlaybackConfig{RememberTracks: true})
		p := playable()

		Convey("When a subtitle is chosen", func() {
			res := sel.OnTrackChanged(ctx, p, engine.Track{Kind: engine.TrackSubtitle, Index: 2, Language: "en", Title: "Full"})

			Convey("Then the part and series are both written", func() {
				So(res.Err, ShouldBeNil)
				So(res.Stream.MustGet().ID, ShouldEqual, 712)
				So(svc.parts, ShouldResemble, []media.PartSelection{{PartID: 70, SubtitleStreamID: 712}})
				So(svc.series, ShouldResemble, []media.SeriesLanguages{{SubtitleLanguage: "eng"}})
			})
		})

		Convey("When one write fails", func() {
			svc.partErr = errors.New("boom")
			res := sel.OnTrackChanged(ctx, p, engine.Track{Kind: engine.TrackAudio, Index: 1, Language: "en", Title: "Dub"})

			Convey("Then the other write is still attempted", func() {
				So(errors.Is(res.Err, ErrPreferenceWrite), ShouldBeTrue)
				So(svc.parts, ShouldHaveLength, 1)
				So(svc.series, ShouldResemble, []media.SeriesLanguages{{AudioLanguage: "eng"}})
			})
		})

		Convey("When both writes fail", func() {
			svc.partErr = errors.New("part")
			svc.seriesErr = errors.New("series")
			res := sel.OnTrackChanged(ctx, p, engine.Track{Kind: engine.TrackAudio, Index: 0, Language: "ja"})
			So(res.Err.Error(), ShouldContainSubstring, "part")
			So(res.Err.Error(), ShouldContainSubstring, "series")
		})

		Convey("When subtitles are turned off", func() {
			res := sel.OnTrackChanged(ctx, p, engine.Track{Kind: engine.TrackSubtitle, Index: 0})
			So(res.Match, ShouldEqual, MatchOff)
			So(svc.parts, ShouldResemble, []media.PartSelection{{PartID: 70, SubtitleOff: true}})
			So(svc.series, ShouldBeEmpty)
		})

		Convey("When nothing can be matched", func() {
			res := sel.OnTrackChanged(ctx, p, engine.Track{Kind: engine.TrackSubtitle, Index: 7, Language: "fr"})
			So(res.Match, ShouldEqual, MatchNone)
			So(res.Err, ShouldBeNil)
			So(svc.parts, ShouldBeEmpty)
		})
	})

	Convey("Given a selector that forgets selections", t, func() {
		svc := &fakeService{}
		sel := NewSelector(svc, config.PlaybackConfig{RememberTracks: false})

		res := sel.OnTrackChanged(context.Background(), playable(), engine.Track{Kind: engine.TrackAudio, Index: 1})
		So(res.Skipped, ShouldBeTrue)
		So(svc.parts, ShouldBeEmpty)
		So(svc.series, ShouldBeEmpty)
	})
}

func TestSelectAndApply(t *testing.T) {
	Convey("Given an engine with loaded tracks", t, func() {
		ctx := context.Background()
		svc := &fakeService{}
		sel := NewSelector(svc, config.PlaybackConfig{RememberTracks: true})
		p := playable()

		Convey("When only a series language exists", func() {
			fake := enginetest.New(engineTracks()...)
			applied, err := sel.SelectAndApply(ctx, fake, p, media.SeriesLanguages{AudioLanguage: "eng", SubtitleLanguage: "ger"}, Overrides{})
			So(err, ShouldBeNil)

			Convey("Then the series language is applied", func() {
				So(applied.Audio.Source, ShouldEqual, SourceSeries)
				_, audio, subtitle := fake.Snapshot()
				So(audio, ShouldResemble, []int{1})
				So(subtitle, ShouldResemble, []int{3})
			})
		})

		Convey("When the part has a selected stream and an override exists", func() {
			persistInto(p, media.PartSelection{SubtitleStreamID: 711})
			fake := enginetest.New(engineTracks()...)
			overrides := Overrides{Subtitle: mo.Some(Choice{Language: "eng", Title: "Full"})}

			applied, err := sel.SelectAndApply(ctx, fake, p, media.SeriesLanguages{}, overrides)
			So(err, ShouldBeNil)

			Convey("Then the override wins", func() {
				So(applied.Subtitle.Source, ShouldEqual, SourceOverride)
				_, _, subtitle := fake.Snapshot()
				So(subtitle, ShouldResemble, []int{2})
			})
		})

		Convey("When the part has a selected stream and no override", func() {
			persistInto(p, media.PartSelection{SubtitleStreamID: 711})
			fake := enginetest.New(engineTracks()...)

			applied, err := sel.SelectAndApply(ctx, fake, p, media.SeriesLanguages{SubtitleLanguage: "ger"}, Overrides{})
			So(err, ShouldBeNil)

			Convey("Then the part selection beats the series language", func() {
				So(applied.Subtitle.Source, ShouldEqual, SourcePart)
				_, _, subtitle := fake.Snapshot()
				So(subtitle, ShouldResemble, []int{1})
			})
		})

		Convey("When a selection is persisted and the item reopened", func() {
			chosen := engine.Track{Kind: engine.TrackSubtitle, Index: 3, Language: "de"}
			res := sel.OnTrackChanged(ctx, p, chosen)
			So(res.Err, ShouldBeNil)
			persistInto(p, svc.parts[0])

			fake := enginetest.New(engineTracks()...)
			_, err := sel.SelectAndApply(ctx, fake, p, media.SeriesLanguages{}, Overrides{})
			So(err, ShouldBeNil)

			Convey("Then the same track is selected again", func() {
				_, _, subtitle := fake.Snapshot()
				So(subtitle, ShouldResemble, []int{3})
			})
		})

		Convey("When the override turns subtitles off", func() {
			tracks := engineTracks()
			tracks[2].Selected = true
			fake := enginetest.New(tracks...)

			applied, err := sel.SelectAndApply(ctx, fake, p, media.SeriesLanguages{}, Overrides{Subtitle: mo.Some(Choice{Off: true})})
			So(err, ShouldBeNil)
			So(applied.Subtitle.Off, ShouldBeTrue)
			_, _, subtitle := fake.Snapshot()
			So(subtitle, ShouldResemble, []int{0})
		})

		Convey("When the engine cannot list tracks", func() {
			fake := enginetest.New()
			fake.TracksErr = errors.New("not ready")
			_, err := sel.SelectAndApply(ctx, fake, p, media.SeriesLanguages{}, Overrides{})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestOverrides(t *testing.T) {
	Convey("Given selected engine tracks", t, func() {
		tracks := engineTracks()

		Convey("Then overrides capture audio and treat no subtitle as off", func() {
			o := OverridesFrom(tracks)
			So(o.Audio.MustGet(), ShouldResemble, Choice{Language: "ja"})
			So(o.Subtitle.MustGet().Off, ShouldBeTrue)
		})

		Convey("Then cycling subtitles passes through off", func() {
			next, ok := Next(tracks, engine.TrackSubtitle)
			So(ok, ShouldBeTrue)
			So(next.Index, ShouldEqual, 1)

			tracks[4].Selected = true
			next, _ = Next(tracks, engine.TrackSubtitle)
			So(next.Off(), ShouldBeTrue)
		})

		Convey("Then cycling audio wraps", func() {
			next, _ := Next(tracks, engine.TrackAudio)
			So(next.Index, ShouldEqual, 1)
		})
	})
}
