package engine

import (
	"testing"
	"time"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/media"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBuildArgs(t *testing.T) {
	Convey("Given engine options", t, func() {
		opts := Options{
			Title:          "Show\n- S01E02",
			Headers:        map[string]string{"X-Plex-Token": "abc", "Accept": "a,b"},
			Start:          90 * time.Second,
			HardwareDecode: true,
			BufferSizeMiB:  150,
			AudioDelay:     250 * time.Millisecond,
			Subtitle:       config.SubtitleStyle{FontSize: 40, Color: "#FFFFFF", Position: 95},
		}

		Convey("When building mpv arguments", func() {
			args := buildArgs("/tmp/x.sock", "http://host/file.mkv", opts)

			Convey("Then every option is mapped onto a flag", func() {
				So(args, ShouldContain, "--input-ipc-server=/tmp/x.sock")
				So(args, ShouldContain, "--keep-open=yes")
				So(args, ShouldContain, "--force-media-title=Show - S01E02")
				So(args, ShouldContain, "--hwdec=auto-safe")
				So(args, ShouldContain, "--demuxer-max-bytes=150MiB")
				So(args, ShouldContain, "--audio-delay=0.250")
				So(args, ShouldContain, "--sub-font-size=40")
				So(args, ShouldContain, "--sub-color=#FFFFFF")
				So(args, ShouldContain, "--sub-pos=95")
				So(args, ShouldContain, "--start=90.000")
				So(args, ShouldContain, "--http-header-fields=Accept: a%2Cb,X-Plex-Token: abc")
			})

			Convey("Then the target follows the end of options marker", func() {
				So(args[len(args)-2], ShouldEqual, "--")
				So(args[len(args)-1], ShouldEqual, "http://host/file.mkv")
			})

			Convey("Then zero values are omitted", func() {
				So(args, ShouldNotContain, "--sub-delay=0.000")
				So(args, ShouldNotContain, "--sub-border-size=0")
			})
		})

		Convey("When hardware decoding is disabled", func() {
			opts.HardwareDecode = false
			So(buildArgs("s", "f", opts), ShouldContain, "--hwdec=no")
		})
	})
}

func TestSanitizeMediaTarget(t *testing.T) {
	Convey("Given media targets", t, func() {
		Convey("Then http urls pass through", func() {
			u, err := sanitizeMediaTarget(" https://host/a.mkv ")
			So(err, ShouldBeNil)
			So(u, ShouldEqual, "https://host/a.mkv")
		})

		Convey("Then flags and foreign schemes are rejected", func() {
			_, err := sanitizeMediaTarget("--script=evil.lua")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("file:///etc/passwd")
			So(err, ShouldNotBeNil)

			_, err = sanitizeMediaTarget("a\nb")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseTracks(t *testing.T) {
	Convey("Given an mpv track list", t, func() {
		data := []any{
			map[string]any{"id": 1.0, "type": "video", "codec": "h264"},
			map[string]any{"id": 1.0, "type": "audio", "lang": "jpn", "selected": true},
			map[string]any{"id": 2.0, "type": "audio", "lang": "eng", "title": "Commentary"},
			map[string]any{"id": 1.0, "type": "sub", "lang": "eng"},
			map[string]any{"id": 2.0, "type": "sub", "lang": "eng", "title": "Signs", "external": true},
		}

		Convey("When parsing", func() {
			tracks, err := parseTracks(data)
			So(err, ShouldBeNil)

			Convey("Then video is skipped", func() {
				So(tracks, ShouldHaveLength, 4)
			})

			Convey("Then audio is numbered from zero and subtitles from one", func() {
				So(tracks[0].Kind, ShouldEqual, TrackAudio)
				So(tracks[0].Index, ShouldEqual, 0)
				So(tracks[0].Selected, ShouldBeTrue)
				So(tracks[1].Index, ShouldEqual, 1)
				So(tracks[1].Title, ShouldEqual, "Commentary")
				So(tracks[2].Kind, ShouldEqual, TrackSubtitle)
				So(tracks[2].Index, ShouldEqual, 1)
				So(tracks[3].Index, ShouldEqual, 2)
				So(tracks[3].External, ShouldBeTrue)
			})
		})

		Convey("When the payload is malformed", func() {
			_, err := parseTracks("nope")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestChapterList(t *testing.T) {
	Convey("Given markers and no server chapters", t, func() {
		markers := []media.Marker{
			{Type: media.MarkerCredits, Start: 20 * time.Minute, End: 22 * time.Minute},
			{Type: media.MarkerIntro, Start: 30 * time.Second, End: 90 * time.Second},
		}

		Convey("Then marker chapters are generated in order", func() {
			list := ChapterList(nil, markers)
			titles := make([]string, len(list))
			for i, c := range list {
				titles[i] = c.Title
			}
			So(titles, ShouldResemble, []string{"Start", "Intro", "Episode", "Credits"})
		})

		Convey("Then server chapters win", func() {
			server := []media.Chapter{{Title: "Cold open"}}
			So(ChapterList(server, markers), ShouldResemble, server)
		})

		Convey("Then nothing yields nothing", func() {
			So(ChapterList(nil, nil), ShouldBeNil)
		})
	})
}

func TestListener(t *testing.T) {
	Convey("Given a listener", t, func() {
		var got []string
		l := newListener("", func(name string, _ any) { got = append(got, name) })

		Convey("Then property changes and plain events reach the callback", func() {
			l.process([]byte(`{"request_id":0,"error":"success"}`))
			l.process([]byte(`{"event":"property-change","id":1,"name":"time-pos","data":12.5}`))
			l.process([]byte(`{"event":"playback-restart"}`))
			l.process([]byte(`not json`))
			So(got, ShouldResemble, []string{"time-pos", "playback-restart"})
		})
	})
}

func TestHandleProperty(t *testing.T) {
	Convey("Given an mpv engine", t, func() {
		m := NewMPV("")

		Convey("When properties change", func() {
			m.handleProperty("time-pos", 12.5)
			m.handleProperty("pause", true)
			m.handleProperty("eof-reached", false)
			m.handleProperty("eof-reached", true)

			Convey("Then events are translated", func() {
				ev := <-m.Events()
				So(ev.Kind, ShouldEqual, EventPosition)
				So(ev.Position, ShouldEqual, 12500*time.Millisecond)
				So((<-m.Events()).Kind, ShouldEqual, EventPaused)
				So((<-m.Events()).Kind, ShouldEqual, EventEndOfFile)
			})
		})

		Convey("When closed without being opened", func() {
			So(m.Close(), ShouldBeNil)
			_, ok := <-m.Events()
			So(ok, ShouldBeFalse)
		})
	})
}
