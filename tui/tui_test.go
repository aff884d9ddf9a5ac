package tui

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/marker"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/nowplaying"
	"github.com/marquee-cli/marquee/session"
	"github.com/samber/mo"
	. "github.com/smartystreets/goconvey/convey"
)

type fakePlayer struct {
	mu       sync.Mutex
	posted   []session.Command
	snapshot mo.Option[session.Snapshot]
}

func (f *fakePlayer) Post(c session.Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posted = append(f.posted, c)
}

func (f *fakePlayer) Snapshot() (session.Snapshot, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot.Get()
}

func (f *fakePlayer) kinds() []session.CommandKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []session.CommandKind
	for _, c := range f.posted {
		out = append(out, c.Kind)
	}
	return out
}

func ready() session.Snapshot {
	return session.Snapshot{
		State: session.Ready,
		Item: media.Item{
			ID:               "205",
			Kind:             media.KindEpisode,
			Title:            "The Long Night",
			GrandparentTitle: "Show",
			SeasonNumber:     2,
			EpisodeNumber:    5,
		},
		Position: 5 * time.Minute,
		Duration: 20 * time.Minute,
		Playing:  true,
		Next:     mo.Some(media.Item{ID: "206", Kind: media.KindEpisode, GrandparentTitle: "Show"}),
		Tracks: []engine.Track{
			{Kind: engine.TrackAudio, Index: 0, Language: "ja", Selected: true},
			{Kind: engine.TrackSubtitle, Index: 1, Language: "en", Title: "Full", Selected: true},
		},
	}
}

func press(b *statefulBubble, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		msg = tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+z":
		msg = tea.KeyMsg{Type: tea.KeyCtrlZ}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	return b.handleKey(msg)
}

func TestBubble(t *testing.T) {
	Convey("Given the controls view", t, func() {
		player := &fakePlayer{}
		b := newBubble(player)
		b.resize(80, 24)

		Convey("When no session is running", func() {
			b.refresh()

			Convey("Then it shows the loading screen and ignores playback keys", func() {
				So(b.state, ShouldEqual, loadingState)
				So(b.View(), ShouldContainSubstring, "Loading")
				press(b, " ")
				So(player.kinds(), ShouldBeEmpty)
			})
		})

		Convey("When a session is playing", func() {
			player.snapshot = mo.Some(ready())
			b.refresh()

			Convey("Then it shows the item and its progress", func() {
				So(b.state, ShouldEqual, playingState)
				view := b.View()
				So(view, ShouldContainSubstring, "Show")
				So(view, ShouldContainSubstring, "S02E05")
				So(view, ShouldContainSubstring, "5:00 / 20:00")
			})

			Convey("Then keys become session commands", func() {
				for _, k := range []string{" ", "l", "j", "s", "n", "p", "a", "c", "r", "q"} {
					press(b, k)
				}
				So(player.kinds(), ShouldResemble, []session.CommandKind{
					session.CmdTogglePause,
					session.CmdSeekStep,
					session.CmdSeekStep,
					session.CmdSkipMarker,
					session.CmdNext,
					session.CmdPrevious,
					session.CmdCycleAudio,
					session.CmdCycleSubtitle,
					session.CmdShuffle,
					session.CmdQuit,
				})
			})

			Convey("Then tab toggles the track details", func() {
				press(b, "tab")
				So(b.View(), ShouldContainSubstring, "Subtitles: en (Full)")
				press(b, "tab")
				So(player.kinds(), ShouldResemble, []session.CommandKind{session.CmdShowControls, session.CmdHideControls})
			})

			Convey("Then a subtitle change is announced", func() {
				snap := ready()
				snap.Tracks[1].Selected = false
				player.snapshot = mo.Some(snap)
				So(b.refresh(), ShouldNotBeNil)
			})

			Convey("Then ctrl+z suspends after backgrounding the session", func() {
				So(press(b, "ctrl+z"), ShouldNotBeNil)
				So(player.posted[0], ShouldResemble, session.Lifecycle(nowplaying.Background))
			})
		})

		Convey("When an intro is counting down", func() {
			snap := ready()
			snap.Marker = marker.Snapshot{
				Phase:    marker.PhaseActive,
				Marker:   mo.Some(media.Marker{Type: media.MarkerIntro, Start: time.Minute, End: 2 * time.Minute}),
				Counting: true,
				Deadline: time.Now().Add(3 * time.Second),
			}
			player.snapshot = mo.Some(snap)
			b.refresh()

			Convey("Then the skip hint is visible", func() {
				So(b.View(), ShouldContainSubstring, "Skip Intro")
			})
		})

		Convey("When the episode ended with a next one resolved", func() {
			snap := ready()
			snap.PromptNext = true
			player.snapshot = mo.Some(snap)
			b.refresh()

			Convey("Then enter plays it and other playback keys are ignored", func() {
				So(b.state, ShouldEqual, promptState)
				So(b.View(), ShouldContainSubstring, "Up next")
				press(b, " ")
				press(b, "enter")
				So(player.kinds(), ShouldResemble, []session.CommandKind{session.CmdAcceptNext})
			})
		})

		Convey("When the terminal is resized", func() {
			b.Update(tea.WindowSizeMsg{Width: 40, Height: 30})
			b.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

			Convey("Then the size and orientation reach the session", func() {
				So(player.posted, ShouldResemble, []session.Command{
					session.Resize(40, 30),
					session.Rotate(false),
					session.Resize(120, 30),
					session.Rotate(true),
				})
			})
		})

		Convey("When playback fails", func() {
			_, cmd := b.Update(playbackDoneMsg{err: errors.New("engine exploded")})

			Convey("Then the error stays on screen until quit", func() {
				So(cmd, ShouldBeNil)
				So(b.state, ShouldEqual, errorState)
				So(strings.Contains(b.View(), "engine exploded"), ShouldBeTrue)
				So(press(b, "q"), ShouldNotBeNil)
			})
		})

		Convey("When playback ends normally", func() {
			_, cmd := b.Update(playbackDoneMsg{})

			Convey("Then the program quits", func() {
				So(cmd, ShouldNotBeNil)
				So(cmd(), ShouldResemble, tea.Quit())
			})
		})
	})
}

func TestKeymap(t *testing.T) {
	Convey("Given the keymap", t, func() {
		k := newStatefulKeymap()

		Convey("Then the prompt only offers the prompt actions", func() {
			k.setState(promptState)
			So(k.ShortHelp(), ShouldHaveLength, 3)
		})

		Convey("Then the full help while playing lists every control", func() {
			k.setState(playingState)
			So(len(k.FullHelp()[0]), ShouldBeGreaterThan, len(k.ShortHelp()))
		})
	})
}
