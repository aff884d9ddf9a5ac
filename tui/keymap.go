package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/style"
)

// statefulKeymap holds every binding and exposes the ones that apply to the current state.
type statefulKeymap struct {
	state state

	quit, forceQuit, suspend,
	playPause,
	seekBack, seekForward, seekBackLarge, seekForwardLarge,
	skipMarker,
	next, previous,
	acceptNext, dismissNext,
	cycleAudio, cycleSubtitle,
	shuffle,
	toggleControls,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		suspend: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "suspend"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/resume"),
		),
		seekBack: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "back"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		seekBackLarge: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "back more"),
		),
		seekForwardLarge: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "forward more"),
		),
		skipMarker: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp(style.Fg(color.Orange)("s"), style.Fg(color.Orange)("skip")),
		),
		next: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		previous: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous"),
		),
		acceptNext: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(color.Orange)("enter"), style.Fg(color.Orange)("play next")),
		),
		dismissNext: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop here"),
		),
		cycleAudio: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "audio"),
		),
		cycleSubtitle: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "subtitles"),
		),
		shuffle: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "shuffle"),
		),
		toggleControls: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "controls"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	to2 := func(a []key.Binding) ([]key.Binding, []key.Binding) {
		return a, a
	}

	switch k.state {
	case loadingState:
		return to2(h(k.forceQuit))
	case playingState:
		return h(k.playPause, k.seekForward, k.skipMarker, k.next, k.showHelp, k.quit),
			h(k.playPause, k.seekBack, k.seekForward, k.seekBackLarge, k.seekForwardLarge,
				k.skipMarker, k.next, k.previous, k.cycleAudio, k.cycleSubtitle,
				k.shuffle, k.toggleControls, k.suspend, k.quit)
	case promptState:
		return to2(h(k.acceptNext, k.dismissNext, k.quit))
	case errorState:
		return to2(h(k.quit))
	default:
		return to2(h())
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}
