package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/internal/ui"
	"github.com/marquee-cli/marquee/session"
)

const refreshInterval = 250 * time.Millisecond

// Player is the part of session.Player the view drives.
type Player interface {
	Post(cmd session.Command)
	Snapshot() (session.Snapshot, bool)
}

// statefulBubble is the playback controls view.
type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	spinnerC  spinner.Model
	progressC progress.Model
	helpC     help.Model
	notifier  *ui.Model

	player   Player
	snapshot session.Snapshot
	live     bool
	controls bool

	lastError error

	width, height int
}

func newBubble(player Player) *statefulBubble {
	keymap := newStatefulKeymap()

	b := &statefulBubble{
		keymap:   keymap,
		player:   player,
		notifier: &ui.Model{},
	}

	b.spinnerC = spinner.New()
	b.spinnerC.Spinner = spinner.Dot
	b.spinnerC.Style = b.spinnerC.Style.Foreground(color.Purple)

	b.progressC = progress.New(progress.WithSolidFill(string(color.Purple)), progress.WithoutPercentage())
	b.helpC = help.New()

	b.setState(loadingState)
	return b
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

// landscape treats a terminal cell as twice as tall as it is wide.
func landscape(width, height int) bool {
	return width >= 2*height
}

func (b *statefulBubble) resize(width, height int) {
	b.width, b.height = width, height
	b.helpC.Width = width
	b.progressC.Width = max(width-20, 10)
}
