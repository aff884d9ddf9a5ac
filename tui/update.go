package tui

import (
	"fmt"
	"time"

	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/internal/ui"
	"github.com/marquee-cli/marquee/nowplaying"
	"github.com/marquee-cli/marquee/session"
)

type playbackDoneMsg struct {
	err error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, tick(), tea.SetWindowTitle(constant.Marquee))
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := b.notifier.Update(msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		b.player.Post(session.Resize(msg.Width, msg.Height))
		b.player.Post(session.Rotate(landscape(msg.Width, msg.Height)))
	case tea.FocusMsg, tea.ResumeMsg:
		b.player.Post(session.Lifecycle(nowplaying.Resumed))
	case tea.BlurMsg:
		b.player.Post(session.Lifecycle(nowplaying.Inactive))
	case playbackDoneMsg:
		if msg.err != nil {
			b.raiseError(msg.err)
			return b, cmd
		}
		return b, tea.Quit
	case tickMsg:
		return b, tea.Batch(cmd, b.refresh(), tick())
	case spinner.TickMsg:
		var c tea.Cmd
		b.spinnerC, c = b.spinnerC.Update(msg)
		return b, tea.Batch(cmd, c)
	case progress.FrameMsg:
		model, c := b.progressC.Update(msg)
		b.progressC = model.(progress.Model)
		return b, tea.Batch(cmd, c)
	case tea.KeyMsg:
		return b, tea.Batch(cmd, b.handleKey(msg))
	}

	return b, cmd
}

// refresh pulls the session snapshot and derives the view state from it.
func (b *statefulBubble) refresh() tea.Cmd {
	if b.state == errorState {
		return nil
	}

	snap, ok := b.player.Snapshot()
	if !ok || snap.State != session.Ready {
		b.live = false
		b.setState(loadingState)
		return nil
	}

	previous := b.snapshot
	b.snapshot, b.live = snap, true

	if snap.PromptNext {
		b.setState(promptState)
	} else {
		b.setState(playingState)
	}

	var cmds []tea.Cmd
	if previous.Item.ID != snap.Item.ID {
		cmds = append(cmds, tea.SetWindowTitle(snap.Item.DisplayTitle()))
	} else {
		if label, changed := trackChange(previous.Tracks, snap.Tracks, engine.TrackAudio); changed {
			cmds = append(cmds, ui.Notify("Audio: "+label))
		}
		if label, changed := trackChange(previous.Tracks, snap.Tracks, engine.TrackSubtitle); changed {
			cmds = append(cmds, ui.Notify("Subtitles: "+label))
		}
	}
	return tea.Batch(cmds...)
}

func trackChange(before, after []engine.Track, kind engine.TrackKind) (string, bool) {
	if len(before) == 0 {
		return "", false
	}
	was, now := trackLabel(before, kind), trackLabel(after, kind)
	return now, was != now
}

func trackLabel(tracks []engine.Track, kind engine.TrackKind) string {
	for _, t := range tracks {
		if t.Kind != kind || !t.Selected {
			continue
		}
		switch {
		case t.Language != "" && t.Title != "":
			return fmt.Sprintf("%s (%s)", t.Language, t.Title)
		case t.Language != "":
			return t.Language
		case t.Title != "":
			return t.Title
		default:
			return fmt.Sprintf("#%d", t.Index)
		}
	}
	if kind == engine.TrackSubtitle {
		return "off"
	}
	return "none"
}

func (b *statefulBubble) handleKey(msg tea.KeyMsg) tea.Cmd {
	post := func(c session.Command) tea.Cmd {
		b.player.Post(c)
		return nil
	}

	switch {
	case bubblesKey.Matches(msg, b.keymap.forceQuit):
		b.player.Post(session.Quit())
		return tea.Quit
	case b.state == errorState:
		if bubblesKey.Matches(msg, b.keymap.quit) {
			return tea.Quit
		}
		return nil
	case bubblesKey.Matches(msg, b.keymap.quit):
		return post(session.Quit())
	case bubblesKey.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
		return nil
	case !b.live:
		return nil
	case bubblesKey.Matches(msg, b.keymap.suspend):
		b.player.Post(session.Lifecycle(nowplaying.Background))
		return tea.Suspend
	}

	if b.state == promptState {
		switch {
		case bubblesKey.Matches(msg, b.keymap.acceptNext):
			return post(session.AcceptNext())
		case bubblesKey.Matches(msg, b.keymap.dismissNext):
			return post(session.DismissNext())
		}
		return nil
	}

	switch {
	case bubblesKey.Matches(msg, b.keymap.playPause):
		return post(session.TogglePause())
	case bubblesKey.Matches(msg, b.keymap.seekBack):
		return post(session.SeekStep(false, false))
	case bubblesKey.Matches(msg, b.keymap.seekForward):
		return post(session.SeekStep(true, false))
	case bubblesKey.Matches(msg, b.keymap.seekBackLarge):
		return post(session.SeekStep(false, true))
	case bubblesKey.Matches(msg, b.keymap.seekForwardLarge):
		return post(session.SeekStep(true, true))
	case bubblesKey.Matches(msg, b.keymap.skipMarker):
		return post(session.SkipMarker())
	case bubblesKey.Matches(msg, b.keymap.next):
		return post(session.Next())
	case bubblesKey.Matches(msg, b.keymap.previous):
		return post(session.Previous())
	case bubblesKey.Matches(msg, b.keymap.cycleAudio):
		return post(session.CycleAudio())
	case bubblesKey.Matches(msg, b.keymap.cycleSubtitle):
		return post(session.CycleSubtitle())
	case bubblesKey.Matches(msg, b.keymap.shuffle):
		return tea.Batch(post(session.Shuffle()), ui.Notify("Shuffling"))
	case bubblesKey.Matches(msg, b.keymap.toggleControls):
		b.controls = !b.controls
		if b.controls {
			return post(session.ShowControls())
		}
		return post(session.HideControls())
	}

	return nil
}
