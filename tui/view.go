package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/marquee-cli/marquee/color"
	"github.com/marquee-cli/marquee/engine"
	"github.com/marquee-cli/marquee/icon"
	"github.com/marquee-cli/marquee/marker"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/style"
	"github.com/marquee-cli/marquee/util"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case playingState, promptState:
		output = b.viewPlaying()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) truncate(s string) string {
	if b.width <= 4 {
		return s
	}
	return truncate.StringWithTail(s, uint(b.width-4), "…")
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			b.spinnerC.View() + " Opening player",
		},
	)
}

func (b *statefulBubble) viewPlaying() string {
	snap := b.snapshot
	item := snap.Item

	state := icon.Get(icon.Pause)
	if snap.Playing {
		state = icon.Get(icon.Play)
	}

	lines := []string{
		style.Title("Now Playing"),
		"",
		b.truncate(state + " " + style.Fg(color.Purple)(headline(item))),
	}
	if sub := subline(item); sub != "" {
		lines = append(lines, b.truncate(style.Faint(sub)))
	}

	lines = append(lines, "", b.progressLine())

	if snap.Buffering {
		lines = append(lines, b.spinnerC.View()+" Buffering")
	}

	if line := markerLine(snap.Marker, time.Now()); line != "" {
		lines = append(lines, "", b.truncate(line))
	}

	if snap.PromptNext {
		if next, ok := snap.Next.Get(); ok {
			lines = append(lines, "", b.truncate(icon.Get(icon.Next)+" Up next: "+style.Bold(headline(next))))
		}
	}

	if b.controls {
		lines = append(lines,
			"",
			b.truncate("Audio: "+trackLabel(snap.Tracks, engine.TrackAudio)),
			b.truncate("Subtitles: "+trackLabel(snap.Tracks, engine.TrackSubtitle)),
		)
		if prev, ok := snap.Previous.Get(); ok {
			lines = append(lines, b.truncate(icon.Get(icon.Previous)+" "+style.Faint(headline(prev))))
		}
		if next, ok := snap.Next.Get(); ok && !snap.PromptNext {
			lines = append(lines, b.truncate(icon.Get(icon.Next)+" "+style.Faint(headline(next))))
		}
	}

	return b.renderLines(true, lines)
}

func (b *statefulBubble) progressLine() string {
	snap := b.snapshot
	ratio := 0.0
	if snap.Duration > 0 {
		ratio = util.Clamp(float64(snap.Position)/float64(snap.Duration), 0, 1)
	}
	return fmt.Sprintf("%s %s / %s", b.progressC.ViewAs(ratio), util.Timestamp(snap.Position), util.Timestamp(snap.Duration))
}

func headline(item media.Item) string {
	if item.IsEpisode() {
		return item.GrandparentTitle
	}
	return item.Title
}

func subline(item media.Item) string {
	if !item.IsEpisode() {
		return ""
	}
	return fmt.Sprintf("S%02dE%02d · %s", item.SeasonNumber, item.EpisodeNumber, item.Title)
}

func markerLine(s marker.Snapshot, now time.Time) string {
	m, ok := s.Marker.Get()
	if !ok || s.Phase != marker.PhaseActive {
		return ""
	}

	name := "Intro"
	if m.Type == media.MarkerCredits {
		name = "Credits"
	}

	line := fmt.Sprintf("%s Skip %s [s]", icon.Get(icon.Skip), name)
	if s.Counting {
		left := max(s.Deadline.Sub(now).Round(time.Second), 0)
		line += style.Faint(fmt.Sprintf(" in %s", left))
	}
	return style.Fg(color.Orange)(line)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(color.Red).Bold(true)
	body := wrap.String(errorStyle.Render(b.lastError.Error()), max(b.width-4, 20))
	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Playback stopped:",
			"",
			body,
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h+4 {
			l += strings.Repeat("\n", b.height-h-4)
		} else {
			l += "\n\n"
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}
