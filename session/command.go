package session

import (
	"time"

	"github.com/marquee-cli/marquee/nowplaying"
)

// CommandKind identifies a user or remote command.
type CommandKind int

const (
	CmdTogglePause CommandKind = iota + 1
	CmdPlay
	CmdPause
	CmdSeek
	CmdSeekStep
	CmdShowControls
	CmdHideControls
	CmdSkipMarker
	CmdNext
	CmdPrevious
	CmdAcceptNext
	CmdDismissNext
	CmdSelectAudio
	CmdSelectSubtitle
	CmdCycleAudio
	CmdCycleSubtitle
	CmdLifecycle
	CmdResize
	CmdRotate
	CmdShuffle
	CmdQuit
)

// Command is posted to a running session.
type Command struct {
	Kind      CommandKind
	Position  time.Duration
	Forward   bool
	Large     bool
	Index     int
	Lifecycle nowplaying.Lifecycle
	Width     int
	Height    int
	Landscape bool
}

func TogglePause() Command            { return Command{Kind: CmdTogglePause} }
func SeekTo(pos time.Duration) Command { return Command{Kind: CmdSeek, Position: pos} }
func ShowControls() Command           { return Command{Kind: CmdShowControls} }
func HideControls() Command           { return Command{Kind: CmdHideControls} }
func SkipMarker() Command             { return Command{Kind: CmdSkipMarker} }
func Next() Command                   { return Command{Kind: CmdNext} }
func Previous() Command               { return Command{Kind: CmdPrevious} }
func AcceptNext() Command             { return Command{Kind: CmdAcceptNext} }
func DismissNext() Command            { return Command{Kind: CmdDismissNext} }
func CycleAudio() Command             { return Command{Kind: CmdCycleAudio} }
func CycleSubtitle() Command          { return Command{Kind: CmdCycleSubtitle} }
func Quit() Command                   { return Command{Kind: CmdQuit} }
func Shuffle() Command                { return Command{Kind: CmdShuffle} }

// SeekStep seeks by the configured small or large step.
func SeekStep(forward, large bool) Command {
	return Command{Kind: CmdSeekStep, Forward: forward, Large: large}
}

// SelectAudio selects the audio track with the given engine index.
func SelectAudio(index int) Command {
	return Command{Kind: CmdSelectAudio, Index: index}
}

// SelectSubtitle selects a subtitle track; index 0 turns subtitles off.
func SelectSubtitle(index int) Command {
	return Command{Kind: CmdSelectSubtitle, Index: index}
}

func Lifecycle(l nowplaying.Lifecycle) Command {
	return Command{Kind: CmdLifecycle, Lifecycle: l}
}

func Resize(width, height int) Command {
	return Command{Kind: CmdResize, Width: width, Height: height}
}

func Rotate(landscape bool) Command {
	return Command{Kind: CmdRotate, Landscape: landscape}
}
