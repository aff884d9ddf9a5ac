// Package nowplaying mirrors playback state to the operating system's now-playing
// surface and relays the transport commands it issues.
package nowplaying

import (
	"runtime"
	"time"

	"github.com/marquee-cli/marquee/constant"
	"github.com/marquee-cli/marquee/log"
)

// Metadata describes what is playing.
type Metadata struct {
	ID       string
	Title    string
	Show     string
	Season   string
	Artwork  string
	Duration time.Duration
}

// Status is the transport state.
type Status struct {
	Playing  bool
	Position time.Duration
	Rate     float64
}

// CommandKind is a transport command issued by the surface.
type CommandKind int

const (
	CommandPlay CommandKind = iota + 1
	CommandPause
	CommandToggle
	CommandSeek
	CommandNext
	CommandPrevious
	CommandStop
)

func (k CommandKind) String() string {
	switch k {
	case CommandPlay:
		return "play"
	case CommandPause:
		return "pause"
	case CommandToggle:
		return "toggle"
	case CommandSeek:
		return "seek"
	case CommandNext:
		return "next"
	case CommandPrevious:
		return "previous"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// Command carries an absolute Position for CommandSeek.
type Command struct {
	Kind     CommandKind
	Position time.Duration
}

// Surface is an OS-level now-playing integration.
type Surface interface {
	SetMetadata(m Metadata) error
	SetStatus(s Status) error
	SetControls(canNext, canPrevious bool) error
	Clear() error
	Commands() <-chan Command
	Close() error
}

// Default returns the MPRIS surface on Linux and an in-memory surface elsewhere or when
// no session bus is reachable.
func Default() Surface {
	if runtime.GOOS == constant.Linux {
		s, err := NewMPRIS()
		if err == nil {
			return s
		}
		log.Warnf("mpris unavailable, now-playing disabled: %v", err)
	}
	return NewMemory()
}
