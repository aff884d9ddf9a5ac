package nowplaying

import (
	"time"

	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
)

// Lifecycle is the application state relevant to the now-playing surface.
type Lifecycle int

const (
	Resumed Lifecycle = iota
	Inactive
	Background
)

// Bridge keeps a Surface in sync with the session. It is driven from the session's
// control loop only. Surface failures are logged and otherwise ignored.
type Bridge struct {
	surface Surface

	metadata Metadata
	status   Status
	canNext  bool
	canPrev  bool
	cleared  bool
}

func NewBridge(s Surface) *Bridge {
	return &Bridge{surface: s, cleared: true, status: Status{Rate: 1}}
}

// SetMetadata publishes the current item.
func (b *Bridge) SetMetadata(item media.Item, artwork string) {
	b.metadata = Metadata{
		ID:       item.ID,
		Title:    item.Title,
		Show:     item.GrandparentTitle,
		Season:   item.ParentTitle,
		Artwork:  artwork,
		Duration: item.Duration,
	}
	b.cleared = false
	b.check("metadata", b.surface.SetMetadata(b.metadata))
}

// SetStatus publishes transport state. It is a no-op while cleared.
func (b *Bridge) SetStatus(playing bool, position time.Duration) {
	b.status = Status{Playing: playing, Position: position, Rate: 1}
	if b.cleared {
		return
	}
	b.check("status", b.surface.SetStatus(b.status))
}

// SetControlsEnabled must be called whenever queue or adjacency state changes.
func (b *Bridge) SetControlsEnabled(canNext, canPrevious bool) {
	b.canNext, b.canPrev = canNext, canPrevious
	if b.cleared {
		return
	}
	b.check("controls", b.surface.SetControls(canNext, canPrevious))
}

// OnLifecycle clears the surface when backgrounded, keeps it populated when merely
// inactive, and repopulates it on resume.
func (b *Bridge) OnLifecycle(l Lifecycle) {
	switch l {
	case Background:
		b.Clear()
	case Inactive:
	case Resumed:
		if b.cleared && b.metadata.ID != "" {
			b.cleared = false
			b.check("metadata", b.surface.SetMetadata(b.metadata))
			b.check("status", b.surface.SetStatus(b.status))
			b.check("controls", b.surface.SetControls(b.canNext, b.canPrev))
		}
	}
}

// Clear empties the surface.
func (b *Bridge) Clear() {
	if b.cleared {
		return
	}
	b.cleared = true
	b.check("clear", b.surface.Clear())
}

// Forget clears the surface and drops the remembered state, for a full exit.
func (b *Bridge) Forget() {
	b.Clear()
	b.metadata = Metadata{}
}

// Cleared reports whether the surface is currently empty.
func (b *Bridge) Cleared() bool {
	return b.cleared
}

// Commands relays the surface's transport commands.
func (b *Bridge) Commands() <-chan Command {
	return b.surface.Commands()
}

func (b *Bridge) check(what string, err error) {
	if err != nil {
		log.Warnf("now-playing %s: %v", what, err)
	}
}
