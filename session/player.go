package session

import (
	"context"
	"sync"

	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/track"
)

// Player runs sessions one after another. A session is always disposed before the
// next one is created, so at most one engine is open at any time.
type Player struct {
	deps Deps

	// OnReady is called with each session once it is initialized.
	OnReady func(*Session)

	mu      sync.Mutex
	current *Session
}

func NewPlayer(deps Deps) *Player {
	return &Player{deps: deps}
}

// Current returns the running session, if any.
func (p *Player) Current() *Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Post forwards a command to the running session. It is dropped between sessions.
func (p *Player) Post(cmd Command) {
	if s := p.Current(); s != nil {
		s.Post(cmd)
	}
}

// Play plays item and whatever the user navigates to from it. It returns when the
// user quits, playback finishes without a next item, or a session fails to start.
func (p *Player) Play(ctx context.Context, item media.Item, versionIndex int, overrides track.Overrides) error {
	for {
		s := New(p.deps)
		p.setCurrent(s)

		if err := s.Initialize(ctx, item, versionIndex, overrides); err != nil {
			p.dispose(ctx, s)
			return err
		}

		if p.OnReady != nil {
			p.OnReady(s)
		}

		out, err := s.Run(ctx)
		p.dispose(ctx, s)

		if err != nil {
			return err
		}

		log.Infof("%s ended: %s", item, out.Kind)
		if out.Kind != Navigate {
			return nil
		}

		item, versionIndex, overrides = out.Next, 0, out.Overrides
	}
}

func (p *Player) dispose(ctx context.Context, s *Session) {
	if err := s.Dispose(context.WithoutCancel(ctx)); err != nil {
		log.Warnf("dispose: %v", err)
	}
	p.setCurrent(nil)
}

func (p *Player) setCurrent(s *Session) {
	p.mu.Lock()
	p.current = s
	p.mu.Unlock()
}

// Snapshot returns the running session's snapshot. ok is false between sessions.
func (p *Player) Snapshot() (snap Snapshot, ok bool) {
	s := p.Current()
	if s == nil {
		return Snapshot{}, false
	}
	return s.Snapshot(), true
}
