package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrHandleLive is returned by Open while another handle has not been disposed.
var ErrHandleLive = errors.New("engine: another handle is still live")

var live atomic.Int32

// LiveHandles returns the number of handles that are open and not yet disposed.
func LiveHandles() int {
	return int(live.Load())
}

// Handle exclusively owns one open Engine.
type Handle struct {
	mu     sync.Mutex
	engine Engine
	open   bool
}

// Open opens e and wraps it in a Handle. It refuses to open a second decoder while a
// previous handle is live. A failed open is not retried and leaves nothing live.
func Open(ctx context.Context, e Engine, url string, opts Options) (*Handle, error) {
	if !live.CompareAndSwap(0, 1) {
		return nil, ErrHandleLive
	}

	if err := e.Open(ctx, url, opts); err != nil {
		_ = e.Close()
		live.Store(0)
		return nil, err
	}

	return &Handle{engine: e, open: true}, nil
}

// Engine returns the owned engine. Callers must not retain it past Dispose.
func (h *Handle) Engine() Engine {
	return h.engine
}

// Live reports whether the handle has not been disposed.
func (h *Handle) Live() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open
}

// Dispose closes the engine synchronously. It is idempotent.
func (h *Handle) Dispose() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.open {
		return nil
	}
	h.open = false
	err := h.engine.Close()
	live.Add(-1)
	return err
}
