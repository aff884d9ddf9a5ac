// Package queue keeps the server-side play queue and a local cursor in step with what
// is playing. A Manager outlives individual playback sessions.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/marquee-cli/marquee/config"
	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/util"
	"github.com/samber/mo"
)

var (
	// ErrQueue is matched by every QueueError.
	ErrQueue      = errors.New("play queue")
	ErrNoQueue    = errors.New("no active play queue")
	ErrNotInQueue = errors.New("item is not part of the active play queue")
	ErrNoShow     = errors.New("episode has no show")
)

// QueueError is a non-fatal queue failure. Playback continues and navigation falls back
// to sibling lookups.
type QueueError struct {
	Op  string
	Err error
}

func (e *QueueError) Error() string {
	return fmt.Sprintf("play queue %s: %v", e.Op, e.Err)
}

func (e *QueueError) Unwrap() error {
	return e.Err
}

func (e *QueueError) Is(target error) bool {
	return target == ErrQueue
}

// State is the outcome of Ensure.
type State int

const (
	Skipped State = iota
	Adopted
	Created
)

func (s State) String() string {
	return [...]string{"skipped", "adopted", "created"}[s]
}

// Service is the media server's play queue API.
type Service interface {
	CreatePlayQueue(ctx context.Context, req media.QueueRequest) (*media.PlayQueue, error)
	PlayQueue(ctx context.Context, id int64, center string, window int) (*media.PlayQueue, error)
	ShufflePlayQueue(ctx context.Context, id int64) (*media.PlayQueue, error)
}

// Manager owns at most one active queue.
type Manager struct {
	svc    Service
	radius int

	mu     sync.Mutex
	active *media.PlayQueue
	cursor int
}

func NewManager(svc Service, cfg config.PlaybackConfig) *Manager {
	return &Manager{svc: svc, radius: util.Max(cfg.QueueWindow, 1)}
}

// Active returns the active queue.
func (m *Manager) Active() (*media.PlayQueue, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active, m.active != nil
}

// Cursor returns the absolute position of the current item.
func (m *Manager) Cursor() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor, m.active != nil
}

// Supersede replaces the active queue. It is the only way a queue is ever replaced.
func (m *Manager) Supersede(q *media.PlayQueue) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setLocked(q)
}

// Clear forgets the active queue.
func (m *Manager) Clear() {
	m.Supersede(nil)
}

func (m *Manager) setLocked(q *media.PlayQueue) {
	m.active = q
	m.cursor = 0
	if q == nil {
		return
	}
	if selected, ok := q.Selected(); ok {
		m.cursor = selected.Position
	}
}

// moveLocked points the cursor at an item of the materialized window.
func (m *Manager) moveLocked(q *media.PlayQueue, itemID string) bool {
	i, ok := q.IndexOf(itemID)
	if !ok {
		return false
	}
	qi := q.Items[i]
	moved := *q
	moved.SelectedItemID = qi.Item.PlayQueueItemID
	m.active = &moved
	m.cursor = qi.Position
	return true
}

// Ensure makes sure item is covered by a queue. Movies are skipped. An existing queue,
// whatever its origin, is adopted and its cursor moved to item; it is never silently
// replaced. Otherwise a sequential queue over the item's show is created, starting at item.
func (m *Manager) Ensure(ctx context.Context, item media.Item) (State, error) {
	if !item.IsEpisode() {
		return Skipped, nil
	}

	logger := log.With(log.Fields{"item": item.ID})

	m.mu.Lock()
	active := m.active
	if active != nil && m.moveLocked(active, item.ID) {
		m.mu.Unlock()
		logger.Debugf("adopted play queue %d", active.ID)
		return Adopted, nil
	}
	m.mu.Unlock()

	if active != nil {
		q, err := m.svc.PlayQueue(ctx, active.ID, item.ID, m.radius)
		if err != nil {
			return Adopted, &QueueError{Op: "refresh", Err: err}
		}

		m.mu.Lock()
		defer m.mu.Unlock()
		if m.active == nil || m.active.ID != active.ID {
			return Adopted, &QueueError{Op: "refresh", Err: errors.New("queue superseded while refreshing")}
		}
		if !m.moveLocked(q, item.ID) {
			return Adopted, &QueueError{Op: "adopt", Err: ErrNotInQueue}
		}
		logger.Debugf("adopted play queue %d after refetching its window", q.ID)
		return Adopted, nil
	}

	if item.GrandparentID == "" {
		return Skipped, &QueueError{Op: "create", Err: ErrNoShow}
	}

	q, err := m.svc.CreatePlayQueue(ctx, media.QueueRequest{ShowID: item.GrandparentID, StartItemID: item.ID})
	if err != nil {
		return Skipped, &QueueError{Op: "create", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		// Another queue became active meanwhile. Keep it.
		if m.moveLocked(m.active, item.ID) {
			return Adopted, nil
		}
		return Adopted, &QueueError{Op: "adopt", Err: ErrNotInQueue}
	}

	m.setLocked(q)
	m.moveLocked(q, item.ID)
	logger.Infof("created play queue %d over show %s", q.ID, item.GrandparentID)
	return Created, nil
}

// Shuffle reshuffles the active queue on the server. The current item stays selected
// and the result supersedes the old queue.
func (m *Manager) Shuffle(ctx context.Context) (*media.PlayQueue, error) {
	active, ok := m.Active()
	if !ok {
		return nil, &QueueError{Op: "shuffle", Err: ErrNoQueue}
	}

	q, err := m.svc.ShufflePlayQueue(ctx, active.ID)
	if err != nil {
		return nil, &QueueError{Op: "shuffle", Err: err}
	}

	m.Supersede(q)
	return q, nil
}

// Window returns up to radius items either side of center. Radii past either end of the
// queue are clamped.
func (m *Manager) Window(ctx context.Context, center string, radius int) ([]media.Item, error) {
	active, ok := m.Active()
	if !ok {
		return nil, &QueueError{Op: "window", Err: ErrNoQueue}
	}

	radius = util.Clamp(radius, 0, util.Max(active.TotalCount, len(active.Items)))

	q := active
	if i, ok := active.IndexOf(center); !ok || !covers(active, active.Items[i].Position, radius) {
		fetched, err := m.svc.PlayQueue(ctx, active.ID, center, radius)
		if err != nil {
			return nil, &QueueError{Op: "window", Err: err}
		}
		q = fetched
	}

	i, ok := q.IndexOf(center)
	if !ok {
		return nil, &QueueError{Op: "window", Err: ErrNotInQueue}
	}

	pos := q.Items[i].Position
	var items []media.Item
	for _, qi := range q.Items {
		if qi.Position >= pos-radius && qi.Position <= pos+radius {
			items = append(items, qi.Item)
		}
	}
	return items, nil
}

// covers reports whether the materialized window already holds radius items either
// side of pos, or reaches the queue's ends.
func covers(q *media.PlayQueue, pos, radius int) bool {
	if len(q.Items) == 0 {
		return false
	}
	first := q.Items[0].Position
	last := q.Items[len(q.Items)-1].Position
	return first <= util.Max(pos-radius, 0) && last >= util.Min(pos+radius, q.TotalCount-1)
}

// Adjacent returns the items either side of item, refetching the window when a
// neighbour exists on the server but is not materialized.
func (m *Manager) Adjacent(ctx context.Context, item media.Item) (prev, next mo.Option[media.Item], err error) {
	active, ok := m.Active()
	if !ok {
		return prev, next, &QueueError{Op: "adjacent", Err: ErrNoQueue}
	}

	i, ok := active.IndexOf(item.ID)
	if !ok {
		return prev, next, &QueueError{Op: "adjacent", Err: ErrNotInQueue}
	}

	q := active
	if !covers(active, active.Items[i].Position, 1) {
		fetched, err := m.svc.PlayQueue(ctx, active.ID, item.ID, m.radius)
		if err != nil {
			return prev, next, &QueueError{Op: "adjacent", Err: err}
		}
		q = fetched
		if i, ok = q.IndexOf(item.ID); !ok {
			return prev, next, &QueueError{Op: "adjacent", Err: ErrNotInQueue}
		}
	}

	pos := q.Items[i].Position
	if qi, ok := q.AtPosition(pos - 1); ok {
		prev = mo.Some(qi.Item)
	}
	if qi, ok := q.AtPosition(pos + 1); ok {
		next = mo.Some(qi.Item)
	}
	return prev, next, nil
}
