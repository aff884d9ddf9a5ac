package nowplaying

import "sync"

// Memory is a Surface that only remembers what it was told.
type Memory struct {
	mu       sync.Mutex
	metadata Metadata
	status   Status
	canNext  bool
	canPrev  bool
	cleared  bool
	closed   bool
	commands chan Command
}

func NewMemory() *Memory {
	return &Memory{commands: make(chan Command, 16), cleared: true}
}

func (m *Memory) SetMetadata(md Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata, m.cleared = md, false
	return nil
}

func (m *Memory) SetStatus(s Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = s
	return nil
}

func (m *Memory) SetControls(canNext, canPrevious bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canNext, m.canPrev = canNext, canPrevious
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata, m.status = Metadata{}, Status{}
	m.canNext, m.canPrev = false, false
	m.cleared = true
	return nil
}

func (m *Memory) Commands() <-chan Command {
	return m.commands
}

// Send issues a command as if the OS had.
func (m *Memory) Send(c Command) {
	m.commands <- c
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.commands)
	}
	return nil
}

// State returns everything the surface currently shows.
func (m *Memory) State() (md Metadata, s Status, canNext, canPrevious, cleared bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.metadata, m.status, m.canNext, m.canPrev, m.cleared
}
