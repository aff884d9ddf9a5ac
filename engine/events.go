package engine

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/marquee-cli/marquee/log"
)

// observed lists the properties the listener subscribes to. mpv scopes observers to
// the connection that registered them, so they are sent on the listener's own socket.
var observed = []string{
	"time-pos",
	"duration",
	"pause",
	"paused-for-cache",
	"eof-reached",
	"track-list",
	"aid",
	"sid",
}

type listener struct {
	socketPath string
	conn       net.Conn
	callback   func(name string, data any)
	once       sync.Once
}

func newListener(socketPath string, callback func(name string, data any)) *listener {
	return &listener{socketPath: socketPath, callback: callback}
}

func (l *listener) start() error {
	conn, err := net.Dial("unix", l.socketPath)
	if err != nil {
		return fmt.Errorf("event listener connect: %w", err)
	}
	l.conn = conn

	for i, name := range observed {
		cmd := ipcCommand{Command: []any{"observe_property", i + 1, name}}
		if err := writeCommand(conn, cmd); err != nil {
			conn.Close()
			return fmt.Errorf("observe %s: %w", name, err)
		}
	}

	log.Debugf("mpv event listener attached to %s", l.socketPath)
	return nil
}

func (l *listener) stop() {
	l.once.Do(func() {
		if l.conn != nil {
			l.conn.Close()
		}
	})
}

// readLoop runs until the connection is closed by stop or by mpv exiting.
func (l *listener) readLoop() {
	scanner := bufio.NewScanner(l.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		l.process(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, os.ErrDeadlineExceeded) {
		log.Warnf("event listener read error: %v", err)
	}
}

func (l *listener) process(line []byte) {
	var event struct {
		Event string `json:"event"`
		Name  string `json:"name"`
		Data  any    `json:"data"`
	}
	if err := json.Unmarshal(line, &event); err != nil {
		return
	}

	switch event.Event {
	case "":
		// reply to an observe_property request
	case "property-change":
		if event.Name != "" {
			l.callback(event.Name, event.Data)
		}
	default:
		l.callback(event.Event, nil)
	}
}
