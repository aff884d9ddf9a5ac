package nowplaying

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	"github.com/marquee-cli/marquee/constant"
)

const (
	mprisPath         = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	mprisRoot         = "org.mpris.MediaPlayer2"
	mprisPlayer       = "org.mpris.MediaPlayer2.Player"
	noTrack           = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")
	trackPathTemplate = "/org/marquee/track/%s"
)

// MPRIS publishes playback on the D-Bus session bus so desktop media keys and widgets
// can see and control it.
type MPRIS struct {
	conn     *dbus.Conn
	props    *prop.Properties
	commands chan Command

	mu       sync.Mutex
	position time.Duration
	closed   bool
}

// NewMPRIS claims a per-process bus name and exports the MPRIS interfaces.
func NewMPRIS() (*MPRIS, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("session bus: %w", err)
	}

	m := &MPRIS{conn: conn, commands: make(chan Command, 16)}

	name := fmt.Sprintf("%s.%s.instance%d", mprisRoot, constant.Marquee, os.Getpid())
	reply, err := conn.RequestName(name, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("request name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return nil, fmt.Errorf("bus name %s already taken", name)
	}

	if err := m.export(); err != nil {
		conn.Close()
		return nil, err
	}
	return m, nil
}

func (m *MPRIS) export() error {
	root := &rootObject{}
	player := &playerObject{m: m}

	if err := m.conn.Export(root, mprisPath, mprisRoot); err != nil {
		return err
	}
	if err := m.conn.Export(player, mprisPath, mprisPlayer); err != nil {
		return err
	}

	props, err := prop.Export(m.conn, mprisPath, prop.Map{
		mprisRoot: {
			"CanQuit":             {Value: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"Identity":            {Value: constant.Product, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{}, Emit: prop.EmitTrue},
		},
		mprisPlayer: {
			"PlaybackStatus": {Value: "Stopped", Emit: prop.EmitTrue},
			"Rate":           {Value: 1.0, Emit: prop.EmitTrue},
			"MinimumRate":    {Value: 1.0, Emit: prop.EmitTrue},
			"MaximumRate":    {Value: 1.0, Emit: prop.EmitTrue},
			"Metadata":       {Value: map[string]dbus.Variant{"mpris:trackid": dbus.MakeVariant(noTrack)}, Emit: prop.EmitTrue},
			"Position":       {Value: int64(0), Emit: prop.EmitFalse},
			"Volume":         {Value: 1.0, Emit: prop.EmitTrue},
			"CanGoNext":      {Value: false, Emit: prop.EmitTrue},
			"CanGoPrevious":  {Value: false, Emit: prop.EmitTrue},
			"CanPlay":        {Value: true, Emit: prop.EmitTrue},
			"CanPause":       {Value: true, Emit: prop.EmitTrue},
			"CanSeek":        {Value: true, Emit: prop.EmitTrue},
			"CanControl":     {Value: true, Emit: prop.EmitFalse},
		},
	})
	if err != nil {
		return err
	}
	m.props = props

	node := &introspect.Node{
		Name: string(mprisPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{Name: mprisRoot, Methods: introspect.Methods(root), Properties: props.Introspection(mprisRoot)},
			{Name: mprisPlayer, Methods: introspect.Methods(player), Properties: props.Introspection(mprisPlayer)},
		},
	}
	return m.conn.Export(introspect.NewIntrospectable(node), mprisPath, "org.freedesktop.DBus.Introspectable")
}

func trackPath(id string) dbus.ObjectPath {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
	if clean == "" {
		return noTrack
	}
	return dbus.ObjectPath(fmt.Sprintf(trackPathTemplate, clean))
}

func metadataMap(md Metadata) map[string]dbus.Variant {
	out := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(trackPath(md.ID)),
		"mpris:length":  dbus.MakeVariant(md.Duration.Microseconds()),
		"xesam:title":   dbus.MakeVariant(md.Title),
	}
	if md.Show != "" {
		out["xesam:artist"] = dbus.MakeVariant([]string{md.Show})
	}
	if md.Season != "" {
		out["xesam:album"] = dbus.MakeVariant(md.Season)
	}
	if md.Artwork != "" {
		out["mpris:artUrl"] = dbus.MakeVariant(md.Artwork)
	}
	return out
}

// set adapts prop's *dbus.Error so a nil result stays a nil error.
func (m *MPRIS) set(name string, value any) error {
	if err := m.props.Set(mprisPlayer, name, dbus.MakeVariant(value)); err != nil {
		return err
	}
	return nil
}

func (m *MPRIS) SetMetadata(md Metadata) error {
	return m.set("Metadata", metadataMap(md))
}

func (m *MPRIS) SetStatus(s Status) error {
	m.mu.Lock()
	m.position = s.Position
	m.mu.Unlock()

	status := "Paused"
	if s.Playing {
		status = "Playing"
	}

	m.props.SetMust(mprisPlayer, "Position", s.Position.Microseconds())
	return m.set("PlaybackStatus", status)
}

func (m *MPRIS) SetControls(canNext, canPrevious bool) error {
	if err := m.set("CanGoNext", canNext); err != nil {
		return err
	}
	return m.set("CanGoPrevious", canPrevious)
}

func (m *MPRIS) Clear() error {
	if err := m.SetControls(false, false); err != nil {
		return err
	}
	if err := m.set("Metadata", map[string]dbus.Variant{"mpris:trackid": dbus.MakeVariant(noTrack)}); err != nil {
		return err
	}
	return m.set("PlaybackStatus", "Stopped")
}

func (m *MPRIS) Commands() <-chan Command {
	return m.commands
}

func (m *MPRIS) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	err := m.conn.Close()
	close(m.commands)
	return err
}

// send drops commands when the session is not keeping up or the surface is closed.
func (m *MPRIS) send(c Command) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.commands <- c:
	default:
	}
}

func (m *MPRIS) currentPosition() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

type rootObject struct{}

func (rootObject) Raise() *dbus.Error { return nil }
func (rootObject) Quit() *dbus.Error  { return nil }

type playerObject struct {
	m *MPRIS
}

func (p *playerObject) Play() *dbus.Error {
	p.m.send(Command{Kind: CommandPlay})
	return nil
}

func (p *playerObject) Pause() *dbus.Error {
	p.m.send(Command{Kind: CommandPause})
	return nil
}

func (p *playerObject) PlayPause() *dbus.Error {
	p.m.send(Command{Kind: CommandToggle})
	return nil
}

func (p *playerObject) Stop() *dbus.Error {
	p.m.send(Command{Kind: CommandStop})
	return nil
}

func (p *playerObject) Next() *dbus.Error {
	p.m.send(Command{Kind: CommandNext})
	return nil
}

func (p *playerObject) Previous() *dbus.Error {
	p.m.send(Command{Kind: CommandPrevious})
	return nil
}

// Seek moves relative to the current position; offset is in microseconds.
func (p *playerObject) Seek(offset int64) *dbus.Error {
	pos := p.m.currentPosition() + time.Duration(offset)*time.Microsecond
	p.m.send(Command{Kind: CommandSeek, Position: max(pos, 0)})
	return nil
}

func (p *playerObject) SetPosition(_ dbus.ObjectPath, position int64) *dbus.Error {
	if position < 0 {
		return nil
	}
	p.m.send(Command{Kind: CommandSeek, Position: time.Duration(position) * time.Microsecond})
	return nil
}

func (p *playerObject) OpenUri(string) *dbus.Error {
	return dbus.MakeFailedError(fmt.Errorf("opening uris is not supported"))
}
