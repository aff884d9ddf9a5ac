package engine

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/marquee-cli/marquee/log"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/where"
	"github.com/samber/lo"
)

const (
	socketWaitRetries = 10
	socketWaitDelay   = 300 * time.Millisecond
	quitTimeout       = 3 * time.Second
	eventBuffer       = 64
)

// MPV implements Engine over mpv's JSON-IPC protocol.
type MPV struct {
	binary     string
	socketPath string
	cmd        *exec.Cmd
	exited     chan struct{}
	mu         sync.Mutex

	listener *listener
	events   chan Event
	done     chan struct{}
	wg       sync.WaitGroup

	closeOnce sync.Once
	opened    bool
}

// NewMPV creates an mpv engine that will run binary. Nothing is started until Open.
func NewMPV(binary string) *MPV {
	if binary == "" {
		binary = "mpv"
	}

	return &MPV{
		binary: binary,
		exited: make(chan struct{}),
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// Open launches mpv paused on the target and attaches the event listener.
func (m *MPV) Open(ctx context.Context, rawURL string, opts Options) error {
	target, err := sanitizeMediaTarget(rawURL)
	if err != nil {
		return fmt.Errorf("invalid media target: %w", err)
	}

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Errorf("generate socket name: %w", err)
	}
	m.socketPath = filepath.Join(where.Temp(), fmt.Sprintf("mpv-%x.sock", randomBytes))

	m.cmd = exec.Command(m.binary, buildArgs(m.socketPath, target, opts)...)
	m.cmd.SysProcAttr = sysProcAttr()
	m.cmd.Stdout = nil
	m.cmd.Stderr = nil
	m.cmd.Stdin = nil

	if err := m.cmd.Start(); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}
	m.opened = true

	go func() {
		_ = m.cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitForSocket(ctx); err != nil {
		select {
		case <-m.exited:
		default:
			log.Warnf("killing mpv: socket never became ready")
			_ = killProcess(m.cmd)
		}
		return fmt.Errorf("mpv socket not ready: %w", err)
	}

	m.listener = newListener(m.socketPath, m.handleProperty)
	if err := m.listener.start(); err != nil {
		return err
	}

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		m.listener.readLoop()
	}()
	go func() {
		defer m.wg.Done()
		select {
		case <-m.exited:
			m.emit(Event{Kind: EventExit})
		case <-m.done:
		}
	}()

	return nil
}

// buildArgs maps engine options onto mpv flags.
func buildArgs(socket, target string, opts Options) []string {
	title := sanitizeTitle(opts.Title)

	args := []string{
		"--no-terminal",
		"--really-quiet",
		"--input-ipc-server=" + socket,
		"--force-window=yes",
		"--idle=yes",
		"--keep-open=yes",
		"--pause=yes",
	}

	if title != "" {
		args = append(args, "--force-media-title="+title, "--title="+title)
	}

	if opts.HardwareDecode {
		args = append(args, "--hwdec=auto-safe")
	} else {
		args = append(args, "--hwdec=no")
	}

	if opts.BufferSizeMiB > 0 {
		args = append(args, fmt.Sprintf("--demuxer-max-bytes=%dMiB", opts.BufferSizeMiB))
	}

	if opts.AudioDelay != 0 {
		args = append(args, "--audio-delay="+seconds(opts.AudioDelay))
	}

	if opts.SubtitleDelay != 0 {
		args = append(args, "--sub-delay="+seconds(opts.SubtitleDelay))
	}

	s := opts.Subtitle
	if s.FontSize > 0 {
		args = append(args, fmt.Sprintf("--sub-font-size=%d", s.FontSize))
	}
	if s.Color != "" {
		args = append(args, "--sub-color="+s.Color)
	}
	if s.BorderSize > 0 {
		args = append(args, fmt.Sprintf("--sub-border-size=%d", s.BorderSize))
	}
	if s.BorderColor != "" {
		args = append(args, "--sub-border-color="+s.BorderColor)
	}
	if s.Position > 0 {
		args = append(args, fmt.Sprintf("--sub-pos=%d", s.Position))
	}

	if opts.Start > 0 {
		args = append(args, "--start="+seconds(opts.Start))
	}

	if len(opts.Headers) > 0 {
		keys := lo.Keys(opts.Headers)
		sort.Strings(keys)

		fields := lo.Map(keys, func(k string, _ int) string {
			return fmt.Sprintf("%s: %s", k, strings.ReplaceAll(opts.Headers[k], ",", "%2C"))
		})
		args = append(args, "--http-header-fields="+strings.Join(fields, ","))
	}

	return append(args, "--", target)
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
}

func (m *MPV) waitForSocket(ctx context.Context) error {
	for i := 0; i < socketWaitRetries; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.exited:
			return fmt.Errorf("mpv exited before socket was ready")
		case <-time.After(socketWaitDelay):
		}

		conn, err := net.Dial("unix", m.socketPath)
		if err == nil {
			conn.Close()
			return nil
		}
	}
	return fmt.Errorf("socket %s not ready after %d attempts", m.socketPath, socketWaitRetries)
}

func (m *MPV) Play() error {
	return m.set("pause", false)
}

func (m *MPV) Pause() error {
	return m.set("pause", true)
}

func (m *MPV) Seek(pos time.Duration) error {
	_, err := m.sendCommand([]any{"seek", pos.Seconds(), "absolute"})
	return err
}

func (m *MPV) Tracks() ([]Track, error) {
	data, err := m.sendCommand([]any{"get_property", "track-list"})
	if err != nil {
		return nil, err
	}
	return parseTracks(data)
}

func (m *MPV) SetAudioTrack(index int) error {
	track, err := m.find(TrackAudio, index)
	if err != nil {
		return err
	}
	return m.set("aid", track.ID)
}

func (m *MPV) SetSubtitleTrack(index int) error {
	if index == 0 {
		return m.set("sid", "no")
	}

	track, err := m.find(TrackSubtitle, index)
	if err != nil {
		return err
	}
	return m.set("sid", track.ID)
}

func (m *MPV) find(kind TrackKind, index int) (Track, error) {
	tracks, err := m.Tracks()
	if err != nil {
		return Track{}, err
	}

	track, ok := lo.Find(tracks, func(t Track) bool {
		return t.Kind == kind && t.Index == index
	})
	if !ok {
		return Track{}, fmt.Errorf("%w: %s #%d", ErrNoSuchTrack, kind, index)
	}
	return track, nil
}

// SetChapters replaces the chapter list shown on mpv's timeline.
func (m *MPV) SetChapters(chapters []media.Chapter) error {
	list := lo.Map(chapters, func(c media.Chapter, _ int) map[string]any {
		return map[string]any{"title": c.Title, "time": c.Start.Seconds()}
	})
	return m.set("chapter-list", list)
}

func (m *MPV) Events() <-chan Event {
	return m.events
}

// Close quits mpv, waits for the process and the listener, then closes Events.
func (m *MPV) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)

		if m.opened {
			_, _ = doSendCommand(m.socketPath, []any{"quit"})

			select {
			case <-m.exited:
			case <-time.After(quitTimeout):
				_ = killProcess(m.cmd)
				<-m.exited
			}
		}

		if m.listener != nil {
			m.listener.stop()
		}
		m.wg.Wait()

		if m.socketPath != "" {
			_ = os.Remove(m.socketPath)
		}
		close(m.events)
	})
	return nil
}

func (m *MPV) set(property string, value any) error {
	_, err := m.sendCommand([]any{"set_property", property, value})
	return err
}

// emit delivers an event. Position updates are dropped when the consumer lags.
func (m *MPV) emit(ev Event) {
	if ev.Kind == EventPosition {
		select {
		case m.events <- ev:
		default:
		}
		return
	}

	select {
	case m.events <- ev:
	case <-m.done:
	}
}

func (m *MPV) handleProperty(name string, data any) {
	switch name {
	case "time-pos":
		if pos, ok := data.(float64); ok {
			m.emit(Event{Kind: EventPosition, Position: fromSeconds(pos)})
		}
	case "duration":
		if d, ok := data.(float64); ok {
			m.emit(Event{Kind: EventDuration, Duration: fromSeconds(d)})
		}
	case "pause":
		if paused, ok := data.(bool); ok {
			m.emit(Event{Kind: lo.Ternary(paused, EventPaused, EventResumed)})
		}
	case "playback-restart":
		m.emit(Event{Kind: EventSeeked})
	case "paused-for-cache":
		if buffering, _ := data.(bool); buffering {
			m.emit(Event{Kind: EventBuffering})
		}
	case "eof-reached":
		if eof, _ := data.(bool); eof {
			m.emit(Event{Kind: EventEndOfFile})
		}
	case "track-list":
		if _, err := parseTracks(data); err == nil {
			m.emit(Event{Kind: EventTracksLoaded})
		}
	case "aid", "sid":
		m.emit(Event{Kind: EventTrackSelected, Track: Track{Kind: lo.Ternary(name == "aid", TrackAudio, TrackSubtitle)}})
	}
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

type mpvTrack struct {
	ID       int    `json:"id"`
	Type     string `json:"type"`
	Lang     string `json:"lang"`
	Title    string `json:"title"`
	Codec    string `json:"codec"`
	Default  bool   `json:"default"`
	Selected bool   `json:"selected"`
	External bool   `json:"external"`
}

// parseTracks converts mpv's track-list into engine tracks with positional indexes.
func parseTracks(data any) ([]Track, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var list []mpvTrack
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("track-list: %w", err)
	}

	var (
		tracks   []Track
		audio    int
		subtitle = 1
	)
	for _, t := range list {
		track := Track{
			ID:       t.ID,
			Language: t.Lang,
			Title:    t.Title,
			Codec:    t.Codec,
			Default:  t.Default,
			Selected: t.Selected,
			External: t.External,
		}

		switch t.Type {
		case "audio":
			track.Kind, track.Index = TrackAudio, audio
			audio++
		case "sub":
			track.Kind, track.Index = TrackSubtitle, subtitle
			subtitle++
		default:
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// sanitizeMediaTarget rejects targets that could be interpreted as flags or carry
// control characters.
func sanitizeMediaTarget(link string) (string, error) {
	l := strings.TrimSpace(link)
	if l == "" {
		return "", fmt.Errorf("empty URL")
	}

	if strings.ContainsAny(l, "\x00\n\r") {
		return "", fmt.Errorf("invalid control characters in URL")
	}

	if strings.HasPrefix(l, "-") {
		return "", fmt.Errorf("url must not start with '-' (looks like a flag)")
	}

	if strings.Contains(l, "://") {
		u, err := url.Parse(l)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		switch strings.ToLower(u.Scheme) {
		case "http", "https":
			return l, nil
		default:
			return "", fmt.Errorf("unsupported URL scheme: %s", u.Scheme)
		}
	}

	return filepath.Clean(l), nil
}

func sanitizeTitle(title string) string {
	t := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ", "\x00", "").Replace(title)
	return strings.TrimSpace(t)
}
