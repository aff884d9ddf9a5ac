package media

import "time"

// StreamKind follows the server's streamType numbering.
type StreamKind int

const (
	StreamVideo    StreamKind = 1
	StreamAudio    StreamKind = 2
	StreamSubtitle StreamKind = 3
)

func (k StreamKind) String() string {
	switch k {
	case StreamVideo:
		return "video"
	case StreamAudio:
		return "audio"
	case StreamSubtitle:
		return "subtitle"
	default:
		return "unknown"
	}
}

// Stream is a single elementary stream within a part.
type Stream struct {
	ID           int64
	Kind         StreamKind
	Index        int
	Codec        string
	LanguageCode string // ISO 639-2, three letters
	Language     string
	Title        string
	Selected     bool
	Default      bool
	Forced       bool
}

// Part is the server's addressable unit for stream selection: one physical file of a version.
type Part struct {
	ID       int64
	Key      string
	File     string
	Duration time.Duration
	Streams  []Stream
}

// StreamsOf returns the part's streams of one kind in server order.
func (p Part) StreamsOf(kind StreamKind) []Stream {
	var out []Stream
	for _, s := range p.Streams {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Selected returns the stream of the given kind the server marks as selected.
func (p Part) Selected(kind StreamKind) (Stream, bool) {
	for _, s := range p.Streams {
		if s.Kind == kind && s.Selected {
			return s, true
		}
	}
	return Stream{}, false
}

// Version is one media version of an item (e.g. 4K and 1080p files of the same movie).
type Version struct {
	ID              int64
	VideoResolution string
	VideoCodec      string
	AudioCodec      string
	Container       string
	Bitrate         int
	Parts           []Part
}

// Label is a short human description such as "1080p h264".
func (v Version) Label() string {
	switch {
	case v.VideoResolution != "" && v.VideoCodec != "":
		return v.VideoResolution + " " + v.VideoCodec
	case v.VideoResolution != "":
		return v.VideoResolution
	default:
		return v.Container
	}
}

// Chapter is a titled time range.
type Chapter struct {
	Title string
	Start time.Duration
	End   time.Duration
}
