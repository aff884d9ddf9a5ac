package media

import "time"

// SeriesLanguages is the per-series language preference.
type SeriesLanguages struct {
	AudioLanguage    string
	SubtitleLanguage string
}

// PartSelection is the per-part exact stream selection. Zero means unset, except that
// a zero SubtitleStreamID with SubtitleOff set disables subtitles.
type PartSelection struct {
	PartID           int64
	AudioStreamID    int64
	SubtitleStreamID int64
	SubtitleOff      bool
}

// ReportState is the playback state sent with a progress report.
type ReportState string

const (
	StatePlaying   ReportState = "playing"
	StatePaused    ReportState = "paused"
	StateStopped   ReportState = "stopped"
	StateBuffering ReportState = "buffering"
)

// Report is a transient progress report.
type Report struct {
	ItemID   string
	Position time.Duration
	State    ReportState
	Duration time.Duration
}
