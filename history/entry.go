package history

import (
	"fmt"
	"time"

	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/util"
)

// Entry is the last known playback point of a movie or of a show's latest episode.
type Entry struct {
	ItemID       string        `json:"item_id"`
	SeriesID     string        `json:"series_id,omitempty"`
	ServerID     string        `json:"server_id"`
	Kind         media.Kind    `json:"kind"`
	Title        string        `json:"title"`
	Position     time.Duration `json:"position"`
	Duration     time.Duration `json:"duration"`
	VersionIndex int           `json:"version_index"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// key groups episodes of the same series under one record.
func (e *Entry) key() string {
	if e.SeriesID != "" {
		return e.ServerID + "/" + e.SeriesID
	}
	return e.ServerID + "/" + e.ItemID
}

// Percentage returns how much of the item was watched.
func (e *Entry) Percentage() float64 {
	if e.Duration <= 0 {
		return 0
	}
	return util.Min(100, float64(e.Position)/float64(e.Duration)*100)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s  %s / %s", e.Title, util.Timestamp(e.Position), util.Timestamp(e.Duration))
}

func newEntry(item media.Item, position time.Duration, versionIndex int) *Entry {
	return &Entry{
		ItemID:       item.ID,
		SeriesID:     item.SeriesID(),
		ServerID:     item.ServerID,
		Kind:         item.Kind,
		Title:        item.DisplayTitle(),
		Position:     position,
		Duration:     item.Duration,
		VersionIndex: versionIndex,
		UpdatedAt:    time.Now(),
	}
}
