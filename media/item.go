// Package media defines the domain model shared by the playback components: items, versions,
// streams, markers, play queues and progress reports.
package media

import (
	"fmt"
	"time"
)

// Kind distinguishes playable units.
type Kind string

const (
	KindMovie   Kind = "movie"
	KindEpisode Kind = "episode"
	KindSeason  Kind = "season"
	KindShow    Kind = "show"
)

// Item identifies a playable unit. It is a value: components copy it and tag the copy
// (see WithServer) instead of mutating shared instances.
type Item struct {
	ID               string
	Kind             Kind
	Title            string
	ParentID         string // season
	ParentTitle      string
	GrandparentID    string // show
	GrandparentTitle string
	SeasonNumber     int
	EpisodeNumber    int
	Duration         time.Duration
	ViewOffset       time.Duration
	Thumb            string
	ServerID         string

	// PlayQueueItemID is set when the item was materialized from a play queue.
	PlayQueueItemID int64
}

// IsEpisode reports whether the item belongs to a show.
func (i Item) IsEpisode() bool {
	return i.Kind == KindEpisode
}

// SeriesID returns the show id for episodes and "" otherwise.
func (i Item) SeriesID() string {
	if !i.IsEpisode() {
		return ""
	}
	return i.GrandparentID
}

// WithServer returns a copy tagged with the server the item was fetched from.
func (i Item) WithServer(serverID string) Item {
	i.ServerID = serverID
	return i
}

// WithViewOffset returns a copy with an updated resume position.
func (i Item) WithViewOffset(offset time.Duration) Item {
	i.ViewOffset = offset
	return i
}

// Same reports whether both values refer to the same server-side item.
func (i Item) Same(other Item) bool {
	return i.ID != "" && i.ID == other.ID
}

// DisplayTitle renders "Show - S02E05 - Title" for episodes and the plain title otherwise.
func (i Item) DisplayTitle() string {
	if !i.IsEpisode() {
		return i.Title
	}
	return fmt.Sprintf("%s - S%02dE%02d - %s", i.GrandparentTitle, i.SeasonNumber, i.EpisodeNumber, i.Title)
}

func (i Item) String() string {
	if i.IsEpisode() {
		return fmt.Sprintf("%s S%02dE%02d (%s)", i.GrandparentTitle, i.SeasonNumber, i.EpisodeNumber, i.ID)
	}
	return fmt.Sprintf("%s (%s)", i.Title, i.ID)
}
