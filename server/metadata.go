package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/marquee-cli/marquee/media"
	"github.com/samber/lo"
)

type container struct {
	MediaContainer struct {
		Size              int        `json:"size"`
		MachineIdentifier string     `json:"machineIdentifier"`
		Metadata          []metadata `json:"Metadata"`
		Setting           []setting  `json:"Setting"`

		PlayQueueID                 int64  `json:"playQueueID"`
		PlayQueueSelectedItemID     int64  `json:"playQueueSelectedItemID"`
		PlayQueueSelectedItemOffset int    `json:"playQueueSelectedItemOffset"`
		PlayQueueShuffled           bool   `json:"playQueueShuffled"`
		PlayQueueSourceURI          string `json:"playQueueSourceURI"`
		PlayQueueTotalCount         int    `json:"playQueueTotalCount"`
		PlayQueueVersion            int    `json:"playQueueVersion"`
	} `json:"MediaContainer"`
}

type metadata struct {
	RatingKey            string `json:"ratingKey"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	ParentRatingKey      string `json:"parentRatingKey"`
	ParentTitle          string `json:"parentTitle"`
	GrandparentRatingKey string `json:"grandparentRatingKey"`
	GrandparentTitle     string `json:"grandparentTitle"`
	ParentIndex          int    `json:"parentIndex"`
	Index                int    `json:"index"`
	Duration             int64  `json:"duration"`
	ViewOffset           int64  `json:"viewOffset"`
	Thumb                string `json:"thumb"`
	PlayQueueItemID      int64  `json:"playQueueItemID"`

	Media   []mediaVersion `json:"Media"`
	Marker  []marker       `json:"Marker"`
	Chapter []chapter      `json:"Chapter"`
}

type mediaVersion struct {
	ID              int64  `json:"id"`
	VideoResolution string `json:"videoResolution"`
	VideoCodec      string `json:"videoCodec"`
	AudioCodec      string `json:"audioCodec"`
	Container       string `json:"container"`
	Bitrate         int    `json:"bitrate"`
	Part            []part `json:"Part"`
}

type part struct {
	ID       int64    `json:"id"`
	Key      string   `json:"key"`
	File     string   `json:"file"`
	Duration int64    `json:"duration"`
	Stream   []stream `json:"Stream"`
}

type stream struct {
	ID           int64  `json:"id"`
	StreamType   int    `json:"streamType"`
	Index        int    `json:"index"`
	Codec        string `json:"codec"`
	LanguageCode string `json:"languageCode"`
	Language     string `json:"language"`
	Title        string `json:"title"`
	Selected     bool   `json:"selected"`
	Default      bool   `json:"default"`
	Forced       bool   `json:"forced"`
}

type marker struct {
	Type            string `json:"type"`
	StartTimeOffset int64  `json:"startTimeOffset"`
	EndTimeOffset   int64  `json:"endTimeOffset"`
}

type chapter struct {
	Tag             string `json:"tag"`
	StartTimeOffset int64  `json:"startTimeOffset"`
	EndTimeOffset   int64  `json:"endTimeOffset"`
}

type setting struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
}

func ms(v int64) time.Duration {
	return time.Duration(v) * time.Millisecond
}

func (m metadata) item(serverID string) media.Item {
	return media.Item{
		ID:               m.RatingKey,
		Kind:             media.Kind(m.Type),
		Title:            m.Title,
		ParentID:         m.ParentRatingKey,
		ParentTitle:      m.ParentTitle,
		GrandparentID:    m.GrandparentRatingKey,
		GrandparentTitle: m.GrandparentTitle,
		SeasonNumber:     m.ParentIndex,
		EpisodeNumber:    m.Index,
		Duration:         ms(m.Duration),
		ViewOffset:       ms(m.ViewOffset),
		Thumb:            m.Thumb,
		PlayQueueItemID:  m.PlayQueueItemID,
	}.WithServer(serverID)
}

func (m metadata) versions() []media.Version {
	return lo.Map(m.Media, func(v mediaVersion, _ int) media.Version {
		return media.Version{
			ID:              v.ID,
			VideoResolution: v.VideoResolution,
			VideoCodec:      v.VideoCodec,
			AudioCodec:      v.AudioCodec,
			Container:       v.Container,
			Bitrate:         v.Bitrate,
			Parts: lo.Map(v.Part, func(p part, _ int) media.Part {
				return media.Part{
					ID:       p.ID,
					Key:      p.Key,
					File:     p.File,
					Duration: ms(p.Duration),
					Streams:  lo.Map(p.Stream, func(s stream, _ int) media.Stream { return s.convert() }),
				}
			}),
		}
	})
}

func (s stream) convert() media.Stream {
	return media.Stream{
		ID:           s.ID,
		Kind:         media.StreamKind(s.StreamType),
		Index:        s.Index,
		Codec:        s.Codec,
		LanguageCode: s.LanguageCode,
		Language:     s.Language,
		Title:        s.Title,
		Selected:     s.Selected,
		Default:      s.Default,
		Forced:       s.Forced,
	}
}

func (m metadata) markers() []media.Marker {
	var out []media.Marker
	for _, mk := range m.Marker {
		t := media.MarkerType(mk.Type)
		if t != media.MarkerIntro && t != media.MarkerCredits {
			continue
		}
		if mk.EndTimeOffset <= mk.StartTimeOffset {
			continue
		}
		out = append(out, media.Marker{Type: t, Start: ms(mk.StartTimeOffset), End: ms(mk.EndTimeOffset)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func (m metadata) chapters() []media.Chapter {
	return lo.Map(m.Chapter, func(c chapter, _ int) media.Chapter {
		return media.Chapter{Title: c.Tag, Start: ms(c.StartTimeOffset), End: ms(c.EndTimeOffset)}
	})
}

func (c *Client) metadata(ctx context.Context, id string) (metadata, string, error) {
	var resp container
	query := url.Values{"includeMarkers": {"1"}, "includeChapters": {"1"}}
	if err := c.do(ctx, http.MethodGet, "/library/metadata/"+url.PathEscape(id), query, &resp); err != nil {
		return metadata{}, "", err
	}

	if len(resp.MediaContainer.Metadata) == 0 {
		return metadata{}, "", fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	return resp.MediaContainer.Metadata[0], resp.MediaContainer.MachineIdentifier, nil
}

// Item fetches a single item.
func (c *Client) Item(ctx context.Context, id string) (media.Item, error) {
	m, serverID, err := c.metadata(ctx, id)
	if err != nil {
		return media.Item{}, err
	}
	return m.item(serverID), nil
}

// Versions lists the media versions of an item.
func (c *Client) Versions(ctx context.Context, id string) ([]media.Version, error) {
	m, _, err := c.metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.versions(), nil
}

// Resolve turns an item into everything needed to open the engine: a direct-play URL
// for the chosen version's first part, the part's streams, markers and chapters.
func (c *Client) Resolve(ctx context.Context, id string, versionIndex int) (*media.Playable, error) {
	m, serverID, err := c.metadata(ctx, id)
	if err != nil {
		return nil, err
	}

	versions := m.versions()
	_, p, err := media.SelectVersion(versions, versionIndex)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}

	return &media.Playable{
		URL:          c.partURL(p.Key),
		Headers:      map[string]string{"X-Plex-Client-Identifier": c.clientID},
		Item:         m.item(serverID),
		Versions:     versions,
		VersionIndex: versionIndex,
		Part:         p,
		Chapters:     m.chapters(),
		Markers:      m.markers(),
	}, nil
}

func (c *Client) partURL(partKey string) string {
	return c.base + partKey + "?" + url.Values{"X-Plex-Token": {c.token}}.Encode()
}

// ArtworkURL turns an item's thumb path into a fetchable URL.
func (c *Client) ArtworkURL(thumb string) string {
	if thumb == "" {
		return ""
	}
	return c.partURL(thumb)
}

// Children lists the seasons of a show or the episodes of a season, ordered by index.
func (c *Client) Children(ctx context.Context, id string) ([]media.Item, error) {
	var resp container
	if err := c.do(ctx, http.MethodGet, "/library/metadata/"+url.PathEscape(id)+"/children", nil, &resp); err != nil {
		return nil, err
	}

	serverID := resp.MediaContainer.MachineIdentifier
	items := lo.Map(resp.MediaContainer.Metadata, func(m metadata, _ int) media.Item {
		it := m.item(serverID)
		if it.Kind == media.KindSeason {
			it.SeasonNumber = m.Index
			it.EpisodeNumber = 0
		}
		return it
	})

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Kind == media.KindSeason {
			return items[i].SeasonNumber < items[j].SeasonNumber
		}
		return items[i].EpisodeNumber < items[j].EpisodeNumber
	})
	return items, nil
}

// Markers fetches the intro and credits windows of an item.
func (c *Client) Markers(ctx context.Context, id string) ([]media.Marker, error) {
	m, _, err := c.metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.markers(), nil
}

// Chapters fetches the chapter list of an item.
func (c *Client) Chapters(ctx context.Context, id string) ([]media.Chapter, error) {
	m, _, err := c.metadata(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.chapters(), nil
}
