package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marquee-cli/marquee/media"
)

// SeriesLanguages reads the audio and subtitle language preferred for a series.
func (c *Client) SeriesLanguages(ctx context.Context, seriesID string) (media.SeriesLanguages, error) {
	var resp container
	if err := c.do(ctx, http.MethodGet, "/library/metadata/"+url.PathEscape(seriesID)+"/prefs", nil, &resp); err != nil {
		return media.SeriesLanguages{}, err
	}

	var prefs media.SeriesLanguages
	for _, s := range resp.MediaContainer.Setting {
		value, _ := s.Value.(string)
		switch s.ID {
		case "audioLanguage":
			prefs.AudioLanguage = value
		case "subtitleLanguage":
			prefs.SubtitleLanguage = value
		}
	}
	return prefs, nil
}

// SetSeriesLanguages stores language preferences for a series. Empty fields are left untouched.
func (c *Client) SetSeriesLanguages(ctx context.Context, seriesID string, prefs media.SeriesLanguages) error {
	query := url.Values{}
	if prefs.AudioLanguage != "" {
		query.Set("audioLanguage", prefs.AudioLanguage)
	}
	if prefs.SubtitleLanguage != "" {
		query.Set("subtitleLanguage", prefs.SubtitleLanguage)
	}
	if len(query) == 0 {
		return nil
	}
	return c.do(ctx, http.MethodPut, "/library/metadata/"+url.PathEscape(seriesID)+"/prefs", query, nil)
}

// SetPartStreams stores the exact streams selected for a part. A subtitle stream id of 0
// together with SubtitleOff disables subtitles.
func (c *Client) SetPartStreams(ctx context.Context, sel media.PartSelection) error {
	query := url.Values{"allParts": {"1"}}
	if sel.AudioStreamID != 0 {
		query.Set("audioStreamID", strconv.FormatInt(sel.AudioStreamID, 10))
	}
	switch {
	case sel.SubtitleOff:
		query.Set("subtitleStreamID", "0")
	case sel.SubtitleStreamID != 0:
		query.Set("subtitleStreamID", strconv.FormatInt(sel.SubtitleStreamID, 10))
	}
	return c.do(ctx, http.MethodPut, "/library/parts/"+strconv.FormatInt(sel.PartID, 10), query, nil)
}
