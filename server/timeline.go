package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marquee-cli/marquee/media"
)

const libraryIdentifier = "com.plexapp.plugins.library"

// ReportProgress posts a timeline update. The server treats repeats as idempotent.
func (c *Client) ReportProgress(ctx context.Context, r media.Report) error {
	query := url.Values{
		"ratingKey": {r.ItemID},
		"key":       {"/library/metadata/" + r.ItemID},
		"state":     {string(r.State)},
		"time":      {strconv.FormatInt(r.Position.Milliseconds(), 10)},
	}
	if r.Duration > 0 {
		query.Set("duration", strconv.FormatInt(r.Duration.Milliseconds(), 10))
	}
	return c.do(ctx, http.MethodGet, "/:/timeline", query, nil)
}

// MarkWatched flags an item, or every episode below a show or season, as watched.
func (c *Client) MarkWatched(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodGet, "/:/scrobble", scrobbleQuery(id), nil)
}

// MarkUnwatched clears the watched flag.
func (c *Client) MarkUnwatched(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodGet, "/:/unscrobble", scrobbleQuery(id), nil)
}

func scrobbleQuery(id string) url.Values {
	return url.Values{"key": {id}, "identifier": {libraryIdentifier}}
}
