package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/marquee-cli/marquee/media"
)

// CreatePlayQueue asks the server for a new queue over a show, starting at an item.
func (c *Client) CreatePlayQueue(ctx context.Context, req media.QueueRequest) (*media.PlayQueue, error) {
	if req.ShowID == "" {
		return nil, fmt.Errorf("create play queue: missing show id")
	}

	query := url.Values{
		"type":       {"video"},
		"uri":        {c.libraryURI(req.ShowID)},
		"shuffle":    {boolParam(req.Shuffle)},
		"continuous": {"1"},
		"repeat":     {"0"},
		"own":        {"1"},
	}
	if req.StartItemID != "" {
		query.Set("key", "/library/metadata/"+req.StartItemID)
	}

	var resp container
	if err := c.do(ctx, http.MethodPost, "/playQueues", query, &resp); err != nil {
		return nil, err
	}
	return resp.playQueue(), nil
}

// PlayQueue fetches a window of an existing queue around center. Center may be a
// play queue item id or an item id.
func (c *Client) PlayQueue(ctx context.Context, id int64, center string, window int) (*media.PlayQueue, error) {
	query := url.Values{"own": {"1"}}
	if center != "" {
		query.Set("center", center)
	}
	if window > 0 {
		query.Set("window", strconv.Itoa(window))
	}

	var resp container
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/playQueues/%d", id), query, &resp); err != nil {
		return nil, err
	}
	return resp.playQueue(), nil
}

// ShufflePlayQueue reshuffles a queue server-side. The selected item stays selected.
func (c *Client) ShufflePlayQueue(ctx context.Context, id int64) (*media.PlayQueue, error) {
	var resp container
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/playQueues/%d/shuffle", id), nil, &resp); err != nil {
		return nil, err
	}
	return resp.playQueue(), nil
}

func (c *Client) libraryURI(showID string) string {
	return "library://x/directory//library/metadata/" + url.PathEscape(showID)
}

// playQueue converts the response. Item positions are absolute: the window offset is
// derived from the selected item's offset and its index within the window.
func (resp container) playQueue() *media.PlayQueue {
	mc := resp.MediaContainer
	q := &media.PlayQueue{
		ID:             mc.PlayQueueID,
		SourceURI:      mc.PlayQueueSourceURI,
		Shuffled:       mc.PlayQueueShuffled,
		SelectedItemID: mc.PlayQueueSelectedItemID,
		TotalCount:     mc.PlayQueueTotalCount,
		Version:        mc.PlayQueueVersion,
	}

	offset := 0
	for i, m := range mc.Metadata {
		if m.PlayQueueItemID == mc.PlayQueueSelectedItemID {
			offset = mc.PlayQueueSelectedItemOffset - i
			break
		}
	}

	for i, m := range mc.Metadata {
		q.Items = append(q.Items, media.QueueItem{
			Item:     m.item(mc.MachineIdentifier),
			Position: offset + i,
		})
	}
	return q
}

func boolParam(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
