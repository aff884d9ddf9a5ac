package media

// QueueRequest describes a play queue to create on the server.
type QueueRequest struct {
	ShowID      string
	StartItemID string
	Shuffle     bool
}

// PlayQueue is a server-maintained ordered list of items. Only a window of the list is
// materialized locally; each Item carries its absolute position in QueueItem.Position.
type PlayQueue struct {
	ID             int64
	SourceURI      string
	Shuffled       bool
	SelectedItemID int64
	TotalCount     int
	Version        int
	Items          []QueueItem
}

// QueueItem is an item plus its absolute position in the queue.
type QueueItem struct {
	Item     Item
	Position int
}

// IndexOf returns the local window index of the given server item id.
func (q *PlayQueue) IndexOf(itemID string) (int, bool) {
	for i, qi := range q.Items {
		if qi.Item.ID == itemID {
			return i, true
		}
	}
	return -1, false
}

// Selected returns the item the server marks as current.
func (q *PlayQueue) Selected() (QueueItem, bool) {
	for _, qi := range q.Items {
		if qi.Item.PlayQueueItemID == q.SelectedItemID {
			return qi, true
		}
	}
	return QueueItem{}, false
}

// AtPosition returns the materialized item at an absolute position.
func (q *PlayQueue) AtPosition(pos int) (QueueItem, bool) {
	for _, qi := range q.Items {
		if qi.Position == pos {
			return qi, true
		}
	}
	return QueueItem{}, false
}
