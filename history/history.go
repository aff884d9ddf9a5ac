// Package history keeps a local record of where playback stopped, so `marquee --continue`
// can resume without asking the server.
package history

import (
	"sort"
	"sync"
	"time"

	"github.com/marquee-cli/marquee/filesystem"
	"github.com/marquee-cli/marquee/media"
	"github.com/marquee-cli/marquee/where"
	"github.com/metafates/gache"
	"github.com/samber/lo"
)

var cacher = sync.OnceValue(func() *gache.Cache[map[string]*Entry] {
	return gache.New[map[string]*Entry](
		&gache.Options{
			Path:       where.History(),
			FileSystem: &filesystem.GacheFs{},
		},
	)
})

// Get returns every saved entry keyed by series or item.
func Get() (map[string]*Entry, error) {
	cached, expired, err := cacher().Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Entry), nil
	}
	return cached, nil
}

// Save records the position reached in item.
func Save(item media.Item, position time.Duration, versionIndex int) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	entry := newEntry(item, position, versionIndex)
	saved[entry.key()] = entry

	return cacher().Set(saved)
}

// List returns entries, most recent first.
func List() ([]*Entry, error) {
	saved, err := Get()
	if err != nil {
		return nil, err
	}

	entries := lo.Values(saved)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// Latest returns the most recently updated entry.
func Latest() (*Entry, bool, error) {
	entries, err := List()
	if err != nil || len(entries) == 0 {
		return nil, false, err
	}
	return entries[0], true, nil
}

// Remove deletes an entry.
func Remove(entry *Entry) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, entry.key())
	return cacher().Set(saved)
}

// Clear deletes every entry.
func Clear() error {
	return cacher().Set(make(map[string]*Entry))
}
