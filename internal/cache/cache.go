// Package cache prunes files marquee leaves behind: old logs and expired cache entries.
package cache

import (
	"io/fs"
	"time"

	"github.com/marquee-cli/marquee/filesystem"
	"github.com/marquee-cli/marquee/log"
	"github.com/spf13/afero"
)

// TTL is how long logs and cache files are kept.
const TTL = 7 * 24 * time.Hour

// CollectGarbage removes regular files under dir last modified more than ttl ago and
// returns how many were removed. A missing dir is not an error.
func CollectGarbage(dir string, ttl time.Duration) (int, error) {
	fsys := filesystem.API()

	exists, err := fsys.DirExists(dir)
	if err != nil || !exists {
		return 0, err
	}

	cutoff := time.Now().Add(-ttl)
	var stale []string

	err = afero.Walk(fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.Mode().IsRegular() && info.ModTime().Before(cutoff) {
			stale = append(stale, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, path := range stale {
		if err := fsys.Remove(path); err != nil {
			log.Warnf("remove %s: %v", path, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// Prune collects garbage in every given directory in the background.
func Prune(dirs ...string) {
	go func() {
		for _, dir := range dirs {
			n, err := CollectGarbage(dir, TTL)
			if err != nil {
				log.Warnf("prune %s: %v", dir, err)
				continue
			}
			if n > 0 {
				log.Debugf("pruned %d stale files from %s", n, dir)
			}
		}
	}()
}
