package engine

import (
	"sort"

	"github.com/marquee-cli/marquee/media"
)

// ChapterList merges server chapters with marker windows so intro and credits appear on
// the player's timeline. Markers only add chapters when the server sent none.
func ChapterList(chapters []media.Chapter, markers []media.Marker) []media.Chapter {
	if len(chapters) > 0 {
		return chapters
	}
	if len(markers) == 0 {
		return nil
	}

	out := []media.Chapter{{Title: "Start", Start: 0}}
	for _, m := range markers {
		switch m.Type {
		case media.MarkerIntro:
			out = append(out,
				media.Chapter{Title: "Intro", Start: m.Start, End: m.End},
				media.Chapter{Title: "Episode", Start: m.End},
			)
		case media.MarkerCredits:
			out = append(out, media.Chapter{Title: "Credits", Start: m.Start, End: m.End})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}
