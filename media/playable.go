package media

import "fmt"

// Playable is everything the media-info service resolves for one item and version.
type Playable struct {
	URL          string
	Headers      map[string]string
	Item         Item
	Versions     []Version
	VersionIndex int
	Part         Part
	Chapters     []Chapter
	Markers      []Marker
}

// Streams returns the current part's streams of one kind.
func (p *Playable) Streams(kind StreamKind) []Stream {
	return p.Part.StreamsOf(kind)
}

// SelectVersion returns the version and its first part, validating the index.
func SelectVersion(versions []Version, index int) (Version, Part, error) {
	if index < 0 || index >= len(versions) {
		return Version{}, Part{}, fmt.Errorf("version index %d out of range (%d versions)", index, len(versions))
	}
	v := versions[index]
	if len(v.Parts) == 0 {
		return Version{}, Part{}, fmt.Errorf("version %d has no parts", v.ID)
	}
	return v, v.Parts[0], nil
}
