package channel

import (
	"fmt"
	"regexp"
	"strconv"
)

// trackRE matches release track names of the form major.minor with an
// optional trailing qualifier, e.g. "1.32" or "1.31-classic".
var trackRE = regexp.MustCompile(`^(\d+)\.(\d+)(\S*)$`)

// Track is a parsed release track name
type Track struct {
	Major     int
	Minor     int
	Qualifier string
}

// ParseTrack parses a track name of the shape major.minor[qualifier]
func ParseTrack(name string) (Track, error) {
	match := trackRE.FindStringSubmatch(name)
	if match == nil {
		return Track{}, fmt.Errorf("invalid track name: %q", name)
	}
	major, err := strconv.Atoi(match[1])
	if err != nil {
		return Track{}, fmt.Errorf("invalid track name: %q: %w", name, err)
	}
	minor, err := strconv.Atoi(match[2])
	if err != nil {
		return Track{}, fmt.Errorf("invalid track name: %q: %w", name, err)
	}
	return Track{Major: major, Minor: minor, Qualifier: match[3]}, nil
}

// Prior returns the immediately preceding minor track with the same
// qualifier, e.g. "1.32" -> "1.31". ok is false when there is no prior
// minor on the same major series.
func (t Track) Prior() (Track, bool) {
	if t.Minor == 0 {
		return Track{}, false
	}
	return Track{Major: t.Major, Minor: t.Minor - 1, Qualifier: t.Qualifier}, true
}

func (t Track) String() string {
	return strconv.Itoa(t.Major) + "." + strconv.Itoa(t.Minor) + t.Qualifier
}
