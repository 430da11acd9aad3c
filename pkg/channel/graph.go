package channel

import (
	"sort"
	"time"
)

// Channel is one row of store channel-map data: the revision currently
// published at a (track, risk, architecture) slot.
type Channel struct {
	Name         string // "<track>/<risk>"
	Track        string
	Risk         Risk
	Architecture string
	Revision     int
	Version      string
	ReleasedAt   *time.Time // nil when the store reports no release date
}

// NextRisk returns the risk level a promotion from this channel targets.
// ok is false for stable channels.
func (c Channel) NextRisk() (Risk, bool) {
	return c.Risk.Next()
}

// Graph holds the full channel map of a snap, grouped per architecture and
// keyed by channel name within each architecture.
type Graph struct {
	byArch map[string]map[string]Channel
}

// NewGraph creates an empty channel graph
func NewGraph() *Graph {
	return &Graph{byArch: make(map[string]map[string]Channel)}
}

// Add inserts a channel entry. Within a (track, risk, architecture) triple
// at most one entry is current; later inserts overwrite earlier ones.
func (g *Graph) Add(c Channel) {
	channels, ok := g.byArch[c.Architecture]
	if !ok {
		channels = make(map[string]Channel)
		g.byArch[c.Architecture] = channels
	}
	channels[c.Name] = c
}

// Archs returns the sorted architectures present in the graph
func (g *Graph) Archs() []string {
	archs := make([]string, 0, len(g.byArch))
	for arch := range g.byArch {
		archs = append(archs, arch)
	}
	sort.Strings(archs)
	return archs
}

// Channels returns the channel map for one architecture
func (g *Graph) Channels(arch string) map[string]Channel {
	return g.byArch[arch]
}
