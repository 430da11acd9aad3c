package builds

import (
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strings"

	"github.com/cdkbot/releasemgr/pkg/bundle"
	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/report"
	"github.com/cdkbot/releasemgr/pkg/sqa"
)

// buildStatuses are the platform build states scanned when reconstructing
// prior insight runs.
var buildStatuses = []string{"Queued", "Running", "Finished"}

// CharmStore resolves published revisions per channel
type CharmStore interface {
	GetRevisionMatrix(charm, channel string) (*bundle.RevisionMatrix, error)
}

// TestPlatform runs standalone insight builds
type TestPlatform interface {
	CreateBuild(name string, variables map[string]string) (sqa.Build, error)
	ListBuilds(status string) ([]sqa.Build, error)
}

// Insight creates single test builds for charm revisions that have not been
// exercised yet, giving early failure signal before promotion to candidate.
type Insight struct {
	Store    CharmStore
	Platform TestPlatform

	// SnapName prefixes build names and the addon IDs they decode from
	SnapName string

	// Charms in the bundle; LeadCharm's matrix drives cell selection and
	// keys prior builds by revision.
	Charms    []string
	LeadCharm string

	// Arch and Base constrain cell selection when non-empty
	Arch string
	Base string

	DryRun bool

	// Pick selects among candidate cells; defaults to a uniform draw
	Pick func(n int) int
}

// State maps a lead-charm revision to its prior insight build
type State map[string]report.BuildRecord

// LoadState scans queued, running and finished builds and decodes every
// addon ID matching <snap>-build-<rev>-<arch>-<base>-<track>-<risk>.
func (i *Insight) LoadState() (State, error) {
	pattern := regexp.MustCompile(
		fmt.Sprintf(`^%s-build-(\d+)-([^-]+)-([^-]+)-([^-]+)-([^-]+)$`, regexp.QuoteMeta(i.SnapName)))

	state := State{}
	for _, status := range buildStatuses {
		builds, err := i.Platform.ListBuilds(status)
		if err != nil {
			return nil, fmt.Errorf("list %s builds: %w", status, err)
		}
		for _, build := range builds {
			groups := pattern.FindStringSubmatch(build.AddonID)
			if groups == nil {
				continue
			}
			revision, arch, base, track, risk := groups[1], groups[2], groups[3], groups[4], groups[5]
			state[revision] = report.BuildRecord{
				Revision: revision,
				Status:   build.Status,
				Result:   build.Result,
				UUID:     build.UUID.String(),
				Arch:     arch,
				Base:     base,
				Channel:  track + "/" + risk,
			}
		}
	}
	return state, nil
}

// Records returns the state's build records for the results dump
func (s State) Records() []report.BuildRecord {
	records := make([]report.BuildRecord, 0, len(s))
	for _, record := range s {
		records = append(records, record)
	}
	return records
}

// CreateOneBuild creates at most one insight build for a track and risk:
// it assembles the bundle on the channel, collects the lead charm's
// untested (arch, base) cells within the configured constraints, and
// starts a build for one of them. Tracks with no untested cells are
// skipped, as are tracks whose bundle cannot be assembled.
func (i *Insight) CreateOneBuild(state State, track, risk string) error {
	channel := track + "/" + risk
	buildLog := log.WithChannel(channel)

	assembled := bundle.New(i.SnapName + "-operator")
	for _, charm := range i.Charms {
		matrix, err := i.Store.GetRevisionMatrix(charm, channel)
		if err != nil {
			buildLog.Error().Err(err).Str("charm", charm).Msg("Failed to get revision matrix")
			return nil
		}
		if matrix.Empty() {
			buildLog.Warn().Str("charm", charm).Msg("Charm has no revisions on channel")
			return nil
		}
		assembled.Set(charm, matrix)
	}

	lead := assembled.Get(i.LeadCharm)
	if lead == nil {
		buildLog.Warn().Str("charm", i.LeadCharm).Msg("Lead charm missing from bundle")
		return nil
	}

	var candidates [][2]string
	for _, base := range sortedSet(lead.Bases()) {
		for _, arch := range sortedSet(lead.Archs()) {
			if i.Arch != "" && i.Arch != arch {
				continue
			}
			if i.Base != "" && i.Base != base {
				continue
			}
			revision := lead.Get(arch, base)
			if revision == "" {
				continue
			}
			if _, tested := state[revision]; tested {
				continue
			}
			candidates = append(candidates, [2]string{arch, base})
		}
	}
	if len(candidates) == 0 {
		buildLog.Info().Msg("No untested revisions within constraints, skipping")
		return nil
	}

	pick := i.Pick
	if pick == nil {
		pick = rand.Intn
	}
	chosen := candidates[pick(len(candidates))]
	arch, base := chosen[0], chosen[1]
	buildLog.Info().Str("arch", arch).Str("base", base).Msg("Selected cell for insight build")

	revisions := assembled.Revisions(arch, base)
	leadRevision := revisions[leadRevisionKey(i.LeadCharm)]
	name := fmt.Sprintf("%s-build-%s-%s-%s-%s-%s", i.SnapName, leadRevision, arch, base, track, risk)

	variables := map[string]string{
		"base":    base,
		"arch":    arch,
		"channel": channel,
		"branch":  "release-" + track,
	}
	for key, value := range revisions {
		variables[key] = value
	}

	buildLog.Info().Str("build", name).Msg("Creating insight build")
	if i.DryRun {
		return nil
	}
	build, err := i.Platform.CreateBuild(name, variables)
	if err != nil {
		return fmt.Errorf("create build %s: %w", name, err)
	}
	state[leadRevision] = report.BuildRecord{
		Revision: leadRevision,
		Status:   build.Status,
		Result:   build.Result,
		UUID:     build.UUID.String(),
		Arch:     arch,
		Base:     base,
		Channel:  channel,
	}
	return nil
}

func leadRevisionKey(charm string) string {
	return strings.ReplaceAll(charm, "-", "_") + "_revision"
}

func sortedSet(set map[string]bool) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}
