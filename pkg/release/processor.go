package release

import (
	"fmt"
	"sort"

	"github.com/cdkbot/releasemgr/pkg/bundle"
	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/metrics"
	"github.com/cdkbot/releasemgr/pkg/sqa"
)

// testedArch is the only architecture the test platform can currently
// exercise. TPIs for other architectures would be indistinguishable on the
// platform side and create duplicates, so other cells are skipped until the
// platform grows per-arch test environments.
const testedArch = "amd64"

// CharmStore is the artifact registry capability the processor consumes
type CharmStore interface {
	GetRevisionMatrix(charm, channel string) (*bundle.RevisionMatrix, error)
	PromoteCharm(charm, fromChannel, toChannel string) error
}

// TestPlatform is the test orchestration capability the processor consumes
type TestPlatform interface {
	FindInstances(channel, base, version string) ([]sqa.TestPlanInstance, error)
	StartReleaseTest(channel, base, arch string, revisions map[string]string, version string, priority int) error
}

// Processor reconciles the release state of tracks: it rebuilds the current
// state from the store and the test platform on every invocation, classifies
// it, and performs the one next action per track. Repeated invocations
// converge without duplicating side effects.
type Processor struct {
	Store      CharmStore
	Tests      TestPlatform
	BundleName string
	Charms     []string
	FromRisk   string
	ToRisk     string
	DryRun     bool
	Priorities *sqa.PriorityGenerator
}

// Run processes every track independently. One track's failure never aborts
// the others; each track ends with its own verdict.
func (p *Processor) Run(tracks []string) map[string]Verdict {
	verdicts := make(map[string]Verdict, len(tracks))
	for _, track := range tracks {
		timer := metrics.NewTimer()
		verdict := p.ProcessTrack(track)
		timer.ObserveDuration(metrics.TrackReconcileDuration)
		metrics.TracksProcessed.Inc()
		metrics.VerdictsTotal.WithLabelValues(string(verdict)).Inc()
		verdicts[track] = verdict
	}
	return verdicts
}

// ProcessTrack runs the release state machine for one track
func (p *Processor) ProcessTrack(track string) Verdict {
	trackLog := log.WithTrack(track)

	fromChannel := track + "/" + p.FromRisk
	toChannel := track + "/" + p.ToRisk

	operatorBundle := bundle.New(p.BundleName)
	pending := false

	for _, charm := range p.Charms {
		trackLog.Info().Str("charm", charm).Msg("Getting revision matrices")

		fromMatrix, err := p.Store.GetRevisionMatrix(charm, fromChannel)
		if err != nil {
			trackLog.Error().Err(err).
				Str("charm", charm).Str("channel", fromChannel).
				Msg("Failed to get candidate revision matrix")
			return VerdictCIFailure
		}
		trackLog.Debug().Str("channel", fromChannel).Msg("Revisions:\n" + fromMatrix.String())

		toMatrix, err := p.Store.GetRevisionMatrix(charm, toChannel)
		if err != nil {
			trackLog.Error().Err(err).
				Str("charm", charm).Str("channel", toChannel).
				Msg("Failed to get stable revision matrix")
			return VerdictCIFailure
		}
		trackLog.Debug().Str("channel", toChannel).Msg("Revisions:\n" + toMatrix.String())

		if fromMatrix.Empty() {
			trackLog.Info().Str("charm", charm).Str("channel", fromChannel).
				Msg("Channel has no revisions, nothing pending")
			operatorBundle.Set(charm, toMatrix)
			continue
		}

		if fromMatrix.Equal(toMatrix) {
			trackLog.Info().Str("charm", charm).Str("channel", fromChannel).
				Msg("Channel is already published, nothing pending")
			operatorBundle.Set(charm, toMatrix)
			continue
		}

		pending = true
		operatorBundle.Set(charm, fromMatrix)
	}

	if !operatorBundle.IsTestable() {
		// Shape mismatch or a missing matrix means the store answered
		// inconsistently; deciding on partial data is unsafe.
		trackLog.Error().Msg("Bundle is not jointly testable, aborting track")
		return VerdictCIFailure
	}

	if !pending {
		trackLog.Info().Msg("No charm has pending candidate revisions")
		return VerdictUnchanged
	}

	state, err := p.ensureTrackState(fromChannel, operatorBundle)
	if err != nil {
		trackLog.Error().Err(err).Msg("Failed to reconcile track state")
		return VerdictCIFailure
	}
	trackLog.Info().Str("state", state.String()).Msg("Track state")

	switch {
	case state.Empty():
		trackLog.Error().Msg("Track state is empty and indicative of a CI failure")
		return VerdictCIFailure
	case state.Succeeded():
		trackLog.Info().Msg("Release run succeeded, promoting charm revisions")
		if !p.DryRun {
			for _, charm := range p.Charms {
				if err := p.Store.PromoteCharm(charm, fromChannel, toChannel); err != nil {
					trackLog.Error().Err(err).Str("charm", charm).Msg("Failed to promote charm")
					return VerdictCIFailure
				}
				metrics.PromotionsTotal.Inc()
			}
		}
		return VerdictSuccess
	case state.InProgress():
		trackLog.Info().Msg("Release run is still in progress, no action needed")
		return VerdictInProgress
	case state.Failed():
		trackLog.Warn().Msg("Release run failed, manual intervention required")
		return VerdictFailed
	default:
		trackLog.Error().Msg("Unknown track state")
		return VerdictCIFailure
	}
}

// ensureTrackState classifies every (arch, base) cell of the bundle on the
// candidate channel, starting a new test run for cells that have none.
func (p *Processor) ensureTrackState(channel string, b *bundle.Bundle) (*TrackState, error) {
	state := NewTrackState()

	for _, arch := range sortedSet(b.Archs()) {
		if arch != testedArch {
			continue
		}

		for _, base := range sortedSet(b.Bases()) {
			version := b.Version(arch, base)
			if version == "" {
				continue
			}

			cellLog := log.WithChannel(channel).With().
				Str("arch", arch).Str("base", base).Str("version", version).Logger()
			cellLog.Info().Msg("Checking for existing test plan instances")

			instances, err := p.Tests.FindInstances(channel, base, version)
			if err != nil {
				return nil, fmt.Errorf("find instances for %s: %w", version, err)
			}

			status := ClassifyCell(instances)
			if status == CellNoTest {
				revisions := b.Revisions(arch, base)
				priority := p.Priorities.Next()
				cellLog.Info().Int("priority", priority).
					Msg("No test plan instance found, creating a new one")
				if !p.DryRun {
					if err := p.Tests.StartReleaseTest(channel, base, arch, revisions, version, priority); err != nil {
						return nil, fmt.Errorf("start release test for %s: %w", version, err)
					}
					metrics.InstancesCreated.Inc()
				}
				state.Set(version, CellInProgress)
				continue
			}

			state.Set(version, status)
		}
	}

	return state, nil
}

func sortedSet(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
