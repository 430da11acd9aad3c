package promote

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/cdkbot/releasemgr/pkg/channel"
	"github.com/cdkbot/releasemgr/pkg/gh"
	"github.com/cdkbot/releasemgr/pkg/log"
)

// reservedTracks are never promoted automatically
var reservedTracks = []string{"latest"}

// BranchResolver maps a snap track to the code-host branch it is built from
type BranchResolver interface {
	BranchForTrack(snap, track string) (string, error)
}

// Reconciler decides, per (track, architecture) channel cell, whether the
// current revision has matured enough to propose promotion to the next risk
// level. Each cell is evaluated independently; repeated invocations emit the
// same proposals until the store state changes.
type Reconciler struct {
	SnapName     string
	Series       []string
	Thresholds   Thresholds
	IgnoreTracks []string
	IgnoreArches []string
	Branches     BranchResolver

	// Now is the clock used for dwell computation, injectable for tests.
	// Defaults to time.Now.
	Now func() time.Time
}

// Propose evaluates every channel cell of the graph and returns the
// promotion proposals and manual-approval notices for this pass.
func (r *Reconciler) Propose(graph *channel.Graph) (Result, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	thresholds := r.Thresholds
	if thresholds == nil {
		thresholds = DefaultThresholds()
	}

	var result Result
	for _, arch := range graph.Archs() {
		proposals, approvals, err := r.proposeArch(arch, graph.Channels(arch), thresholds, now())
		if err != nil {
			return Result{}, err
		}
		result.Proposals = append(result.Proposals, proposals...)
		result.Approvals = append(result.Approvals, approvals...)
	}
	return result, nil
}

func (r *Reconciler) proposeArch(
	arch string, channels map[string]channel.Channel, thresholds Thresholds, now time.Time,
) ([]Proposal, []ManualApproval, error) {
	var proposals []Proposal
	var approvals []ManualApproval

	for _, info := range sortedChannels(channels) {
		chanLog := log.WithComponent("promote").With().
			Str("channel", info.Name).Str("arch", arch).Logger()

		nextRisk, ok := info.NextRisk()
		if !ok {
			chanLog.Debug().Msg("Skipping promoting stable")
			continue
		}
		if r.trackIgnored(info.Track) {
			chanLog.Debug().Msg("Skipping ignored track")
			continue
		}
		if r.archIgnored(arch) {
			chanLog.Debug().Msg("Skipping ignored architecture")
			continue
		}

		// Missing next-risk channels compare as the zero Channel, so a
		// vacant slot never blocks promotion.
		nextName := info.Track + "/" + nextRisk.String()
		next, nextOK := channels[nextName]

		dwellComplete := info.ReleasedAt != nil &&
			daysBetween(*info.ReleasedAt, now) >= thresholds[info.Risk] &&
			(!nextOK || info.Revision != next.Revision)

		// A newer build in edge supersedes an untested one sitting at the
		// edge target; do not keep it blocked behind the dwell timer.
		newPatchSupersedes := info.Risk == channel.RiskEdge &&
			info.Version != next.Version

		if !dwellComplete && !newPatchSupersedes {
			continue
		}

		if nextRisk == channel.RiskStable {
			if _, hasStable := channels[info.Track+"/stable"]; !hasStable {
				// The first stable release of a track requires SolQA
				// blessing and is promoted manually.
				chanLog.Warn().
					Int("revision", info.Revision).
					Str("next_risk", nextRisk.String()).
					Msg("Approval needed by SolQA")
				approvals = append(approvals, ManualApproval{
					Track:    info.Track,
					Arch:     arch,
					Revision: info.Revision,
					NextRisk: nextRisk.String(),
				})
				continue
			}
		}

		branch := ""
		if r.Branches != nil {
			var err error
			branch, err = r.Branches.BranchForTrack(r.SnapName, info.Track)
			if err != nil {
				return nil, nil, fmt.Errorf("resolve branch for track %s: %w", info.Track, err)
			}
		}

		upgrades, err := upgradeChannels(info, channels)
		if err != nil {
			return nil, nil, err
		}

		chanLog.Info().
			Int("revision", info.Revision).
			Str("next_risk", nextRisk.String()).
			Msg("Proposing promotion")

		images := make([]string, 0, len(r.Series))
		for _, series := range r.Series {
			images = append(images, "ubuntu:"+series)
		}

		proposals = append(proposals, Proposal{
			Name:            fmt.Sprintf("%s-%s-%s-%s", r.SnapName, info.Track, nextRisk, arch),
			Track:           info.Track,
			Arch:            arch,
			Revision:        info.Revision,
			NextRisk:        nextRisk.String(),
			SnapChannel:     nextName,
			Branch:          branch,
			UpgradeChannels: upgrades,
			RunnerLabels:    gh.ArchToRunnerLabels(arch, true),
			LXDImages:       images,
		})
	}

	return proposals, approvals, nil
}

// upgradeChannels builds the upgrade-test source stages for a proposal
// within one architecture. At most three sources are considered:
//
//   - the next risk on this track (simulates a snap refresh)
//   - the highest risk on this track above the next risk (confirms the
//     revision can replace the most mature shipped build)
//   - the highest risk on the prior minor track (confirms the revision can
//     replace the prior series)
//
// Sources whose revision equals the candidate revision are dropped; a
// self-upgrade test proves nothing.
func upgradeChannels(info channel.Channel, channels map[string]channel.Channel) ([][2]string, error) {
	nextRisk, _ := info.NextRisk()
	sources := make(map[string]bool)

	nextName := info.Track + "/" + nextRisk.String()
	if _, ok := channels[nextName]; ok {
		sources[nextName] = true
	}

	// Highest risk above next-risk on the same track, most mature first
	for idx := len(channel.RiskLevels) - 1; idx > nextRisk.Index(); idx-- {
		name := info.Track + "/" + channel.RiskLevels[idx].String()
		if _, ok := channels[name]; ok {
			sources[name] = true
			break
		}
	}

	track, err := channel.ParseTrack(info.Track)
	if err != nil {
		return nil, err
	}
	if prior, ok := track.Prior(); ok {
		for idx := len(channel.RiskLevels) - 1; idx >= 0; idx-- {
			name := prior.String() + "/" + channel.RiskLevels[idx].String()
			if _, ok := channels[name]; ok {
				sources[name] = true
				break
			}
		}
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		if channels[name].Revision != info.Revision {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	stages := make([][2]string, 0, len(names))
	for _, name := range names {
		stages = append(stages, [2]string{name, info.Name})
	}
	return stages, nil
}

func (r *Reconciler) trackIgnored(track string) bool {
	for _, reserved := range reservedTracks {
		if track == reserved {
			return true
		}
	}
	for _, pattern := range r.IgnoreTracks {
		if pattern == track {
			return true
		}
		if re, err := regexp.Compile("^(?:" + pattern + ")$"); err == nil && re.MatchString(track) {
			return true
		}
	}
	return false
}

func (r *Reconciler) archIgnored(arch string) bool {
	for _, ignored := range r.IgnoreArches {
		if arch == ignored {
			return true
		}
	}
	return false
}

// daysBetween returns whole days elapsed from a to b
func daysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours() / 24)
}

// sortedChannels orders channels by (name, risk) descending so evaluation
// order is deterministic and the most mature channels are visited first.
func sortedChannels(channels map[string]channel.Channel) []channel.Channel {
	ordered := make([]channel.Channel, 0, len(channels))
	for _, c := range channels {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Name != ordered[j].Name {
			return ordered[i].Name > ordered[j].Name
		}
		return ordered[i].Risk.Index() > ordered[j].Risk.Index()
	})
	return ordered
}
