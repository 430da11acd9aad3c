package main

import (
	"github.com/spf13/cobra"

	"github.com/cdkbot/releasemgr/pkg/builds"
	"github.com/cdkbot/releasemgr/pkg/charmhub"
	"github.com/cdkbot/releasemgr/pkg/kube"
	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/release"
	"github.com/cdkbot/releasemgr/pkg/report"
	"github.com/cdkbot/releasemgr/pkg/sqa"
)

var charmCmd = &cobra.Command{
	Use:   "charm",
	Short: "Charm release reconciliation",
}

var (
	flagCharms          []string
	flagSupportedTracks []string
	flagAfter           string
	flagResults         string

	flagBuildRisk string
	flagBuildArch string
	flagBuildBase string
)

// resolveTracks returns the explicit track list, or derives it from the
// upstream release feed down to the least supported track.
func resolveTracks() ([]string, error) {
	if len(flagSupportedTracks) > 0 {
		return flagSupportedTracks, nil
	}
	logger := log.WithComponent("charm")
	logger.Info().
		Str("after", flagAfter).
		Msg("Deriving supported tracks from upstream releases")
	return kube.NewFeed().ReleasesAfter(flagAfter)
}

var charmReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Reconcile charm candidate channels toward stable",
	Long: `Release runs the candidate-to-stable state machine for every track:
it compares the candidate and stable revision matrices of each charm,
classifies the test state of every pending revision cell, starts release
tests for untested cells, and promotes every charm once all cells passed.

Per-track verdicts land in the results file; tracks still in progress or
with nothing pending are omitted. The command exits non-zero only for
configuration errors, never for per-track failures.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracks, err := resolveTracks()
		if err != nil {
			return err
		}
		if len(tracks) == 0 {
			logger := log.WithComponent("charm")
			logger.Info().Msg("No tracks to process")
			return nil
		}

		charms := flagCharms
		if len(charms) == 0 {
			charms = cfg.Charms
		}

		processor := release.Processor{
			Store: charmhub.NewClient(),
			Tests: sqa.NewClient(sqa.Config{
				BaseURL:     cfg.SQA.BaseURL,
				ProductUUID: cfg.SQA.ProductUUID,
				TestPlanIDs: cfg.SQA.TestPlanIDs,
			}),
			BundleName: cfg.BundleName,
			Charms:     charms,
			FromRisk:   "candidate",
			ToRisk:     "stable",
			DryRun:     flagDryRun,
			Priorities: sqa.NewPriorityGenerator(),
		}

		verdicts := processor.Run(tracks)

		// In-progress and unchanged tracks carry no actionable outcome
		// and stay out of the results file.
		actionable := map[string]release.Verdict{}
		for track, verdict := range verdicts {
			if verdict == release.VerdictInProgress || verdict == release.VerdictUnchanged {
				continue
			}
			actionable[track] = verdict
		}
		return report.WriteResults(flagResults, actionable)
	},
}

var charmBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Run one insight build per track for untested charm revisions",
	Long: `Build creates at most one standalone test build per track for a
charm revision cell that has no prior build, giving early failure signal
before revisions reach candidate. Prior build outcomes are written to the
results file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracks, err := resolveTracks()
		if err != nil {
			return err
		}
		if len(tracks) == 0 {
			logger := log.WithComponent("charm")
			logger.Info().Msg("No tracks to create insight builds for")
			return nil
		}

		charms := flagCharms
		if len(charms) == 0 {
			charms = cfg.Charms
		}

		insight := builds.Insight{
			Store: charmhub.NewClient(),
			Platform: sqa.NewClient(sqa.Config{
				BaseURL:     cfg.SQA.BaseURL,
				ProductUUID: cfg.SQA.ProductUUID,
				TestPlanIDs: cfg.SQA.TestPlanIDs,
			}),
			SnapName:  cfg.SnapName,
			Charms:    charms,
			LeadCharm: charms[0],
			Arch:      flagBuildArch,
			Base:      flagBuildBase,
			DryRun:    flagDryRun,
		}

		state, err := insight.LoadState()
		if err != nil {
			return err
		}
		for _, track := range tracks {
			if err := insight.CreateOneBuild(state, track, flagBuildRisk); err != nil {
				return err
			}
		}
		return report.WriteBuilds(flagResults, state.Records())
	},
}

func init() {
	for _, cmd := range []*cobra.Command{charmReleaseCmd, charmBuildCmd} {
		cmd.Flags().StringSliceVar(&flagCharms, "charms", nil,
			"Charms in the bundle (defaults to the configured list)")
		cmd.Flags().StringSliceVar(&flagSupportedTracks, "supported-tracks", nil,
			"Explicit tracks to process")
		cmd.Flags().StringVar(&flagAfter, "after", "1.32",
			"Least supported track when deriving tracks from upstream releases")
		cmd.Flags().StringVar(&flagResults, "results", "results.txt",
			"Path of the results file")
		cmd.MarkFlagsMutuallyExclusive("supported-tracks", "after")
	}

	charmBuildCmd.Flags().StringVar(&flagBuildRisk, "risk", "beta",
		"Risk level to create insight builds for")
	charmBuildCmd.Flags().StringVar(&flagBuildArch, "arch", "amd64",
		"Only consider cells of this architecture")
	charmBuildCmd.Flags().StringVar(&flagBuildBase, "base", "",
		"Only consider cells of this base")

	charmCmd.AddCommand(charmReleaseCmd)
	charmCmd.AddCommand(charmBuildCmd)
}
