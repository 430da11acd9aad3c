package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdkbot/releasemgr/pkg/channel"
	"github.com/cdkbot/releasemgr/pkg/charmhub"
	"github.com/cdkbot/releasemgr/pkg/gh"
	"github.com/cdkbot/releasemgr/pkg/launchpad"
	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/metrics"
	"github.com/cdkbot/releasemgr/pkg/promote"
	"github.com/cdkbot/releasemgr/pkg/snapstore"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Snap channel promotion",
}

var (
	flagDaysInEdge      int
	flagDaysInBeta      int
	flagDaysInCandidate int
	flagIgnoreTracks    []string
	flagIgnoreArches    []string
	flagGHAction        bool

	flagSnapRevision int
	flagSnapChannel  string
)

var promoteProposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Propose snap revisions whose dwell time at their risk level is complete",
	Long: `Propose walks the snap's full channel map and emits one promotion
proposal per (track, architecture) cell whose revision has matured at its
risk level, plus manual-approval notices for first stable releases.

Proposals are printed as JSON; with --gh-action they are also appended to
the workflow output for the release pipeline to consume.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := snapstore.NewClient(charmhub.AuthMacaroon)
		graph, err := store.GetChannelGraph(cfg.SnapName)
		if err != nil {
			return err
		}

		branches, err := launchpad.NewClient(cfg.Launchpad.Owner)
		if err != nil {
			return err
		}

		// Flags override the config file dwell times only when set
		thresholds := promote.Thresholds{
			channel.RiskEdge:      cfg.DwellDays.Edge,
			channel.RiskBeta:      cfg.DwellDays.Beta,
			channel.RiskCandidate: cfg.DwellDays.Candidate,
		}
		if cmd.Flags().Changed("days-in-edge-risk") {
			thresholds[channel.RiskEdge] = flagDaysInEdge
		}
		if cmd.Flags().Changed("days-in-beta-risk") {
			thresholds[channel.RiskBeta] = flagDaysInBeta
		}
		if cmd.Flags().Changed("days-in-candidate-risk") {
			thresholds[channel.RiskCandidate] = flagDaysInCandidate
		}

		reconciler := promote.Reconciler{
			SnapName:     cfg.SnapName,
			Series:       cfg.Series,
			Thresholds:   thresholds,
			IgnoreTracks: append(cfg.IgnoreTracks, flagIgnoreTracks...),
			IgnoreArches: append(cfg.IgnoreArches, flagIgnoreArches...),
			Branches:     branches,
		}

		result, err := reconciler.Propose(graph)
		if err != nil {
			return err
		}
		metrics.ProposalsTotal.Add(float64(len(result.Proposals)))
		metrics.ApprovalsRequired.Add(float64(len(result.Approvals)))

		encoded, err := json.Marshal(result.Proposals)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

		if flagGHAction {
			if err := gh.SetOutput("proposals", string(encoded)); err != nil {
				return err
			}
		}
		return nil
	},
}

var promoteReleaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Release one snap revision to a channel",
	Long: `Release executes a single promotion decided by a prior propose run:
it makes sure the target track exists and releases the revision to the
channel. Track creation treats an already existing track as success, so
re-running a partially applied promotion is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		track, _, found := strings.Cut(flagSnapChannel, "/")
		if !found {
			return fmt.Errorf("snap channel %q must be <track>/<risk>", flagSnapChannel)
		}

		store := snapstore.NewClient(charmhub.AuthMacaroon)
		releaseLog := log.WithComponent("promote").With().
			Str("channel", flagSnapChannel).Int("revision", flagSnapRevision).Logger()

		if flagDryRun {
			releaseLog.Info().Msg("Would release revision (dry run)")
			return nil
		}
		if err := store.EnsureTrack(cfg.SnapName, track); err != nil {
			return err
		}
		if err := store.ReleaseRevision(cfg.SnapName, flagSnapRevision, flagSnapChannel); err != nil {
			return err
		}
		releaseLog.Info().Msg("Released revision")
		return nil
	},
}

func init() {
	promoteProposeCmd.Flags().IntVar(&flagDaysInEdge, "days-in-edge-risk", 1,
		"Days a revision dwells in edge before beta promotion")
	promoteProposeCmd.Flags().IntVar(&flagDaysInBeta, "days-in-beta-risk", 3,
		"Days a revision dwells in beta before candidate promotion")
	promoteProposeCmd.Flags().IntVar(&flagDaysInCandidate, "days-in-candidate-risk", 5,
		"Days a revision dwells in candidate before stable promotion")
	promoteProposeCmd.Flags().StringSliceVar(&flagIgnoreTracks, "ignore-tracks", nil,
		"Tracks to skip, exact names or anchored regular expressions")
	promoteProposeCmd.Flags().StringSliceVar(&flagIgnoreArches, "ignore-arches", nil,
		"Architectures to skip")
	promoteProposeCmd.Flags().BoolVar(&flagGHAction, "gh-action", false,
		"Also append the proposals to the GitHub Actions output")

	promoteReleaseCmd.Flags().IntVar(&flagSnapRevision, "snap-revision", 0,
		"Snap revision to release")
	promoteReleaseCmd.Flags().StringVar(&flagSnapChannel, "snap-channel", "",
		"Target channel, <track>/<risk>")
	_ = promoteReleaseCmd.MarkFlagRequired("snap-revision")
	_ = promoteReleaseCmd.MarkFlagRequired("snap-channel")

	promoteCmd.AddCommand(promoteProposeCmd)
	promoteCmd.AddCommand(promoteReleaseCmd)
}
