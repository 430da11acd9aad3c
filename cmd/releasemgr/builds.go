package main

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cdkbot/releasemgr/pkg/charmhub"
	"github.com/cdkbot/releasemgr/pkg/launchpad"
	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/snapstore"
)

var buildsCmd = &cobra.Command{
	Use:   "builds",
	Short: "Snap build recipe management",
}

var flagBranches []string

// srcBranchRE matches the branches snap builds are produced from: the
// development head and the release branches.
var srcBranchRE = regexp.MustCompile(`^(?:main)$|^(?:release-\d+\.\d+)$`)

// branchTrack splits a source branch into its track and tip-ness.
// main -> ("", true), release-1.32 -> ("1.32", false).
func branchTrack(branch string) (string, bool) {
	if branch == "main" {
		return "", true
	}
	return strings.TrimPrefix(branch, "release-"), false
}

// sourceBranches filters the requested branches down to supported ones
func sourceBranches() []string {
	buildLog := log.WithComponent("builds")
	var branches []string
	for _, branch := range flagBranches {
		if !srcBranchRE.MatchString(branch) {
			buildLog.Warn().Str("branch", branch).Msg("Skipping unsupported branch")
			continue
		}
		branches = append(branches, branch)
	}
	return branches
}

var buildsEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Ensure store tracks and build recipes exist for release branches",
	Long: `Ensure converges the snap build pipeline for each source branch: the
store tracks its flavors publish to exist, and one build recipe per flavor
exists, builds from the right branch, and pushes to the right channels.
Existing recipes are updated field by field; nothing is recreated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := launchpad.NewClient(cfg.Launchpad.Owner)
		if err != nil {
			return err
		}
		store := snapstore.NewClient(charmhub.AuthMacaroon)
		buildLog := log.WithComponent("builds")

		for _, branch := range sourceBranches() {
			track, tip := branchTrack(branch)
			for _, flavor := range cfg.Flavors {
				channels := launchpad.StoreChannels(flavor, track, tip)
				buildLog.Info().
					Str("branch", branch).Str("flavor", flavor).
					Strs("channels", channels).
					Msg("Ensuring store tracks")

				if !flagDryRun {
					for _, name := range channels {
						chTrack, _, _ := strings.Cut(name, "/")
						// The latest track always exists
						if chTrack == "latest" {
							continue
						}
						if err := store.EnsureTrack(cfg.SnapName, chTrack); err != nil {
							return err
						}
					}
				}

				// Launchpad drops the implicit latest prefix from store
				// channels.
				recipeChannels := make([]string, 0, len(channels))
				for _, name := range channels {
					recipeChannels = append(recipeChannels, strings.TrimPrefix(name, "latest/"))
				}

				manifest := launchpad.Manifest{
					Name:          launchpad.RecipeName(cfg.SnapName, flavor, track, tip),
					Project:       cfg.Launchpad.Project,
					Repository:    cfg.Launchpad.Repository,
					Branch:        launchpad.FlavorBranch(flavor, track, tip),
					StoreName:     cfg.SnapName,
					StoreChannels: recipeChannels,
				}
				if _, err := lp.EnsureRecipe(manifest, flagDryRun); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

var buildsRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Request rebuilds of the recipes for release branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		lp, err := launchpad.NewClient(cfg.Launchpad.Owner)
		if err != nil {
			return err
		}
		buildLog := log.WithComponent("builds")

		for _, branch := range sourceBranches() {
			track, tip := branchTrack(branch)
			for _, flavor := range cfg.Flavors {
				name := launchpad.RecipeName(cfg.SnapName, flavor, track, tip)
				recipe, err := lp.RecipeByName(name)
				if err != nil {
					return err
				}
				if recipe == nil {
					buildLog.Warn().Str("recipe", name).Msg("Recipe not found, skipping")
					continue
				}

				buildLog.Info().Str("recipe", name).Bool("dry_run", flagDryRun).
					Msg("Requesting builds")
				if flagDryRun {
					continue
				}
				if err := lp.RequestBuilds(*recipe); err != nil {
					return err
				}
			}
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{buildsEnsureCmd, buildsRequestCmd} {
		cmd.Flags().StringSliceVar(&flagBranches, "branches", nil,
			"Source branches to process")
		_ = cmd.MarkFlagRequired("branches")
	}

	buildsCmd.AddCommand(buildsEnsureCmd)
	buildsCmd.AddCommand(buildsRequestCmd)
}
