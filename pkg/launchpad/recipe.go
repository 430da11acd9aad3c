package launchpad

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"

	"github.com/cdkbot/releasemgr/pkg/log"
)

// Recipe build defaults. Builds run against the primary ubuntu archive with
// a pinned snapcraft channel so recipe rebuilds stay reproducible.
const (
	defaultArchive         = "/ubuntu/+archive/primary"
	defaultPocket          = "Updates"
	defaultSnapcraftPin    = "8.x/stable"
	defaultInformationType = "Public"
	defaultStoreSeries     = "/+snappy-series/16"
)

// defaultProcessors are the architectures every recipe builds for
var defaultProcessors = []string{
	"/+processors/amd64",
	"/+processors/arm64",
}

// RecipeName derives the recipe name for a snap flavor. Tip recipes track
// the development head; release recipes track one minor version.
func RecipeName(snap, flavor, track string, tip bool) string {
	if tip {
		return fmt.Sprintf("%s-snap-tip-%s", snap, flavor)
	}
	return fmt.Sprintf("%s-snap-%s-%s", snap, track, flavor)
}

// FlavorBranch derives the git branch a recipe builds from. The classic
// flavor builds straight from main or the release branch; other flavors
// build from generated autoupdate branches.
func FlavorBranch(flavor, track string, tip bool) string {
	switch {
	case tip && flavor == "classic":
		return "main"
	case tip:
		return "autoupdate/" + flavor
	case flavor == "classic":
		return "release-" + track
	default:
		return fmt.Sprintf("autoupdate/release-%s-%s", track, flavor)
	}
}

// StoreChannels derives the store channels a recipe pushes its builds to
func StoreChannels(flavor, track string, tip bool) []string {
	if tip {
		channels := []string{"latest/edge/" + flavor}
		if flavor == "classic" {
			channels = append(channels, "latest/edge")
		}
		return channels
	}
	name := track
	if flavor != "strict" && flavor != "classic" {
		name += "-" + flavor
	}
	return []string{name + "/edge"}
}

// Manifest is the desired state of a recipe
type Manifest struct {
	Name          string
	Project       string
	Repository    string
	Branch        string
	StoreName     string
	StoreChannels []string
}

// gitRefLink builds the API link of a branch in the owner's repository
func (c *Client) gitRefLink(m Manifest) string {
	return fmt.Sprintf("%s/~%s/%s/+git/%s/+ref/%s",
		apiRoot, c.owner, m.Project, m.Repository, url.PathEscape(m.Branch))
}

// EnsureRecipe converges a recipe toward the manifest: it creates the
// recipe when missing, then updates every drifted field. Returns whether
// anything changed. Safe to call repeatedly.
func (c *Client) EnsureRecipe(m Manifest, dryRun bool) (bool, error) {
	lpLog := log.WithComponent("launchpad").With().Str("recipe", m.Name).Logger()

	recipe, err := c.RecipeByName(m.Name)
	if err != nil {
		return false, err
	}

	if recipe == nil {
		lpLog.Info().Str("branch", m.Branch).Msg("Creating recipe")
		if dryRun {
			return true, nil
		}
		if err := c.createRecipe(m); err != nil {
			return false, err
		}
		recipe, err = c.RecipeByName(m.Name)
		if err != nil || recipe == nil {
			return true, fmt.Errorf("recipe %s missing after creation: %w", m.Name, err)
		}
	}

	desired := map[string]any{
		"git_ref_link":        c.gitRefLink(m),
		"store_channels":      m.StoreChannels,
		"store_name":          m.StoreName,
		"auto_build_pocket":   defaultPocket,
		"auto_build_channels": map[string]string{"snapcraft": defaultSnapcraftPin},
	}
	current := map[string]any{
		"git_ref_link":        recipe.GitRefLink,
		"store_channels":      recipe.StoreChannels,
		"store_name":          recipe.StoreName,
		"auto_build_pocket":   recipe.AutoBuildPocket,
		"auto_build_channels": recipe.AutoBuildChannels,
	}

	changes := map[string]any{}
	for _, key := range sortedKeys(desired) {
		if !reflect.DeepEqual(current[key], desired[key]) {
			lpLog.Info().
				Str("field", key).
				Interface("from", current[key]).
				Interface("to", desired[key]).
				Msg("Recipe field drifted")
			changes[key] = desired[key]
		}
	}
	if len(changes) == 0 {
		lpLog.Info().Msg("Recipe up to date")
		return false, nil
	}
	if dryRun {
		return true, nil
	}
	if err := c.patch(recipe.SelfLink, changes); err != nil {
		return true, fmt.Errorf("update recipe %s: %w", m.Name, err)
	}
	return true, nil
}

// createRecipe registers a new recipe with the build defaults
func (c *Client) createRecipe(m Manifest) error {
	payload := url.Values{
		"ws.op":            {"new"},
		"name":             {m.Name},
		"owner":            {"/~" + c.owner},
		"project":          {"/" + m.Project},
		"git_ref":          {c.gitRefLink(m)},
		"information_type": {defaultInformationType},
		"auto_build":       {"true"},
		"auto_build_archive": {
			defaultArchive,
		},
		"auto_build_pocket": {defaultPocket},
		"store_upload":      {"true"},
		"store_name":        {m.StoreName},
		"store_series":      {defaultStoreSeries},
		"store_channels":    m.StoreChannels,
		"processors":        defaultProcessors,
	}
	if err := c.post("/+snaps", payload, nil); err != nil {
		return fmt.Errorf("create recipe %s: %w", m.Name, err)
	}
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
