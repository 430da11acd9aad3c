package kube

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/cdkbot/releasemgr/pkg/log"
)

// tagsURL serves upstream Kubernetes release tags
const tagsURL = "https://api.github.com/repos/kubernetes/kubernetes/tags"

// requestTimeout bounds upstream tag queries
const requestTimeout = 5 * time.Second

var (
	prereleaseRE        = regexp.MustCompile(`^v\d+\.\d+\.\d+-(?:alpha|beta|rc)\.\d+$`)
	prereleaseCounterRE = regexp.MustCompile(`(-[a-zA-Z]+)\.\d+$`)
)

// Feed reads upstream Kubernetes release tags
type Feed struct {
	http *http.Client

	// URL overrides tagsURL, for tests
	URL string
}

// NewFeed creates an upstream release feed client
func NewFeed() *Feed {
	return &Feed{http: &http.Client{Timeout: requestTimeout}}
}

// Tags returns upstream release tags sorted newest to oldest. The API
// already serves them in semantic order but ordering is re-established
// locally rather than relied on.
func (f *Feed) Tags() ([]string, error) {
	target := f.URL
	if target == "" {
		target = tagsURL
	}
	resp, err := f.http.Get(target)
	if err != nil {
		return nil, fmt.Errorf("query kubernetes tags: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("query kubernetes tags: unexpected status %d", resp.StatusCode)
	}

	var entries []struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode kubernetes tags: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no kubernetes tags retrieved")
	}

	tags := make([]string, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, entry.Name)
	}
	return SortDescending(tags)
}

// SortDescending orders release tags newest to oldest. Unparseable tags are
// dropped with a warning.
func SortDescending(tags []string) ([]string, error) {
	versions := make([]*semver.Version, 0, len(tags))
	for _, tag := range tags {
		version, err := semver.NewVersion(tag)
		if err != nil {
			logger := log.WithComponent("kube")
			logger.Warn().Str("tag", tag).Msg("Skipping unparseable tag")
			continue
		}
		versions = append(versions, version)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("no parseable kubernetes tags")
	}
	sort.Sort(sort.Reverse(semver.Collection(versions)))

	sorted := make([]string, 0, len(versions))
	for _, version := range versions {
		sorted = append(sorted, version.Original())
	}
	return sorted, nil
}

// IsStableRelease reports whether a release tag has no pre-release suffix
func IsStableRelease(tag string) bool {
	return !strings.Contains(tag, "-")
}

// LatestStable returns the newest stable release tag
func (f *Feed) LatestStable() (string, error) {
	tags, err := f.Tags()
	if err != nil {
		return "", err
	}
	for _, tag := range tags {
		if IsStableRelease(tag) {
			return tag, nil
		}
	}
	return "", fmt.Errorf("no stable kubernetes release found")
}

// LatestByMinor maps each minor version ("1.32") to its newest release tag,
// pre-releases included.
func (f *Feed) LatestByMinor() (map[string]string, error) {
	tags, err := f.Tags()
	if err != nil {
		return nil, err
	}
	latest := map[string]string{}
	for _, tag := range tags {
		version, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		key := fmt.Sprintf("%d.%d", version.Major(), version.Minor())
		if _, seen := latest[key]; !seen {
			latest[key] = tag
		}
	}
	return latest, nil
}

// ReleasesAfter returns the minor tracks with a stable release, newest
// first, down to and including the least track ("1.30").
func (f *Feed) ReleasesAfter(least string) ([]string, error) {
	floor, err := semver.NewVersion(least + ".0")
	if err != nil {
		return nil, fmt.Errorf("parse track %s: %w", least, err)
	}

	tags, err := f.Tags()
	if err != nil {
		return nil, err
	}
	var tracks []string
	seen := map[string]bool{}
	for _, tag := range tags {
		if !IsStableRelease(tag) {
			continue
		}
		version, err := semver.NewVersion(tag)
		if err != nil {
			continue
		}
		if version.Major() < floor.Major() ||
			(version.Major() == floor.Major() && version.Minor() < floor.Minor()) {
			continue
		}
		track := fmt.Sprintf("%d.%d", version.Major(), version.Minor())
		if !seen[track] {
			seen[track] = true
			tracks = append(tracks, track)
		}
	}
	return tracks, nil
}

// OutstandingPrerelease returns the newest release tag when it is a
// pre-release, or "" when the newest release is stable.
func (f *Feed) OutstandingPrerelease() (string, error) {
	tags, err := f.Tags()
	if err != nil {
		return "", err
	}
	if !IsStableRelease(tags[0]) {
		return tags[0], nil
	}
	return "", nil
}

// ObsoletePrereleases returns every pre-release tag except the newest one
// when that newest tag is still outstanding. Only the latest pre-release
// without a stable counterpart is worth building.
func (f *Feed) ObsoletePrereleases() ([]string, error) {
	tags, err := f.Tags()
	if err != nil {
		return nil, err
	}
	if !IsStableRelease(tags[0]) {
		tags = tags[1:]
	}
	var obsolete []string
	for _, tag := range tags {
		if !IsStableRelease(tag) {
			obsolete = append(obsolete, tag)
		}
	}
	return obsolete, nil
}

// PrereleaseBranch returns the auto-update branch building a pre-release.
// One branch serves all pre-releases of a risk level, so the trailing
// pre-release counter is dropped: v1.33.0-alpha.2 -> autoupdate/v1.33.0-alpha.
func PrereleaseBranch(prerelease string) (string, error) {
	if !prereleaseRE.MatchString(prerelease) {
		return "", fmt.Errorf("unexpected kubernetes pre-release name: %s", prerelease)
	}
	return "autoupdate/" + prereleaseCounterRE.ReplaceAllString(prerelease, "$1"), nil
}
