package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cdkbot/releasemgr/pkg/log"
	"github.com/cdkbot/releasemgr/pkg/release"
)

// WriteResults writes per-track verdicts as one track=verdict line per
// track, sorted by track name. The file is the run's only persisted
// artifact; downstream automation greps it.
func WriteResults(path string, verdicts map[string]release.Verdict) error {
	tracks := make([]string, 0, len(verdicts))
	for track := range verdicts {
		tracks = append(tracks, track)
	}
	sort.Strings(tracks)

	var builder strings.Builder
	for _, track := range tracks {
		fmt.Fprintf(&builder, "%s=%s\n", track, verdicts[track])
	}

	logger := log.WithComponent("report")
	logger.Info().
		Str("path", path).Int("tracks", len(tracks)).
		Msg("Writing results file")
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return fmt.Errorf("write results file %s: %w", path, err)
	}
	return nil
}

// BuildRecord is one prior insight build with its decoded placement
type BuildRecord struct {
	Revision string
	Status   string
	Result   string
	UUID     string
	Arch     string
	Base     string
	Channel  string
}

// FormatBuilds renders prior build outcomes as free text, one build per
// line, sorted by revision.
func FormatBuilds(records []BuildRecord) string {
	sorted := make([]BuildRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Revision < sorted[j].Revision })

	lines := make([]string, 0, len(sorted))
	for _, record := range sorted {
		lines = append(lines, fmt.Sprintf(
			"Revision: %s, Status: %s, Result: %s, UUID: %s, Arch: %s, Base: %s, Channel: %s",
			record.Revision, record.Status, record.Result, record.UUID,
			record.Arch, record.Base, record.Channel,
		))
	}
	return strings.Join(lines, "\n")
}

// WriteBuilds writes the formatted build records to a file
func WriteBuilds(path string, records []BuildRecord) error {
	if err := os.WriteFile(path, []byte(FormatBuilds(records)), 0o644); err != nil {
		return fmt.Errorf("write builds file %s: %w", path, err)
	}
	return nil
}
