package release

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cdkbot/releasemgr/pkg/sqa"
)

// CellStatus is the classified test state of one (arch, base) cell of a
// track's bundle.
type CellStatus int

const (
	// CellNoTest means no informative test plan instance exists for the
	// cell's fingerprint; a new test run must be started.
	CellNoTest CellStatus = iota
	CellSuccess
	CellInProgress
	CellFailed
)

func (s CellStatus) String() string {
	switch s {
	case CellSuccess:
		return "success"
	case CellInProgress:
		return "in progress"
	case CellFailed:
		return "failed"
	default:
		return "no test"
	}
}

// ClassifyCell folds the test plan instances found for one fingerprint into
// a single cell status. Success dominates, then in-progress, then failed.
// Aborted and skipped instances carry no signal about track health and are
// excluded entirely: a cell with only aborted instances classifies as
// CellNoTest, not as failed or successful.
func ClassifyCell(instances []sqa.TestPlanInstance) CellStatus {
	informative := false
	anySuccess := false
	anyInProgress := false
	for _, instance := range instances {
		if !instance.Status.Informative() {
			continue
		}
		informative = true
		if instance.Status.Succeeded() {
			anySuccess = true
		}
		if instance.Status.InProgress() {
			anyInProgress = true
		}
	}

	switch {
	case !informative:
		return CellNoTest
	case anySuccess:
		return CellSuccess
	case anyInProgress:
		return CellInProgress
	default:
		return CellFailed
	}
}

// TrackState aggregates the cell statuses of one track, keyed by the cell's
// release fingerprint.
type TrackState struct {
	cells map[string]CellStatus
}

// NewTrackState creates an empty track state
func NewTrackState() *TrackState {
	return &TrackState{cells: make(map[string]CellStatus)}
}

// Set records the status of one cell
func (t *TrackState) Set(version string, status CellStatus) {
	t.cells[version] = status
}

// Empty reports whether no cell was classified. An empty state after
// reconciliation indicates the engine could not inspect the track at all.
func (t *TrackState) Empty() bool {
	return len(t.cells) == 0
}

// Failed reports whether any cell failed. Failure dominates.
func (t *TrackState) Failed() bool {
	for _, status := range t.cells {
		if status == CellFailed {
			return true
		}
	}
	return false
}

// Succeeded reports whether the state is non-empty and every cell succeeded
func (t *TrackState) Succeeded() bool {
	if t.Empty() {
		return false
	}
	for _, status := range t.cells {
		if status != CellSuccess {
			return false
		}
	}
	return true
}

// InProgress reports whether any cell is still running and none has failed
func (t *TrackState) InProgress() bool {
	if t.Failed() {
		return false
	}
	for _, status := range t.cells {
		if status == CellInProgress {
			return true
		}
	}
	return false
}

func (t *TrackState) String() string {
	versions := make([]string, 0, len(t.cells))
	for version := range t.cells {
		versions = append(versions, version)
	}
	sort.Strings(versions)

	parts := make([]string, 0, len(versions))
	for _, version := range versions {
		parts = append(parts, fmt.Sprintf("%s=%s", version, t.cells[version]))
	}
	return strings.Join(parts, " ")
}

// Verdict is the track-level outcome of one reconciliation pass
type Verdict string

const (
	VerdictSuccess    Verdict = "process_success"
	VerdictInProgress Verdict = "process_in_progress"
	VerdictFailed     Verdict = "process_failed"
	VerdictCIFailure  Verdict = "process_ci_failed"
	VerdictUnchanged  Verdict = "process_unchanged"
)
