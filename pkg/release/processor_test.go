package release

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdkbot/releasemgr/pkg/bundle"
	"github.com/cdkbot/releasemgr/pkg/sqa"
)

// fakeStore serves canned revision matrices per (charm, channel) and records
// promotions.
type fakeStore struct {
	matrices   map[string]*bundle.RevisionMatrix
	failGet    bool
	promotions []string
}

func (f *fakeStore) GetRevisionMatrix(charm, channel string) (*bundle.RevisionMatrix, error) {
	if f.failGet {
		return nil, fmt.Errorf("store unavailable")
	}
	if matrix, ok := f.matrices[charm+"@"+channel]; ok {
		return matrix, nil
	}
	return bundle.NewRevisionMatrix(), nil
}

func (f *fakeStore) PromoteCharm(charm, fromChannel, toChannel string) error {
	f.promotions = append(f.promotions, fmt.Sprintf("%s:%s->%s", charm, fromChannel, toChannel))
	return nil
}

type startedTest struct {
	channel   string
	base      string
	arch      string
	revisions map[string]string
	version   string
	priority  int
}

// fakePlatform serves canned test plan instances per fingerprint and records
// started tests.
type fakePlatform struct {
	instances map[string][]sqa.TestPlanInstance
	started   []startedTest
}

func (f *fakePlatform) FindInstances(channel, base, version string) ([]sqa.TestPlanInstance, error) {
	return f.instances[version], nil
}

func (f *fakePlatform) StartReleaseTest(
	channel, base, arch string, revisions map[string]string, version string, priority int,
) error {
	f.started = append(f.started, startedTest{
		channel: channel, base: base, arch: arch,
		revisions: revisions, version: version, priority: priority,
	})
	return nil
}

func cellMatrix(cells map[[2]string]string) *bundle.RevisionMatrix {
	m := bundle.NewRevisionMatrix()
	for cell, revision := range cells {
		m.Set(cell[0], cell[1], revision)
	}
	return m
}

func newProcessor(store *fakeStore, platform *fakePlatform) *Processor {
	return &Processor{
		Store:      store,
		Tests:      platform,
		BundleName: "k8s-operator",
		Charms:     []string{"k8s"},
		FromRisk:   "candidate",
		ToRisk:     "stable",
		Priorities: sqa.NewPriorityGenerator(),
	}
}

func TestProcessTrackStartsTestForUntestedCell(t *testing.T) {
	// Worked example: one pending candidate revision with no instances.
	// One TPI batch is created at priority 1 and the track reports
	// in-progress.
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictInProgress, verdict)
	require.Len(t, platform.started, 1)
	started := platform.started[0]
	assert.Equal(t, "k8s-operator-k8s-741", started.version)
	assert.Equal(t, "1.32/candidate", started.channel)
	assert.Equal(t, "22.04", started.base)
	assert.Equal(t, "amd64", started.arch)
	assert.Equal(t, map[string]string{"k8s_revision": "741"}, started.revisions)
	assert.Equal(t, 1, started.priority)
	assert.Empty(t, store.promotions)
}

func TestProcessTrackPromotesOnSuccess(t *testing.T) {
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{instances: map[string][]sqa.TestPlanInstance{
		"k8s-operator-k8s-741": {{Status: sqa.StatusSuccess}},
	}}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictSuccess, verdict)
	assert.Equal(t, []string{"k8s:1.32/candidate->1.32/stable"}, store.promotions)
	assert.Empty(t, platform.started)
}

func TestProcessTrackFailureNeedsIntervention(t *testing.T) {
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{instances: map[string][]sqa.TestPlanInstance{
		"k8s-operator-k8s-741": {{Status: sqa.StatusFailure}, {Status: sqa.StatusAborted}},
	}}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictFailed, verdict)
	assert.Empty(t, store.promotions)
	assert.Empty(t, platform.started)
}

func TestProcessTrackAbortedOnlyRestartsTest(t *testing.T) {
	// Aborted instances carry no signal, so the cell classifies as
	// untested and a fresh run is started.
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{instances: map[string][]sqa.TestPlanInstance{
		"k8s-operator-k8s-741": {{Status: sqa.StatusAborted}},
	}}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictInProgress, verdict)
	assert.Len(t, platform.started, 1)
}

func TestProcessTrackUnchangedWhenPublished(t *testing.T) {
	matrix := cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"})
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": matrix,
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
	}}
	platform := &fakePlatform{}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictUnchanged, verdict)
	assert.Empty(t, platform.started)
}

func TestProcessTrackEmptyCandidateUnchanged(t *testing.T) {
	// Nothing on candidate means nothing pending; the stable matrix keeps
	// the bundle testable.
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/stable": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictUnchanged, verdict)
}

func TestProcessTrackStoreErrorIsCIFailure(t *testing.T) {
	store := &fakeStore{failGet: true}
	platform := &fakePlatform{}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictCIFailure, verdict)
}

func TestProcessTrackUntestableBundleIsCIFailure(t *testing.T) {
	// The two charms disagree on the architecture set, so no joint test
	// can cover them.
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{
			{"amd64", "22.04"}: "741",
			{"arm64", "22.04"}: "748",
		}),
		"k8s@1.32/stable":           cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
		"k8s-worker@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "739"}),
		"k8s-worker@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "546"}),
	}}
	platform := &fakePlatform{}

	processor := newProcessor(store, platform)
	processor.Charms = []string{"k8s", "k8s-worker"}
	verdict := processor.ProcessTrack("1.32")

	assert.Equal(t, VerdictCIFailure, verdict)
}

func TestProcessTrackSkipsUntestedArch(t *testing.T) {
	// The platform only exercises amd64; arm64 cells must not produce
	// instances.
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{
			{"amd64", "22.04"}: "741",
			{"arm64", "22.04"}: "748",
		}),
		"k8s@1.32/stable": cellMatrix(map[[2]string]string{
			{"amd64", "22.04"}: "548",
			{"arm64", "22.04"}: "549",
		}),
	}}
	platform := &fakePlatform{}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictInProgress, verdict)
	require.Len(t, platform.started, 1)
	assert.Equal(t, "amd64", platform.started[0].arch)
}

func TestProcessTrackDryRun(t *testing.T) {
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{instances: map[string][]sqa.TestPlanInstance{
		"k8s-operator-k8s-741": {{Status: sqa.StatusSuccess}},
	}}

	processor := newProcessor(store, platform)
	processor.DryRun = true
	verdict := processor.ProcessTrack("1.32")

	assert.Equal(t, VerdictSuccess, verdict)
	assert.Empty(t, store.promotions)
}

func TestRunIsolatesTracks(t *testing.T) {
	// 1.31 fails its release run while 1.32 succeeds; one track's trouble
	// never leaks into the other and both get their own verdict.
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.31/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "641"}),
		"k8s@1.31/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "448"}),
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "741"}),
		"k8s@1.32/stable":    cellMatrix(map[[2]string]string{{"amd64", "22.04"}: "548"}),
	}}
	platform := &fakePlatform{instances: map[string][]sqa.TestPlanInstance{
		"k8s-operator-k8s-641": {{Status: sqa.StatusFailure}},
		"k8s-operator-k8s-741": {{Status: sqa.StatusSuccess}},
	}}

	verdicts := newProcessor(store, platform).Run([]string{"1.31", "1.32"})

	assert.Equal(t, VerdictFailed, verdicts["1.31"])
	assert.Equal(t, VerdictSuccess, verdicts["1.32"])
}

func TestPrioritiesIncreaseAcrossCells(t *testing.T) {
	store := &fakeStore{matrices: map[string]*bundle.RevisionMatrix{
		"k8s@1.32/candidate": cellMatrix(map[[2]string]string{
			{"amd64", "22.04"}: "741",
			{"amd64", "24.04"}: "742",
		}),
		"k8s@1.32/stable": cellMatrix(map[[2]string]string{
			{"amd64", "22.04"}: "548",
			{"amd64", "24.04"}: "549",
		}),
	}}
	platform := &fakePlatform{}

	verdict := newProcessor(store, platform).ProcessTrack("1.32")

	assert.Equal(t, VerdictInProgress, verdict)
	require.Len(t, platform.started, 2)
	assert.Equal(t, 1, platform.started[0].priority)
	assert.Equal(t, 2, platform.started[1].priority)
}
