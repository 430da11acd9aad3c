package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cdkbot/releasemgr/pkg/release"
)

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")

	err := WriteResults(path, map[string]release.Verdict{
		"1.32": release.VerdictSuccess,
		"1.30": release.VerdictFailed,
		"1.31": release.VerdictCIFailure,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"1.30=process_failed\n1.31=process_ci_failed\n1.32=process_success\n",
		string(data))
}

func TestWriteResultsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.txt")
	require.NoError(t, WriteResults(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, string(data))
}

func TestFormatBuilds(t *testing.T) {
	out := FormatBuilds([]BuildRecord{
		{Revision: "742", Status: "Running", Result: "", UUID: "u2", Arch: "amd64", Base: "24.04", Channel: "1.32/beta"},
		{Revision: "741", Status: "Finished", Result: "Passed", UUID: "u1", Arch: "amd64", Base: "22.04", Channel: "1.32/beta"},
	})

	assert.Equal(t,
		"Revision: 741, Status: Finished, Result: Passed, UUID: u1, Arch: amd64, Base: 22.04, Channel: 1.32/beta\n"+
			"Revision: 742, Status: Running, Result: , UUID: u2, Arch: amd64, Base: 24.04, Channel: 1.32/beta",
		out)
}
