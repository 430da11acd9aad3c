package gh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchToRunnerLabels(t *testing.T) {
	tests := []struct {
		arch       string
		selfHosted bool
		labels     []string
	}{
		{"amd64", true, []string{"X64", "self-hosted"}},
		{"amd64", false, []string{"X64"}},
		{"arm64", true, []string{"ARM64", "self-hosted"}},
		{"riscv64", true, []string{"self-hosted"}},
		{"riscv64", false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.arch, func(t *testing.T) {
			assert.Equal(t, tt.labels, ArchToRunnerLabels(tt.arch, tt.selfHosted))
		})
	}
}

func TestSetOutput(t *testing.T) {
	t.Run("appends to the output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "output")
		t.Setenv("GITHUB_OUTPUT", path)

		require.NoError(t, SetOutput("proposals", `[{"track":"1.32"}]`))
		require.NoError(t, SetOutput("count", "1"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "proposals=[{\"track\":\"1.32\"}]\ncount=1\n", string(data))
	})

	t.Run("fails outside actions", func(t *testing.T) {
		t.Setenv("GITHUB_OUTPUT", "")
		assert.Error(t, SetOutput("proposals", "[]"))
	})
}
