package channel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskLadder(t *testing.T) {
	tests := []struct {
		risk    Risk
		index   int
		next    Risk
		hasNext bool
	}{
		{RiskEdge, 0, RiskBeta, true},
		{RiskBeta, 1, RiskCandidate, true},
		{RiskCandidate, 2, RiskStable, true},
		{RiskStable, 3, "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.risk), func(t *testing.T) {
			assert.Equal(t, tt.index, tt.risk.Index())
			next, ok := tt.risk.Next()
			assert.Equal(t, tt.hasNext, ok)
			assert.Equal(t, tt.next, next)
		})
	}
}

func TestParseRisk(t *testing.T) {
	risk, err := ParseRisk("candidate")
	require.NoError(t, err)
	assert.Equal(t, RiskCandidate, risk)

	_, err = ParseRisk("experimental")
	assert.Error(t, err)

	// Unknown risks sit outside the ladder
	assert.Equal(t, -1, Risk("experimental").Index())
}

func TestParseTrack(t *testing.T) {
	tests := []struct {
		name    string
		track   Track
		wantErr bool
	}{
		{name: "1.32", track: Track{Major: 1, Minor: 32}},
		{name: "1.31-classic", track: Track{Major: 1, Minor: 31, Qualifier: "-classic"}},
		{name: "2.0", track: Track{Major: 2, Minor: 0}},
		{name: "latest", wantErr: true},
		{name: "1", wantErr: true},
		{name: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, err := ParseTrack(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.track, track)
			assert.Equal(t, tt.name, track.String())
		})
	}
}

func TestTrackPrior(t *testing.T) {
	t.Run("decrements minor and keeps qualifier", func(t *testing.T) {
		track, err := ParseTrack("1.32-classic")
		require.NoError(t, err)
		prior, ok := track.Prior()
		require.True(t, ok)
		assert.Equal(t, "1.31-classic", prior.String())
	})

	t.Run("minor zero has no prior", func(t *testing.T) {
		track, err := ParseTrack("2.0")
		require.NoError(t, err)
		_, ok := track.Prior()
		assert.False(t, ok)
	})
}

func TestGraph(t *testing.T) {
	released := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	g := NewGraph()
	g.Add(Channel{Name: "1.32/edge", Track: "1.32", Risk: RiskEdge, Architecture: "amd64", Revision: 100})
	g.Add(Channel{Name: "1.32/edge", Track: "1.32", Risk: RiskEdge, Architecture: "arm64", Revision: 101})
	g.Add(Channel{Name: "1.32/beta", Track: "1.32", Risk: RiskBeta, Architecture: "amd64", Revision: 90, ReleasedAt: &released})

	assert.Equal(t, []string{"amd64", "arm64"}, g.Archs())
	require.Len(t, g.Channels("amd64"), 2)
	assert.Equal(t, 90, g.Channels("amd64")["1.32/beta"].Revision)

	t.Run("later inserts overwrite", func(t *testing.T) {
		g.Add(Channel{Name: "1.32/edge", Track: "1.32", Risk: RiskEdge, Architecture: "amd64", Revision: 105})
		assert.Equal(t, 105, g.Channels("amd64")["1.32/edge"].Revision)
	})
}
