package release

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cdkbot/releasemgr/pkg/sqa"
)

func instances(statuses ...sqa.Status) []sqa.TestPlanInstance {
	result := make([]sqa.TestPlanInstance, 0, len(statuses))
	for _, status := range statuses {
		result = append(result, sqa.TestPlanInstance{Status: status})
	}
	return result
}

func TestClassifyCell(t *testing.T) {
	tests := []struct {
		name     string
		statuses []sqa.Status
		want     CellStatus
	}{
		{"no instances", nil, CellNoTest},
		{"single success", []sqa.Status{sqa.StatusSuccess}, CellSuccess},
		{"single passed", []sqa.Status{sqa.StatusPassed}, CellSuccess},
		{"single released", []sqa.Status{sqa.StatusReleased}, CellSuccess},
		{"single in progress", []sqa.Status{sqa.StatusInProgress}, CellInProgress},
		{"single failure", []sqa.Status{sqa.StatusFailure}, CellFailed},
		{"error and in progress", []sqa.Status{sqa.StatusError, sqa.StatusInProgress}, CellInProgress},
		{"success beats failure", []sqa.Status{sqa.StatusFailed, sqa.StatusSuccess}, CellSuccess},
		{"success beats in progress", []sqa.Status{sqa.StatusInProgress, sqa.StatusSuccess}, CellSuccess},
		{"aborted only is no test", []sqa.Status{sqa.StatusAborted, sqa.StatusAborted}, CellNoTest},
		{"skipped only is no test", []sqa.Status{sqa.StatusSkipped}, CellNoTest},
		{"aborted does not mask failure", []sqa.Status{sqa.StatusAborted, sqa.StatusFailure}, CellFailed},
		{"aborted does not mask success", []sqa.Status{sqa.StatusAborted, sqa.StatusSuccess}, CellSuccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyCell(instances(tt.statuses...)))
		})
	}
}

func TestTrackState(t *testing.T) {
	t.Run("empty state", func(t *testing.T) {
		state := NewTrackState()
		assert.True(t, state.Empty())
		assert.False(t, state.Succeeded())
		assert.False(t, state.Failed())
		assert.False(t, state.InProgress())
	})

	t.Run("all success", func(t *testing.T) {
		state := NewTrackState()
		state.Set("fp-1", CellSuccess)
		state.Set("fp-2", CellSuccess)
		assert.True(t, state.Succeeded())
		assert.False(t, state.Failed())
		assert.False(t, state.InProgress())
	})

	t.Run("failure dominates in progress", func(t *testing.T) {
		state := NewTrackState()
		state.Set("fp-1", CellInProgress)
		state.Set("fp-2", CellFailed)
		assert.True(t, state.Failed())
		assert.False(t, state.InProgress())
		assert.False(t, state.Succeeded())
	})

	t.Run("partial success is not success", func(t *testing.T) {
		state := NewTrackState()
		state.Set("fp-1", CellSuccess)
		state.Set("fp-2", CellInProgress)
		assert.False(t, state.Succeeded())
		assert.True(t, state.InProgress())
	})

	t.Run("string is deterministic", func(t *testing.T) {
		state := NewTrackState()
		state.Set("fp-b", CellSuccess)
		state.Set("fp-a", CellFailed)
		assert.Equal(t, "fp-a=failed fp-b=success", state.String())
	})
}
