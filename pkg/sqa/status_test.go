package sqa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw    string
		status Status
	}{
		{"In Progress", StatusInProgress},
		{"in progress", StatusInProgress},
		{"skipped", StatusSkipped},
		{"error", StatusError},
		{"aborted", StatusAborted},
		{"ABORTED", StatusAborted},
		{"failure", StatusFailure},
		{"success", StatusSuccess},
		{"Passed", StatusPassed},
		{"Failed", StatusFailed},
		{"Released", StatusReleased},
		{"unknown", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			status, err := ParseStatus(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.status, status)
		})
	}

	t.Run("rejects unrecognized strings", func(t *testing.T) {
		_, err := ParseStatus("exploded")
		assert.Error(t, err)
	})

	t.Run("round-trips display names", func(t *testing.T) {
		for status := range statusNames {
			parsed, err := ParseStatus(status.String())
			require.NoError(t, err)
			assert.Equal(t, status, parsed)
		}
	})
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status      Status
		succeeded   bool
		inProgress  bool
		failed      bool
		informative bool
	}{
		{StatusSuccess, true, false, false, true},
		{StatusPassed, true, false, false, true},
		{StatusReleased, true, false, false, true},
		{StatusInProgress, false, true, false, true},
		{StatusError, false, false, true, true},
		{StatusFailure, false, false, true, true},
		{StatusFailed, false, false, true, true},
		{StatusAborted, false, false, false, false},
		{StatusSkipped, false, false, false, false},
		{StatusUnknown, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.succeeded, tt.status.Succeeded())
			assert.Equal(t, tt.inProgress, tt.status.InProgress())
			assert.Equal(t, tt.failed, tt.status.Failed())
			assert.Equal(t, tt.informative, tt.status.Informative())
		})
	}
}
