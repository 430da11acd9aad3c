package sqa

import (
	"fmt"
	"strings"
)

// Status is the closed enumeration of test-plan-instance states. Raw vendor
// strings are normalized into it at this boundary; the reconciliation core
// never sees them.
type Status int

const (
	StatusUnknown Status = iota
	StatusInProgress
	StatusSkipped
	StatusError
	StatusAborted
	StatusFailure
	StatusSuccess
	StatusPassed
	StatusFailed
	StatusReleased
)

// statusNames maps each status to the display name the platform reports
var statusNames = map[Status]string{
	StatusInProgress: "In Progress",
	StatusSkipped:    "skipped",
	StatusError:      "error",
	StatusAborted:    "aborted",
	StatusFailure:    "failure",
	StatusSuccess:    "success",
	StatusUnknown:    "unknown",
	StatusPassed:     "Passed",
	StatusFailed:     "Failed",
	StatusReleased:   "Released",
}

// ParseStatus normalizes a raw platform status string, case-insensitively
func ParseStatus(raw string) (Status, error) {
	for status, name := range statusNames {
		if strings.EqualFold(name, raw) {
			return status, nil
		}
	}
	return StatusUnknown, fmt.Errorf("invalid status name: %q", raw)
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// Succeeded reports whether the status is a terminal success
func (s Status) Succeeded() bool {
	return s == StatusSuccess || s == StatusPassed || s == StatusReleased
}

// InProgress reports whether the instance is still running
func (s Status) InProgress() bool {
	return s == StatusInProgress
}

// Failed reports whether the status is a terminal failure. Aborted and
// skipped instances are not failures; they carry no signal about the
// release under test.
func (s Status) Failed() bool {
	return s == StatusError || s == StatusFailure || s == StatusFailed
}

// Informative reports whether the status says anything about track health
func (s Status) Informative() bool {
	return s.Succeeded() || s.InProgress() || s.Failed()
}
