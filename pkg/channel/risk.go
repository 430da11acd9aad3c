package channel

import "fmt"

// Risk is one stage of the snap risk ladder, totally ordered from edge
// (least mature) to stable (most mature).
type Risk string

const (
	RiskEdge      Risk = "edge"
	RiskBeta      Risk = "beta"
	RiskCandidate Risk = "candidate"
	RiskStable    Risk = "stable"
)

// RiskLevels lists all risk levels in ascending maturity order
var RiskLevels = []Risk{RiskEdge, RiskBeta, RiskCandidate, RiskStable}

// ParseRisk validates a risk level string
func ParseRisk(s string) (Risk, error) {
	for _, r := range RiskLevels {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid risk level: %q", s)
}

// Index returns the position of the risk in the ladder, or -1 if unknown
func (r Risk) Index() int {
	for i, level := range RiskLevels {
		if level == r {
			return i
		}
	}
	return -1
}

// Next returns the next (more mature) risk level. ok is false for stable,
// which is terminal.
func (r Risk) Next() (Risk, bool) {
	idx := r.Index()
	if idx < 0 || idx == len(RiskLevels)-1 {
		return "", false
	}
	return RiskLevels[idx+1], true
}

func (r Risk) String() string {
	return string(r)
}
