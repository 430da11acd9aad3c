package promote

import "github.com/cdkbot/releasemgr/pkg/channel"

// Proposal asks for one revision to be promoted to the next risk level of
// its track on one architecture. The JSON field names match what the
// release workflow consumes from the gh-action output.
type Proposal struct {
	Name            string      `json:"name"`
	Track           string      `json:"track"`
	Arch            string      `json:"arch"`
	Revision        int         `json:"revision"`
	NextRisk        string      `json:"next-risk"`
	SnapChannel     string      `json:"snap-channel"`
	Branch          string      `json:"branch"`
	UpgradeChannels [][2]string `json:"upgrade-channels"`
	RunnerLabels    []string    `json:"runner-labels"`
	LXDImages       []string    `json:"lxd-images"`
}

// ManualApproval flags a promotion that needs external sign-off instead of
// an automatic proposal: the first stable release of a track.
type ManualApproval struct {
	Track    string `json:"track"`
	Arch     string `json:"arch"`
	Revision int    `json:"revision"`
	NextRisk string `json:"next-risk"`
}

// Result is the outcome of one promotion reconciliation pass
type Result struct {
	Proposals []Proposal
	Approvals []ManualApproval
}

// Thresholds holds the dwell time in days a revision stays at each risk
// level before becoming eligible for promotion.
type Thresholds map[channel.Risk]int

// DefaultThresholds returns the default dwell times
func DefaultThresholds() Thresholds {
	return Thresholds{
		channel.RiskEdge:      1,
		channel.RiskBeta:      3,
		channel.RiskCandidate: 5,
	}
}
