package sqa

import (
	"time"

	"github.com/google/uuid"
)

// TestPlanInstance is one test execution record on the platform. The
// ProductUnderTest field encodes the release fingerprint of the revisions
// being exercised.
type TestPlanInstance struct {
	UUID              uuid.UUID
	ID                string
	TestPlan          string
	Status            Status
	EffectivePriority float64
	ProductUnderTest  string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Addon is an uploaded variable bundle attached to a build
type Addon struct {
	UUID      uuid.UUID
	ID        string
	Name      string
	File      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Build is one standalone build record, used by the build-insights flow
type Build struct {
	UUID    uuid.UUID
	AddonID string
	Status  string
	Result  string
}
