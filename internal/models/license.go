package models

import "time"

// LicenseStage tracks where a license application sits in its flow.
type LicenseStage string

const (
	LicenseStageApplied       LicenseStage = "APPLIED"
	LicenseStageTestScheduled LicenseStage = "TEST_SCHEDULED"
	LicenseStagePassed        LicenseStage = "PASSED"
	LicenseStageFailed        LicenseStage = "FAILED"
	LicenseStageIssued        LicenseStage = "ISSUED"
)

// allowedLicenseTransitions encodes the forward-only stage graph.
var allowedLicenseTransitions = map[LicenseStage][]LicenseStage{
	LicenseStageApplied:       {LicenseStageTestScheduled},
	LicenseStageTestScheduled: {LicenseStagePassed, LicenseStageFailed},
	LicenseStageFailed:        {LicenseStageTestScheduled},
	LicenseStagePassed:        {LicenseStageIssued},
}

// CanTransitionTo reports whether the stage may move to next.
func (s LicenseStage) CanTransitionTo(next LicenseStage) bool {
	for _, allowed := range allowedLicenseTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// LicenseApplication tracks a customer's driving-license paperwork.
type LicenseApplication struct {
	ID          string       `db:"id" json:"id"`
	CustomerID  string       `db:"customer_id" json:"customer_id"`
	LicenseType string       `db:"license_type" json:"license_type"`
	Stage       LicenseStage `db:"stage" json:"stage"`
	TestDate    *time.Time   `db:"test_date" json:"test_date,omitempty"`
	Remarks     string       `db:"remarks" json:"remarks"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}

// LicenseFilter narrows license application queries.
type LicenseFilter struct {
	CustomerID string
	Stage      string
	Page       int
	PageSize   int
}
