// internal/workers/eligibility/build-benefits-report/models.go
package buildbenefitsreport

import "advocacy-workers/internal/eligibility"

// Input names the profile to report on, inline or by profileId. Matches
// from an earlier match-eligibility-programs job are reused when present,
// otherwise the profile is matched again.
type Input struct {
	ProfileID string               `json:"profileId,omitempty"`
	UserEmail string               `json:"userEmail,omitempty"`
	Profile   *eligibility.Profile `json:"profile,omitempty"`
	Matches   []eligibility.Match  `json:"matches,omitempty"`
}

type Output struct {
	ReportID      string `json:"reportId"`
	ProfileID     string `json:"profileId,omitempty"`
	FileName      string `json:"fileName"`
	Report        string `json:"report"`
	MatchCount    int    `json:"matchCount"`
	MatchingScore int    `json:"matchingScore"`
}
