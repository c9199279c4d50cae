// internal/workers/eligibility/match-eligibility-programs/models.go
package matcheligibilityprograms

import "advocacy-workers/internal/eligibility"

// Input carries the profile inline or a profileId to load it from the
// eligibility_profiles table. MinScore and Limit override the worker
// defaults for one job.
type Input struct {
	ProfileID string               `json:"profileId,omitempty"`
	Profile   *eligibility.Profile `json:"profile,omitempty"`
	MinScore  int                  `json:"minScore,omitempty"`
	Limit     int                  `json:"limit,omitempty"`
}

type Output struct {
	ProfileID          string              `json:"profileId,omitempty"`
	UserEmail          string              `json:"userEmail,omitempty"`
	Profile            eligibility.Profile `json:"profile"`
	Matches            []eligibility.Match `json:"matches"`
	MatchCount         int                 `json:"matchCount"`
	MatchingScore      int                 `json:"matchingScore"`
	TopProgramIDs      []string            `json:"topProgramIds"`
	ValidationWarnings []string            `json:"validationWarnings,omitempty"`
}
