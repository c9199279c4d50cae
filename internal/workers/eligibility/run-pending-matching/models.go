// internal/workers/eligibility/run-pending-matching/models.go
package runpendingmatching

import "advocacy-workers/internal/report"

// Input optionally narrows one run. Zero values fall back to the worker config.
type Input struct {
	BatchSize int `json:"batchSize,omitempty"`
	MinScore  int `json:"minScore,omitempty"`
}

type Output struct {
	RunID          string             `json:"runId"`
	ProcessedCount int                `json:"processedCount"`
	MatchedCount   int                `json:"matchedCount"`
	ErrorCount     int                `json:"errorCount"`
	Results        []report.RunResult `json:"results"`
	Summary        string             `json:"summary"`
	SummaryFile    string             `json:"summaryFile"`
}
