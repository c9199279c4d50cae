// internal/workers/pricing/calculate-case-price/models.go
package calculatecaseprice

import (
	"advocacy-workers/internal/pricing"
	"advocacy-workers/internal/signals"
)

// Input takes either explicit pricing signals or the raw case analysis
// fields at the top level of the job variables. PricingInput wins when set.
type Input struct {
	CaseID       string         `json:"caseId,omitempty"`
	PricingInput *pricing.Input `json:"pricingInput,omitempty"`
	signals.CaseAnalysis
}

type Output struct {
	CaseID             string            `json:"caseId,omitempty"`
	PricingSuggestion  int               `json:"pricingSuggestion"`
	PricingTier        pricing.Tier      `json:"pricingTier"`
	PricingBreakdown   pricing.Breakdown `json:"pricingBreakdown"`
	PricingInput       pricing.Input     `json:"pricingInput"`
	ValidationWarnings []string          `json:"validationWarnings,omitempty"`
}
