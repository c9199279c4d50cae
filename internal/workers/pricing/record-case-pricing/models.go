// internal/workers/pricing/record-case-pricing/models.go
package recordcasepricing

import (
	"time"

	"advocacy-workers/internal/pricing"
)

// Input is normally the output of calculate-case-price. When PricingInput is
// present the quote is recalculated from it and the other pricing fields are
// ignored.
type Input struct {
	CaseID            string             `json:"caseId"`
	PricingInput      *pricing.Input     `json:"pricingInput,omitempty"`
	PricingSuggestion int                `json:"pricingSuggestion"`
	PricingTier       pricing.Tier       `json:"pricingTier"`
	PricingBreakdown  *pricing.Breakdown `json:"pricingBreakdown,omitempty"`
}

type Output struct {
	CaseID            string       `json:"caseId"`
	AuditEventID      string       `json:"auditEventId"`
	PricingSuggestion int          `json:"pricingSuggestion"`
	PricingTier       pricing.Tier `json:"pricingTier"`
	RecordedAt        time.Time    `json:"recordedAt"`
}
