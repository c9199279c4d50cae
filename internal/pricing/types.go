// internal/pricing/types.go
package pricing

import "strings"

type Category string

const (
	CategoryDebt     Category = "debt"
	CategoryConsumer Category = "consumer"
	CategoryBilling  Category = "billing"
	CategoryAuto     Category = "auto"
	CategoryWage     Category = "wage"
	CategoryMedical  Category = "medical"
	CategoryBenefits Category = "benefits"
	CategoryEviction Category = "eviction"
	CategoryHousing  Category = "housing"
	CategoryIRS      Category = "irs"
	CategoryTax      Category = "tax"
)

// Strategy is the remediation level recommended for a case, ordered by sophistication.
type Strategy string

const (
	StrategyBasic            Strategy = "basic"
	StrategyEvidenceReview   Strategy = "evidence_review"
	StrategyAgencyComplaint  Strategy = "agency_complaint"
	StrategyMultiStep        Strategy = "multi_step"
	StrategyLegalPositioning Strategy = "legal_positioning"
	StrategyMultiAgency      Strategy = "multi_agency"
	StrategyCaseBuilding     Strategy = "case_building"
)

type Urgency string

const (
	UrgencyStandard  Urgency = "standard"
	UrgencyWeekLeft  Urgency = "week_left"
	UrgencyFewDays   Urgency = "few_days"
	UrgencyTwoDays   Urgency = "two_days"
	UrgencyOneDay    Urgency = "one_day"
	UrgencyImmediate Urgency = "immediate"
)

type Tier string

const (
	TierStandard Tier = "standard"
	TierHigh     Tier = "high"
	TierExtreme  Tier = "extreme"
)

// Document type tags recognised by the document modifier.
const (
	DocCourt     = "court"
	DocGovNotice = "gov_notice"
	DocMedical   = "medical"
	DocContract  = "contract"
)

// Input carries the case signals the price is derived from.
type Input struct {
	Category        Category `json:"category" yaml:"category"`
	ViolationsCount int      `json:"violationsCount" yaml:"violationsCount"`
	DocumentsCount  int      `json:"documentsCount" yaml:"documentsCount"`
	AmountAtStake   float64  `json:"amountAtStake" yaml:"amountAtStake"`
	StrategyLevel   Strategy `json:"strategyLevel" yaml:"strategyLevel"`
	Urgency         Urgency  `json:"urgency" yaml:"urgency"`
	DocumentTypes   []string `json:"documentTypes" yaml:"documentTypes"`
}

// Breakdown exposes every component that fed the price.
// Subtotal is Base+Complexity+Strategy+DocModifier+Stake and RawPrice is
// Subtotal*UrgencyMultiplier before the floor and rounding are applied.
type Breakdown struct {
	Base              int     `json:"base"`
	Complexity        int     `json:"complexity"`
	Strategy          int     `json:"strategy"`
	DocModifier       int     `json:"docModifier"`
	Stake             int     `json:"stake"`
	Subtotal          int     `json:"subtotal"`
	UrgencyMultiplier float64 `json:"urgencyMultiplier"`
	RawPrice          float64 `json:"rawPrice"`
}

type Result struct {
	FinalPrice int       `json:"finalPrice"`
	Tier       Tier      `json:"tier"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Normalize trims and lower-cases enum values, folds urgency aliases,
// clamps negative counts and de-duplicates document tags.
func (in Input) Normalize() Input {
	out := Input{
		Category:        Category(normalizeToken(string(in.Category))),
		ViolationsCount: max(in.ViolationsCount, 0),
		DocumentsCount:  max(in.DocumentsCount, 0),
		AmountAtStake:   in.AmountAtStake,
		StrategyLevel:   Strategy(normalizeToken(string(in.StrategyLevel))),
		Urgency:         Urgency(normalizeToken(string(in.Urgency))),
	}
	if out.AmountAtStake < 0 {
		out.AmountAtStake = 0
	}
	if alias, ok := urgencyAliases[out.Urgency]; ok {
		out.Urgency = alias
	}

	seen := make(map[string]bool, len(in.DocumentTypes))
	for _, t := range in.DocumentTypes {
		t = normalizeToken(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out.DocumentTypes = append(out.DocumentTypes, t)
	}
	return out
}

func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, "-", "_")
}
