// Package signals turns loosely structured case-analysis output into
// pricing inputs. Every function is lenient: unrecognised values fall back
// to the least expensive signal.
package signals

import (
	"regexp"
	"strconv"
	"strings"

	"advocacy-workers/internal/pricing"
)

// CaseAnalysis is the subset of an upstream case analysis used for pricing.
type CaseAnalysis struct {
	Category           string   `json:"category"`
	Amount             string   `json:"amount"`
	UrgencyLevel       string   `json:"urgencyLevel"`
	RecommendedActions []string `json:"recommendedActions"`
	Violations         []string `json:"violations"`
	UploadedFiles      []string `json:"uploadedFiles"`
}

type keywordRule[T any] struct {
	keywords []string
	value    T
}

// strategyRules are checked in order; the first rule with a keyword present
// in any action wins.
var strategyRules = []keywordRule[pricing.Strategy]{
	{keywords: []string{"case-building", "timeline"}, value: pricing.StrategyCaseBuilding},
	{keywords: []string{"multi-agency", "escalate"}, value: pricing.StrategyMultiAgency},
	{keywords: []string{"legal positioning", "statute"}, value: pricing.StrategyLegalPositioning},
	{keywords: []string{"agency", "complaint"}, value: pricing.StrategyAgencyComplaint},
	{keywords: []string{"evidence", "review"}, value: pricing.StrategyEvidenceReview},
}

// documentRules are checked per file name; first match wins.
var documentRules = []keywordRule[string]{
	{keywords: []string{"court", "filing"}, value: pricing.DocCourt},
	{keywords: []string{"notice", "government", "irs"}, value: pricing.DocGovNotice},
	{keywords: []string{"medical", "health"}, value: pricing.DocMedical},
	{keywords: []string{"contract", "agreement"}, value: pricing.DocContract},
}

var urgencyLevels = map[string]pricing.Urgency{
	"critical": pricing.UrgencyImmediate,
	"high":     pricing.UrgencyFewDays,
	"medium":   pricing.UrgencyWeekLeft,
	"low":      pricing.UrgencyStandard,
}

const defaultCategory = pricing.CategoryConsumer

// StrategyFromActions derives a strategy level from recommended actions.
func StrategyFromActions(actions []string) pricing.Strategy {
	lowered := make([]string, len(actions))
	for i, a := range actions {
		lowered[i] = strings.ToLower(a)
	}
	for _, rule := range strategyRules {
		for _, a := range lowered {
			if containsAny(a, rule.keywords) {
				return rule.value
			}
		}
	}
	if len(actions) > 2 {
		return pricing.StrategyMultiStep
	}
	return pricing.StrategyBasic
}

// UrgencyFromLevel maps a qualitative urgency level to a pricing urgency.
func UrgencyFromLevel(level string) pricing.Urgency {
	if u, ok := urgencyLevels[strings.ToLower(strings.TrimSpace(level))]; ok {
		return u
	}
	return pricing.UrgencyStandard
}

// DocumentTypesFromFilenames tags files by name. Untagged files are skipped
// and each tag appears once.
func DocumentTypesFromFilenames(files []string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, f := range files {
		name := strings.ToLower(f)
		for _, rule := range documentRules {
			if containsAny(name, rule.keywords) {
				if !seen[rule.value] {
					seen[rule.value] = true
					tags = append(tags, rule.value)
				}
				break
			}
		}
	}
	return tags
}

// ParseAmount reads the leading number of a currency string such as
// "$1,500.00" or "1500 USD". Anything unparseable or negative is 0.
func ParseAmount(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', ' ':
			return -1
		}
		return r
	}, s)
	v, err := strconv.ParseFloat(leadingNumber.FindString(cleaned), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

var leadingNumber = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)

// FromAnalysis assembles a complete pricing input.
func FromAnalysis(a CaseAnalysis) pricing.Input {
	category := pricing.Category(strings.ToLower(strings.TrimSpace(a.Category)))
	if category == "" {
		category = defaultCategory
	}
	return pricing.Input{
		Category:        category,
		ViolationsCount: len(a.Violations),
		DocumentsCount:  len(a.UploadedFiles),
		AmountAtStake:   ParseAmount(a.Amount),
		StrategyLevel:   StrategyFromActions(a.RecommendedActions),
		Urgency:         UrgencyFromLevel(a.UrgencyLevel),
		DocumentTypes:   DocumentTypesFromFilenames(a.UploadedFiles),
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
