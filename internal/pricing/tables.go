// internal/pricing/tables.go
package pricing

import "github.com/shopspring/decimal"

const (
	// MinimumPrice is the lowest raw price a case can be quoted at.
	MinimumPrice = 149
	// RoundingStep is the granularity of every final price.
	RoundingStep = 25

	HighTierThreshold    = 800
	ExtremeTierThreshold = 1500

	perDocumentIncrement = 25
	documentCountCap     = 100
)

// BasePrices is the starting amount per case category. Unknown categories
// fall back to DefaultBasePrice.
var BasePrices = map[Category]int{
	CategoryDebt:     149,
	CategoryConsumer: 149,
	CategoryBilling:  199,
	CategoryAuto:     249,
	CategoryWage:     249,
	CategoryMedical:  249,
	CategoryBenefits: 249,
	CategoryEviction: 299,
	CategoryHousing:  299,
	CategoryIRS:      349,
	CategoryTax:      349,
}

const DefaultBasePrice = 149

// StrategyPoints is strictly increasing in the order of the Strategy constants.
var StrategyPoints = map[Strategy]int{
	StrategyBasic:            0,
	StrategyEvidenceReview:   100,
	StrategyAgencyComplaint:  150,
	StrategyMultiStep:        200,
	StrategyLegalPositioning: 250,
	StrategyMultiAgency:      350,
	StrategyCaseBuilding:     400,
}

// StrategyOrder lists strategies from least to most sophisticated.
var StrategyOrder = []Strategy{
	StrategyBasic,
	StrategyEvidenceReview,
	StrategyAgencyComplaint,
	StrategyMultiStep,
	StrategyLegalPositioning,
	StrategyMultiAgency,
	StrategyCaseBuilding,
}

var UrgencyMultipliers = map[Urgency]decimal.Decimal{
	UrgencyStandard:  decimal.RequireFromString("1.0"),
	UrgencyWeekLeft:  decimal.RequireFromString("1.1"),
	UrgencyFewDays:   decimal.RequireFromString("1.2"),
	UrgencyImmediate: decimal.RequireFromString("1.3"),
}

// UrgencyOrder lists urgencies from least to most pressing.
var UrgencyOrder = []Urgency{UrgencyStandard, UrgencyWeekLeft, UrgencyFewDays, UrgencyImmediate}

var urgencyAliases = map[Urgency]Urgency{
	UrgencyTwoDays: UrgencyFewDays,
	UrgencyOneDay:  UrgencyImmediate,
}

// band awards Points once a value reaches Min. Bands are ordered by Min descending.
type band struct {
	Min    float64
	Points int
}

// ViolationBands is the complexity step schedule.
var ViolationBands = []band{
	{Min: 6, Points: 200},
	{Min: 3, Points: 150},
	{Min: 1, Points: 75},
}

// StakeBands caps the amount-at-stake contribution at 100.
var StakeBands = []band{
	{Min: 10000, Points: 100},
	{Min: 1500, Points: 75},
	{Min: 500, Points: 50},
	{Min: 0.01, Points: 25},
}

// DocumentTypeBonuses is added once per distinct tag present.
var DocumentTypeBonuses = map[string]int{
	DocCourt:     100,
	DocGovNotice: 75,
	DocMedical:   75,
	DocContract:  50,
}

func bandPoints(bands []band, v float64) int {
	for _, b := range bands {
		if v >= b.Min {
			return b.Points
		}
	}
	return 0
}
