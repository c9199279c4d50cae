// internal/eligibility/scorer.go
package eligibility

import (
	"math"
	"slices"
)

const (
	WeightIncome     = 40
	WeightGeographic = 20
	WeightHousehold  = 10
	WeightHousing    = 10
	WeightEmployment = 10
	WeightPriority   = 10
)

type criterion struct {
	name   string
	weight int
	award  func(p Profile, prog Program, weight int) int
}

// criteria are evaluated in order. The final score is a percentage of the
// summed weights, so adding a criterion here does not change the scale.
var criteria = []criterion{
	{name: "income", weight: WeightIncome, award: incomeCredit},
	{name: "geographic", weight: WeightGeographic, award: geographicCredit},
	{name: "householdSize", weight: WeightHousehold, award: householdCredit},
	{name: "housingStatus", weight: WeightHousing, award: housingCredit},
	{name: "employmentStatus", weight: WeightEmployment, award: employmentCredit},
	{name: "specialCircumstances", weight: WeightPriority, award: priorityCredit},
}

// ScoreProfile returns the eligibility score of profile for program in [0, 100].
func ScoreProfile(profile Profile, program Program) int {
	return Evaluate(profile, program).Score
}

// Evaluate scores profile against program and records each criterion.
func Evaluate(profile Profile, program Program) Evaluation {
	var score, maxScore int
	results := make([]CriterionResult, 0, len(criteria))
	for _, c := range criteria {
		awarded := c.award(profile, program, c.weight)
		score += awarded
		maxScore += c.weight
		results = append(results, CriterionResult{Name: c.name, Awarded: awarded, Weight: c.weight})
	}

	if maxScore == 0 {
		return Evaluation{Criteria: results}
	}
	pct := int(math.Round(float64(score) * 100 / float64(maxScore)))
	return Evaluation{Score: min(max(pct, 0), 100), Criteria: results}
}

func incomeCredit(p Profile, prog Program, weight int) int {
	if prog.IncomeLimit == nil {
		return weight
	}
	income := ParseIncomeRange(p.MonthlyIncomeRange)
	switch {
	case income.Max <= *prog.IncomeLimit:
		return weight
	case income.Min <= *prog.IncomeLimit:
		return weight / 2
	default:
		return 0
	}
}

func geographicCredit(p Profile, prog Program, weight int) int {
	switch prog.Geographic {
	case "", ScopeFederal:
		return weight
	case ScopeState:
		state := StateFromZip(p.ZipCode)
		if state != "" && state == prog.State {
			return weight
		}
	case ScopeLocal:
		if p.ZipCode != "" && slices.Contains(prog.ZipCodes, p.ZipCode) {
			return weight
		}
	}
	return 0
}

func householdCredit(p Profile, prog Program, weight int) int {
	if prog.HouseholdSizeMin != nil && p.HouseholdSize < *prog.HouseholdSizeMin {
		return 0
	}
	if prog.HouseholdSizeMax != nil && p.HouseholdSize > *prog.HouseholdSizeMax {
		return 0
	}
	return weight
}

func housingCredit(p Profile, prog Program, weight int) int {
	return allowListCredit(prog.HousingStatuses, p.HousingStatus, weight)
}

func employmentCredit(p Profile, prog Program, weight int) int {
	return allowListCredit(prog.EmploymentStatuses, p.EmploymentStatus, weight)
}

func allowListCredit(allowed []string, value string, weight int) int {
	if len(allowed) == 0 || slices.Contains(allowed, value) {
		return weight
	}
	return 0
}

func priorityCredit(p Profile, prog Program, weight int) int {
	if len(prog.PriorityGroups) == 0 {
		return weight
	}
	if len(MatchingPriorityGroups(p, prog)) > 0 {
		return weight
	}
	return 0
}

// MatchingPriorityGroups lists the profile's circumstances that the program
// prioritises, in profile order.
func MatchingPriorityGroups(p Profile, prog Program) []string {
	var out []string
	for _, c := range p.SpecialCircumstances {
		if slices.Contains(prog.PriorityGroups, c) && !slices.Contains(out, c) {
			out = append(out, c)
		}
	}
	return out
}
