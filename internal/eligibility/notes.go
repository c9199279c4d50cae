// internal/eligibility/notes.go
package eligibility

import (
	"fmt"
	"strings"
)

// Notes builds the advisory text shown next to a match.
func Notes(profile Profile, program Program, score int) []string {
	notes := []string{scoreNote(score)}

	if program.IncomeLimit != nil {
		income := ParseIncomeRange(profile.MonthlyIncomeRange)
		if income.Max <= *program.IncomeLimit {
			notes = append(notes, fmt.Sprintf("Your income (%s) is within the limit ($%d/month).",
				displayIncome(profile.MonthlyIncomeRange), *program.IncomeLimit))
		} else {
			notes = append(notes, fmt.Sprintf("Your income may exceed the limit ($%d/month). Verify with program.",
				*program.IncomeLimit))
		}
	}

	if groups := MatchingPriorityGroups(profile, program); len(groups) > 0 {
		notes = append(notes, "Priority consideration: "+strings.Join(groups, ", "))
	}
	return notes
}

func scoreNote(score int) string {
	switch {
	case score >= 100:
		return "You appear to be fully eligible for this program."
	case score >= 80:
		return "You likely qualify for this program."
	case score >= 60:
		return "You may qualify - additional verification needed."
	default:
		return "Eligibility uncertain - contact program for details."
	}
}

func displayIncome(bucket string) string {
	if strings.TrimSpace(bucket) == "" {
		return "not provided"
	}
	return bucket
}
