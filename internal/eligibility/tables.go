// internal/eligibility/tables.go
package eligibility

import (
	"strconv"
	"strings"
)

// IncomeBuckets maps the income-range strings collected at intake to
// monthly bounds. Unknown strings parse to {0, 0}.
var IncomeBuckets = map[string]IncomeRange{
	"$0-$1000":     {Min: 0, Max: 1000},
	"$1000-$2000":  {Min: 1000, Max: 2000},
	"$2000-$3000":  {Min: 2000, Max: 3000},
	"$3000-$4000":  {Min: 3000, Max: 4000},
	"$4000-$5000":  {Min: 4000, Max: 5000},
	"$5000-$7500":  {Min: 5000, Max: 7500},
	"$7500-$10000": {Min: 7500, Max: 10000},
	"$10000+":      {Min: 10000, Max: 999999},
}

type zipRange struct {
	Low, High int
	State     string
}

// ZipStateRanges only covers a handful of states. ZIPs outside these ranges
// resolve to no state and fail state-scoped programs.
var ZipStateRanges = []zipRange{
	{Low: 30000, High: 31999, State: "GA"},
	{Low: 90000, High: 96699, State: "CA"},
	{Low: 10000, High: 14999, State: "NY"},
}

func ParseIncomeRange(bucket string) IncomeRange {
	return IncomeBuckets[strings.TrimSpace(bucket)]
}

// StateFromZip returns the two-letter state for a ZIP, or "" when unmapped.
func StateFromZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if len(zip) > 5 {
		zip = zip[:5]
	}
	n, err := strconv.Atoi(zip)
	if err != nil {
		return ""
	}
	for _, r := range ZipStateRanges {
		if n >= r.Low && n <= r.High {
			return r.State
		}
	}
	return ""
}

var housingLabels = map[string]string{
	"rent":        "Renting",
	"own":         "Homeowner",
	"homeless":    "Homeless",
	"at-risk":     "At risk of homelessness",
	"with-family": "Living with family",
	"temporary":   "Temporary housing",
}

var employmentLabels = map[string]string{
	"employed-full": "Employed full-time",
	"employed-part": "Employed part-time",
	"self-employed": "Self-employed",
	"unemployed":    "Unemployed",
	"disabled":      "Unable to work (disability)",
	"retired":       "Retired",
	"student":       "Student",
}

var circumstanceLabels = map[string]string{
	"veteran":       "Veteran",
	"disability":    "Person with disability",
	"student":       "Student",
	"senior":        "Senior (65+)",
	"single-parent": "Single parent",
	"pregnant":      "Pregnant",
}

func HousingLabel(status string) string      { return labelOr(housingLabels, status) }
func EmploymentLabel(status string) string   { return labelOr(employmentLabels, status) }
func CircumstanceLabel(status string) string { return labelOr(circumstanceLabels, status) }

func labelOr(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	if key == "" {
		return "Not specified"
	}
	return key
}
