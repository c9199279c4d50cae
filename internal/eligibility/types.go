// internal/eligibility/types.go
package eligibility

// Profile holds the self-reported attributes scored against program rules.
type Profile struct {
	MonthlyIncomeRange   string   `json:"monthlyIncomeRange" yaml:"monthlyIncomeRange"`
	ZipCode              string   `json:"zipCode" yaml:"zipCode"`
	HouseholdSize        int      `json:"householdSize" yaml:"householdSize"`
	HousingStatus        string   `json:"housingStatus" yaml:"housingStatus"`
	EmploymentStatus     string   `json:"employmentStatus" yaml:"employmentStatus"`
	SpecialCircumstances []string `json:"specialCircumstances" yaml:"specialCircumstances"`
}

type Scope string

const (
	ScopeFederal Scope = "federal"
	ScopeState   Scope = "state"
	ScopeLocal   Scope = "local"
)

// Program is a read-only catalog entry. Nil pointers and empty lists mean
// the program places no restriction on that criterion.
type Program struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`

	Geographic Scope    `json:"geographic,omitempty" yaml:"geographic,omitempty"`
	State      string   `json:"state,omitempty" yaml:"state,omitempty"`
	ZipCodes   []string `json:"zipCodes,omitempty" yaml:"zipCodes,omitempty"`

	IncomeLimit        *int     `json:"incomeLimit,omitempty" yaml:"incomeLimit,omitempty"`
	HouseholdSizeMin   *int     `json:"householdSizeMin,omitempty" yaml:"householdSizeMin,omitempty"`
	HouseholdSizeMax   *int     `json:"householdSizeMax,omitempty" yaml:"householdSizeMax,omitempty"`
	HousingStatuses    []string `json:"housingStatuses,omitempty" yaml:"housingStatuses,omitempty"`
	EmploymentStatuses []string `json:"employmentStatuses,omitempty" yaml:"employmentStatuses,omitempty"`
	PriorityGroups     []string `json:"priorityGroups,omitempty" yaml:"priorityGroups,omitempty"`

	EstimatedValue  string   `json:"estimatedValue,omitempty" yaml:"estimatedValue,omitempty"`
	Deadline        string   `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	DocumentsNeeded []string `json:"documentsNeeded,omitempty" yaml:"documentsNeeded,omitempty"`
	ApplicationURL  string   `json:"applicationUrl,omitempty" yaml:"applicationUrl,omitempty"`
}

// CriterionResult records the points one criterion awarded out of its weight.
type CriterionResult struct {
	Name    string `json:"name"`
	Awarded int    `json:"awarded"`
	Weight  int    `json:"weight"`
}

type Evaluation struct {
	Score    int               `json:"score"`
	Criteria []CriterionResult `json:"criteria"`
}

type Match struct {
	Program          Program           `json:"program"`
	Score            int               `json:"score"`
	EligibilityNotes []string          `json:"eligibilityNotes"`
	Criteria         []CriterionResult `json:"criteria,omitempty"`
}

// IncomeRange is the parsed [Min, Max] monthly income of a bucket.
type IncomeRange struct {
	Min int
	Max int
}

// IntPtr is a convenience for building programs with optional limits.
func IntPtr(v int) *int {
	return &v
}
