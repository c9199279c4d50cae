// internal/eligibility/reference.go
package eligibility

// ReferencePrograms returns a fresh copy of the five federal reference programs.
func ReferencePrograms() []Program {
	return []Program{
		{
			ID:               "snap-federal",
			Name:             "SNAP (Food Stamps)",
			Category:         "Food Assistance",
			Description:      "Monthly benefits to buy food",
			Geographic:       ScopeFederal,
			IncomeLimit:      IntPtr(2500),
			HouseholdSizeMin: IntPtr(1),
			HouseholdSizeMax: IntPtr(20),
			PriorityGroups:   []string{"senior", "disability", "single-parent"},
			EstimatedValue:   "$200-$500/month",
			Deadline:         "Rolling applications",
			DocumentsNeeded:  []string{"Proof of income", "ID", "Proof of address"},
			ApplicationURL:   "https://www.benefits.gov/benefit/361",
		},
		{
			ID:              "liheap-federal",
			Name:            "LIHEAP (Utility Assistance)",
			Category:        "Housing/Utilities",
			Description:     "Help paying heating and cooling bills",
			Geographic:      ScopeFederal,
			IncomeLimit:     IntPtr(3000),
			HousingStatuses: []string{"rent", "own"},
			EstimatedValue:  "$300-$1000/year",
			Deadline:        "Seasonal (Oct-Mar)",
			DocumentsNeeded: []string{"Utility bills", "Proof of income", "Lease or mortgage"},
			ApplicationURL:  "https://www.benefits.gov/benefit/623",
		},
		{
			ID:              "section8-federal",
			Name:            "Section 8 Housing Voucher",
			Category:        "Housing",
			Description:     "Rental assistance for low-income families",
			Geographic:      ScopeFederal,
			IncomeLimit:     IntPtr(2000),
			HousingStatuses: []string{"rent", "homeless", "at-risk"},
			PriorityGroups:  []string{"veteran", "disability", "senior"},
			EstimatedValue:  "$500-$1500/month",
			Deadline:        "Waitlist varies by location",
			DocumentsNeeded: []string{"Income verification", "ID", "Rental history"},
			ApplicationURL:  "https://www.hud.gov/topics/housing_choice_voucher_program_section_8",
		},
		{
			ID:              "medicaid-federal",
			Name:            "Medicaid",
			Category:        "Healthcare",
			Description:     "Free or low-cost health coverage",
			Geographic:      ScopeFederal,
			IncomeLimit:     IntPtr(2500),
			EstimatedValue:  "Full health coverage",
			Deadline:        "Rolling applications",
			DocumentsNeeded: []string{"Proof of income", "ID", "SSN"},
			ApplicationURL:  "https://www.medicaid.gov/medicaid/index.html",
		},
		{
			ID:               "tanf-federal",
			Name:             "TANF (Cash Assistance)",
			Category:         "Cash Assistance",
			Description:      "Temporary cash assistance for families",
			Geographic:       ScopeFederal,
			IncomeLimit:      IntPtr(1500),
			HouseholdSizeMin: IntPtr(2),
			PriorityGroups:   []string{"single-parent", "pregnant"},
			EstimatedValue:   "$200-$600/month",
			Deadline:         "Rolling applications",
			DocumentsNeeded:  []string{"Proof of income", "Birth certificates", "ID"},
			ApplicationURL:   "https://www.benefits.gov/benefit/613",
		},
	}
}
