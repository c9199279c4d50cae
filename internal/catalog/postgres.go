// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"advocacy-workers/internal/eligibility"
)

const programsQuery = `
	SELECT id, name, category, description, geographic, state, zip_codes,
	       income_limit, household_size_min, household_size_max,
	       housing_statuses, employment_statuses, priority_groups,
	       estimated_value, deadline, documents_needed, application_url
	FROM benefit_programs
	WHERE active = true
	ORDER BY sort_order, id`

// Postgres reads active programs from the benefit_programs table. List
// columns are JSONB arrays.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Programs(ctx context.Context) ([]eligibility.Program, error) {
	rows, err := p.db.QueryContext(ctx, programsQuery)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var programs []eligibility.Program
	for rows.Next() {
		var (
			prog                          eligibility.Program
			geographic, state             sql.NullString
			estimatedValue, deadline, url sql.NullString
			incomeLimit, hhMin, hhMax     sql.NullInt64
			zips, housing, employment     []byte
			priority, documents           []byte
		)
		if err := rows.Scan(
			&prog.ID, &prog.Name, &prog.Category, &prog.Description, &geographic, &state, &zips,
			&incomeLimit, &hhMin, &hhMax,
			&housing, &employment, &priority,
			&estimatedValue, &deadline, &documents, &url,
		); err != nil {
			return nil, fmt.Errorf("%w: scan program: %v", ErrCatalogUnavailable, err)
		}

		prog.Geographic = eligibility.Scope(geographic.String)
		prog.State = state.String
		prog.EstimatedValue = estimatedValue.String
		prog.Deadline = deadline.String
		prog.ApplicationURL = url.String
		prog.IncomeLimit = nullableInt(incomeLimit)
		prog.HouseholdSizeMin = nullableInt(hhMin)
		prog.HouseholdSizeMax = nullableInt(hhMax)

		for _, col := range []struct {
			raw []byte
			dst *[]string
		}{
			{zips, &prog.ZipCodes},
			{housing, &prog.HousingStatuses},
			{employment, &prog.EmploymentStatuses},
			{priority, &prog.PriorityGroups},
			{documents, &prog.DocumentsNeeded},
		} {
			if err := decodeList(col.raw, col.dst); err != nil {
				return nil, fmt.Errorf("%w: program %s: %v", ErrCatalogUnavailable, prog.ID, err)
			}
		}
		programs = append(programs, prog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	if len(programs) == 0 {
		return nil, ErrEmptyCatalog
	}
	return programs, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return eligibility.IntPtr(int(v.Int64))
}

func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
