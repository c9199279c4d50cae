// internal/store/profiles.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"advocacy-workers/internal/eligibility"
)

const profileColumns = `id, user_email, monthly_income_range, zip_code, household_size,
	       housing_status, employment_status, special_circumstances`

const (
	profileByIDQuery = `
	SELECT ` + profileColumns + `
	FROM eligibility_profiles
	WHERE id = $1`

	pendingProfilesQuery = `
	SELECT ` + profileColumns + `
	FROM eligibility_profiles
	WHERE benefits_consent = true
	  AND matching_status = 'pending'
	ORDER BY created_at, id
	LIMIT $1`

	saveMatchesQuery = `
	UPDATE eligibility_profiles
	SET matching_status = 'draft',
	    matching_score = $2,
	    matched_programs = $3,
	    report_generated_at = NOW()
	WHERE id = $1`
)

// ProfileRecord is an eligibility_profiles row.
type ProfileRecord struct {
	ID        string              `json:"id"`
	UserEmail string              `json:"userEmail"`
	Profile   eligibility.Profile `json:"profile"`

	// DecodeErr is set by Pending when the row was read but a column could
	// not be decoded. Profile holds whatever did decode.
	DecodeErr error `json:"-"`
}

type Profiles struct {
	db *sql.DB
}

func NewProfiles(db *sql.DB) *Profiles {
	return &Profiles{db: db}
}

// Get loads one profile regardless of consent or matching status.
func (p *Profiles) Get(ctx context.Context, id string) (*ProfileRecord, error) {
	rec, err := scanProfile(p.db.QueryRowContext(ctx, profileByIDQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", id, err)
	}
	return rec, nil
}

// Pending returns consenting profiles that have not been matched yet, oldest
// first. A row whose columns cannot be decoded is still returned, with
// DecodeErr set, so one bad row does not hide the rest of the batch.
func (p *Profiles) Pending(ctx context.Context, limit int) ([]ProfileRecord, error) {
	rows, err := p.db.QueryContext(ctx, pendingProfilesQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("query pending profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRecord
	for rows.Next() {
		rec, err := scanProfile(rows)
		if errors.Is(err, errDecode) {
			rec.DecodeErr = err
		} else if err != nil {
			return nil, fmt.Errorf("scan pending profile: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// SaveMatches moves a profile to draft with its score and matched programs.
func (p *Profiles) SaveMatches(ctx context.Context, id string, score int, matches []eligibility.Match) error {
	if matches == nil {
		matches = []eligibility.Match{}
	}
	payload, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encode matches: %w", err)
	}

	res, err := p.db.ExecContext(ctx, saveMatchesQuery, id, score, payload)
	if err != nil {
		return fmt.Errorf("update profile %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: profile %s", ErrNotFound, id)
	}
	return nil
}

var errDecode = errors.New("decode profile")

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*ProfileRecord, error) {
	var (
		rec                                     ProfileRecord
		email, income, zip, housing, employment sql.NullString
		household                  sql.NullInt64
		circumstances              []byte
	)
	if err := row.Scan(
		&rec.ID, &email, &income, &zip, &household,
		&housing, &employment, &circumstances,
	); err != nil {
		return nil, err
	}

	rec.UserEmail = email.String
	rec.Profile.MonthlyIncomeRange = income.String
	rec.Profile.ZipCode = zip.String
	rec.Profile.HouseholdSize = int(household.Int64)
	rec.Profile.HousingStatus = housing.String
	rec.Profile.EmploymentStatus = employment.String

	list, err := decodeList(circumstances)
	if err != nil {
		return &rec, fmt.Errorf("%w %s special_circumstances: %w", errDecode, rec.ID, err)
	}
	rec.Profile.SpecialCircumstances = list
	return &rec, nil
}
