// internal/workers/eligibility/match-eligibility-programs/handler_test.go
package matcheligibilityprograms

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"advocacy-workers/internal/catalog"
	"advocacy-workers/internal/common/camunda/camundatest"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/eligibility"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{
	"id", "user_email", "monthly_income_range", "zip_code", "household_size",
	"housing_status", "employment_status", "special_circumstances",
}

func createTestConfig() *Config {
	cfg := LoadConfig()
	cfg.Timeout = 5 * time.Second
	return cfg
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func sampleProfile() *eligibility.Profile {
	return &eligibility.Profile{
		MonthlyIncomeRange:   "$2000-$3000",
		ZipCode:              "60601",
		HouseholdSize:        3,
		HousingStatus:        "rent",
		EmploymentStatus:     "unemployed",
		SpecialCircumstances: []string{"disability"},
	}
}

func expectProfileRow(mock sqlmock.Sqlmock, id string) {
	mock.ExpectQuery("FROM eligibility_profiles WHERE id = \\$1").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow(id, "ana@example.com", "$2000-$3000", "60601", 3, "rent", "unemployed", []byte(`["disability"]`)))
}

type failingSource struct{ err error }

func (f failingSource) Programs(context.Context) ([]eligibility.Program, error) { return nil, f.err }

func TestHandler_Execute_InlineProfile(t *testing.T) {
	db, _ := setupMockDB(t)
	_, rdb := setupRedis(t)
	h := NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Profile: sampleProfile()})
	require.NoError(t, err)

	assert.Equal(t, 5, output.MatchCount)
	assert.Equal(t, []string{"liheap-federal", "snap-federal", "section8-federal", "medicaid-federal", "tanf-federal"}, output.TopProgramIDs)
	assert.Equal(t, 87, output.MatchingScore)
	assert.Equal(t, 100, output.Matches[0].Score)
	assert.Empty(t, output.ValidationWarnings)
}

func TestHandler_Execute_Overrides(t *testing.T) {
	db, _ := setupMockDB(t)
	_, rdb := setupRedis(t)
	h := NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t))

	output, err := h.Execute(context.Background(), &Input{Profile: sampleProfile(), MinScore: 80, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"liheap-federal", "snap-federal"}, output.TopProgramIDs)
	assert.Equal(t, 90, output.MatchingScore)
}

func TestHandler_Execute_ProfileFromDatabaseIsCached(t *testing.T) {
	db, mock := setupMockDB(t)
	mr, rdb := setupRedis(t)
	h := NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t))

	expectProfileRow(mock, "p-1")

	first, err := h.Execute(context.Background(), &Input{ProfileID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", first.UserEmail)
	assert.True(t, mr.Exists(profileCachePrefix+"p-1"))

	// no second query expected
	second, err := h.Execute(context.Background(), &Input{ProfileID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, first.TopProgramIDs, second.TopProgramIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_RedisErrorsFallThrough(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb, rmock := redismock.NewClientMock()
	h := NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t))

	rmock.ExpectGet(profileCachePrefix + "p-1").SetErr(errors.New("redis down"))
	expectProfileRow(mock, "p-1")

	// the cache write has no expectation and fails; the job still succeeds
	output, err := h.Execute(context.Background(), &Input{ProfileID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, 5, output.MatchCount)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  catalog.Source
		input   *Input
		mock    func(sqlmock.Sqlmock)
		strict  bool
		wantErr error
	}{
		{
			name:    "no profile",
			source:  catalog.Reference(),
			input:   &Input{},
			wantErr: ErrMissingProfile,
		},
		{
			name:   "profile not found",
			source: catalog.Reference(),
			input:  &Input{ProfileID: "ghost"},
			mock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FROM eligibility_profiles").WithArgs("ghost").WillReturnRows(sqlmock.NewRows(profileCols))
			},
			wantErr: ErrProfileNotFound,
		},
		{
			name:   "profile query fails",
			source: catalog.Reference(),
			input:  &Input{ProfileID: "p-1"},
			mock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery("FROM eligibility_profiles").WillReturnError(errors.New("connection reset"))
			},
			wantErr: ErrProfileQueryFailed,
		},
		{
			name:    "catalog unavailable",
			source:  failingSource{err: catalog.ErrCatalogUnavailable},
			input:   &Input{Profile: sampleProfile()},
			wantErr: ErrCatalogUnavailable,
		},
		{
			name:    "empty catalog",
			source:  failingSource{err: catalog.ErrEmptyCatalog},
			input:   &Input{Profile: sampleProfile()},
			wantErr: catalog.ErrEmptyCatalog,
		},
		{
			name:   "strict validation",
			source: catalog.Reference(),
			input: &Input{Profile: &eligibility.Profile{
				MonthlyIncomeRange: "about 2k",
				ZipCode:            "30301",
				HouseholdSize:      0,
				HousingStatus:      "rent",
				EmploymentStatus:   "unemployed",
			}},
			strict:  true,
			wantErr: ErrInvalidProfile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			_, rdb := setupRedis(t)
			if tt.mock != nil {
				tt.mock(mock)
			}
			cfg := createTestConfig()
			cfg.StrictValidation = tt.strict

			_, err := NewHandler(cfg, tt.source, db, rdb, logger.NewTestLogger(t)).Execute(context.Background(), tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestHandler_Execute_LenientValidation(t *testing.T) {
	db, _ := setupMockDB(t)
	_, rdb := setupRedis(t)
	h := NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t))

	profile := sampleProfile()
	profile.HousingStatus = "boat"

	output, err := h.Execute(context.Background(), &Input{Profile: profile})
	require.NoError(t, err)
	assert.NotEmpty(t, output.ValidationWarnings)
	for _, m := range output.Matches {
		assert.GreaterOrEqual(t, m.Score, eligibility.DefaultMinScore)
	}
}

func TestHandler_Handle(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		db, _ := setupMockDB(t)
		_, rdb := setupRedis(t)
		client := camundatest.NewJobClient()

		NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t)).
			Handle(client, camundatest.Job(31, TaskType, 3, map[string]interface{}{"profile": sampleProfile()}))

		require.Len(t, client.Gateway.Completed, 1)
		vars, err := client.CompletedVariables(0)
		require.NoError(t, err)
		assert.Equal(t, float64(5), vars["matchCount"])
		assert.Equal(t, float64(87), vars["matchingScore"])
	})

	t.Run("catalog outage is retried", func(t *testing.T) {
		db, _ := setupMockDB(t)
		_, rdb := setupRedis(t)
		client := camundatest.NewJobClient()

		NewHandler(createTestConfig(), failingSource{err: errors.New("es timeout")}, db, rdb, logger.NewTestLogger(t)).
			Handle(client, camundatest.Job(32, TaskType, 3, map[string]interface{}{"profile": sampleProfile()}))

		require.Len(t, client.Gateway.Failed, 1)
		assert.Equal(t, int32(2), client.Gateway.Failed[0].Retries)
	})

	t.Run("unknown profile is thrown", func(t *testing.T) {
		db, mock := setupMockDB(t)
		_, rdb := setupRedis(t)
		mock.ExpectQuery("FROM eligibility_profiles").WillReturnRows(sqlmock.NewRows(profileCols))
		client := camundatest.NewJobClient()

		NewHandler(createTestConfig(), catalog.Reference(), db, rdb, logger.NewTestLogger(t)).
			Handle(client, camundatest.Job(33, TaskType, 3, map[string]interface{}{"profileId": "ghost"}))

		require.Len(t, client.Gateway.Thrown, 1)
		assert.Equal(t, "PROFILE_NOT_FOUND", client.Gateway.Thrown[0].ErrorCode)
	})
}
