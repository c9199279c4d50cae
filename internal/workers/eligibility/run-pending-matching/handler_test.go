// internal/workers/eligibility/run-pending-matching/handler_test.go
package runpendingmatching

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
	"advocacy-workers/internal/report"

	"github.com/DATA-DOG/go-sqlmock"
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
	cfg.BatchSize = 10
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

func newTestHandler(t *testing.T, source catalog.Source, db *sql.DB) *Handler {
	h := NewHandler(createTestConfig(), source, db, logger.NewTestLogger(t))
	h.now = func() time.Time { return time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC) }
	h.newRunID = func() string { return "run-1" }
	return h
}

type failingSource struct{ err error }

func (f failingSource) Programs(context.Context) ([]eligibility.Program, error) { return nil, f.err }

func expectPending(mock sqlmock.Sqlmock, limit int) {
	mock.ExpectQuery("matching_status = 'pending'").
		WithArgs(limit).
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("p-1", "ana@example.com", "$2000-$3000", "60601", 3, "rent", "unemployed", []byte(`["disability"]`)).
			AddRow("p-2", "ben@example.com", "$10000+", "99999", 1, "own", "employed-full", nil))
}

func TestHandler_Execute_MatchesPendingProfiles(t *testing.T) {
	db, mock := setupMockDB(t)
	expectPending(mock, 10)
	mock.ExpectExec("UPDATE eligibility_profiles").
		WithArgs("p-1", 87, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE eligibility_profiles").
		WithArgs("p-2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := newTestHandler(t, catalog.Reference(), db).Execute(context.Background(), &Input{})
	require.NoError(t, err)

	assert.Equal(t, "run-1", output.RunID)
	assert.Equal(t, 2, output.ProcessedCount)
	assert.Equal(t, 2, output.MatchedCount)
	assert.Zero(t, output.ErrorCount)
	require.Len(t, output.Results, 2)
	assert.Equal(t, report.RunResult{
		ProfileID: "p-1", UserEmail: "ana@example.com", MatchCount: 5, AvgScore: 87, Status: report.StatusDraft,
	}, output.Results[0])
	assert.Equal(t, "daily-summary-2026-03-02.md", output.SummaryFile)
	assert.Contains(t, output.Summary, "**Run ID:** run-1")
	assert.Contains(t, output.Summary, "- Successfully matched: 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_ProfileFailureDoesNotStopRun(t *testing.T) {
	db, mock := setupMockDB(t)
	expectPending(mock, 3)
	mock.ExpectExec("UPDATE eligibility_profiles").
		WithArgs("p-1", 87, sqlmock.AnyArg()).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectExec("UPDATE eligibility_profiles").
		WithArgs("p-2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := newTestHandler(t, catalog.Reference(), db).Execute(context.Background(), &Input{BatchSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, output.MatchedCount)
	assert.Equal(t, 1, output.ErrorCount)
	assert.Equal(t, report.StatusError, output.Results[0].Status)
	assert.Contains(t, output.Results[0].Error, "deadlock detected")
	assert.Equal(t, report.StatusDraft, output.Results[1].Status)
	assert.Contains(t, output.Summary, "## Errors")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_IncompleteRowsDoNotStopRun(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("matching_status = 'pending'").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("p-1", "ana@example.com", "$2000-$3000", "60601", 3, "rent", "unemployed", []byte(`{"bad":true}`)).
			AddRow("p-2", "ben@example.com", nil, nil, 2, "rent", "unemployed", nil))
	mock.ExpectExec("UPDATE eligibility_profiles").
		WithArgs("p-2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	output, err := newTestHandler(t, catalog.Reference(), db).Execute(context.Background(), &Input{})
	require.NoError(t, err)

	require.Len(t, output.Results, 2)
	assert.Equal(t, report.StatusError, output.Results[0].Status)
	assert.Contains(t, output.Results[0].Error, "special_circumstances")
	assert.Equal(t, report.StatusDraft, output.Results[1].Status)
	assert.Equal(t, 1, output.MatchedCount)
	assert.Equal(t, 1, output.ErrorCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_NothingPending(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("matching_status = 'pending'").WillReturnRows(sqlmock.NewRows(profileCols))

	output, err := newTestHandler(t, catalog.Reference(), db).Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Zero(t, output.ProcessedCount)
	assert.Empty(t, output.Results)
	assert.Contains(t, output.Summary, "**Total Profiles Processed:** 0")
}

func TestHandler_Execute_Errors(t *testing.T) {
	t.Run("catalog unavailable", func(t *testing.T) {
		db, _ := setupMockDB(t)
		_, err := newTestHandler(t, failingSource{err: errors.New("es down")}, db).Execute(context.Background(), &Input{})
		assert.ErrorIs(t, err, ErrCatalogUnavailable)
	})

	t.Run("pending query fails", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("FROM eligibility_profiles").WillReturnError(errors.New("connection reset"))

		_, err := newTestHandler(t, catalog.Reference(), db).Execute(context.Background(), &Input{})
		assert.ErrorIs(t, err, ErrPendingQuery)
	})
}

func TestHandler_Handle(t *testing.T) {
	t.Run("completes", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("matching_status = 'pending'").WillReturnRows(sqlmock.NewRows(profileCols))
		client := camundatest.NewJobClient()

		newTestHandler(t, catalog.Reference(), db).Handle(client, camundatest.Job(41, TaskType, 1, "{}"))

		require.Len(t, client.Gateway.Completed, 1)
		vars, err := client.CompletedVariables(0)
		require.NoError(t, err)
		assert.Equal(t, "run-1", vars["runId"])
		assert.Equal(t, float64(0), vars["processedCount"])
	})

	t.Run("empty catalog is thrown", func(t *testing.T) {
		db, _ := setupMockDB(t)
		client := camundatest.NewJobClient()

		newTestHandler(t, failingSource{err: catalog.ErrEmptyCatalog}, db).Handle(client, camundatest.Job(42, TaskType, 3, "{}"))

		require.Len(t, client.Gateway.Thrown, 1)
		assert.Equal(t, "CATALOG_UNAVAILABLE", client.Gateway.Thrown[0].ErrorCode)
	})

	t.Run("query failure is retried", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery("FROM eligibility_profiles").WillReturnError(errors.New("connection reset"))
		client := camundatest.NewJobClient()

		newTestHandler(t, catalog.Reference(), db).Handle(client, camundatest.Job(43, TaskType, 3, "{}"))

		require.Len(t, client.Gateway.Failed, 1)
		assert.Equal(t, int32(2), client.Gateway.Failed[0].Retries)
	})
}
