package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/eligibility"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type countingSource struct {
	calls    int
	programs []eligibility.Program
	err      error
}

func (c *countingSource) Programs(context.Context) ([]eligibility.Program, error) {
	c.calls++
	return c.programs, c.err
}

func TestReference_ReturnsCopies(t *testing.T) {
	src := Reference()

	first, err := src.Programs(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 5)
	first[0].Name = "changed"

	second, err := src.Programs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SNAP (Food Stamps)", second[0].Name)
}

const catalogYAML = `
programs:
  - id: ga-rental-relief
    name: Georgia Rental Relief
    category: Housing
    geographic: state
    state: GA
    incomeLimit: 3500
    householdSizeMin: 1
    housingStatuses: [rent, at-risk]
    documentsNeeded: [Lease, ID]
  - id: atl-utility
    name: Atlanta Utility Credit
    category: Utilities
    geographic: local
    zipCodes: ["30303", "30305"]
`

func TestYAMLFile_Programs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	programs, err := NewYAMLFile(path).Programs(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)

	ga := programs[0]
	assert.Equal(t, eligibility.ScopeState, ga.Geographic)
	assert.Equal(t, "GA", ga.State)
	require.NotNil(t, ga.IncomeLimit)
	assert.Equal(t, 3500, *ga.IncomeLimit)
	assert.Nil(t, ga.HouseholdSizeMax)
	assert.Equal(t, []string{"rent", "at-risk"}, ga.HousingStatuses)
	assert.Equal(t, []string{"30303", "30305"}, programs[1].ZipCodes)

	profile := eligibility.Profile{ZipCode: "30303", HouseholdSize: 2, HousingStatus: "rent", MonthlyIncomeRange: "$2000-$3000"}
	assert.Equal(t, 100, eligibility.ScoreProfile(profile, ga))
}

func TestYAMLFile_Errors(t *testing.T) {
	_, err := NewYAMLFile(filepath.Join(t.TempDir(), "missing.yaml")).Programs(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = ParseYAML([]byte("programs: []"))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = ParseYAML([]byte("programs:\n  - name: no id\n"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = ParseYAML([]byte("programs:\n  - id: a\n  - id: a\n"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	_, err = ParseYAML([]byte("programs: [unterminated"))
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}

var programColumns = []string{
	"id", "name", "category", "description", "geographic", "state", "zip_codes",
	"income_limit", "household_size_min", "household_size_max",
	"housing_statuses", "employment_statuses", "priority_groups",
	"estimated_value", "deadline", "documents_needed", "application_url",
}

func TestPostgres_Programs(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM benefit_programs").
		WillReturnRows(sqlmock.NewRows(programColumns).
			AddRow("snap-federal", "SNAP", "Food Assistance", "Monthly benefits", "federal", nil, nil,
				2500, 1, 20,
				nil, []byte(`[]`), []byte(`["senior","disability"]`),
				"$200-$500/month", "Rolling", []byte(`["ID"]`), "https://example.org/snap").
			AddRow("ny-heat", "NY Heat", "Utilities", "Heating help", "state", "NY", []byte(`null`),
				nil, nil, nil,
				[]byte(`["rent","own"]`), nil, nil,
				nil, nil, nil, nil))

	programs, err := NewPostgres(db).Programs(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)

	snap := programs[0]
	assert.Equal(t, eligibility.ScopeFederal, snap.Geographic)
	require.NotNil(t, snap.IncomeLimit)
	assert.Equal(t, 2500, *snap.IncomeLimit)
	assert.Equal(t, 20, *snap.HouseholdSizeMax)
	assert.Equal(t, []string{"senior", "disability"}, snap.PriorityGroups)
	assert.Empty(t, snap.EmploymentStatuses)
	assert.Equal(t, []string{"ID"}, snap.DocumentsNeeded)

	heat := programs[1]
	assert.Equal(t, "NY", heat.State)
	assert.Nil(t, heat.IncomeLimit)
	assert.Nil(t, heat.ZipCodes)
	assert.Equal(t, []string{"rent", "own"}, heat.HousingStatuses)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Errors(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SELECT (.+) FROM benefit_programs").WillReturnError(errors.New("connection refused"))

	_, err := NewPostgres(db).Programs(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	mock.ExpectQuery("SELECT (.+) FROM benefit_programs").WillReturnRows(sqlmock.NewRows(programColumns))
	_, err = NewPostgres(db).Programs(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	mock.ExpectQuery("SELECT (.+) FROM benefit_programs").
		WillReturnRows(sqlmock.NewRows(programColumns).
			AddRow("bad", "Bad", "X", "Y", "federal", nil, []byte(`{not json`),
				nil, nil, nil, nil, nil, nil, nil, nil, nil, nil))
	_, err = NewPostgres(db).Programs(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func newTestES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearch_Programs(t *testing.T) {
	var gotPath, gotSize string
	var gotBody map[string]interface{}
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSize = r.URL.Query().Get("size")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		resp := map[string]interface{}{
			"hits": map[string]interface{}{
				"total": map[string]interface{}{"value": 2},
				"hits": []interface{}{
					map[string]interface{}{"_id": "medicaid-federal", "_source": map[string]interface{}{
						"name": "Medicaid", "geographic": "federal", "incomeLimit": 2500,
					}},
					map[string]interface{}{"_id": "doc-2", "_source": map[string]interface{}{
						"id": "ca-calfresh", "name": "CalFresh", "geographic": "state", "state": "CA",
						"priorityGroups": []string{"student"},
					}},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	programs, err := NewElasticsearch(client, "", 0).Programs(context.Background())
	require.NoError(t, err)
	require.Len(t, programs, 2)

	assert.Equal(t, "/benefit-programs/_search", gotPath)
	assert.Equal(t, "500", gotSize)
	assert.Contains(t, gotBody, "query")

	assert.Equal(t, "medicaid-federal", programs[0].ID)
	assert.Equal(t, 2500, *programs[0].IncomeLimit)
	assert.Equal(t, "ca-calfresh", programs[1].ID)
	assert.Equal(t, []string{"student"}, programs[1].PriorityGroups)
}

func TestElasticsearch_Errors(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
	})
	_, err := NewElasticsearch(client, "missing", 10).Programs(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)

	empty := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[]}}`))
	})
	_, err = NewElasticsearch(empty, "benefit-programs", 10).Programs(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestCached_Programs(t *testing.T) {
	mr, rdb := setupRedis(t)
	next := &countingSource{programs: eligibility.ReferencePrograms()}
	cached := NewCached(next, rdb, time.Minute, logger.NewTestLogger(t))
	ctx := context.Background()

	first, err := cached.Programs(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 5)
	assert.Equal(t, 1, next.calls)
	assert.True(t, mr.Exists(DefaultCacheKey))

	second, err := cached.Programs(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)

	mr.FastForward(2 * time.Minute)
	_, err = cached.Programs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)

	require.NoError(t, cached.Invalidate(ctx))
	assert.False(t, mr.Exists(DefaultCacheKey))
}

func TestCached_FallsThroughOnCorruptSnapshot(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set(DefaultCacheKey, "{garbage"))

	next := &countingSource{programs: eligibility.ReferencePrograms()}
	programs, err := NewCached(next, rdb, time.Minute, logger.NewNoOpLogger()).Programs(context.Background())
	require.NoError(t, err)
	assert.Len(t, programs, 5)
	assert.Equal(t, 1, next.calls)
}

func TestCached_RedisDown(t *testing.T) {
	mr, rdb := setupRedis(t)
	mr.Close()

	next := &countingSource{programs: eligibility.ReferencePrograms()}
	programs, err := NewCached(next, rdb, time.Minute, logger.NewNoOpLogger()).Programs(context.Background())
	require.NoError(t, err)
	assert.Len(t, programs, 5)
}

func TestCached_PropagatesSourceError(t *testing.T) {
	_, rdb := setupRedis(t)
	next := &countingSource{err: ErrCatalogUnavailable}

	_, err := NewCached(next, rdb, time.Minute, logger.NewNoOpLogger()).Programs(context.Background())
	assert.ErrorIs(t, err, ErrCatalogUnavailable)
}
