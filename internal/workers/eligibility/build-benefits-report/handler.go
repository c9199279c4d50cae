// internal/workers/eligibility/build-benefits-report/handler.go
package buildbenefitsreport

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"advocacy-workers/internal/catalog"
	apperrors "advocacy-workers/internal/common/errors"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/common/metrics"
	"advocacy-workers/internal/common/observability"
	"advocacy-workers/internal/eligibility"
	"advocacy-workers/internal/report"
	"advocacy-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

const TaskType = "build-benefits-report"

var (
	ErrMissingProfile     = errors.New("MISSING_PROFILE")
	ErrProfileNotFound    = errors.New("PROFILE_NOT_FOUND")
	ErrProfileQueryFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrRenderFailed       = errors.New("REPORT_RENDER_FAILED")
)

type Handler struct {
	config   *Config
	catalog  catalog.Source
	profiles *store.Profiles
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
	newID    func() string
}

func NewHandler(config *Config, source catalog.Source, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		catalog:  source,
		profiles: store.NewProfiles(db),
		errors:   apperrors.NewErrorHandler(scoped),
		logger:   scoped,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, span := observability.StartSpan(ctx, TaskType, attribute.Int64("jobKey", job.Key))
	defer span.End()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(ctx, client, job, apperrors.NewParseError(err), start)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		span.RecordError(err)
		h.failJob(ctx, client, job, h.mapError(&input, err), start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	summary := report.ProfileSummary{ID: input.ProfileID, UserEmail: input.UserEmail}

	switch {
	case input.Profile != nil:
		summary.Profile = *input.Profile
	case input.ProfileID != "":
		rec, err := h.profiles.Get(ctx, input.ProfileID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, input.ProfileID)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProfileQueryFailed, err)
		}
		summary.Profile = rec.Profile
		if summary.UserEmail == "" {
			summary.UserEmail = rec.UserEmail
		}
	default:
		return nil, fmt.Errorf("%w: profile or profileId is required", ErrMissingProfile)
	}

	matches := input.Matches
	if matches == nil {
		programs, err := h.catalog.Programs(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
		}
		matches = eligibility.NewMatcher(programs, eligibility.WithMinScore(h.config.MinScore)).Match(summary.Profile)
	}
	summary.MatchingScore = eligibility.AverageTopScore(matches, h.config.AverageOver)

	generated := h.now()
	body, err := report.BenefitsReport(summary, matches, generated)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	reportID := h.newID()
	name := input.ProfileID
	if name == "" {
		name = reportID
	}

	h.logger.Info("benefits report built", map[string]interface{}{
		"profileId":  input.ProfileID,
		"reportId":   reportID,
		"matchCount": len(matches),
	})

	return &Output{
		ReportID:      reportID,
		ProfileID:     input.ProfileID,
		FileName:      report.FileName(name, generated),
		Report:        body,
		MatchCount:    len(matches),
		MatchingScore: summary.MatchingScore,
	}, nil
}

func (h *Handler) mapError(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMissingProfile):
		return apperrors.NewInvalidEligibilityProfileError(err.Error())
	case errors.Is(err, ErrProfileNotFound):
		return apperrors.NewProfileNotFoundError(input.ProfileID)
	case errors.Is(err, ErrProfileQueryFailed):
		return apperrors.NewQueryExecutionFailedError("eligibility_profile", err).WithMetadata("profileId", input.ProfileID)
	case errors.Is(err, catalog.ErrEmptyCatalog):
		return apperrors.NewEmptyCatalogError()
	case errors.Is(err, ErrCatalogUnavailable):
		return apperrors.NewCatalogUnavailableError(err)
	case errors.Is(err, ErrRenderFailed):
		return apperrors.NewReportRenderFailedError(err)
	default:
		return apperrors.NewInternalError(err)
	}
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output, start time.Time) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		metrics.ObserveJob(TaskType, start, string(apperrors.ErrCodeInternal))
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
	metrics.ObserveJob(TaskType, start, "")
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, stdErr *apperrors.StandardError, start time.Time) {
	d := h.errors.HandleJobError(ctx, client, job, stdErr)
	metrics.ObserveJob(TaskType, start, string(d.Standard.Code))
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
