// internal/workers/eligibility/run-pending-matching/handler.go
package runpendingmatching

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

const TaskType = "run-pending-matching"

var (
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
	ErrPendingQuery       = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout       = errors.New("QUERY_TIMEOUT")
	ErrSummaryRender      = errors.New("REPORT_RENDER_FAILED")
)

type Handler struct {
	config   *Config
	catalog  catalog.Source
	profiles *store.Profiles
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
	now      func() time.Time
	newRunID func() string
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
		newRunID: uuid.NewString,
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
		h.failJob(ctx, client, job, h.mapError(err), start)
		return
	}
	span.SetAttributes(
		attribute.Int("processed", output.ProcessedCount),
		attribute.Int("errors", output.ErrorCount),
	)

	h.completeJob(ctx, client, job, output, start)
}

// execute matches every pending profile once. A failure on one profile is
// recorded in its result and leaves the profile pending for the next run.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	batchSize := h.config.BatchSize
	if input.BatchSize > 0 {
		batchSize = input.BatchSize
	}
	minScore := h.config.MinScore
	if input.MinScore > 0 {
		minScore = input.MinScore
	}

	programs, err := h.catalog.Programs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	matcher := eligibility.NewMatcher(programs, eligibility.WithMinScore(minScore))

	pending, err := h.profiles.Pending(ctx, batchSize)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrPendingQuery, err)
	}

	runID := h.newRunID()
	output := &Output{RunID: runID, Results: make([]report.RunResult, 0, len(pending))}

	for _, rec := range pending {
		result := h.matchOne(ctx, matcher, rec)
		if result.Status == report.StatusError {
			output.ErrorCount++
		} else {
			output.MatchedCount++
		}
		output.Results = append(output.Results, result)
	}
	output.ProcessedCount = len(output.Results)

	now := h.now()
	summary, err := report.DailySummary(runID, output.Results, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummaryRender, err)
	}
	output.Summary = summary
	output.SummaryFile = fmt.Sprintf("daily-summary-%s.md", now.UTC().Format("2006-01-02"))

	h.logger.Info("pending matching run finished", map[string]interface{}{
		"runId":     runID,
		"processed": output.ProcessedCount,
		"matched":   output.MatchedCount,
		"errors":    output.ErrorCount,
	})

	return output, nil
}

func (h *Handler) matchOne(ctx context.Context, matcher *eligibility.Matcher, rec store.ProfileRecord) report.RunResult {
	result := report.RunResult{ProfileID: rec.ID, UserEmail: rec.UserEmail}

	if rec.DecodeErr != nil {
		h.logger.Warn("skipping undecodable profile", map[string]interface{}{
			"profileId": rec.ID,
			"error":     rec.DecodeErr,
		})
		result.Status = report.StatusError
		result.Error = rec.DecodeErr.Error()
		return result
	}

	matches := matcher.Match(rec.Profile)
	score := eligibility.AverageTopScore(matches, h.config.AverageOver)

	if err := h.profiles.SaveMatches(ctx, rec.ID, score, matches); err != nil {
		h.logger.Warn("failed to save profile matches", map[string]interface{}{
			"profileId": rec.ID,
			"error":     err,
		})
		result.Status = report.StatusError
		result.Error = err.Error()
		return result
	}

	for _, m := range matches {
		metrics.EligibilityMatches.WithLabelValues(m.Program.ID).Inc()
		metrics.EligibilityMatchScore.Observe(float64(m.Score))
	}

	result.Status = report.StatusDraft
	result.MatchCount = len(matches)
	result.AvgScore = score
	return result
}

func (h *Handler) mapError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, catalog.ErrEmptyCatalog):
		return apperrors.NewEmptyCatalogError()
	case errors.Is(err, ErrCatalogUnavailable):
		return apperrors.NewCatalogUnavailableError(err)
	case errors.Is(err, ErrQueryTimeout):
		return apperrors.NewQueryTimeoutError("pending_profiles")
	case errors.Is(err, ErrPendingQuery):
		return apperrors.NewQueryExecutionFailedError("pending_profiles", err)
	case errors.Is(err, ErrSummaryRender):
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
