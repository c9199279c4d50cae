// internal/workers/eligibility/match-eligibility-programs/handler.go
package matcheligibilityprograms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"advocacy-workers/internal/catalog"
	apperrors "advocacy-workers/internal/common/errors"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/common/metrics"
	"advocacy-workers/internal/common/observability"
	"advocacy-workers/internal/common/validation"
	"advocacy-workers/internal/eligibility"
	"advocacy-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "match-eligibility-programs"

	profileCachePrefix = "eligibility:profile:"
)

var (
	ErrMissingProfile     = errors.New("MISSING_PROFILE")
	ErrInvalidProfile     = errors.New("INVALID_ELIGIBILITY_PROFILE")
	ErrProfileNotFound    = errors.New("PROFILE_NOT_FOUND")
	ErrProfileQueryFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrCatalogUnavailable = errors.New("CATALOG_UNAVAILABLE")
)

type Handler struct {
	config    *Config
	catalog   catalog.Source
	profiles  *store.Profiles
	redis     *redis.Client
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, source catalog.Source, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		catalog:   source,
		profiles:  store.NewProfiles(db),
		redis:     redis,
		validator: validation.MustLoad(validation.SchemaEligibilityProfile),
		errors:    apperrors.NewErrorHandler(scoped),
		logger:    scoped,
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
	output := &Output{ProfileID: input.ProfileID}

	switch {
	case input.Profile != nil:
		output.Profile = *input.Profile
	case input.ProfileID != "":
		rec, err := h.getProfile(ctx, input.ProfileID)
		if err != nil {
			return nil, err
		}
		output.Profile = rec.Profile
		output.UserEmail = rec.UserEmail
	default:
		return nil, fmt.Errorf("%w: profile or profileId is required", ErrMissingProfile)
	}

	warnings, err := h.validate(output.Profile)
	if err != nil {
		return nil, err
	}
	output.ValidationWarnings = warnings

	programs, err := h.catalog.Programs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	minScore := h.config.MinScore
	if input.MinScore > 0 {
		minScore = input.MinScore
	}
	limit := h.config.TopN
	if input.Limit > 0 {
		limit = input.Limit
	}

	matcher := eligibility.NewMatcher(programs, eligibility.WithMinScore(minScore), eligibility.WithLimit(limit))
	matches := matcher.Match(output.Profile)

	output.Matches = matches
	output.MatchCount = len(matches)
	output.MatchingScore = eligibility.AverageTopScore(matches, h.config.AverageOver)
	output.TopProgramIDs = make([]string, 0, len(matches))
	for _, m := range matches {
		output.TopProgramIDs = append(output.TopProgramIDs, m.Program.ID)
		metrics.EligibilityMatches.WithLabelValues(m.Program.ID).Inc()
		metrics.EligibilityMatchScore.Observe(float64(m.Score))
	}

	h.logger.Info("eligibility matched", map[string]interface{}{
		"profileId":     input.ProfileID,
		"catalogSize":   len(programs),
		"matchCount":    output.MatchCount,
		"matchingScore": output.MatchingScore,
	})

	return output, nil
}

// getProfile reads through a Redis copy of the profile row.
func (h *Handler) getProfile(ctx context.Context, profileID string) (*store.ProfileRecord, error) {
	cacheKey := profileCachePrefix + profileID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var rec store.ProfileRecord
		if err := json.Unmarshal([]byte(val), &rec); err == nil {
			return &rec, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		h.logger.Warn("profile cache read failed", map[string]interface{}{
			"profileId": profileID,
			"error":     err,
		})
	}

	rec, err := h.profiles.Get(ctx, profileID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileQueryFailed, err)
	}

	if data, err := json.Marshal(rec); err == nil {
		if err := h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL).Err(); err != nil {
			h.logger.Warn("profile cache write failed", map[string]interface{}{
				"profileId": profileID,
				"error":     err,
			})
		}
	}
	return rec, nil
}

func (h *Handler) validate(profile eligibility.Profile) ([]string, error) {
	result, err := h.validator.Validate(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if result.Valid {
		return nil, nil
	}

	messages := result.GetErrorMessages()
	if h.config.StrictValidation {
		return nil, fmt.Errorf("%w: %s", ErrInvalidProfile, strings.Join(messages, "; "))
	}
	h.logger.Warn("profile outside schema, unmatched criteria score zero", map[string]interface{}{
		"violations": messages,
	})
	return messages, nil
}

func (h *Handler) mapError(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMissingProfile), errors.Is(err, ErrInvalidProfile):
		return apperrors.NewInvalidEligibilityProfileError(err.Error())
	case errors.Is(err, ErrProfileNotFound):
		return apperrors.NewProfileNotFoundError(input.ProfileID)
	case errors.Is(err, ErrProfileQueryFailed):
		return apperrors.NewQueryExecutionFailedError("eligibility_profile", err).WithMetadata("profileId", input.ProfileID)
	case errors.Is(err, catalog.ErrEmptyCatalog):
		return apperrors.NewEmptyCatalogError()
	case errors.Is(err, ErrCatalogUnavailable):
		return apperrors.NewCatalogUnavailableError(err)
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
