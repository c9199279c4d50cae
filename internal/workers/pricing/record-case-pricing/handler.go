// internal/workers/pricing/record-case-pricing/handler.go
package recordcasepricing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "advocacy-workers/internal/common/errors"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/common/metrics"
	"advocacy-workers/internal/common/observability"
	"advocacy-workers/internal/pricing"
	"advocacy-workers/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "record-case-pricing"
)

var (
	ErrMissingCaseID       = errors.New("MISSING_CASE_ID")
	ErrInvalidPricingInput = errors.New("INVALID_PRICING_INPUT")
	ErrCaseNotFound        = errors.New("CASE_NOT_FOUND")
	ErrUpdateFailed        = errors.New("DATABASE_UPDATE_FAILED")
	ErrQueryTimeout        = errors.New("QUERY_TIMEOUT")
)

type Handler struct {
	config *Config
	cases  *store.Cases
	errors *apperrors.ErrorHandler
	logger logger.Logger
	now    func() time.Time
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		cases:  store.NewCases(db),
		errors: apperrors.NewErrorHandler(scoped),
		logger: scoped,
		now:    time.Now,
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
	if input.CaseID == "" {
		return nil, fmt.Errorf("%w: caseId is required", ErrMissingCaseID)
	}

	result, err := resolveQuote(input)
	if err != nil {
		return nil, err
	}

	eventID, err := h.cases.RecordPricing(ctx, input.CaseID, h.config.Actor, result)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("%w: %s", ErrCaseNotFound, input.CaseID)
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %v", ErrQueryTimeout, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrUpdateFailed, err)
		}
	}

	h.logger.Info("case pricing recorded", map[string]interface{}{
		"caseId":       input.CaseID,
		"auditEventId": eventID,
		"finalPrice":   result.FinalPrice,
		"tier":         string(result.Tier),
	})

	return &Output{
		CaseID:            input.CaseID,
		AuditEventID:      eventID,
		PricingSuggestion: result.FinalPrice,
		PricingTier:       result.Tier,
		RecordedAt:        h.now().UTC(),
	}, nil
}

// resolveQuote recalculates from the pricing input when present. A quote
// passed through as-is must still satisfy the engine's output guarantees.
func resolveQuote(input *Input) (pricing.Result, error) {
	if input.PricingInput != nil {
		return pricing.Calculate(input.PricingInput.Normalize()), nil
	}

	price := input.PricingSuggestion
	if price < pricing.MinimumPrice || price%pricing.RoundingStep != 0 {
		return pricing.Result{}, fmt.Errorf("%w: price %d is not a valid quote", ErrInvalidPricingInput, price)
	}
	if input.PricingTier != pricing.TierFor(price) {
		return pricing.Result{}, fmt.Errorf("%w: tier %q does not match price %d", ErrInvalidPricingInput, input.PricingTier, price)
	}

	result := pricing.Result{FinalPrice: price, Tier: input.PricingTier}
	if input.PricingBreakdown != nil {
		if got := input.PricingBreakdown.Recompute(); got != price {
			return pricing.Result{}, fmt.Errorf("%w: breakdown recomputes to %d, not %d", ErrInvalidPricingInput, got, price)
		}
		result.Breakdown = *input.PricingBreakdown
	}
	return result, nil
}

func (h *Handler) mapError(input *Input, err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrMissingCaseID), errors.Is(err, ErrInvalidPricingInput):
		return apperrors.NewInvalidPricingInputError(err.Error())
	case errors.Is(err, ErrCaseNotFound):
		return apperrors.NewCaseNotFoundError(input.CaseID)
	case errors.Is(err, ErrQueryTimeout):
		return apperrors.NewQueryTimeoutError("record_case_pricing").WithMetadata("caseId", input.CaseID)
	case errors.Is(err, ErrUpdateFailed):
		return apperrors.NewDatabaseUpdateFailedError("cases", err).WithMetadata("caseId", input.CaseID)
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
