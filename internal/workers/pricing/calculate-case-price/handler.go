// internal/workers/pricing/calculate-case-price/handler.go
package calculatecaseprice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "advocacy-workers/internal/common/errors"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/common/metrics"
	"advocacy-workers/internal/common/observability"
	"advocacy-workers/internal/common/validation"
	"advocacy-workers/internal/pricing"
	"advocacy-workers/internal/signals"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.opentelemetry.io/otel/attribute"
)

const (
	TaskType = "calculate-case-price"
)

var (
	ErrInvalidPricingInput = errors.New("INVALID_PRICING_INPUT")
)

type Handler struct {
	config    *Config
	validator *validation.Validator
	errors    *apperrors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		validator: validation.MustLoad(validation.SchemaPricingInput),
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
		h.failJob(ctx, client, job, h.mapError(err), start)
		return
	}

	h.completeJob(ctx, client, job, output, start)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	var raw pricing.Input
	source := "analysis"
	if input.PricingInput != nil {
		raw = *input.PricingInput
		source = "explicit"
	} else {
		raw = signals.FromAnalysis(input.CaseAnalysis)
	}

	normalized := raw.Normalize()
	warnings, err := h.validate(normalized)
	if err != nil {
		return nil, err
	}

	result := pricing.Calculate(normalized)

	metrics.CasePriceQuotes.WithLabelValues(string(result.Tier)).Inc()
	metrics.CasePriceAmount.Observe(float64(result.FinalPrice))

	h.logger.Info("case price calculated", map[string]interface{}{
		"caseId":     input.CaseID,
		"source":     source,
		"category":   string(normalized.Category),
		"finalPrice": result.FinalPrice,
		"tier":       string(result.Tier),
	})

	return &Output{
		CaseID:             input.CaseID,
		PricingSuggestion:  result.FinalPrice,
		PricingTier:        result.Tier,
		PricingBreakdown:   result.Breakdown,
		PricingInput:       normalized,
		ValidationWarnings: warnings,
	}, nil
}

// validate checks the input against the pricing schema. In lenient mode the
// violations come back as warnings and the engine's fallbacks apply.
func (h *Handler) validate(in pricing.Input) ([]string, error) {
	result, err := h.validator.Validate(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPricingInput, err)
	}
	if result.Valid {
		return nil, nil
	}

	messages := result.GetErrorMessages()
	if h.config.StrictValidation {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPricingInput, strings.Join(messages, "; "))
	}
	h.logger.Warn("pricing input outside schema, using fallbacks", map[string]interface{}{
		"violations": messages,
	})
	return messages, nil
}

func (h *Handler) mapError(err error) *apperrors.StandardError {
	if errors.Is(err, ErrInvalidPricingInput) {
		return apperrors.NewInvalidPricingInputError(err.Error())
	}
	return apperrors.NewInternalError(err)
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
