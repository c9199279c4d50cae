// internal/workers/pricing/calculate-case-price/handler_test.go
package calculatecaseprice

import (
	"context"
	"testing"
	"time"

	"advocacy-workers/internal/common/camunda/camundatest"
	"advocacy-workers/internal/common/logger"
	"advocacy-workers/internal/pricing"
	"advocacy-workers/internal/signals"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(strict bool) *Config {
	return &Config{Timeout: 5 * time.Second, StrictValidation: strict}
}

func newTestHandler(t *testing.T, strict bool) *Handler {
	return NewHandler(createTestConfig(strict), logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name      string
		input     *Input
		wantPrice int
		wantTier  pricing.Tier
	}{
		{
			name: "explicit pricing input",
			input: &Input{
				CaseID: "case-1",
				PricingInput: &pricing.Input{
					Category:       pricing.CategoryEviction,
					DocumentsCount: 2,
					StrategyLevel:  pricing.StrategyMultiStep,
					Urgency:        pricing.UrgencyFewDays,
				},
			},
			// (299 + 200 + 50) * 1.2 = 658.8
			wantPrice: 650,
			wantTier:  pricing.TierStandard,
		},
		{
			name: "raw analysis",
			input: &Input{
				CaseAnalysis: signals.CaseAnalysis{
					Amount:             "$2,000",
					UrgencyLevel:       "critical",
					RecommendedActions: []string{"Submit a complaint to the agency"},
					Violations:         []string{"FDCPA 1692e", "FDCPA 1692g", "FCRA 1681s-2"},
					UploadedFiles:      []string{"court-order.pdf", "notes.txt"},
				},
			},
			wantPrice: 875,
			wantTier:  pricing.TierHigh,
		},
		{
			name:      "empty analysis falls back to consumer minimum",
			input:     &Input{},
			wantPrice: 150,
			wantTier:  pricing.TierStandard,
		},
	}

	h := newTestHandler(t, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := h.Execute(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, output.PricingSuggestion)
			assert.Equal(t, tt.wantTier, output.PricingTier)
			assert.Equal(t, tt.input.CaseID, output.CaseID)
			assert.Equal(t, output.PricingSuggestion, output.PricingBreakdown.Recompute())
			assert.Empty(t, output.ValidationWarnings)
		})
	}
}

func TestHandler_Execute_Validation(t *testing.T) {
	input := &Input{PricingInput: &pricing.Input{
		Category:        "divorce",
		ViolationsCount: -2,
		StrategyLevel:   pricing.StrategyBasic,
		Urgency:         pricing.UrgencyStandard,
	}}

	t.Run("strict rejects", func(t *testing.T) {
		_, err := newTestHandler(t, true).Execute(context.Background(), input)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPricingInput)
		assert.Contains(t, err.Error(), "category")
	})

	t.Run("lenient degrades", func(t *testing.T) {
		output, err := newTestHandler(t, false).Execute(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 150, output.PricingSuggestion)
		assert.Equal(t, 0, output.PricingInput.ViolationsCount)
		assert.NotEmpty(t, output.ValidationWarnings)
	})
}

func TestHandler_Execute_AcceptsEngineSpellings(t *testing.T) {
	output, err := newTestHandler(t, true).Execute(context.Background(), &Input{PricingInput: &pricing.Input{
		Category:      " IRS ",
		StrategyLevel: "Case-Building",
		Urgency:       "One-Day",
		DocumentTypes: []string{"Court"},
	}})
	require.NoError(t, err)
	assert.Empty(t, output.ValidationWarnings)
	assert.Equal(t, pricing.Category("irs"), output.PricingInput.Category)
	assert.Equal(t, pricing.UrgencyImmediate, output.PricingInput.Urgency)
	assert.Equal(t, output.PricingSuggestion, output.PricingBreakdown.Recompute())
}

func TestHandler_Handle_CompletesJob(t *testing.T) {
	client := camundatest.NewJobClient()
	job := camundatest.Job(11, TaskType, 3, map[string]interface{}{
		"caseId": "case-9",
		"pricingInput": map[string]interface{}{
			"category":      "irs",
			"strategyLevel": "case_building",
			"urgency":       "standard",
		},
	})

	newTestHandler(t, false).Handle(client, job)

	require.Len(t, client.Gateway.Completed, 1)
	vars, err := client.CompletedVariables(0)
	require.NoError(t, err)
	// 349 + 400 = 749
	assert.Equal(t, float64(750), vars["pricingSuggestion"])
	assert.Equal(t, "standard", vars["pricingTier"])
	assert.Equal(t, "case-9", vars["caseId"])
}

func TestHandler_Handle_ParseError(t *testing.T) {
	client := camundatest.NewJobClient()
	newTestHandler(t, false).Handle(client, camundatest.Job(12, TaskType, 3, "{not json"))

	require.Len(t, client.Gateway.Thrown, 1)
	assert.Equal(t, "INVALID_JOB_VARIABLES", client.Gateway.Thrown[0].ErrorCode)
	assert.Empty(t, client.Gateway.Completed)
}

func TestHandler_Handle_StrictValidationThrows(t *testing.T) {
	client := camundatest.NewJobClient()
	job := camundatest.Job(13, TaskType, 3, map[string]interface{}{
		"pricingInput": map[string]interface{}{"category": "debt", "strategyLevel": "basic", "urgency": "yesterday"},
	})

	newTestHandler(t, true).Handle(client, job)

	require.Len(t, client.Gateway.Thrown, 1)
	assert.Equal(t, "INVALID_PRICING_INPUT", client.Gateway.Thrown[0].ErrorCode)
}
