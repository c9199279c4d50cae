package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{ lines int }

func (l *nopLogger) Error(string, map[string]interface{}) { l.lines++ }

func jobWithRetries(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{Key: 42, Type: "match-eligibility-programs", Retries: retries}}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewQueryExecutionFailedError("pending_profiles", context.DeadlineExceeded).
		WithMetadata("profileId", "p-1")

	bpmn := ConvertToBPMNError(stdErr)
	assert.Equal(t, "DATABASE_ERROR", bpmn.Code)
	assert.Equal(t, 3, bpmn.Retries)
	assert.True(t, bpmn.Retryable)

	vars := bpmn.ToErrorVariables()
	assert.Equal(t, "QUERY_EXECUTION_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "p-1", vars["profileId"])
	assert.Equal(t, "DATABASE_ERROR", vars["errorCode"])
}

func TestConvertToBPMNError_NonRetryable(t *testing.T) {
	bpmn := ConvertToBPMNError(NewInvalidPricingInputError("urgency: must be one of ..."))
	assert.Equal(t, "INVALID_PRICING_INPUT", bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
	assert.False(t, bpmn.Retryable)
}

func TestNormalize_LooksThroughWrapping(t *testing.T) {
	inner := NewProfileNotFoundError("p-9")
	wrapped := fmt.Errorf("load profile: %w", inner)

	assert.Same(t, inner, Normalize(wrapped))

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestStandardError_Unwrap(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := NewDatabaseConnectionFailedError(cause)
	assert.ErrorIs(t, err, cause)
}

func TestErrorHandler_Decide(t *testing.T) {
	h := NewErrorHandler(&nopLogger{})

	tests := []struct {
		name    string
		err     error
		retries int32
		throw   bool
		left    int
	}{
		{"retryable with retries left", NewDatabaseUpdateFailedError("cases", stderrors.New("x")), 5, false, 3},
		{"retryable capped by job retries", NewCatalogUnavailableError(stderrors.New("x")), 2, false, 1},
		{"retryable on last attempt", NewQueryTimeoutError("profile"), 1, true, 0},
		{"business error", NewInvalidEligibilityProfileError("householdSize"), 3, true, 0},
		{"unknown error", stderrors.New("panic"), 3, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := h.Decide(jobWithRetries(tt.retries), tt.err)
			require.NotNil(t, d.Standard)
			require.NotNil(t, d.BPMN)
			assert.Equal(t, tt.throw, d.Throw)
			assert.Equal(t, tt.left, d.Retries)
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "PRICING", GetErrorCategory(ErrCodeInvalidPricingInput))
	assert.Equal(t, "ELIGIBILITY", GetErrorCategory(ErrCodeProfileNotFound))
	assert.Equal(t, "CATALOG", GetErrorCategory(ErrCodeEmptyCatalog))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "REPORT", GetErrorCategory(ErrCodeReportRenderFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeParseError))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
	assert.True(t, IsRetryableErrorCode(ErrCodeCatalogUnavailable))
	assert.False(t, IsRetryableErrorCode(ErrCodeCaseNotFound))
}
