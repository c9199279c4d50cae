// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeParseError ErrorCode = "PARSE_ERROR"

	ErrCodeInvalidPricingInput       ErrorCode = "INVALID_PRICING_INPUT"
	ErrCodeInvalidEligibilityProfile ErrorCode = "INVALID_ELIGIBILITY_PROFILE"

	ErrCodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeCaseNotFound    ErrorCode = "CASE_NOT_FOUND"

	ErrCodeCatalogUnavailable ErrorCode = "CATALOG_UNAVAILABLE"
	ErrCodeEmptyCatalog       ErrorCode = "EMPTY_CATALOG"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeDatabaseUpdateFailed     ErrorCode = "DATABASE_UPDATE_FAILED"

	ErrCodeReportRenderFailed ErrorCode = "REPORT_RENDER_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewParseError creates a non-retryable job payload error.
func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Job variables could not be parsed", detailsOf(err), false, err)
}

// NewInvalidPricingInputError creates a non-retryable validation error.
func NewInvalidPricingInputError(details string) *StandardError {
	return newError(ErrCodeInvalidPricingInput, "Pricing input failed validation", details, false, nil)
}

// NewInvalidEligibilityProfileError creates a non-retryable validation error.
func NewInvalidEligibilityProfileError(details string) *StandardError {
	return newError(ErrCodeInvalidEligibilityProfile, "Eligibility profile failed validation", details, false, nil)
}

// NewProfileNotFoundError creates a non-retryable lookup error.
func NewProfileNotFoundError(profileID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Eligibility profile not found",
		fmt.Sprintf("profileId: %s", profileID), false, nil)
}

// NewCaseNotFoundError creates a non-retryable lookup error.
func NewCaseNotFoundError(caseID string) *StandardError {
	return newError(ErrCodeCaseNotFound, "Case not found", fmt.Sprintf("caseId: %s", caseID), false, nil)
}

// NewCatalogUnavailableError creates a retryable catalog load error.
func NewCatalogUnavailableError(err error) *StandardError {
	return newError(ErrCodeCatalogUnavailable, "Program catalog could not be loaded", detailsOf(err), true, err)
}

// NewEmptyCatalogError creates a non-retryable error for a catalog with no programs.
func NewEmptyCatalogError() *StandardError {
	return newError(ErrCodeEmptyCatalog, "Program catalog is empty", "", false, nil)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", detailsOf(err), true, err)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, detailsOf(err)), true, err)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true, nil)
}

// NewDatabaseUpdateFailedError creates a retryable write error.
func NewDatabaseUpdateFailedError(table string, err error) *StandardError {
	return newError(ErrCodeDatabaseUpdateFailed, "Database update failed",
		fmt.Sprintf("table: %s, error: %s", table, detailsOf(err)), true, err)
}

// NewReportRenderFailedError creates a non-retryable rendering error.
func NewReportRenderFailedError(err error) *StandardError {
	return newError(ErrCodeReportRenderFailed, "Report rendering failed", detailsOf(err), false, err)
}

// NewInternalError wraps an unexpected error.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false, err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled in
// the BPMN processes. Codes missing here are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeParseError:                "INVALID_JOB_VARIABLES",
	ErrCodeInvalidPricingInput:       "INVALID_PRICING_INPUT",
	ErrCodeInvalidEligibilityProfile: "INVALID_ELIGIBILITY_PROFILE",
	ErrCodeProfileNotFound:           "PROFILE_NOT_FOUND",
	ErrCodeCaseNotFound:              "CASE_NOT_FOUND",
	ErrCodeCatalogUnavailable:        "CATALOG_UNAVAILABLE",
	ErrCodeEmptyCatalog:              "CATALOG_UNAVAILABLE",
	ErrCodeDatabaseConnectionFailed:  "DATABASE_ERROR",
	ErrCodeQueryExecutionFailed:      "DATABASE_ERROR",
	ErrCodeQueryTimeout:              "DATABASE_ERROR",
	ErrCodeDatabaseUpdateFailed:      "DATABASE_ERROR",
	ErrCodeReportRenderFailed:        "REPORT_RENDER_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeDatabaseUpdateFailed,
		ErrCodeCatalogUnavailable:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PRICING"):
		return "PRICING"
	case strings.Contains(codeStr, "ELIGIBILITY") || strings.Contains(codeStr, "PROFILE"):
		return "ELIGIBILITY"
	case strings.Contains(codeStr, "CATALOG"):
		return "CATALOG"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "REPORT"):
		return "REPORT"
	case strings.Contains(codeStr, "PARSE") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
