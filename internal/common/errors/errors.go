// Package errors provides standardized error handling for the recommendation service and its BPMN workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Caller-facing request errors
const (
	ErrCodeUnknownCategory       ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeInvalidCriteria       ErrorCode = "INVALID_CRITERIA"
	ErrCodeInputValidationFailed ErrorCode = "INPUT_VALIDATION_FAILED"
)

// Per-item and catalog errors
const (
	ErrCodeUnscoreableItem      ErrorCode = "UNSCOREABLE_ITEM"
	ErrCodeCatalogLoadFailed    ErrorCode = "CATALOG_LOAD_FAILED"
	ErrCodeCatalogNotConfigured ErrorCode = "CATALOG_NOT_CONFIGURED"
	ErrCodeCatalogTimeout       ErrorCode = "CATALOG_TIMEOUT"
)

// Generic errors
const (
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeTimeout  ErrorCode = "TIMEOUT"
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

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
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

// NewUnknownCategoryError is returned when no scorer is registered for a category.
func NewUnknownCategoryError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownCategory,
		Message:   fmt.Sprintf("Unknown category: %s", category),
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: false,
		Metadata:  map[string]interface{}{"category": category},
		Timestamp: time.Now().UTC(),
	}
}

// FieldViolation is one failed criteria constraint.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// NewInvalidCriteriaError carries every field-level violation in Metadata["fields"].
func NewInvalidCriteriaError(category string, violations []FieldViolation) *StandardError {
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return &StandardError{
		Code:      ErrCodeInvalidCriteria,
		Message:   "Criteria validation failed",
		Details:   strings.Join(parts, "; "),
		Retryable: false,
		Metadata: map[string]interface{}{
			"category": category,
			"fields":   violations,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewInputValidationError reports a malformed job or request envelope.
func NewInputValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputValidationFailed,
		Message:   "Input validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnscoreableItemError wraps a scorer failure for a single catalog item.
func NewUnscoreableItemError(category, itemID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnscoreableItem,
		Message:   "Catalog item could not be scored",
		Details:   fmt.Sprintf("category: %s, itemId: %s, error: %v", category, itemID, err),
		Retryable: false,
		Metadata:  map[string]interface{}{"category": category, "itemId": itemID},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogLoadError is retryable: catalog backends fail transiently.
func NewCatalogLoadError(category string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogLoadFailed,
		Message:   "Catalog dataset could not be loaded",
		Details:   fmt.Sprintf("category: %s, error: %v", category, err),
		Retryable: true,
		Metadata:  map[string]interface{}{"category": category},
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewCatalogTimeoutError reports a catalog read that exceeded its deadline.
func NewCatalogTimeoutError(category string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogTimeout,
		Message:   "Catalog dataset load timeout",
		Details:   fmt.Sprintf("category: %s", category),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCatalogNotConfiguredError is returned at startup for an unknown catalog backend.
func NewCatalogNotConfiguredError(kind string) *StandardError {
	return &StandardError{
		Code:      ErrCodeCatalogNotConfigured,
		Message:   "Catalog source is not configured",
		Details:   fmt.Sprintf("catalogSource: %s", kind),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Operation '%s' timeout", operation),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes declared in the process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeUnknownCategory:       "UNKNOWN_CATEGORY",
	ErrCodeInvalidCriteria:       "INVALID_CRITERIA",
	ErrCodeInputValidationFailed: "INPUT_VALIDATION_FAILED",
	ErrCodeUnscoreableItem:       "UNSCOREABLE_ITEM",
	ErrCodeCatalogLoadFailed:     "CATALOG_LOAD_FAILED",
	ErrCodeCatalogNotConfigured:  "CATALOG_NOT_CONFIGURED",
	ErrCodeCatalogTimeout:        "CATALOG_TIMEOUT",
	ErrCodeInternal:              "INTERNAL_ERROR",
	ErrCodeTimeout:               "TIMEOUT",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeCatalogLoadFailed, ErrCodeInternal:
		return 3
	case ErrCodeCatalogTimeout, ErrCodeTimeout:
		return 2
	default:
		return 0
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
	if fields, ok := stdErr.Metadata["fields"]; ok {
		vars["fieldErrors"] = fields
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

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "CATALOG"):
		return "CATALOG"
	case code == ErrCodeUnknownCategory, code == ErrCodeUnscoreableItem:
		return "RANKING"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT"):
		return "TIMEOUT"
	default:
		return "OTHER"
	}
}
