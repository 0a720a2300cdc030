package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as metric labels (upstreamErrorsTotal).
const (
	ErrorCategoryTimeout           ErrorCategory = "timeout"
	ErrorCategoryNetwork           ErrorCategory = "network"
	ErrorCategoryMissingCredential ErrorCategory = "missing_credential"
	ErrorCategoryInvalidAPIKey     ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound  ErrorCategory = "location_not_found"
	ErrorCategoryUpstream          ErrorCategory = "upstream"
	ErrorCategoryParsing           ErrorCategory = "parsing"
	ErrorCategoryUnknown           ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || isTimeout(err) {
		return ErrorCategoryTimeout
	}

	switch {
	case errors.Is(err, ErrMissingCredential):
		return ErrorCategoryMissingCredential
	case errors.Is(err, ErrInvalidAPIKey):
		return ErrorCategoryInvalidAPIKey
	case errors.Is(err, ErrLocationNotFound):
		return ErrorCategoryLocationNotFound
	case errors.Is(err, ErrUpstreamFailure):
		return ErrorCategoryUpstream
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ErrorCategoryParsing
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection") || strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "http request failed") {
		return ErrorCategoryNetwork
	}
	if strings.Contains(errStr, "parse") {
		return ErrorCategoryParsing
	}

	return ErrorCategoryUnknown
}
