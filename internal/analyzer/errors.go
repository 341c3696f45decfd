package analyzer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/i474232898/lawn-tracker/internal/common"
)

// ErrorType classifies analyzer failures.
type ErrorType string

const (
	ErrorTypeUnsupportedFormat ErrorType = "unsupported_format"
	ErrorTypeAuth              ErrorType = "auth_failure"
	ErrorTypeRateLimited       ErrorType = "rate_limited"
	ErrorTypeParse             ErrorType = "parse_failure"
	ErrorTypeProvider          ErrorType = "provider_failure"
)

// Error is a classified analyzer failure.
type Error struct {
	Type       ErrorType
	Message    string
	Retryable  bool
	Cause      error
	StatusCode int
}

func (e *Error) Error() string {
	parts := []string{string(e.Type)}
	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	parts = append(parts, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an Error without an HTTP status.
func NewError(t ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{Type: t, Message: message, Retryable: retryable, Cause: cause}
}

func unsupported(format string, args ...any) *Error {
	return NewError(ErrorTypeUnsupportedFormat, fmt.Sprintf(format, args...), false, nil)
}

func parseFailure(message string, cause error) *Error {
	return NewError(ErrorTypeParse, message, false, cause)
}

var statusInMessage = regexp.MustCompile(`status code: (\d{3})`)

// ClassifyError turns an upstream SDK error into an *Error. Errors that are
// already classified are returned unchanged.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	default:
		if m := statusInMessage.FindStringSubmatch(err.Error()); m != nil {
			status, _ = strconv.Atoi(m[1])
		}
	}

	lower := strings.ToLower(err.Error())
	var out *Error
	switch {
	case status == 401 || status == 403 || common.HasAny(lower, "authentication_error", "invalid api key", "invalid x-api-key"):
		out = NewError(ErrorTypeAuth, "authentication failed", false, err)
	case status == 429 || common.HasAny(lower, "rate_limit", "rate limit"):
		out = NewError(ErrorTypeRateLimited, "rate limited", true, err)
	case status >= 500 || common.HasAny(lower, "overloaded"):
		out = NewError(ErrorTypeProvider, "server error", true, err)
	case common.HasAny(lower, "deadline exceeded", "timeout"):
		out = NewError(ErrorTypeProvider, "request timeout", true, err)
	default:
		out = NewError(ErrorTypeProvider, "analysis request failed", false, err)
	}
	out.StatusCode = status
	return out
}

// TypeOf returns the ErrorType of err, or ErrorTypeProvider when err is not
// an *Error.
func TypeOf(err error) ErrorType {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Type
	}
	return ErrorTypeProvider
}

// IsRetryable reports whether err is a retryable *Error.
func IsRetryable(err error) bool {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Retryable
	}
	return false
}
