package errors

import (
	"context"
	"errors"
	"net/http"
)

// FromStatus maps an HTTP response status to an AppError.
// The message is the error text surfaced by the transport layer; when empty,
// a generic per-class message is used. Status 0 denotes a network-level
// failure where no response was received.
func FromStatus(status int, message string) *AppError {
	code, fallback := classifyStatus(status)
	if message == "" {
		message = fallback
	}
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// MapTransportError maps transport-level errors (context cancellation,
// deadline expiry) to AppError instances. Unrecognized errors are returned
// unchanged.
func MapTransportError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled.",
			Cause:   err,
		}
	}

	return err
}

func classifyStatus(status int) (ErrorCode, string) {
	switch {
	case status == 0:
		return ErrCodeUnavailable, "The server could not be reached."
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized, "Your session has expired. Please sign in again."
	case status == http.StatusForbidden:
		return ErrCodeForbidden, "You do not have permission to perform this action."
	case status == http.StatusNotFound:
		return ErrCodeNotFound, "Resource not found"
	case status == http.StatusConflict:
		return ErrCodeConflict, "This value already exists. Please choose a different one."
	case status == http.StatusRequestTimeout:
		return ErrCodeTimeout, "Request timed out. Please try again."
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited, "Too many requests. Please slow down and try again."
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrCodeValidation, "Invalid data. Please check your input."
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		return ErrCodeUnavailable, "The server is temporarily unavailable. Please try again."
	case status >= 500:
		return ErrCodeInternal, "A server error occurred. Please try again."
	case status >= 400:
		return ErrCodeValidation, "The request was rejected."
	default:
		return ErrCodeInternal, "Unexpected response from the server."
	}
}

// IsRetryable reports whether an error represents a transient condition a
// caller may retry later (throttling, outage, timeout).
func IsRetryable(err error) bool {
	switch GetCode(err) {
	case ErrCodeRateLimited, ErrCodeUnavailable, ErrCodeTimeout:
		return true
	default:
		return false
	}
}
