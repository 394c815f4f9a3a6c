package dto

import (
	"errors"
	"net/http"

	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
)

// Codes raised by the domain layer.
const (
	ErrCodeValidation          = "VALIDATION_FAILED"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeDocumentsDisabled   = "DOCUMENTS_DISABLED"
	ErrCodeRenderTimeout       = "RENDER_TIMEOUT"
)

// Codes derived from processor failures.
const (
	ErrCodePaymentFailed        = "PAYMENT_FAILED"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeProcessorUnavailable = "PROCESSOR_UNAVAILABLE"
	ErrCodeProcessorRejected    = "PROCESSOR_REJECTED"
	ErrCodeProcessorError       = "PROCESSOR_ERROR"
)

// Codes raised by the HTTP layer itself.
const (
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeForbidden       = "FORBIDDEN"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// MsgOutcomeUnknown tells the caller the processor may have applied the call.
const MsgOutcomeUnknown = "outcome unknown; reconcile"

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeValidation:          http.StatusUnprocessableEntity,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeDocumentsDisabled:   http.StatusNotImplemented,
	ErrCodeRenderTimeout:       http.StatusGatewayTimeout,

	ErrCodePaymentFailed:        http.StatusPaymentRequired,
	ErrCodeRateLimited:          http.StatusTooManyRequests,
	ErrCodeProcessorUnavailable: http.StatusServiceUnavailable,
	ErrCodeProcessorRejected:    http.StatusUnprocessableEntity,
	ErrCodeProcessorError:       http.StatusBadGateway,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeForbidden:       http.StatusForbidden,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// MappedError is an error ready to be written to a client.
type MappedError struct {
	Status  int
	Code    string
	Message string
	// Internal is set when the message was masked and the cause must be logged.
	Internal bool
}

// FromError classifies err. Domain errors keep their code and message,
// processor errors map by kind, anything else is masked as internal.
func FromError(err error) MappedError {
	if pe, ok := payment.AsProcessorError(err); ok {
		return fromProcessorError(pe)
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		if _, known := ErrorCodeHTTPStatus[de.Code]; known {
			return MappedError{Status: GetHTTPStatus(de.Code), Code: de.Code, Message: de.Message}
		}
		if de.Kind == shared.KindConfiguration {
			return internal()
		}
		return MappedError{Status: http.StatusUnprocessableEntity, Code: de.Code, Message: de.Message}
	}
	return internal()
}

func fromProcessorError(pe *payment.ProcessorError) MappedError {
	var code, msg string
	switch {
	case pe.IsCardFailure():
		code, msg = ErrCodePaymentFailed, pe.Message
		if msg == "" {
			msg = "payment failed: " + string(pe.Kind)
		}
	case pe.Kind == payment.ErrorKindRateLimited:
		code, msg = ErrCodeRateLimited, "processor rate limit reached; retry later"
	case pe.OutcomeUnknown():
		code, msg = ErrCodeProcessorUnavailable, MsgOutcomeUnknown
	case pe.Kind == payment.ErrorKindInvalidRequest:
		code, msg = ErrCodeProcessorRejected, "processor rejected the request"
	default:
		return MappedError{Status: GetHTTPStatus(ErrCodeProcessorError), Code: ErrCodeProcessorError, Message: "processor error", Internal: true}
	}
	return MappedError{Status: GetHTTPStatus(code), Code: code, Message: msg}
}

func internal() MappedError {
	return MappedError{
		Status:   http.StatusInternalServerError,
		Code:     ErrCodeInternal,
		Message:  "An unexpected error occurred",
		Internal: true,
	}
}
