package errors

import (
	"fmt"
	"net/http"
)

// NewValidationError creates a client input error. The message is returned
// to the caller verbatim.
func NewValidationError(field, message string) *AppError {
	return New(ErrCodeValidationFailed, message).
		WithContext("field", field).
		WithUserMessage(message)
}

// NewConfigError creates a deployment configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeMissingConfig, message).
		WithContext("config_key", key).
		WithUserMessage(message)
}

// NewStoreError creates an inbox store error with operation context
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStore, fmt.Sprintf("store %s failed", operation)).
		WithContext("operation", operation)
}

// NewAPIError creates an API error for WhatsApp Cloud API calls. A zero
// status code means the request never produced a response.
func NewAPIError(endpoint string, statusCode int, err error) *AppError {
	appErr := Wrap(err, ErrCodeWhatsAppAPI, "whatsapp API call failed").
		WithContext("endpoint", endpoint)
	if statusCode != 0 {
		appErr = appErr.WithContext("status_code", statusCode)
	}
	appErr.Retryable = statusCode == 0 || statusCode >= 500 || statusCode == 429 || statusCode == 408
	return appErr
}

// HTTPStatusCode maps error codes to HTTP status codes
func HTTPStatusCode(err error) int {
	switch GetCode(err) {
	case ErrCodeValidationFailed, ErrCodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the text exposed to HTTP callers: the user message
// when one is set, otherwise the underlying cause, otherwise the error itself.
func PublicMessage(err error) string {
	if err == nil {
		return ""
	}
	appErr, ok := AsAppError(err)
	if !ok {
		return err.Error()
	}
	if appErr.UserMessage != "" {
		return appErr.UserMessage
	}
	if appErr.Cause != nil {
		return appErr.Cause.Error()
	}
	return appErr.Message
}
