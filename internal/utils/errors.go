package utils

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindModel         Kind = "model"
	KindAPI           Kind = "api"
	KindInternal      Kind = "internal"
)

type AppError struct {
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func NewConfigurationError(message string, cause error) *AppError {
	return &AppError{Kind: KindConfiguration, StatusCode: http.StatusInternalServerError, Message: message, Cause: cause}
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: message}
}

func NewModelError(message string) *AppError {
	return &AppError{Kind: KindModel, StatusCode: http.StatusBadGateway, Message: message}
}

// NewAPIError reports a transport, auth or quota failure talking to the provider.
func NewAPIError(message string, cause error) *AppError {
	return &AppError{Kind: KindAPI, StatusCode: http.StatusBadGateway, Message: message, Cause: cause}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Kind: KindValidation, StatusCode: http.StatusBadRequest, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{Kind: KindInternal, StatusCode: http.StatusInternalServerError, Message: message}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}
