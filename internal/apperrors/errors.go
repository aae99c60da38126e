package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a signed value (e.g. an OAuth state) could not be verified.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNotConfigured means no Xero client credentials are stored for the company.
var ErrNotConfigured = errors.New("xero credentials not configured")

// ErrNotConnected means client credentials exist but no access token has been issued yet.
var ErrNotConnected = errors.New("not connected to xero")

// ErrNeedsReconnect means the access token expired and the single refresh attempt failed.
// The user must run the authorization flow again.
var ErrNeedsReconnect = errors.New("xero session expired, reconnect required")

// ErrNoTenant means the credential is authorized but no Xero organisation is attached.
var ErrNoTenant = errors.New("no xero organisation connected")

// ErrUnmatchedBankAccount is returned for a staged row whose account number matches no Xero bank account.
var ErrUnmatchedBankAccount = errors.New("no matching xero bank account")

// ErrAdvisorDisabled is returned when the LLM advisor has no API key.
var ErrAdvisorDisabled = errors.New("reconciliation advisor is not configured")

// AppError carries an HTTP-ish status code alongside a message and the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError with the given code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewBadRequestError wraps ErrValidation so errors.Is keeps working upstream.
func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, ErrNotFound)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message, ErrDuplicate)
}

func NewInternalServerError(message string, err error) *AppError {
	return NewAppError(http.StatusInternalServerError, message, err)
}

// ExternalAPIError is a non-success response from Xero or another upstream service.
type ExternalAPIError struct {
	Service string
	Status  int
	Message string
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("%s api error (status %d): %s", e.Service, e.Status, e.Message)
}

// AsExternalAPIError reports whether err wraps an ExternalAPIError.
func AsExternalAPIError(err error) (*ExternalAPIError, bool) {
	var apiErr *ExternalAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsReconnectRequired groups the credential errors that send the user back through authorization.
func IsReconnectRequired(err error) bool {
	return errors.Is(err, ErrNeedsReconnect) || errors.Is(err, ErrNotConnected) || errors.Is(err, ErrNoTenant)
}
