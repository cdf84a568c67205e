package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
	ErrStorage      = errors.New("storage failure")
)

// Machine-readable error codes returned to clients alongside the HTTP status.
const (
	CodeMissingFields       = "MISSING_REQUIRED_FIELDS"
	CodeInvalidOTP          = "INVALID_OTP"
	CodeExpiredOTP          = "EXPIRED_OTP"
	CodeEmailExists         = "EMAIL_ALREADY_EXISTS"
	CodeUsernameTaken       = "USERNAME_TAKEN"
	CodeEmailNotRegistered  = "EMAIL_NOT_REGISTERED"
	CodeInvalidPassword     = "INVALID_PASSWORD"
	CodeNoRefreshToken      = "NO_REFRESH_TOKEN"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeUserNotFound        = "USER_NOT_FOUND"
	CodeDetailNotFound      = "USER_DETAIL_NOT_FOUND"
	CodeDBOperationFailed   = "DB_OPERATION_FAILED"
)

// Error is the typed error carried from services to the HTTP boundary.
// It pairs a human message with an HTTP status and a machine code, and wraps
// one of the sentinel kinds above so callers can still use errors.Is.
type Error struct {
	Status  int
	Code    string
	Message string
	kind    error
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	errs := []error{e.kind}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

func BadRequest(code, message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: code, Message: message, kind: ErrBadRequest}
}

func Unauthorized(code, message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: code, Message: message, kind: ErrUnauthorized}
}

func NotFound(code, message string) *Error {
	return &Error{Status: http.StatusNotFound, Code: code, Message: message, kind: ErrNotFound}
}

func Conflict(code, message string) *Error {
	// The original API reported uniqueness violations as 400, not 409.
	return &Error{Status: http.StatusBadRequest, Code: code, Message: message, kind: ErrConflict}
}

// StorageError wraps a raw persistence error. Repos call this at the store
// boundary so driver errors never reach handlers or clients.
func StorageError(cause error) *Error {
	return &Error{
		Status:  http.StatusInternalServerError,
		Code:    CodeDBOperationFailed,
		Message: "database operation failed",
		kind:    ErrStorage,
		cause:   cause,
	}
}
