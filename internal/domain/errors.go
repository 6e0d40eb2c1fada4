package domain

import (
	"errors"
	"net/http"
)

// StatusCode is the business status carried in every API envelope.
type StatusCode int

// Status codes shared by the API envelope and AppError.
const (
	CodeError                       StatusCode = 0
	CodeSuccess                     StatusCode = 1
	CodeBadRequest                  StatusCode = 400
	CodeUnauthorized                StatusCode = 401
	CodeNotFound                    StatusCode = 404
	CodeConflict                    StatusCode = 409
	CodeInternalServerError         StatusCode = 500
	CodeRequiredError               StatusCode = 1001
	CodeNonAuthoritativeInformation StatusCode = 5001
)

var statusDescriptions = map[StatusCode]string{
	CodeError:                       "error",
	CodeSuccess:                     "success",
	CodeBadRequest:                  "bad request",
	CodeUnauthorized:                "unauthorized",
	CodeNotFound:                    "not found",
	CodeConflict:                    "already exists",
	CodeInternalServerError:         "internal error",
	CodeRequiredError:               "required field missing",
	CodeNonAuthoritativeInformation: "permission denied",
}

// String returns the short description of the status code.
func (c StatusCode) String() string {
	if d, ok := statusDescriptions[c]; ok {
		return d
	}
	return "unknown"
}

// IsSuccess reports whether the code is CodeSuccess.
func (c StatusCode) IsSuccess() bool {
	return c == CodeSuccess
}

// AppError represents a business logic error with a code, message, and optional wrapped error.
type AppError struct {
	Code    StatusCode `json:"code"`
	Message string     `json:"msg"`
	Err     error      `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined business errors.
//
// Use the Is* helpers rather than errors.Is to match a category: the helpers
// compare codes, so freshly built errors from NewAppError match as well.
var (
	ErrNotFound     = &AppError{Code: CodeNotFound, Message: "not found"}
	ErrConflict     = &AppError{Code: CodeConflict, Message: "already exists"}
	ErrValidation   = &AppError{Code: CodeBadRequest, Message: "validation error"}
	ErrUnauthorized = &AppError{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrInternal     = &AppError{Code: CodeInternalServerError, Message: "internal error"}
)

// NewAppError creates a new AppError with the given code, message, and wrapped error.
func NewAppError(code StatusCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError with CodeNotFound.
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsConflict reports whether err is or wraps an AppError with CodeConflict.
func IsConflict(err error) bool {
	return hasCode(err, CodeConflict)
}

// IsValidation reports whether err is or wraps an AppError with CodeBadRequest or CodeRequiredError.
func IsValidation(err error) bool {
	return hasCode(err, CodeBadRequest) || hasCode(err, CodeRequiredError)
}

// IsUnauthorized reports whether err is or wraps an AppError with CodeUnauthorized.
func IsUnauthorized(err error) bool {
	return hasCode(err, CodeUnauthorized)
}

// IsInternal reports whether err is or wraps an AppError with CodeInternalServerError.
func IsInternal(err error) bool {
	return hasCode(err, CodeInternalServerError)
}

func hasCode(err error, code StatusCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// HTTPStatusCode maps an error to an HTTP status code.
// If the error is an *AppError, the code is mapped; otherwise http.StatusInternalServerError is returned.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		case CodeBadRequest, CodeRequiredError:
			return http.StatusBadRequest
		case CodeUnauthorized:
			return http.StatusUnauthorized
		case CodeNonAuthoritativeInformation:
			return http.StatusForbidden
		case CodeInternalServerError, CodeError:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}
