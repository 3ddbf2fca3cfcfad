package shared

import (
	"errors"
	"net/http"
)

// AppError carries an HTTP status and a user-facing message next to the
// underlying error. Handlers return these; the fiber error handler
// unwraps them into the response envelope.
type AppError struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewUnauthorizedError(err error, message string) *AppError {
	return NewAppError(http.StatusUnauthorized, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return NewAppError(http.StatusForbidden, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	return NewAppError(http.StatusConflict, err, message)
}

func NewInternalError(err error, message string) *AppError {
	return NewAppError(http.StatusInternalServerError, err, message)
}

// GetAppError returns the AppError in err's chain, if any.
func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WithData attaches a payload to the error response (e.g. an access
// rejection reason code).
func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}
