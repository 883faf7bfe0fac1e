package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is the transport view of an error.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
}

// ToHTTP converts any error into an HTTPError. Errors that are not an
// *AppError are reported as internal errors without their text.
func ToHTTP(err error) HTTPError {
	if err == nil {
		return HTTPError{Status: http.StatusOK}
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return HTTPError{
			Status:  status,
			Code:    appErr.Code,
			Message: appErr.Message,
		}
	}

	return HTTPError{
		Status:  ErrInternal.HTTPStatus,
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}
}

// WithDetail returns a copy of sentinel whose message carries detail and
// which still matches sentinel under errors.Is.
func WithDetail(sentinel *AppError, format string, args ...any) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    fmt.Sprintf("%s: %s", sentinel.Message, fmt.Sprintf(format, args...)),
		HTTPStatus: sentinel.HTTPStatus,
		Err:        sentinel,
	}
}

// IsExpected reports whether err is a caller facing business rejection as
// opposed to an infrastructure failure.
func IsExpected(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.HTTPStatus > 0 && appErr.HTTPStatus < http.StatusInternalServerError
}
