package employeeerrors

import (
	"net/http"

	"masar-finance/internal/shared/apperror"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee not found",
		http.StatusNotFound,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidCompensation = apperror.New(
		apperror.CodeInvalidInput,
		"compensation amounts must be non-negative with at most 2 decimal places",
		http.StatusBadRequest,
	)
	ErrUnknownEventType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown employee event type",
		http.StatusBadRequest,
	)
)
