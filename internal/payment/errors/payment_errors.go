package paymenterrors

import (
	"net/http"

	"masar-finance/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero with at most 2 decimal places",
		http.StatusBadRequest,
	)
	ErrInvalidDestinationAccount = apperror.New(
		apperror.CodeInvalidInput,
		"invalid destination account id",
		http.StatusBadRequest,
	)
	ErrInvalidProjectID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid project id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrPaymentNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment not found",
		http.StatusNotFound,
	)
)
