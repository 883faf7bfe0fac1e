package transfererrors

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
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrSameAccount = apperror.New(
		apperror.CodeInvalidTransfer,
		"source and destination accounts must differ",
		http.StatusUnprocessableEntity,
	)
	ErrTransferNotFound = apperror.New(
		apperror.CodeNotFound,
		"transfer not found",
		http.StatusNotFound,
	)
	ErrTransferAlreadyCancelled = apperror.New(
		apperror.CodeAlreadyCancelled,
		"transfer is already cancelled",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid transfer status transition",
		http.StatusConflict,
	)
)
