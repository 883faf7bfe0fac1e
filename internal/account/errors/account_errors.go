package accounterrors

import (
	"net/http"

	"masar-finance/internal/shared/apperror"
)

var (
	// ErrAccountNotFound covers both a missing account and one owned by
	// another organization.
	ErrAccountNotFound = apperror.New(
		apperror.CodeNotFound,
		"account not found",
		http.StatusNotFound,
	)
	ErrInsufficientFunds = apperror.New(
		apperror.CodeInsufficientFunds,
		"insufficient funds in account",
		http.StatusUnprocessableEntity,
	)
	ErrAccountInactive = apperror.New(
		apperror.CodeInvalidState,
		"account is inactive",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
)
