package expenseerrors

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
	ErrInvalidProjectID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid project id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero with at most 2 decimal places",
		http.StatusBadRequest,
	)
	ErrInvalidCategory = apperror.New(
		apperror.CodeInvalidInput,
		"invalid expense category",
		http.StatusBadRequest,
	)
	ErrInvalidCreateStatus = apperror.New(
		apperror.CodeInvalidInput,
		"expense must be created as PENDING or COMPLETED",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid expense status filter",
		http.StatusBadRequest,
	)
	ErrSourceAccountRequired = apperror.New(
		apperror.CodeInvalidInput,
		"source account is required to settle an expense",
		http.StatusBadRequest,
	)
	ErrSourceAccountMismatch = apperror.New(
		apperror.CodeInvalidInput,
		"a partially paid expense must keep paying from its original source account",
		http.StatusUnprocessableEntity,
	)
	ErrExpenseNotFound = apperror.New(
		apperror.CodeNotFound,
		"expense not found",
		http.StatusNotFound,
	)
	ErrOverpayment = apperror.New(
		apperror.CodeOverpayment,
		"payment exceeds the expense remaining balance",
		http.StatusUnprocessableEntity,
	)
	ErrExpenseAlreadySettled = apperror.New(
		apperror.CodeInvalidState,
		"expense is already fully paid",
		http.StatusConflict,
	)
	ErrExpenseCancelled = apperror.New(
		apperror.CodeInvalidState,
		"expense is cancelled and cannot be paid",
		http.StatusConflict,
	)
	ErrExpenseAlreadyCancelled = apperror.New(
		apperror.CodeAlreadyCancelled,
		"expense is already cancelled",
		http.StatusConflict,
	)
	ErrDeleteFacilityExpense = apperror.New(
		apperror.CodeForbidden,
		"cannot delete facility-generated expense",
		http.StatusForbidden,
	)
	ErrCancelFacilityExpense = apperror.New(
		apperror.CodeForbidden,
		"cannot cancel facility-generated expense, cancel its source instead",
		http.StatusForbidden,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid expense status transition",
		http.StatusConflict,
	)
)
