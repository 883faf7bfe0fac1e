package payrollerrors

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
	ErrInvalidPeriod = apperror.New(
		apperror.CodeInvalidInput,
		"month must be 1-12 and year 2000-2100",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll run status filter",
		http.StatusBadRequest,
	)
	ErrSourceAccountRequired = apperror.New(
		apperror.CodeInvalidInput,
		"source account is required to pay a payroll run",
		http.StatusBadRequest,
	)
	ErrPayrollRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrPayrollRunExists = apperror.New(
		apperror.CodeConflict,
		"a payroll run already exists for this month",
		http.StatusConflict,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid payroll run status transition",
		http.StatusConflict,
	)
	ErrPayrollExpenseCancelled = apperror.New(
		apperror.CodeInvalidState,
		"a salary expense of this payroll run was cancelled",
		http.StatusConflict,
	)
	ErrPayrollRunEmpty = apperror.New(
		apperror.CodeInvalidState,
		"payroll run has no items, populate it first",
		http.StatusUnprocessableEntity,
	)
)
