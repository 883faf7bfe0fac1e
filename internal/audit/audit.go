// Package audit carries the ledger's audit trail. Emission happens after the
// financial transaction commits and never fails the caller.
package audit

import (
	"context"
	"time"
)

// Event describes one successful mutation.
type Event struct {
	OrganizationID string
	ProjectID      *string
	ActorID        string
	Action         string
	EntityType     string
	EntityID       string
	Metadata       map[string]any
	OccurredAt     time.Time
}

const (
	ActionExpenseCreated   = "expense.created"
	ActionExpensePaid      = "expense.paid"
	ActionExpenseCancelled = "expense.cancelled"
	ActionExpenseDeleted   = "expense.deleted"

	ActionPaymentCreated = "payment.created"
	ActionPaymentDeleted = "payment.deleted"

	ActionTransferCreated   = "transfer.created"
	ActionTransferCancelled = "transfer.cancelled"

	ActionPayrollRunCreated   = "payroll_run.created"
	ActionPayrollRunPopulated = "payroll_run.populated"
	ActionPayrollRunApproved  = "payroll_run.approved"
	ActionPayrollRunPaid      = "payroll_run.paid"
	ActionPayrollRunCancelled = "payroll_run.cancelled"

	ActionReconciliationDrift = "reconciliation.drift_detected"
)

//go:generate mockgen -source=audit.go -destination=mock/emitter_mock.go -package=mock
type Emitter interface {
	Emit(ctx context.Context, event Event)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(ctx context.Context, event Event)

func (f EmitterFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

// Discard drops every event.
var Discard Emitter = EmitterFunc(func(context.Context, Event) {})

// OrDiscard returns e, or Discard when e is nil.
func OrDiscard(e Emitter) Emitter {
	if e == nil {
		return Discard
	}
	return e
}

type tee []Emitter

func (t tee) Emit(ctx context.Context, event Event) {
	for _, e := range t {
		e.Emit(ctx, event)
	}
}

// Tee fans an event out to every emitter in order.
func Tee(emitters ...Emitter) Emitter {
	return tee(emitters)
}
