package audit

import (
	"context"
	"encoding/json"
	"time"

	"masar-finance/internal/events"
	"masar-finance/internal/messaging/kafka"
	"masar-finance/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OutboxEmitter queues audit events in the outbox table for the worker to
// publish. It runs outside the ledger transaction; a failed insert is logged
// and dropped.
type OutboxEmitter struct {
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewOutboxEmitter(outbox kafka.OutboxRepository, logger ...*zap.Logger) *OutboxEmitter {
	l := zap.L().Named("audit.outbox")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.outbox")
	}
	return &OutboxEmitter{outbox: outbox, logger: l}
}

func (e *OutboxEmitter) Emit(ctx context.Context, event Event) {
	rid := contextutil.GetRequestID(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	payload, err := json.Marshal(events.FinanceAuditEvent{
		EventType:      event.Action,
		RequestID:      rid,
		OrganizationID: event.OrganizationID,
		ProjectID:      event.ProjectID,
		ActorID:        event.ActorID,
		Action:         event.Action,
		EntityType:     event.EntityType,
		EntityID:       event.EntityID,
		Metadata:       event.Metadata,
		OccurredAt:     event.OccurredAt,
	})
	if err != nil {
		e.logger.Warn("marshal audit event failed",
			zap.String("request_id", rid),
			zap.String("action", event.Action),
			zap.Error(err),
		)
		return
	}

	// detached from the request so a client disconnect does not drop the row
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	err = e.outbox.Create(writeCtx, kafka.OutboxEvent{
		ID:             uuid.NewString(),
		RequestID:      rid,
		OrganizationID: event.OrganizationID,
		AggregateType:  event.EntityType,
		AggregateID:    event.EntityID,
		EventType:      event.Action,
		Topic:          events.FinanceAuditTopic,
		Payload:        payload,
		Status:         kafka.OutboxStatusPending,
	})
	if err != nil {
		e.logger.Warn("queue audit event failed",
			zap.String("request_id", rid),
			zap.String("action", event.Action),
			zap.String("entity_id", event.EntityID),
			zap.Error(err),
		)
	}
}
