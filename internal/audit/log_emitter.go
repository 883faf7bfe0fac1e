package audit

import (
	"context"
	"time"

	"masar-finance/internal/shared/contextutil"

	"go.uber.org/zap"
)

// LogEmitter writes audit events to the structured log.
type LogEmitter struct {
	logger *zap.Logger
}

func NewLogEmitter(logger *zap.Logger) *LogEmitter {
	if logger == nil {
		logger = zap.L()
	}
	return &LogEmitter{logger: logger.Named("audit")}
}

func (l *LogEmitter) Emit(ctx context.Context, event Event) {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("organization_id", event.OrganizationID),
		zap.String("actor_id", event.ActorID),
		zap.String("action", event.Action),
		zap.String("entity_type", event.EntityType),
		zap.String("entity_id", event.EntityID),
		zap.Time("occurred_at", occurred),
		zap.Any("metadata", event.Metadata),
	}
	if event.ProjectID != nil {
		fields = append(fields, zap.String("project_id", *event.ProjectID))
	}
	l.logger.Info("audit event", fields...)
}
