package consumer

import (
	"context"
	"encoding/json"
	"time"

	"masar-finance/internal/employee"
	"masar-finance/internal/events"
	"masar-finance/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// NewEmployeeCompensationReader reads HR compensation events from the start
// of the topic so a fresh deployment builds the full snapshot.
func NewEmployeeCompensationReader(broker, groupID string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          events.EmployeeCompensationTopic,
		GroupID:        groupID,
		CommitInterval: time.Second,
		StartOffset:    kafkago.FirstOffset,
	})
}

// retryDelay is how long the consumer waits before fetching again after a
// database failure.
var retryDelay = 2 * time.Second

func ConsumeEmployeeCompensation(
	ctx context.Context,
	reader MessageReader,
	employeeService employee.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_compensation")
	log.Info("employee compensation consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee compensation consumer stopped")
				return
			}
			log.Error("fetch employee compensation message failed", zap.Error(err))
			continue
		}

		var event events.EmployeeCompensationEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode employee compensation event failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := employeeService.SyncCompensation(ctx, event); err != nil {
			if apperror.IsExpected(err) {
				// malformed events are dropped, retrying would not fix them
				log.Warn("employee compensation event rejected",
					zap.String("employee_id", event.EmployeeID),
					zap.String("organization_id", event.OrganizationID),
					zap.String("event_type", event.EventType),
					zap.Error(err),
				)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			log.Error("sync employee compensation failed",
				zap.String("employee_id", event.EmployeeID),
				zap.String("organization_id", event.OrganizationID),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee compensation message failed", zap.Error(err))
			continue
		}

		log.Debug("employee snapshot synced",
			zap.String("employee_id", event.EmployeeID),
			zap.String("organization_id", event.OrganizationID),
			zap.String("event_type", event.EventType),
		)
	}
}
