package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"masar-finance/internal/employee"
	employeeerrors "masar-finance/internal/employee/errors"
	"masar-finance/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		f.cancel()
		return kafkago.Message{}, ctx.Err()
	}
	msg := f.messages[0]
	f.messages = f.messages[1:]
	return msg, nil
}

func (f *fakeReader) CommitMessages(ctx context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.committed = append(f.committed, m.Offset)
	}
	return nil
}

type fakeEmployeeService struct {
	employee.Service
	syncFn func(ctx context.Context, event events.EmployeeCompensationEvent) error
}

func (f *fakeEmployeeService) SyncCompensation(ctx context.Context, event events.EmployeeCompensationEvent) error {
	return f.syncFn(ctx, event)
}

func message(t *testing.T, offset int64, employeeID string) kafkago.Message {
	t.Helper()
	value, err := json.Marshal(events.EmployeeCompensationEvent{
		EventType:  events.EmployeeCompensationChanged,
		EmployeeID: employeeID,
	})
	assert.NoError(t, err)
	return kafkago.Message{Offset: offset, Value: value}
}

func TestConsumeEmployeeCompensation(t *testing.T) {
	retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		cancel: cancel,
		messages: []kafkago.Message{
			message(t, 1, "ok"),
			{Offset: 2, Value: []byte("{not json")},
			message(t, 3, "rejected"),
			message(t, 4, "db-down"),
			message(t, 5, "ok-again"),
		},
	}

	var synced []string
	svc := &fakeEmployeeService{
		syncFn: func(ctx context.Context, event events.EmployeeCompensationEvent) error {
			switch event.EmployeeID {
			case "rejected":
				return employeeerrors.ErrInvalidEmployeeID
			case "db-down":
				return errors.New("connection reset")
			}
			synced = append(synced, event.EmployeeID)
			return nil
		},
	}

	ConsumeEmployeeCompensation(ctx, reader, svc, zap.NewNop())

	assert.Equal(t, []string{"ok", "ok-again"}, synced)
	// malformed and rejected events are committed, infrastructure failures are not
	assert.Equal(t, []int64{1, 2, 3, 5}, reader.committed)
}
