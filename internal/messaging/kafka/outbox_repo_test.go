package kafka_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"masar-finance/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() kafka.OutboxEvent {
	return kafka.OutboxEvent{
		ID:             "0b3b0f6e-4a55-4a44-9f3c-3f7b6a1f0001",
		OrganizationID: "0b3b0f6e-4a55-4a44-9f3c-3f7b6a1f0002",
		AggregateType:  "expense",
		AggregateID:    "0b3b0f6e-4a55-4a44-9f3c-3f7b6a1f0003",
		EventType:      "expense.created",
		Topic:          "finance.audit.v1",
		Payload:        []byte(`{}`),
		Status:         kafka.OutboxStatusPending,
	}
}

func TestOutboxRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := kafka.NewOutboxRepository(db)
	e := validEvent()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO outbox_events")).
		WithArgs(e.ID, e.RequestID, e.OrganizationID, e.AggregateType, e.AggregateID, e.EventType, e.Topic, e.Payload, e.Status).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_Create_Invalid(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := validEvent()
	e.Topic = ""

	assert.Error(t, kafka.NewOutboxRepository(db).Create(context.Background(), e))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "request_id", "organization_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at"}).
		AddRow("id-1", "req-1", "org-1", "transfer", "tr-1", "transfer.created", "finance.audit.v1", []byte(`{"a":1}`), kafka.OutboxStatusPending, 0, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM outbox_events")).
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, 20, 50).
		WillReturnRows(rows)

	got, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "tr-1", got[0].AggregateID)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.Equal(t, "org-1", got[0].OrganizationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_PurgeSent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM outbox_events")).
		WithArgs(kafka.OutboxStatusSent, int64(86400)).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := kafka.NewOutboxRepository(db).PurgeSent(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
