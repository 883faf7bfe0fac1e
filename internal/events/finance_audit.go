package events

import "time"

const FinanceAuditTopic = "finance.audit.v1"

// FinanceAuditEvent is the payload published for every ledger mutation.
type FinanceAuditEvent struct {
	EventType      string         `json:"event_type"`
	RequestID      string         `json:"request_id,omitempty"`
	OrganizationID string         `json:"organization_id"`
	ProjectID      *string        `json:"project_id,omitempty"`
	ActorID        string         `json:"actor_id"`
	Action         string         `json:"action"`
	EntityType     string         `json:"entity_type"`
	EntityID       string         `json:"entity_id"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}
