// Package eventbus carries the broker machinery shared by the attendance and
// shifts services: the event envelope, the Kafka publisher/consumer adapters,
// the outbox poller and the consumer worker with bounded retry.
package eventbus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const SchemaVersion = "1.0"

// Event type names double as Kafka topic names unless remapped in config.
const (
	EventCheckedIn            = "attendance.checked_in"
	EventCheckedOut           = "attendance.checked_out"
	EventAssignmentCancelled  = "shift.assignment_cancelled"
	EventUserCreated          = "user.created"
	EventUserUpdated          = "user.updated"
	EventUserDeleted          = "user.deleted"
	EventContractActivated    = "contract.activated"
	EventDeactivateGuard      = "guard.deactivate"
	EventDeactivateManager    = "manager.deactivate"
	DeadLetterTopicSuffix     = ".dlq"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SchemaVersion string          `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Data          json.RawMessage `json:"data"`
}

// NewEnvelope wraps a data payload in the platform envelope and returns both
// the envelope and its serialized form.
func NewEnvelope(eventType, sourceService, partitionKey string, occurredAt time.Time, data any) (Envelope, []byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("marshal %s data: %w", eventType, err)
	}
	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SourceService: sourceService,
		SchemaVersion: SchemaVersion,
		PartitionKey:  partitionKey,
		Data:          raw,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, nil, fmt.Errorf("marshal %s envelope: %w", eventType, err)
	}
	return env, payload, nil
}

// DecodeEnvelope parses an envelope and rejects payloads without an event id,
// since the id is what consumer-side dedup keys on.
func DecodeEnvelope(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode event envelope: %w", err)
	}
	if env.EventID == "" {
		return Envelope{}, fmt.Errorf("event envelope missing event_id")
	}
	return env, nil
}
