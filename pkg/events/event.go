package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "EXCHANGE_RECORDED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeExchangeRecorded = "EXCHANGE_RECORDED"

// NewExchangeRecorded is emitted after a query reaches its terminal persisted
// state, success or error. The prompt rides along so consumers can derive a
// session title without a second store read.
func NewExchangeRecorded(sessionID, queryLogID, prompt, status string) Event {
	return BaseEvent{
		Type: TypeExchangeRecorded,
		Data: map[string]interface{}{
			"session_id":   sessionID,
			"query_log_id": queryLogID,
			"prompt":       prompt,
			"status":       status,
		},
		OccurredAt: time.Now(),
	}
}
