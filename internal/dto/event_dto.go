package dto

import "github.com/google/uuid"

// ExchangeRecordedMessage is the payload published after an exchange reaches
// its terminal persisted state.
type ExchangeRecordedMessage struct {
	SessionId  uuid.UUID `json:"session_id"`
	QueryLogId uuid.UUID `json:"query_log_id"`
	Prompt     string    `json:"prompt"`
	Status     string    `json:"status"`
}
