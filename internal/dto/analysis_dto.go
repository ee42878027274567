package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	DatasetId uuid.UUID `json:"dataset_id" validate:"required"`
	Title     string    `json:"title"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	DatasetId uuid.UUID  `json:"dataset_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type SubmitQueryRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
	Prompt    string    `json:"prompt" validate:"required,max=4000"`
}

// ExchangeDTO is one persisted prompt/response pair. Plot is replayed by the
// client exactly as stored.
type ExchangeDTO struct {
	Id           uuid.UUID       `json:"id"`
	Prompt       string          `json:"prompt"`
	ResponseText string          `json:"response_text,omitempty"`
	Plot         json.RawMessage `json:"plot,omitempty"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

type SubmitQueryResponse struct {
	SessionId uuid.UUID   `json:"session_id"`
	Exchange  ExchangeDTO `json:"exchange"`
}

type GetHistoryResponse struct {
	SessionId uuid.UUID     `json:"session_id"`
	Exchanges []ExchangeDTO `json:"exchanges"`
}

type DeleteSessionRequest struct {
	SessionId uuid.UUID `json:"session_id" validate:"required"`
}
