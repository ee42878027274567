package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QueryLog is one prompt/response exchange. Immutable after creation: logs
// are only ever appended, which keeps conversational ordering stable and
// concurrent history reads safe while a new exchange is being written.
type QueryLog struct {
	Id                uuid.UUID
	AnalysisSessionId uuid.UUID
	Prompt            string
	ResponseText      string
	ResponsePlotJson  json.RawMessage
	Status            string
	ErrorMessage      string
	CreatedAt         time.Time
}
