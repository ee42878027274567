package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QueryLog rows are append-only: no UpdatedAt, no soft delete. They are
// removed only when their session is hard-deleted.
type QueryLog struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AnalysisSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Prompt            string         `gorm:"type:text;not null"`
	ResponseText      string         `gorm:"type:text"`
	ResponsePlotJson  datatypes.JSON `gorm:"type:jsonb"`
	Status            string         `gorm:"type:varchar(20);not null"`
	ErrorMessage      string         `gorm:"type:text"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
}

func (QueryLog) TableName() string {
	return "query_logs"
}
