package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnalysisSession struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DatasetId uuid.UUID      `gorm:"type:uuid;not null;index"` // A session binds to exactly one dataset for its lifetime
	Title     string         `gorm:"type:text;not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (AnalysisSession) TableName() string {
	return "analysis_sessions"
}
