package entity

import (
	"time"

	"github.com/google/uuid"
)

type AnalysisSession struct {
	Id        uuid.UUID
	DatasetId uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
