package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/pkg/table"
)

type Dataset struct {
	Id          uuid.UUID
	Name        string
	Fingerprint string
	Status      string
	Metadata    *table.Metadata
	ErrorDetail string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	DeletedAt   *time.Time
	IsDeleted   bool
}
