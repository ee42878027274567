package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/pkg/table"
)

type UploadDatasetResponse struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Fingerprint string    `json:"fingerprint"`
}

type GetDatasetResponse struct {
	Id          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	Fingerprint string          `json:"fingerprint"`
	Metadata    *table.Metadata `json:"metadata,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type ListDatasetsResponse struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	RowCount  int       `json:"row_count,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
