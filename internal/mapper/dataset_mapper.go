package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/model"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

type DatasetMapper struct{}

func NewDatasetMapper() *DatasetMapper {
	return &DatasetMapper{}
}

func (m *DatasetMapper) ToEntity(d *model.Dataset) *entity.Dataset {
	if d == nil {
		return nil
	}

	var deletedAt *time.Time
	if d.DeletedAt.Valid {
		t := d.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	var meta *table.Metadata
	if len(d.Metadata) > 0 {
		meta = &table.Metadata{}
		if err := json.Unmarshal(d.Metadata, meta); err != nil {
			meta = nil
		}
	}

	return &entity.Dataset{
		Id:          d.Id,
		Name:        d.Name,
		Fingerprint: d.Fingerprint,
		Status:      d.Status,
		Metadata:    meta,
		ErrorDetail: d.ErrorDetail,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   d.DeletedAt.Valid,
	}
}

func (m *DatasetMapper) ToModel(d *entity.Dataset) *model.Dataset {
	if d == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if d.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *d.DeletedAt, Valid: true}
	} else if d.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if d.UpdatedAt != nil {
		updatedAt = *d.UpdatedAt
	}

	var meta datatypes.JSON
	if d.Metadata != nil {
		if raw, err := json.Marshal(d.Metadata); err == nil {
			meta = datatypes.JSON(raw)
		}
	}

	return &model.Dataset{
		Id:          d.Id,
		Name:        d.Name,
		Fingerprint: d.Fingerprint,
		Status:      d.Status,
		Metadata:    meta,
		ErrorDetail: d.ErrorDetail,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}
