package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByAnalysisSessionID struct {
	AnalysisSessionID uuid.UUID
}

func (s ByAnalysisSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("analysis_session_id = ?", s.AnalysisSessionID)
}

type ByDatasetID struct {
	DatasetID uuid.UUID
}

func (s ByDatasetID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("dataset_id = ?", s.DatasetID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
