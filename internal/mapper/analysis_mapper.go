package mapper

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/model"
)

type AnalysisMapper struct{}

func NewAnalysisMapper() *AnalysisMapper {
	return &AnalysisMapper{}
}

// Session Mappers

func (m *AnalysisMapper) SessionToEntity(s *model.AnalysisSession) *entity.AnalysisSession {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.AnalysisSession{
		Id:        s.Id,
		DatasetId: s.DatasetId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: s.DeletedAt.Valid,
	}
}

func (m *AnalysisMapper) SessionToModel(s *entity.AnalysisSession) *model.AnalysisSession {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.AnalysisSession{
		Id:        s.Id,
		DatasetId: s.DatasetId,
		Title:     s.Title,
		CreatedAt: s.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

// QueryLog Mappers

func (m *AnalysisMapper) QueryLogToEntity(q *model.QueryLog) *entity.QueryLog {
	if q == nil {
		return nil
	}

	var plot json.RawMessage
	if len(q.ResponsePlotJson) > 0 {
		plot = json.RawMessage(q.ResponsePlotJson)
	}

	return &entity.QueryLog{
		Id:                q.Id,
		AnalysisSessionId: q.AnalysisSessionId,
		Prompt:            q.Prompt,
		ResponseText:      q.ResponseText,
		ResponsePlotJson:  plot,
		Status:            q.Status,
		ErrorMessage:      q.ErrorMessage,
		CreatedAt:         q.CreatedAt,
	}
}

func (m *AnalysisMapper) QueryLogToModel(q *entity.QueryLog) *model.QueryLog {
	if q == nil {
		return nil
	}

	var plot datatypes.JSON
	if len(q.ResponsePlotJson) > 0 {
		plot = datatypes.JSON(q.ResponsePlotJson)
	}

	return &model.QueryLog{
		Id:                q.Id,
		AnalysisSessionId: q.AnalysisSessionId,
		Prompt:            q.Prompt,
		ResponseText:      q.ResponseText,
		ResponsePlotJson:  plot,
		Status:            q.Status,
		ErrorMessage:      q.ErrorMessage,
		CreatedAt:         q.CreatedAt,
	}
}
