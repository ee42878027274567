package implementation

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/mapper"
	"github.com/Krussell101/data-visualizer/internal/model"
	"github.com/Krussell101/data-visualizer/internal/repository/contract"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
)

type QueryLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnalysisMapper
}

func NewQueryLogRepository(db *gorm.DB) contract.QueryLogRepository {
	return &QueryLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnalysisMapper(),
	}
}

func (r *QueryLogRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *QueryLogRepositoryImpl) Create(ctx context.Context, queryLog *entity.QueryLog) error {
	m := r.mapper.QueryLogToModel(queryLog)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*queryLog = *r.mapper.QueryLogToEntity(m)
	return nil
}

func (r *QueryLogRepositoryImpl) DeleteByAnalysisSessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("analysis_session_id = ?", sessionId).Delete(&model.QueryLog{}).Error
}

func (r *QueryLogRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QueryLog, error) {
	var m model.QueryLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.QueryLogToEntity(&m), nil
}

func (r *QueryLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryLog, error) {
	var models []*model.QueryLog
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.QueryLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.QueryLogToEntity(m)
	}
	return entities, nil
}

func (r *QueryLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.QueryLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
