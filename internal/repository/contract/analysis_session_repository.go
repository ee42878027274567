package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
)

type AnalysisSessionRepository interface {
	Create(ctx context.Context, session *entity.AnalysisSession) error
	Update(ctx context.Context, session *entity.AnalysisSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnalysisSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
