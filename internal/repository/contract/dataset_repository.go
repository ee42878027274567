package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
)

type DatasetRepository interface {
	Create(ctx context.Context, dataset *entity.Dataset) error
	Update(ctx context.Context, dataset *entity.Dataset) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Dataset, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Dataset, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
