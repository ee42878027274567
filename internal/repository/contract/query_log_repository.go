package contract

import (
	"context"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
)

// QueryLogRepository is append-only: no Update. Logs are removed only when
// their whole session goes away.
type QueryLogRepository interface {
	Create(ctx context.Context, queryLog *entity.QueryLog) error
	DeleteByAnalysisSessionId(ctx context.Context, sessionId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QueryLog, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
