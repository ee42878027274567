package unitofwork

import (
	"context"

	"github.com/Krussell101/data-visualizer/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DatasetRepository() contract.DatasetRepository
	AnalysisSessionRepository() contract.AnalysisSessionRepository
	QueryLogRepository() contract.QueryLogRepository
}
