package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/dto"
	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/pkg/logger"
	"github.com/Krussell101/data-visualizer/internal/pkg/serverutils"
	"github.com/Krussell101/data-visualizer/internal/repository/memory"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
	"github.com/Krussell101/data-visualizer/pkg/analysis/executor"
	"github.com/Krussell101/data-visualizer/pkg/events"
)

type IAnalysisService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetHistoryResponse, error)
	SubmitQuery(ctx context.Context, req *dto.SubmitQueryRequest) (*dto.SubmitQueryResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

type analysisService struct {
	uowFactory       unitofwork.RepositoryFactory
	executor         *executor.Executor
	readyCache       *memory.ReadyDatasetRepository
	publisherService IPublisherService
	log              logger.ILogger
}

func NewAnalysisService(
	uowFactory unitofwork.RepositoryFactory,
	exec *executor.Executor,
	readyCache *memory.ReadyDatasetRepository,
	publisherService IPublisherService,
	log logger.ILogger,
) IAnalysisService {
	return &analysisService{
		uowFactory:       uowFactory,
		executor:         exec,
		readyCache:       readyCache,
		publisherService: publisherService,
		log:              log,
	}
}

func (s *analysisService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	ds, err := s.resolveDataset(ctx, uow, req.DatasetId)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, serverutils.ErrNotFound
	}

	title := req.Title
	if title == "" {
		title = constant.DefaultSessionTitle
	}

	session := entity.AnalysisSession{
		Id:        uuid.New(),
		DatasetId: ds.Id,
		Title:     title,
		CreatedAt: time.Now(),
	}
	if err := uow.AnalysisSessionRepository().Create(ctx, &session); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: session.Id}, nil
}

func (s *analysisService) GetAllSessions(ctx context.Context) ([]*dto.GetAllSessionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Most recently active first
	sessions, err := uow.AnalysisSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllSessionsResponse, 0, len(sessions))
	for _, session := range sessions {
		result = append(result, &dto.GetAllSessionsResponse{
			Id:        session.Id,
			DatasetId: session.DatasetId,
			Title:     session.Title,
			CreatedAt: session.CreatedAt,
			UpdatedAt: session.UpdatedAt,
		})
	}
	return result, nil
}

// GetHistory returns the full exchange log in chronological order: the
// client replays it top to bottom as the conversation transcript.
func (s *analysisService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.GetHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.AnalysisSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound
	}

	logs, err := uow.QueryLogRepository().FindAll(ctx,
		specification.ByAnalysisSessionID{AnalysisSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := dto.GetHistoryResponse{
		SessionId: sessionId,
		Exchanges: make([]dto.ExchangeDTO, 0, len(logs)),
	}
	for _, queryLog := range logs {
		res.Exchanges = append(res.Exchanges, mapExchange(queryLog))
	}
	return &res, nil
}

// SubmitQuery runs one prompt against the session's dataset. The executor
// guarantees a terminal persisted exchange; an error return here means the
// request itself was unserviceable, not that the analysis failed.
func (s *analysisService) SubmitQuery(ctx context.Context, req *dto.SubmitQueryRequest) (*dto.SubmitQueryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.AnalysisSessionRepository().FindOne(ctx, specification.ByID{ID: req.SessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.ErrNotFound
	}

	ds, err := s.resolveDataset(ctx, uow, session.DatasetId)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, serverutils.ErrNotFound
	}

	queryLog, err := s.executor.Execute(ctx, session, ds, req.Prompt)
	if err != nil {
		return nil, err
	}

	ev := events.NewExchangeRecorded(session.Id.String(), queryLog.Id.String(), queryLog.Prompt, queryLog.Status)
	if err := s.publisherService.PublishEvent(ctx, ev); err != nil {
		// The exchange is already persisted; a lost event only delays
		// the session title refresh
		s.log.Warn("analysis", "Exchange event publish failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
	}

	return &dto.SubmitQueryResponse{
		SessionId: session.Id,
		Exchange:  mapExchange(queryLog),
	}, nil
}

func (s *analysisService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.AnalysisSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if session == nil {
		return serverutils.ErrNotFound
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.QueryLogRepository().DeleteByAnalysisSessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.AnalysisSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// resolveDataset serves ready datasets from the in-memory cache and falls
// back to the store for everything else.
func (s *analysisService) resolveDataset(ctx context.Context, uow unitofwork.UnitOfWork, datasetId uuid.UUID) (*entity.Dataset, error) {
	if ds, found := s.readyCache.Get(datasetId.String()); found {
		return ds, nil
	}

	ds, err := uow.DatasetRepository().FindOne(ctx, specification.ByID{ID: datasetId})
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, nil
	}

	s.readyCache.Save(ds)
	return ds, nil
}

func mapExchange(queryLog *entity.QueryLog) dto.ExchangeDTO {
	return dto.ExchangeDTO{
		Id:           queryLog.Id,
		Prompt:       queryLog.Prompt,
		ResponseText: queryLog.ResponseText,
		Plot:         queryLog.ResponsePlotJson,
		Status:       queryLog.Status,
		ErrorMessage: queryLog.ErrorMessage,
		CreatedAt:    queryLog.CreatedAt,
	}
}
