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
	"github.com/Krussell101/data-visualizer/pkg/analysis/tablecache"
	dspkg "github.com/Krussell101/data-visualizer/pkg/dataset"
)

type IDatasetService interface {
	Upload(ctx context.Context, name string, raw []byte) (*dto.UploadDatasetResponse, error)
	GetAll(ctx context.Context) ([]*dto.ListDatasetsResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.GetDatasetResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type datasetService struct {
	uowFactory unitofwork.RepositoryFactory
	ingestor   *dspkg.CSVIngestor
	readyCache *memory.ReadyDatasetRepository
	tables     *tablecache.Cache
	log        logger.ILogger
}

func NewDatasetService(
	uowFactory unitofwork.RepositoryFactory,
	ingestor *dspkg.CSVIngestor,
	readyCache *memory.ReadyDatasetRepository,
	tables *tablecache.Cache,
	log logger.ILogger,
) IDatasetService {
	return &datasetService{
		uowFactory: uowFactory,
		ingestor:   ingestor,
		readyCache: readyCache,
		tables:     tables,
		log:        log,
	}
}

// Upload ingests an uploaded file synchronously: the record is created in
// processing, decoded and profiled, then flipped to ready or error. A decode
// failure is a terminal state of the dataset, not a request error.
func (s *datasetService) Upload(ctx context.Context, name string, raw []byte) (*dto.UploadDatasetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	ds := entity.Dataset{
		Id:        uuid.New(),
		Name:      name,
		Status:    constant.DatasetStatusProcessing,
		CreatedAt: time.Now(),
	}

	fingerprint, err := s.ingestor.Store(ds.Id.String(), raw)
	if err != nil {
		return nil, err
	}
	ds.Fingerprint = fingerprint

	if err := uow.DatasetRepository().Create(ctx, &ds); err != nil {
		return nil, err
	}

	now := time.Now()
	_, metadata, decodeErr := dspkg.Decode(raw)
	if decodeErr != nil {
		ds.Status = constant.DatasetStatusError
		ds.ErrorDetail = decodeErr.Error()
		s.log.Warn("dataset", "Dataset ingestion failed", map[string]interface{}{
			"dataset_id": ds.Id.String(),
			"error":      decodeErr.Error(),
		})
	} else {
		ds.Status = constant.DatasetStatusReady
		ds.Metadata = metadata
	}
	ds.UpdatedAt = &now

	if err := uow.DatasetRepository().Update(ctx, &ds); err != nil {
		return nil, err
	}
	s.readyCache.Save(&ds)

	s.log.Info("dataset", "Dataset ingested", map[string]interface{}{
		"dataset_id":  ds.Id.String(),
		"status":      ds.Status,
		"fingerprint": ds.Fingerprint,
	})

	return &dto.UploadDatasetResponse{
		Id:          ds.Id,
		Name:        ds.Name,
		Status:      ds.Status,
		Fingerprint: ds.Fingerprint,
	}, nil
}

func (s *datasetService) GetAll(ctx context.Context) ([]*dto.ListDatasetsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	datasets, err := uow.DatasetRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.ListDatasetsResponse, 0, len(datasets))
	for _, ds := range datasets {
		res := dto.ListDatasetsResponse{
			Id:        ds.Id,
			Name:      ds.Name,
			Status:    ds.Status,
			CreatedAt: ds.CreatedAt,
		}
		if ds.Metadata != nil {
			res.RowCount = ds.Metadata.RowCount
		}
		result = append(result, &res)
	}
	return result, nil
}

func (s *datasetService) Show(ctx context.Context, id uuid.UUID) (*dto.GetDatasetResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	ds, err := uow.DatasetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, serverutils.ErrNotFound
	}

	return &dto.GetDatasetResponse{
		Id:          ds.Id,
		Name:        ds.Name,
		Status:      ds.Status,
		Fingerprint: ds.Fingerprint,
		Metadata:    ds.Metadata,
		ErrorDetail: ds.ErrorDetail,
		CreatedAt:   ds.CreatedAt,
	}, nil
}

func (s *datasetService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	ds, err := uow.DatasetRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if ds == nil {
		return serverutils.ErrNotFound
	}

	if err := uow.DatasetRepository().Delete(ctx, id); err != nil {
		return err
	}

	// Drop every cached form of the dataset; the stored file goes last so
	// a failed delete never leaves a record without its file
	s.readyCache.Delete(id.String())
	s.tables.Invalidate(id.String())
	if err := s.ingestor.Remove(id.String()); err != nil {
		s.log.Warn("dataset", "Stored file removal failed", map[string]interface{}{
			"dataset_id": id.String(),
			"error":      err.Error(),
		})
	}
	return nil
}
