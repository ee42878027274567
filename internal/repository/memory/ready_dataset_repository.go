package memory

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/entity"
)

// ReadyDatasetRepository caches Dataset records that reached the ready
// status, sparing a DB read on every query submission. A ready Dataset is
// immutable (a re-upload creates a new Dataset), so serving a cached copy is
// always correct; non-ready statuses are never cached because they are still
// in flux.
type ReadyDatasetRepository struct {
	cache *cache.Cache
}

func NewReadyDatasetRepository() *ReadyDatasetRepository {
	// Default expiration of 1 hour keeps the footprint bounded even with
	// many datasets; expired items are purged every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &ReadyDatasetRepository{
		cache: c,
	}
}

func (r *ReadyDatasetRepository) Save(dataset *entity.Dataset) {
	if dataset == nil || dataset.Status != constant.DatasetStatusReady {
		return
	}
	r.cache.Set(dataset.Id.String(), dataset, cache.DefaultExpiration)
}

func (r *ReadyDatasetRepository) Get(datasetID string) (*entity.Dataset, bool) {
	if x, found := r.cache.Get(datasetID); found {
		return x.(*entity.Dataset), true
	}
	return nil, false
}

func (r *ReadyDatasetRepository) Delete(datasetID string) {
	r.cache.Delete(datasetID)
}
