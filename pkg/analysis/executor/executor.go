package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/pkg/logger"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
	"github.com/Krussell101/data-visualizer/pkg/analysis/history"
	"github.com/Krussell101/data-visualizer/pkg/analysis/tablecache"
	"github.com/Krussell101/data-visualizer/pkg/dataset"
	"github.com/Krussell101/data-visualizer/pkg/llm"
	"github.com/Krussell101/data-visualizer/pkg/llm/registry"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

const (
	// DefaultTimeout bounds one whole query execution. It must stay inside
	// the transport timeout above it and outside the LLM HTTP client
	// timeout below it.
	DefaultTimeout = 60 * time.Second

	// DefaultRetryDelay is the backoff before the single retry of a
	// transient upstream failure.
	DefaultRetryDelay = 2 * time.Second

	maxAttempts = 2 // one initial call plus at most one retry
)

// Executor runs one query end to end: dataset gate, cached table, bounded
// context, analyzer invocation, classification, persisted exchange. It holds
// no shared mutable state of its own: concurrent queries proceed
// independently once they hold their table and client handles, and no lock is
// held across the analyzer call.
//
// Every query terminates in a persisted QueryLog. Execute returns an error
// only when even the error record could not be written.
type Executor struct {
	uowFactory unitofwork.RepositoryFactory
	tables     *tablecache.Cache
	clients    *registry.Registry
	window     *history.Manager
	loader     dataset.Loader
	log        logger.ILogger

	timeout    time.Duration
	retryDelay time.Duration
}

type Config struct {
	Timeout    time.Duration
	RetryDelay time.Duration
}

func NewExecutor(
	uowFactory unitofwork.RepositoryFactory,
	tables *tablecache.Cache,
	clients *registry.Registry,
	window *history.Manager,
	loader dataset.Loader,
	log logger.ILogger,
	cfg Config,
) *Executor {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	return &Executor{
		uowFactory: uowFactory,
		tables:     tables,
		clients:    clients,
		window:     window,
		loader:     loader,
		log:        log,
		timeout:    cfg.Timeout,
		retryDelay: cfg.RetryDelay,
	}
}

// Execute runs the query against the session's dataset and appends the
// resulting exchange to the session log.
func (e *Executor) Execute(ctx context.Context, session *entity.AnalysisSession, ds *entity.Dataset, prompt string) (*entity.QueryLog, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// 1. Dataset gate: no external call is ever made for a dataset that
	// has not finished ingestion
	if ds.Status != constant.DatasetStatusReady {
		e.log.Warn("executor", "Dataset not ready, rejecting query", map[string]interface{}{
			"dataset_id": ds.Id.String(),
			"status":     ds.Status,
		})
		return e.recordError(ctx, session.Id, prompt, llm.CategoryDataUnavailable)
	}

	// 2. Resolve the decoded table through the bounded cache
	tbl, err := e.tables.GetOrLoad(ctx, ds.Id.String(), ds.Fingerprint, e.loader)
	if err != nil {
		e.log.Error("executor", "Table load failed", map[string]interface{}{
			"dataset_id": ds.Id.String(),
			"error":      err.Error(),
		})
		return e.recordError(ctx, session.Id, prompt, llm.CategoryDataUnavailable)
	}

	// 3. Shared client handle; a failed construction leaves the registry
	// retryable for the next query
	client, err := e.clients.Client(ctx)
	if err != nil {
		e.log.Error("executor", "Analyzer construction failed", map[string]interface{}{
			"error": err.Error(),
		})
		return e.recordError(ctx, session.Id, prompt, llm.CategoryUpstreamUnavailable)
	}

	// 4. Bounded context window from the append-only log
	window, err := e.window.Window(ctx, session.Id)
	if err != nil {
		e.log.Error("executor", "Context window read failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      err.Error(),
		})
		// The history store is part of the data this query depends on
		return e.recordError(ctx, session.Id, prompt, llm.CategoryDataUnavailable)
	}

	// 5. Invoke the collaborator. Table and client handles are already
	// held; no lock spans this 5-30s call.
	result, err := e.invokeWithRetry(ctx, client, tbl, window, prompt)
	if err != nil {
		category := llm.Classify(err)
		e.log.Error("executor", "Analyzer invocation failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"category":   string(category),
			"error":      err.Error(), // full detail stays server-side
		})
		return e.recordError(ctx, session.Id, prompt, category)
	}

	return e.recordSuccess(ctx, session.Id, prompt, result)
}

// invokeWithRetry calls the analyzer, retrying transient upstream failures
// exactly once after a backoff delay. The bound keeps end-to-end latency
// predictable and the per-query cost capped at two upstream calls.
func (e *Executor) invokeWithRetry(ctx context.Context, client llm.Analyzer, tbl *table.Table, window []llm.Exchange, prompt string) (*llm.Result, error) {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := client.Analyze(ctx, tbl, window, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		category := llm.Classify(err)
		if !category.Retryable() || attempt == maxAttempts {
			return nil, err
		}

		e.log.Warn("executor", "Transient analyzer failure, retrying once", map[string]interface{}{
			"category": string(category),
			"error":    err.Error(),
		})

		select {
		case <-time.After(e.retryDelay):
		case <-ctx.Done():
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// recordSuccess appends the terminal success exchange.
func (e *Executor) recordSuccess(ctx context.Context, sessionID uuid.UUID, prompt string, result *llm.Result) (*entity.QueryLog, error) {
	queryLog := &entity.QueryLog{
		Id:                uuid.New(),
		AnalysisSessionId: sessionID,
		Prompt:            prompt,
		ResponseText:      result.Text,
		ResponsePlotJson:  result.Plot,
		Status:            constant.QueryStatusSuccess,
		CreatedAt:         time.Now(),
	}
	return queryLog, e.append(ctx, queryLog)
}

// recordError appends the terminal error exchange. The stored message is
// derived from the category, never from raw upstream error text.
func (e *Executor) recordError(ctx context.Context, sessionID uuid.UUID, prompt string, category llm.Category) (*entity.QueryLog, error) {
	queryLog := &entity.QueryLog{
		Id:                uuid.New(),
		AnalysisSessionId: sessionID,
		Prompt:            prompt,
		Status:            constant.QueryStatusError,
		ErrorMessage:      category.UserMessage(),
		CreatedAt:         time.Now(),
	}
	return queryLog, e.append(ctx, queryLog)
}

func (e *Executor) append(ctx context.Context, queryLog *entity.QueryLog) error {
	// Persist with a fresh context: a query that timed out must still
	// reach its terminal persisted state
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	uow := e.uowFactory.NewUnitOfWork(ctx)
	if err := uow.QueryLogRepository().Create(ctx, queryLog); err != nil {
		e.log.Error("executor", "Failed to persist exchange", map[string]interface{}{
			"session_id": queryLog.AnalysisSessionId.String(),
			"error":      err.Error(),
		})
		return err
	}
	return nil
}
