package history

import (
	"context"

	"github.com/google/uuid"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
	"github.com/Krussell101/data-visualizer/pkg/llm"
)

// Manager computes the bounded context window for a session. It is stateless
// and deterministic: the history is append-only and already persisted, so the
// window is recomputed from the log on every read instead of cached.
type Manager struct {
	uowFactory unitofwork.RepositoryFactory
	maxEntries int
}

func NewManager(uowFactory unitofwork.RepositoryFactory, maxEntries int) *Manager {
	if maxEntries <= 0 {
		maxEntries = constant.DefaultContextWindowEntries
	}
	return &Manager{
		uowFactory: uowFactory,
		maxEntries: maxEntries,
	}
}

// Window returns the most recent maxEntries SUCCESSFUL exchanges in
// chronological order (oldest first). Error exchanges carry no reliable
// answer to condition on and are excluded; a session with none yields an
// empty window, so the first query never fails on context assembly.
func (m *Manager) Window(ctx context.Context, sessionID uuid.UUID) ([]llm.Exchange, error) {
	uow := m.uowFactory.NewUnitOfWork(ctx)

	logs, err := uow.QueryLogRepository().FindAll(ctx,
		specification.ByAnalysisSessionID{AnalysisSessionID: sessionID},
		specification.ByStatus{Status: constant.QueryStatusSuccess},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: m.maxEntries, Offset: 0},
	)
	if err != nil {
		return nil, err
	}

	// Newest-first from the store; the analyzer wants oldest-first
	window := make([]llm.Exchange, 0, len(logs))
	for i := len(logs) - 1; i >= 0; i-- {
		window = append(window, llm.Exchange{
			Prompt:   logs[i].Prompt,
			Response: logs[i].ResponseText,
		})
	}

	return window, nil
}

// MaxEntries reports the configured bound.
func (m *Manager) MaxEntries() int {
	return m.maxEntries
}
