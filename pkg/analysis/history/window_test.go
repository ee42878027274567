package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/repository/contract"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
)

// fakeQueryLogRepository answers FindAll from an in-memory slice by
// interpreting the concrete specification values the manager is known to
// pass. Unsupported specifications fail the test loudly instead of being
// silently ignored.
type fakeQueryLogRepository struct {
	logs []*entity.QueryLog
	err  error
}

func (f *fakeQueryLogRepository) Create(ctx context.Context, queryLog *entity.QueryLog) error {
	f.logs = append(f.logs, queryLog)
	return nil
}

func (f *fakeQueryLogRepository) DeleteByAnalysisSessionId(ctx context.Context, sessionId uuid.UUID) error {
	kept := f.logs[:0]
	for _, l := range f.logs {
		if l.AnalysisSessionId != sessionId {
			kept = append(kept, l)
		}
	}
	f.logs = kept
	return nil
}

func (f *fakeQueryLogRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QueryLog, error) {
	matches, err := f.FindAll(ctx, specs...)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	return matches[0], nil
}

func (f *fakeQueryLogRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryLog, error) {
	if f.err != nil {
		return nil, f.err
	}

	matches := append([]*entity.QueryLog(nil), f.logs...)
	var limit int

	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByAnalysisSessionID:
			matches = filterLogs(matches, func(l *entity.QueryLog) bool {
				return l.AnalysisSessionId == s.AnalysisSessionID
			})
		case specification.ByStatus:
			matches = filterLogs(matches, func(l *entity.QueryLog) bool {
				return l.Status == s.Status
			})
		case specification.OrderBy:
			if s.Field != "created_at" {
				return nil, fmt.Errorf("fake repository cannot order by %q", s.Field)
			}
			sort.SliceStable(matches, func(i, j int) bool {
				if s.Desc {
					return matches[i].CreatedAt.After(matches[j].CreatedAt)
				}
				return matches[i].CreatedAt.Before(matches[j].CreatedAt)
			})
		case specification.Pagination:
			limit = s.Limit
		default:
			return nil, fmt.Errorf("fake repository cannot interpret %T", spec)
		}
	}

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (f *fakeQueryLogRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	matches, err := f.FindAll(ctx, specs...)
	return int64(len(matches)), err
}

func filterLogs(logs []*entity.QueryLog, keep func(*entity.QueryLog) bool) []*entity.QueryLog {
	out := logs[:0]
	for _, l := range logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	return out
}

type fakeUnitOfWork struct {
	queryLogs *fakeQueryLogRepository
}

func (f *fakeUnitOfWork) Begin(ctx context.Context) error { return nil }
func (f *fakeUnitOfWork) Commit() error                   { return nil }
func (f *fakeUnitOfWork) Rollback() error                 { return nil }

func (f *fakeUnitOfWork) DatasetRepository() contract.DatasetRepository { return nil }
func (f *fakeUnitOfWork) AnalysisSessionRepository() contract.AnalysisSessionRepository {
	return nil
}
func (f *fakeUnitOfWork) QueryLogRepository() contract.QueryLogRepository { return f.queryLogs }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func newFakeFactory(logs ...*entity.QueryLog) (*fakeFactory, *fakeQueryLogRepository) {
	repo := &fakeQueryLogRepository{logs: logs}
	return &fakeFactory{uow: &fakeUnitOfWork{queryLogs: repo}}, repo
}

func successLog(sessionID uuid.UUID, n int, at time.Time) *entity.QueryLog {
	return &entity.QueryLog{
		Id:                uuid.New(),
		AnalysisSessionId: sessionID,
		Prompt:            fmt.Sprintf("prompt %d", n),
		ResponseText:      fmt.Sprintf("response %d", n),
		Status:            constant.QueryStatusSuccess,
		CreatedAt:         at,
	}
}

func TestWindowEmptySession(t *testing.T) {
	factory, _ := newFakeFactory()
	m := NewManager(factory, 10)

	window, err := m.Window(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, window)
}

func TestWindowKeepsLastTenChronological(t *testing.T) {
	sessionID := uuid.New()
	base := time.Now().Add(-time.Hour)

	logs := make([]*entity.QueryLog, 0, 15)
	for i := 1; i <= 15; i++ {
		logs = append(logs, successLog(sessionID, i, base.Add(time.Duration(i)*time.Minute)))
	}
	factory, _ := newFakeFactory(logs...)
	m := NewManager(factory, 10)

	window, err := m.Window(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, window, 10)

	// Entries 6..15, oldest first
	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprintf("prompt %d", i+6), window[i].Prompt)
		assert.Equal(t, fmt.Sprintf("response %d", i+6), window[i].Response)
	}
}

func TestWindowExcludesErrorExchanges(t *testing.T) {
	sessionID := uuid.New()
	base := time.Now().Add(-time.Hour)

	ok1 := successLog(sessionID, 1, base)
	failed := &entity.QueryLog{
		Id:                uuid.New(),
		AnalysisSessionId: sessionID,
		Prompt:            "broken question",
		Status:            constant.QueryStatusError,
		ErrorMessage:      "The analysis took too long and was stopped. Try a simpler question.",
		CreatedAt:         base.Add(time.Minute),
	}
	ok2 := successLog(sessionID, 2, base.Add(2*time.Minute))

	factory, _ := newFakeFactory(ok1, failed, ok2)
	m := NewManager(factory, 10)

	window, err := m.Window(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, "prompt 1", window[0].Prompt)
	assert.Equal(t, "prompt 2", window[1].Prompt)
}

func TestWindowIgnoresOtherSessions(t *testing.T) {
	sessionID := uuid.New()
	otherID := uuid.New()
	base := time.Now()

	factory, _ := newFakeFactory(
		successLog(sessionID, 1, base),
		successLog(otherID, 99, base.Add(time.Minute)),
	)
	m := NewManager(factory, 10)

	window, err := m.Window(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, "prompt 1", window[0].Prompt)
}

func TestWindowStoreFailure(t *testing.T) {
	factory, repo := newFakeFactory()
	repo.err = errors.New("connection refused")
	m := NewManager(factory, 10)

	_, err := m.Window(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestNewManagerDefaultBound(t *testing.T) {
	factory, _ := newFakeFactory()
	m := NewManager(factory, 0)
	assert.Equal(t, constant.DefaultContextWindowEntries, m.MaxEntries())
}
