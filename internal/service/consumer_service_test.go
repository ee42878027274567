package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/dto"
	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/repository/contract"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
	"github.com/Krussell101/data-visualizer/pkg/events"
)

type fakeSessionRepository struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.AnalysisSession
}

func newFakeSessionRepository(sessions ...*entity.AnalysisSession) *fakeSessionRepository {
	m := make(map[uuid.UUID]*entity.AnalysisSession)
	for _, s := range sessions {
		m[s.Id] = s
	}
	return &fakeSessionRepository{sessions: m}
}

func (f *fakeSessionRepository) Create(ctx context.Context, session *entity.AnalysisSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[session.Id] = session
	return nil
}

func (f *fakeSessionRepository) Update(ctx context.Context, session *entity.AnalysisSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.Id] = &copied
	return nil
}

func (f *fakeSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AnalysisSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, spec := range specs {
		if byID, ok := spec.(specification.ByID); ok {
			if s, found := f.sessions[byID.ID]; found {
				copied := *s
				return &copied, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnalysisSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*entity.AnalysisSession, 0, len(f.sessions))
	for _, s := range f.sessions {
		copied := *s
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeSessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.sessions)), nil
}

func (f *fakeSessionRepository) get(id uuid.UUID) *entity.AnalysisSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, found := f.sessions[id]; found {
		copied := *s
		return &copied
	}
	return nil
}

type fakeUow struct {
	sessions *fakeSessionRepository
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) DatasetRepository() contract.DatasetRepository { return nil }
func (f *fakeUow) AnalysisSessionRepository() contract.AnalysisSessionRepository {
	return f.sessions
}
func (f *fakeUow) QueryLogRepository() contract.QueryLogRepository { return nil }

type fakeUowFactory struct {
	uow *fakeUow
}

func (f *fakeUowFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestConsumerNamesSessionFromFirstSuccessfulPrompt(t *testing.T) {
	session := &entity.AnalysisSession{
		Id:        uuid.New(),
		DatasetId: uuid.New(),
		Title:     constant.DefaultSessionTitle,
		CreatedAt: time.Now(),
	}
	repo := newFakeSessionRepository(session)
	factory := &fakeUowFactory{uow: &fakeUow{sessions: repo}}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	consumer := NewConsumerService(pubSub, events.TypeExchangeRecorded, factory)
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(events.TypeExchangeRecorded, pubSub)
	payload, _ := json.Marshal(dto.ExchangeRecordedMessage{
		SessionId:  session.Id,
		QueryLogId: uuid.New(),
		Prompt:     "  Sum   revenue by region  ",
		Status:     constant.QueryStatusSuccess,
	})
	require.NoError(t, publisher.Publish(context.Background(), payload))

	waitFor(t, func() bool {
		return repo.get(session.Id).Title != constant.DefaultSessionTitle
	})

	updated := repo.get(session.Id)
	assert.Equal(t, "Sum revenue by region", updated.Title)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestConsumerKeepsExplicitTitle(t *testing.T) {
	session := &entity.AnalysisSession{
		Id:        uuid.New(),
		DatasetId: uuid.New(),
		Title:     "Q3 revenue deep dive",
		CreatedAt: time.Now(),
	}
	repo := newFakeSessionRepository(session)
	factory := &fakeUowFactory{uow: &fakeUow{sessions: repo}}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	consumer := NewConsumerService(pubSub, events.TypeExchangeRecorded, factory)
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(events.TypeExchangeRecorded, pubSub)
	payload, _ := json.Marshal(dto.ExchangeRecordedMessage{
		SessionId: session.Id,
		Prompt:    "something else entirely",
		Status:    constant.QueryStatusSuccess,
	})
	require.NoError(t, publisher.Publish(context.Background(), payload))

	waitFor(t, func() bool {
		return repo.get(session.Id).UpdatedAt != nil
	})
	assert.Equal(t, "Q3 revenue deep dive", repo.get(session.Id).Title)
}

func TestConsumerIgnoresErrorExchangesForNaming(t *testing.T) {
	session := &entity.AnalysisSession{
		Id:        uuid.New(),
		DatasetId: uuid.New(),
		Title:     constant.DefaultSessionTitle,
		CreatedAt: time.Now(),
	}
	repo := newFakeSessionRepository(session)
	factory := &fakeUowFactory{uow: &fakeUow{sessions: repo}}

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	consumer := NewConsumerService(pubSub, events.TypeExchangeRecorded, factory)
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService(events.TypeExchangeRecorded, pubSub)
	payload, _ := json.Marshal(dto.ExchangeRecordedMessage{
		SessionId: session.Id,
		Prompt:    "broken question",
		Status:    constant.QueryStatusError,
	})
	require.NoError(t, publisher.Publish(context.Background(), payload))

	waitFor(t, func() bool {
		return repo.get(session.Id).UpdatedAt != nil
	})
	assert.Equal(t, constant.DefaultSessionTitle, repo.get(session.Id).Title)
}

func TestDeriveTitle(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"plain", "Sum revenue by region", "Sum revenue by region"},
		{"collapses whitespace", "  what\n\nis   this ", "what is this"},
		{"empty falls back", "   ", constant.DefaultSessionTitle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveTitle(tt.prompt))
		})
	}

	t.Run("long prompts are truncated", func(t *testing.T) {
		long := ""
		for i := 0; i < 30; i++ {
			long += "revenue "
		}
		got := deriveTitle(long)
		assert.LessOrEqual(t, len([]rune(got)), sessionTitleMaxLen+1)
	})
}
