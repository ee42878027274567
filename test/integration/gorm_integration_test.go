package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Krussell101/data-visualizer/internal/constant"
	"github.com/Krussell101/data-visualizer/internal/entity"
	"github.com/Krussell101/data-visualizer/internal/repository/specification"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
	"github.com/Krussell101/data-visualizer/pkg/database"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.DatasetRepository())
	assert.NotNil(t, uow.AnalysisSessionRepository())
	assert.NotNil(t, uow.QueryLogRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	t.Run("Check Dataset Repository", func(t *testing.T) {
		count, err := uow.DatasetRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Dataset count: %d", count)
	})

	t.Run("Check QueryLog Repository", func(t *testing.T) {
		count, err := uow.QueryLogRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("QueryLog count: %d", count)
	})

	t.Run("Exchange Round Trip", func(t *testing.T) {
		ctx := context.Background()

		ds := &entity.Dataset{
			Id:          uuid.New(),
			Name:        "integration.csv",
			Fingerprint: "fp-integration",
			Status:      constant.DatasetStatusReady,
			CreatedAt:   time.Now(),
		}
		require.NoError(t, uow.DatasetRepository().Create(ctx, ds))
		defer uow.DatasetRepository().Delete(ctx, ds.Id)

		session := &entity.AnalysisSession{
			Id:        uuid.New(),
			DatasetId: ds.Id,
			Title:     constant.DefaultSessionTitle,
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.AnalysisSessionRepository().Create(ctx, session))
		defer uow.AnalysisSessionRepository().Delete(ctx, session.Id)

		queryLog := &entity.QueryLog{
			Id:                uuid.New(),
			AnalysisSessionId: session.Id,
			Prompt:            "integration prompt",
			ResponseText:      "integration response",
			Status:            constant.QueryStatusSuccess,
			CreatedAt:         time.Now(),
		}
		require.NoError(t, uow.QueryLogRepository().Create(ctx, queryLog))
		defer uow.QueryLogRepository().DeleteByAnalysisSessionId(ctx, session.Id)

		found, err := uow.QueryLogRepository().FindAll(ctx,
			specification.ByAnalysisSessionID{AnalysisSessionID: session.Id},
			specification.ByStatus{Status: constant.QueryStatusSuccess},
		)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "integration prompt", found[0].Prompt)
	})
}
