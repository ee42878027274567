package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"github.com/Krussell101/data-visualizer/internal/config"
	"github.com/Krussell101/data-visualizer/internal/controller"
	"github.com/Krussell101/data-visualizer/internal/pkg/logger"
	"github.com/Krussell101/data-visualizer/internal/repository/memory"
	"github.com/Krussell101/data-visualizer/internal/repository/unitofwork"
	"github.com/Krussell101/data-visualizer/internal/service"
	"github.com/Krussell101/data-visualizer/pkg/analysis/executor"
	"github.com/Krussell101/data-visualizer/pkg/analysis/history"
	"github.com/Krussell101/data-visualizer/pkg/analysis/tablecache"
	dspkg "github.com/Krussell101/data-visualizer/pkg/dataset"
	"github.com/Krussell101/data-visualizer/pkg/events"
	"github.com/Krussell101/data-visualizer/pkg/llm"
	"github.com/Krussell101/data-visualizer/pkg/llm/factory"
	"github.com/Krussell101/data-visualizer/pkg/llm/registry"
)

type Container struct {
	// Controllers
	DatasetController  controller.IDatasetController
	AnalysisController controller.IAnalysisController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Shared handles exposed for shutdown and operational hooks
	Logger         logger.ILogger
	ClientRegistry *registry.Registry
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Engine components
	ingestor := dspkg.NewCSVIngestor(cfg.App.DatasetDir)
	tables := tablecache.New(cfg.Engine.TableCacheCapacity)
	readyCache := memory.NewReadyDatasetRepository()
	window := history.NewManager(uowFactory, cfg.Engine.ContextWindowEntries)

	// Analyzer construction is deferred to first use so a missing key or
	// unreachable provider does not block startup
	clientRegistry := registry.NewRegistry(func(ctx context.Context) (llm.Analyzer, error) {
		return factory.NewAnalyzer(cfg.Ai.Provider, cfg.Ai.Model, cfg.Ai.AnthropicAPIKey)
	})
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.Provider, cfg.Ai.Model)

	exec := executor.NewExecutor(
		uowFactory,
		tables,
		clientRegistry,
		window,
		ingestor,
		sysLogger,
		executor.Config{
			Timeout:    cfg.Engine.QueryTimeout,
			RetryDelay: cfg.Engine.RetryDelay,
		},
	)

	// 4. Services
	publisherService := service.NewPublisherService(events.TypeExchangeRecorded, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		events.TypeExchangeRecorded,
		uowFactory,
	)

	datasetService := service.NewDatasetService(uowFactory, ingestor, readyCache, tables, sysLogger)
	analysisService := service.NewAnalysisService(
		uowFactory,
		exec,
		readyCache,
		publisherService,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		DatasetController:  controller.NewDatasetController(datasetService),
		AnalysisController: controller.NewAnalysisController(analysisService),

		ConsumerService: consumerService,

		Logger:         sysLogger,
		ClientRegistry: clientRegistry,
	}
}
