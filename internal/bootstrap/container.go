package bootstrap

import (
	"context"
	"log"

	"ai-eventplanner-be/internal/config"
	"ai-eventplanner-be/internal/controller"
	"ai-eventplanner-be/internal/pkg/logger"
	"ai-eventplanner-be/internal/repository/unitofwork"
	"ai-eventplanner-be/internal/service"
	"ai-eventplanner-be/pkg/collector"
	"ai-eventplanner-be/pkg/embedding"
	"ai-eventplanner-be/pkg/geocode"
	"ai-eventplanner-be/pkg/keypool"
	"ai-eventplanner-be/pkg/llm/factory"
	"ai-eventplanner-be/pkg/pipeline"
	"ai-eventplanner-be/pkg/places"
	"ai-eventplanner-be/pkg/planner"
	"ai-eventplanner-be/pkg/ranker"

	pktNats "ai-eventplanner-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PlanController controller.IPlanController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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

	// 3. External Adapters
	embeddingProvider := embedding.NewGeminiProvider(cfg.Ai.EmbeddingModel)
	log.Printf("[INFO] Using Embedding Provider: GEMINI (%s, %d dims)", cfg.Ai.EmbeddingModel, cfg.Ai.EmbeddingDimension)

	llmProvider, err := factory.NewLLMProvider("gemini", cfg.Keys.GoogleGemini, cfg.Ai.LLMModel, "")
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: gemini (%s)", cfg.Ai.LLMModel)

	geocoder := geocode.NewGeoapifyResolver(cfg.Keys.Geoapify)
	placesClient := places.NewClient(cfg.Keys.GoogleMaps)

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	var queryCache pipeline.QueryVectorCache
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, query embedding cache disabled: %v", err)
	} else {
		queryCache = service.NewRedisQueryCache(rdb, sysLogger)
	}

	// 4. Pipeline
	embeddingStore := unitofwork.NewUnitOfWork(db).PlaceEmbeddingRepository()

	// One process-wide pool: request and background generations share the
	// same per-credential RPM windows.
	sharedKeys := keypool.New(cfg.Keys.GoogleGemini, cfg.Keys.ExtraGemini, cfg.Ai.EmbeddingRPM)

	categoryPlanner := planner.NewPlanner(llmProvider, sysLogger)
	candidateCollector := collector.NewCollector(geocoder, placesClient, sysLogger, cfg.Ai.SearchWorkers, cfg.Ai.DetailWorkers)
	similarityRanker := ranker.NewRanker(embeddingStore, sysLogger)

	matcher := pipeline.New(
		categoryPlanner,
		candidateCollector,
		similarityRanker,
		embeddingProvider,
		embeddingStore,
		queryCache,
		sysLogger,
		pipeline.Config{
			Keys:         sharedKeys,
			Dimension:    cfg.Ai.EmbeddingDimension,
			EmbedWorkers: cfg.Ai.EmbedWorkers,
		},
	)

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Keys.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.EmbedTopic,
		uowFactory,
		embeddingProvider,
		sharedKeys,
		cfg.Ai.EmbeddingDimension,
	)

	eventPlanService := service.NewEventPlanService(
		matcher,
		uowFactory,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		PlanController:  controller.NewPlanController(eventPlanService),
		ConsumerService: consumerService,
	}
}
