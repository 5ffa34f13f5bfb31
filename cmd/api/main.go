package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/database"
	"github.com/noah-isme/gema-essay-api/internal/handler"
	"github.com/noah-isme/gema-essay-api/internal/middleware"
	"github.com/noah-isme/gema-essay-api/internal/repository"
	"github.com/noah-isme/gema-essay-api/internal/router"
	"github.com/noah-isme/gema-essay-api/internal/service"
	"github.com/noah-isme/gema-essay-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not configured, progress cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, analysis events disabled")
		} else {
			defer natsConn.Drain()
		}
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	policy := service.EssayPolicy{
		CompletionThreshold: cfg.CompletionThreshold,
		AutoSaveWordDelta:   cfg.AutoSaveWordDelta,
		AutoSaveInterval:    cfg.AutoSaveInterval,
		AnalysisFreshness:   cfg.AnalysisFreshness,
		AnalysisMinChars:    cfg.AnalysisMinChars,
		AITimeout:           cfg.AITimeout,
	}

	essayRepo := repository.NewEssayRepository(db)
	versionRepo := repository.NewEssayVersionRepository(db)
	analysisRepo := repository.NewAIAnalysisRepository(db)
	eventRepo := repository.NewCompletionEventRepository(db)
	promptRepo := repository.NewEssayPromptRepository(db)

	var generator ai.Generator
	if cfg.LiveAIEnabled() {
		openai, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  cfg.AIModel,
			Logger: logger,
		})
		if err != nil {
			log.Fatalf("failed to create ai generator: %v", err)
		}
		generator = openai
	} else {
		logger.Warn().Msg("live ai analysis disabled, serving heuristic results")
	}

	analyticsService := service.NewEssayAnalyticsService(essayRepo, promptRepo, versionRepo, analysisRepo, redisClient, cfg.AnalyticsCacheTTL, logger)
	essayService := service.NewEssayService(essayRepo, versionRepo, analysisRepo, eventRepo, promptRepo, policy, validate, analyticsService, logger)
	publisher := service.NewAnalysisEventPublisher(natsConn, cfg.NATSSubject, logger)
	analysisService := service.NewAnalysisService(essayRepo, versionRepo, promptRepo, analysisRepo, generator, publisher, policy, validate, logger)

	essayHandler := handler.NewEssayHandler(essayService, logger)
	analysisHandler := handler.NewAnalysisHandler(analysisService, middleware.RateLimit("analysis", cfg.AnalysisRateLimit, cfg.AnalysisRateLimitSpan), logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		EssayHandler:     essayHandler,
		AnalysisHandler:  analysisHandler,
		AnalyticsHandler: analyticsHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
