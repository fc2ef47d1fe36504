package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/Ghazanfar1991/syncrio/configs"
	"github.com/Ghazanfar1991/syncrio/internal/api"
	"github.com/Ghazanfar1991/syncrio/internal/api/handlers"
	"github.com/Ghazanfar1991/syncrio/internal/api/middleware"
	"github.com/Ghazanfar1991/syncrio/internal/cache"
	job "github.com/Ghazanfar1991/syncrio/internal/jobs"
	"github.com/Ghazanfar1991/syncrio/internal/queue"
	"github.com/Ghazanfar1991/syncrio/internal/repository"
	"github.com/Ghazanfar1991/syncrio/internal/service"
	"github.com/Ghazanfar1991/syncrio/pkg/logger"
	"github.com/Ghazanfar1991/syncrio/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.LoadConfig()

	if err := logger.Init(cfg.AppEnv); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	if envErr != nil {
		log.Warn("no .env file loaded", zap.Error(envErr))
	}

	ctx := context.Background()

	db, err := sqlx.Connect("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	defer closeDB(db)

	rdb, err := cache.NewClient(ctx, cfg)
	if err != nil {
		log.Fatal("connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	cipher, err := utils.NewTokenCipher(cfg.SecretKey)
	if err != nil {
		log.Fatal("SECRET_KEY must be 32 bytes", zap.Error(err))
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
	asynqClient := asynq.NewClient(redisConn)
	defer asynqClient.Close()

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	publicationRepo := repository.NewPublicationRepository(db)
	socialAccountRepo := repository.NewSocialAccountRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	usageRepo := repository.NewUsageRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	aiModelRepo := repository.NewAIModelRepository(db)

	httpClient := &http.Client{Timeout: 2 * time.Minute}
	registry := service.NewRegistry(
		service.NewTwitterService(cfg.Twitter, cipher, socialAccountRepo, cache.NewStateStore(rdb), httpClient),
		service.NewLinkedInService(cfg.LinkedIn, cipher, socialAccountRepo, httpClient),
		service.NewInstagramService(cfg.Instagram, cipher, socialAccountRepo, httpClient),
		service.NewYoutubeService(cfg.YouTube(), cipher, socialAccountRepo, httpClient),
		service.NewFacebookService(cfg.Facebook, cipher, socialAccountRepo, httpClient),
	)

	r2Service, err := service.NewR2Service(ctx, cfg.R2)
	if err != nil {
		log.Fatal("configure media storage", zap.Error(err))
	}

	usageService := service.NewUsageService(usageRepo, subscriptionRepo)
	authService := service.NewAuthService(cfg.Google, userRepo)
	userService := service.NewUserService(*cfg, userRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	subscriptionService := service.NewSubscriptionService(userRepo, subscriptionRepo)
	platformService := service.NewPlatformService(registry, socialAccountRepo)
	postService := service.NewPostService(db, postRepo, publicationRepo, socialAccountRepo, mediaAssetRepo,
		analyticsRepo, usageService, r2Service, queue.NewClient(asynqClient))
	analyticsService := service.NewAnalyticsService(analyticsRepo, postRepo, publicationRepo, socialAccountRepo,
		registry.MetricsFetchers(), cache.NewOverviewCache(rdb))
	adminService := service.NewAdminService(userRepo, postRepo, publicationRepo, socialAccountRepo, subscriptionRepo, aiModelRepo)

	publisher := queue.NewPublisher(postRepo, publicationRepo, socialAccountRepo, registry.Publishers(),
		usageService, cache.NewRedisLocker(rdb), cfg.PublishTimeout)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "internal server error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code, msg = fe.Code, fe.Message
			} else {
				log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": msg})
		},
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	api.Register(app, api.Handlers{
		Auth:      handlers.NewAuthHandler(*cfg, authService),
		Platform:  handlers.NewPlatformHandler(platformService, *cfg),
		Post:      handlers.NewPostHandler(postService),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
		User:      handlers.NewUserHandler(userService, usageService),
		Settings:  handlers.NewSettingsHandler(settingsService),
		ApiKeys:   handlers.NewApiKeyHandler(apiKeyService),
		Payment:   handlers.NewPaymentHandler(subscriptionService),
		Admin:     handlers.NewAdminHandler(adminService),
	}, middleware.NewAuthMiddleware(*cfg, apiKeyService, userService))

	// cron jobs
	schedulerJob := job.NewSchedulerJob(postRepo, publisher, cfg.SchedulerBatchSize)
	refreshTokenJob := job.NewTokenRefreshJob(socialAccountRepo, registry.Connectors())

	c := cron.New()
	if err := c.AddFunc("@every "+cfg.SchedulerInterval.String(), schedulerJob.Run); err != nil {
		log.Fatal("schedule publishing job", zap.Error(err))
	}
	if err := c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens); err != nil {
		log.Fatal("schedule token refresh job", zap.Error(err))
	}
	c.Start()

	// queue
	worker := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
		Logger:      log.Sugar(),
	})
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TaskTypePublishPost, publisher.HandlePublishPostTask)
	if err := worker.Start(mux); err != nil {
		log.Fatal("start asynq server", zap.Error(err))
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("start http server", zap.Error(err))
		}
	}()
	log.Info("server is running", zap.String("port", cfg.Port), zap.Strings("platforms", registry.Names()))

	gracefulShutdown(app, c, worker)
}

func closeDB(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.Error("close database", zap.Error(err))
		return
	}
	logger.Log.Info("database connection closed")
}

func gracefulShutdown(app *fiber.App, c *cron.Cron, worker *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.Log.Info("shutting down server")

	c.Stop()
	worker.Shutdown()
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Log.Error("shut down http server", zap.Error(err))
	}

	logger.Log.Info("server shutdown complete")
}
