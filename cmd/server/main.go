package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/teamtrack/backend/api/handler"
	"github.com/teamtrack/backend/internal/config"
	"github.com/teamtrack/backend/internal/infrastructure/journal"
	"github.com/teamtrack/backend/internal/infrastructure/monitor"
	pgInfra "github.com/teamtrack/backend/internal/infrastructure/postgres"
	redisInfra "github.com/teamtrack/backend/internal/infrastructure/redis"
	"github.com/teamtrack/backend/internal/middleware"
	"github.com/teamtrack/backend/internal/notify"
	"github.com/teamtrack/backend/internal/router"
	"github.com/teamtrack/backend/internal/services/deadline"
	"github.com/teamtrack/backend/internal/services/digest"
	"github.com/teamtrack/backend/internal/services/lifecycle"
	"github.com/teamtrack/backend/pkg/httpcontext"
	"github.com/teamtrack/backend/pkg/logger"
	"github.com/teamtrack/backend/repository/postgres"
	redisRepo "github.com/teamtrack/backend/repository/redis"
	reportUC "github.com/teamtrack/backend/usecase/report"
	taskUC "github.com/teamtrack/backend/usecase/task"
	userUC "github.com/teamtrack/backend/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	deliveryJournal, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		zapLogger.Fatal("failed to open delivery journal", zap.Error(err))
	}
	manager.Register("journal", func(ctx context.Context) error {
		return deliveryJournal.Close()
	})

	mon := monitor.New(pool, redisClient, deliveryJournal, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	taskRepo := postgres.NewTaskRepository(pool)
	subtaskRepo := postgres.NewSubtaskRepository(pool)
	historyRepo := postgres.NewHistoryRepository(pool)
	userRepo := redisRepo.NewCachedUserRepository(
		postgres.NewUserRepository(pool),
		redisClient,
		cfg.Tracker.CoordinatorTTL,
		zapLogger,
	)

	gateway := notify.NewJournaled(
		notify.NewTelegramGateway(notify.TelegramConfig{
			Token:   cfg.Telegram.Token,
			BaseURL: cfg.Telegram.BaseURL,
			Timeout: cfg.Telegram.Timeout,
		}),
		deliveryJournal,
		"telegram",
		zapLogger,
	)

	taskUseCase := taskUC.New(taskRepo, subtaskRepo, historyRepo, userRepo, zapLogger)
	userUseCase := userUC.New(userRepo, zapLogger)
	reportUseCase := reportUC.New(taskRepo, zapLogger)

	deadlineMonitor := deadline.NewMonitor(
		taskRepo,
		taskUseCase,
		userRepo,
		gateway,
		zapLogger,
		deadline.Config{
			Interval:  cfg.Tracker.DeadlineInterval,
			Lookahead: cfg.Tracker.DeadlineLookahead,
		},
	)
	deadlineMonitor.Start()
	manager.Register("deadline_monitor", func(ctx context.Context) error {
		deadlineMonitor.Stop(ctx)
		return nil
	})

	digestScheduler, err := digest.NewScheduler(
		reportUseCase,
		userRepo,
		redisRepo.NewDigestFlag(redisClient),
		gateway,
		zapLogger,
		digest.Config{
			CheckInterval: cfg.Tracker.DigestInterval,
			SendAt:        cfg.Tracker.DigestSendAt,
		},
	)
	if err != nil {
		zapLogger.Fatal("digest scheduler init failed", zap.Error(err))
	}
	digestScheduler.Start()
	manager.Register("digest_scheduler", func(ctx context.Context) error {
		digestScheduler.Stop(ctx)
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		User:   apiHandler.NewUserHandler(userUseCase, ctxAdapter, zapLogger),
		Report: apiHandler.NewReportHandler(reportUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.ActorAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
