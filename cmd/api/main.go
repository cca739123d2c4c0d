package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/shift-scheduler-api/api/swagger"
	"github.com/noah-isme/shift-scheduler-api/internal/handler"
	internalmiddleware "github.com/noah-isme/shift-scheduler-api/internal/middleware"
	"github.com/noah-isme/shift-scheduler-api/internal/models"
	"github.com/noah-isme/shift-scheduler-api/internal/notifier"
	"github.com/noah-isme/shift-scheduler-api/internal/oracle"
	"github.com/noah-isme/shift-scheduler-api/internal/repository"
	"github.com/noah-isme/shift-scheduler-api/internal/service"
	"github.com/noah-isme/shift-scheduler-api/pkg/cache"
	"github.com/noah-isme/shift-scheduler-api/pkg/config"
	"github.com/noah-isme/shift-scheduler-api/pkg/database"
	"github.com/noah-isme/shift-scheduler-api/pkg/jobs"
	"github.com/noah-isme/shift-scheduler-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/shift-scheduler-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/shift-scheduler-api/pkg/middleware/requestid"
)

// @title Shift Scheduler API
// @version 1.0.0
// @description Weekly shift schedule generation, review and commit
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	var cacheRepo service.CacheRepository
	if cfg.Scheduler.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, weekly stats cache disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.StatsCacheTTL, logr, cacheRepo != nil)

	shiftRepo := repository.NewShiftRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	fatigueRepo := repository.NewFatigueRepository(db)
	assignmentRepo := repository.NewShiftAssignmentRepository(db)

	statsSvc := service.NewWeeklyStatsService(assignmentRepo, cacheSvc, metricsSvc, logr, service.WeeklyStatsConfig{
		TTL:     cfg.Scheduler.StatsCacheTTL,
		Timeout: cfg.Scheduler.StatsTimeout,
	})

	var suggestionOracle service.SuggestionOracle
	if cfg.Oracle.Enabled {
		suggestionOracle = oracle.NewOpenAIOracle(oracle.Config{
			BaseURL:     cfg.Oracle.BaseURL,
			APIKey:      cfg.Oracle.APIKey,
			Model:       cfg.Oracle.Model,
			Temperature: cfg.Oracle.Temperature,
			MaxTokens:   cfg.Oracle.MaxTokens,
		}, logr)
	}

	scheduleNotifier, closeNotifier := startNotifications(ctx, cfg.Notify, metricsSvc, logr)
	defer closeNotifier()

	proposals := service.NewProposalStore(cfg.Scheduler.ProposalTTL)
	location := cfg.Scheduler.Location()

	generatorSvc := service.NewScheduleGeneratorService(
		shiftRepo,
		employeeRepo,
		availabilityRepo,
		preferenceRepo,
		fatigueRepo,
		assignmentRepo,
		statsSvc,
		suggestionOracle,
		proposals,
		metricsSvc,
		validate,
		logr,
		service.ScheduleGeneratorConfig{
			StrictMode:    cfg.Scheduler.StrictMode,
			OracleTimeout: cfg.Oracle.Timeout,
			MaxRangeDays:  cfg.Scheduler.MaxRangeDays,
			Location:      location,
		},
	)
	commitSvc := service.NewScheduleCommitService(
		db,
		shiftRepo,
		shiftRepo,
		employeeRepo,
		assignmentRepo,
		statsSvc,
		scheduleNotifier,
		proposals,
		metricsSvc,
		validate,
		logr,
		service.ScheduleCommitConfig{
			OvertimeShiftThreshold: cfg.Scheduler.OvertimeShiftThreshold,
			Location:               location,
		},
	)
	rosterSvc := service.NewRosterExportService(assignmentRepo, nil, nil, validate, logr, cfg.Scheduler.MaxRangeDays)
	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	registerRoutes(r, cfg, db, metricsSvc, authSvc, handler.NewScheduleGeneratorHandler(generatorSvc, commitSvc, rosterSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

func registerRoutes(r *gin.Engine, cfg *config.Config, db *sqlx.DB, metricsSvc *service.MetricsService, authSvc *service.AuthService, schedules *handler.ScheduleGeneratorHandler) {
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))
	api.GET("/metrics/summary", internalmiddleware.RequireRoles(models.RoleAdmin), metricsHandler.Summary)

	scheduling := api.Group("/schedules")
	scheduling.Use(internalmiddleware.RequireRoles(models.RoleManager, models.RoleAdmin))
	scheduling.POST("/generate", schedules.Generate)
	scheduling.GET("/exists", schedules.Exists)
	scheduling.GET("/proposals/:id", schedules.Proposal)
	scheduling.POST("/commit", schedules.Commit)
	scheduling.POST("/complete", schedules.CompletePast)
	scheduling.GET("/roster", schedules.Roster)
}

// startNotifications connects the notification pipeline when enabled. A broker
// outage disables notifications rather than blocking startup.
func startNotifications(ctx context.Context, cfg config.NotifyConfig, metricsSvc *service.MetricsService, logr *zap.Logger) (service.ScheduleNotifier, func()) {
	noop := func() {}
	if !cfg.Enabled {
		return nil, noop
	}

	conn, err := amqp.Dial(cfg.RabbitMQDSN)
	if err != nil {
		logr.Warn("rabbitmq unavailable, schedule notifications disabled", zap.Error(err))
		return nil, noop
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		logr.Warn("failed to open rabbitmq channel, schedule notifications disabled", zap.Error(err))
		return nil, noop
	}
	if _, err := notifier.DeclareQueue(ch, cfg.Queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		logr.Warn("failed to declare notification queue, schedule notifications disabled", zap.Error(err))
		return nil, noop
	}

	publisher := notifier.NewAMQPNotifier(ch, cfg.Queue, cfg.PublishTimeout, logr)
	worker := service.NewNotificationWorker(publisher, metricsSvc, logr)
	queue := jobs.NewQueue("schedule-notifications", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		GiveUp: func(job jobs.Job, err error) {
			metricsSvc.RecordNotification("dropped")
		},
		Logger: logr,
	})
	queue.Start(ctx)

	return service.NewNotificationService(queue, logr), func() {
		queue.Stop()
		_ = ch.Close()
		_ = conn.Close()
	}
}
