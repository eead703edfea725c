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
	"go.uber.org/zap"

	_ "github.com/noah-isme/unischedule-api/api/swagger"
	"github.com/noah-isme/unischedule-api/internal/handler"
	"github.com/noah-isme/unischedule-api/internal/repository"
	"github.com/noah-isme/unischedule-api/internal/service"
	"github.com/noah-isme/unischedule-api/pkg/cache"
	"github.com/noah-isme/unischedule-api/pkg/config"
	"github.com/noah-isme/unischedule-api/pkg/database"
	"github.com/noah-isme/unischedule-api/pkg/logger"
)

// @title UniSchedule API
// @version 1.0.0
// @description Exam timetable generation and publication for university departments.
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db.DB, logr); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect to redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	examRepo := repository.NewExamRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	conflictRepo := repository.NewConflictRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	var locker *service.ScopeLock
	switch {
	case !cfg.Scheduler.ScopeLock:
	case redisClient != nil:
		locker = service.NewScopeLock(repository.NewScopeLeaseRepository(redisClient), cfg.Scheduler.LockTTL, logr)
	default:
		locker = service.NewScopeLock(nil, cfg.Scheduler.LockTTL, logr)
	}

	timetableSvc := service.NewTimetableService(
		examRepo,
		roomRepo,
		conflictRepo,
		locker,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.TimetableConfigFrom(cfg.Scheduler, cfg.Cache.TTL),
	)
	exportSvc := service.NewExportService(timetableSvc, cfg.Scheduler.DefaultDuration, logr)
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(cacheRepo.Ping)
	}

	router := newRouter(cfg, logr, routeDeps{
		auth:      handler.NewAuthHandler(authSvc),
		timetable: handler.NewTimetableHandler(timetableSvc, exportSvc),
		metrics:   handler.NewMetricsHandler(metrics, checks, logr),
		authSvc:   authSvc,
		observer:  metrics,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
