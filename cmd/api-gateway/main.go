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
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-finance-api/api/swagger"
	"github.com/noah-isme/sma-finance-api/internal/handler"
	"github.com/noah-isme/sma-finance-api/internal/repository"
	"github.com/noah-isme/sma-finance-api/internal/service"
	"github.com/noah-isme/sma-finance-api/pkg/cache"
	"github.com/noah-isme/sma-finance-api/pkg/config"
	"github.com/noah-isme/sma-finance-api/pkg/database"
	"github.com/noah-isme/sma-finance-api/pkg/jobs"
	"github.com/noah-isme/sma-finance-api/pkg/logger"
	"github.com/noah-isme/sma-finance-api/pkg/storage"
)

// @title School Finance API
// @version 1.0.0
// @description Fee derivation, finance reporting and payroll for school administrations.
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, finance reports will not be cached", zap.Error(err))
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Finance.CacheTTL, logr, cfg.Finance.CacheEnabled && redisClient != nil)

	schools := repository.NewSchoolRepository(db)
	students := repository.NewStudentRepository(db)
	applicants := repository.NewApplicantRepository(db)
	members := repository.NewTeamMemberRepository(db)
	payslips := repository.NewPayslipRepository(db)
	payrollSettings := repository.NewPayrollSettingsRepository(db)

	reportSvc := service.NewReportService(schools, students, cacheSvc, metrics, nil, logr, service.ReportServiceConfig{CacheTTL: cfg.Finance.CacheTTL})
	enrollmentSvc := service.NewEnrollmentService(schools, applicants, students, reportSvc, metrics, logr)
	payrollSvc := service.NewPayrollService(members, payslips, payrollSettings, nil, metrics, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(reportSvc, exportStore, signer, nil, metrics, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	payrollQueue := jobs.NewQueue("payroll", payrollSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Payroll.WorkerConcurrency,
		MaxRetries: cfg.Payroll.WorkerRetries,
		RetryDelay: cfg.Payroll.RetryDelay,
		Logger:     logr,
	})
	payrollQueue.Start(ctx)
	payrollSvc.SetQueue(payrollQueue)

	go exportSvc.RunCleanup(ctx, cfg.Reports.CleanupInterval)

	router := newRouter(cfg, logr, metrics, routeHandlers{
		reports:     handler.NewReportHandler(reportSvc),
		exports:     handler.NewExportHandler(exportSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		payroll:     handler.NewPayrollHandler(payrollSvc),
		ops: handler.NewMetricsHandler(metrics, map[string]handler.Pinger{
			"database": db,
			"cache":    handler.PingFunc(cacheRepo.Ping),
		}),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logr.Info("shutdown signal received", zap.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
	stop()
	payrollQueue.Stop()
	logr.Info("server exited")
}
