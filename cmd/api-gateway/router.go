package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-finance-api/internal/handler"
	"github.com/noah-isme/sma-finance-api/internal/middleware"
	"github.com/noah-isme/sma-finance-api/internal/service"
	"github.com/noah-isme/sma-finance-api/pkg/config"
	"github.com/noah-isme/sma-finance-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-finance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-finance-api/pkg/middleware/requestid"
)

type routeHandlers struct {
	reports     *handler.ReportHandler
	exports     *handler.ExportHandler
	enrollments *handler.EnrollmentHandler
	payroll     *handler.PayrollHandler
	ops         *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metrics *service.MetricsService, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", h.ops.Health)
	r.GET("/ready", h.ops.Ready)
	r.GET("/metrics", h.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())
	api.GET("/finance/exports/:token", h.exports.Download)

	schools := api.Group("/schools/:schoolId")
	schools.POST("/applicants/:applicantId/enroll", h.enrollments.Enroll)

	finance := schools.Group("/finance")
	finance.GET("/summary", h.reports.Summary)
	finance.GET("/aging", h.reports.Aging)
	finance.GET("/class-performance", h.reports.ClassPerformance)
	finance.POST("/exports", h.exports.Create)

	payroll := schools.Group("/payroll")
	payroll.POST("/members/:memberId/payslips", h.payroll.Calculate)
	payroll.POST("/runs", h.payroll.Run)
	payroll.GET("/settings", h.payroll.Settings)
	payroll.PUT("/settings", h.payroll.UpdateSettings)

	return r
}
