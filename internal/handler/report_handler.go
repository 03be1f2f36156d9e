package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	"github.com/noah-isme/sma-finance-api/internal/middleware"
	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
	"github.com/noah-isme/sma-finance-api/pkg/response"
)

type financeReportService interface {
	Summary(ctx context.Context, schoolID string, query dto.FinanceSummaryQuery) (*models.FinancialSummary, bool, error)
	Aging(ctx context.Context, schoolID string) (*dto.AgingReport, bool, error)
	ClassPerformance(ctx context.Context, schoolID string, query dto.ClassPerformanceQuery) (*dto.ClassPerformanceReport, bool, error)
}

// ReportHandler exposes the finance reporting endpoints.
type ReportHandler struct {
	reports financeReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports financeReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Summary godoc
// @Summary Financial summary for a time window
// @Tags Finance
// @Produce json
// @Param schoolId path string true "School ID"
// @Param start query string true "Window start (RFC3339 or YYYY-MM-DD)"
// @Param end query string true "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/finance/summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.FinanceSummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	summary, cacheHit, err := h.reports.Summary(c.Request.Context(), schoolID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, middleware.ReportMeta(c, cacheHit))
}

// Aging godoc
// @Summary Outstanding debt bucketed by days overdue
// @Tags Finance
// @Produce json
// @Param schoolId path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/finance/aging [get]
func (h *ReportHandler) Aging(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, cacheHit, err := h.reports.Aging(c.Request.Context(), schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, middleware.ReportMeta(c, cacheHit))
}

// ClassPerformance godoc
// @Summary Fees billed and outstanding per class
// @Tags Finance
// @Produce json
// @Param schoolId path string true "School ID"
// @Param session query string false "Academic session, defaults to the current one"
// @Param term query string false "Term, defaults to the current one"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/finance/class-performance [get]
func (h *ReportHandler) ClassPerformance(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	query := dto.ClassPerformanceQuery{Session: c.Query("session"), Term: c.Query("term")}
	report, cacheHit, err := h.reports.ClassPerformance(c.Request.Context(), schoolID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, middleware.ReportMeta(c, cacheHit))
}
