package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	"github.com/noah-isme/sma-finance-api/internal/models"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
	"github.com/noah-isme/sma-finance-api/pkg/response"
)

type payrollService interface {
	Calculate(ctx context.Context, schoolID, memberID string, req dto.PayslipRequest) (*dto.PayslipResult, error)
	RunMonth(ctx context.Context, schoolID string, req dto.PayslipRequest) (*dto.PayrollRunResult, error)
	EnqueueRun(ctx context.Context, schoolID string, req dto.PayslipRequest) (*dto.PayrollRunAccepted, error)
	Settings(ctx context.Context, schoolID string) (*models.PayrollSettings, error)
	UpdateSettings(ctx context.Context, schoolID string, req dto.PayrollSettingsRequest) (*models.PayrollSettings, error)
}

// PayrollHandler exposes payslip generation and payroll settings.
type PayrollHandler struct {
	payroll payrollService
}

// NewPayrollHandler constructs the payroll handler.
func NewPayrollHandler(payroll payrollService) *PayrollHandler {
	return &PayrollHandler{payroll: payroll}
}

// Calculate godoc
// @Summary Generate the payslip of one team member for a month
// @Description Returns 201 when a payslip is stored and 200 with created=false when it already exists or the member has no salary.
// @Tags Payroll
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID"
// @Param memberId path string true "Team member ID"
// @Param payload body dto.PayslipRequest true "Pay period"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/payroll/members/{memberId}/payslips [post]
func (h *PayrollHandler) Calculate(c *gin.Context) {
	if h.payroll == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	memberID := strings.TrimSpace(c.Param("memberId"))
	if memberID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "memberId is required"))
		return
	}
	var req dto.PayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.payroll.Calculate(c.Request.Context(), schoolID, memberID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !result.Created {
		response.JSON(c, http.StatusOK, result)
		return
	}
	response.Created(c, result)
}

// Run godoc
// @Summary Generate payslips for every team member of a school
// @Description Queued by default and answered with 202. With mode=sync the run completes before responding.
// @Tags Payroll
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID"
// @Param mode query string false "sync to run inline"
// @Param payload body dto.PayslipRequest true "Pay period"
// @Success 202 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/payroll/runs [post]
func (h *PayrollHandler) Run(c *gin.Context) {
	if h.payroll == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PayslipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	if strings.EqualFold(c.Query("mode"), "sync") {
		result, err := h.payroll.RunMonth(c.Request.Context(), schoolID, req)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.JSON(c, http.StatusOK, result)
		return
	}
	accepted, err := h.payroll.EnqueueRun(c.Request.Context(), schoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, accepted)
}

// Settings godoc
// @Summary Get payroll settings
// @Tags Payroll
// @Produce json
// @Param schoolId path string true "School ID"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/payroll/settings [get]
func (h *PayrollHandler) Settings(c *gin.Context) {
	if h.payroll == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	settings, err := h.payroll.Settings(c.Request.Context(), schoolID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Replace pension rate and PAYE brackets
// @Tags Payroll
// @Accept json
// @Produce json
// @Param schoolId path string true "School ID"
// @Param payload body dto.PayrollSettingsRequest true "Payroll settings"
// @Success 200 {object} response.Envelope
// @Router /schools/{schoolId}/payroll/settings [put]
func (h *PayrollHandler) UpdateSettings(c *gin.Context) {
	if h.payroll == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PayrollSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	settings, err := h.payroll.UpdateSettings(c.Request.Context(), schoolID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings)
}
