package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-finance-api/internal/dto"
	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
	"github.com/noah-isme/sma-finance-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, schoolID, applicantID string) (*dto.EnrollmentResult, error)
}

// EnrollmentHandler exposes the admissions enrollment endpoint.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// Enroll godoc
// @Summary Enroll an admitted applicant as a student with derived fees
// @Tags Admissions
// @Produce json
// @Param schoolId path string true "School ID"
// @Param applicantId path string true "Applicant ID"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /schools/{schoolId}/applicants/{applicantId}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	if h.enrollments == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	schoolID, err := schoolParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	applicantID := strings.TrimSpace(c.Param("applicantId"))
	if applicantID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "applicantId is required"))
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), schoolID, applicantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
