package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sma-finance-api/pkg/errors"
)

// schoolParam returns the trimmed school id path parameter.
func schoolParam(c *gin.Context) (string, error) {
	schoolID := strings.TrimSpace(c.Param("schoolId"))
	if schoolID == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, "schoolId is required")
	}
	return schoolID, nil
}
