package handler

import (
	"errors"
	"net/http"

	"emergency-response-backend/internal/apperrors"
	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP. Validation and
// conflict are caller-recoverable; everything else surfaces as a generic
// failure with a retry affordance.
func respondError(c *gin.Context, err error) {
	if ce, ok := apperrors.AsConflict(err); ok {
		utils.ConflictResponse(c, ce.Error(), ce.CurrentHolder)
		return
	}
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, "Not found")
	case apperrors.IsValidation(err):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrUpstreamUnavailable):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Service temporarily unavailable, please retry")
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
