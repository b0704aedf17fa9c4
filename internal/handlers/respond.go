package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/report-tracker-api/internal/constants"
	apierrors "github.com/yukikurage/report-tracker-api/internal/errors"
	"github.com/yukikurage/report-tracker-api/internal/services"
	"go.uber.org/zap"
)

// respondServiceError maps service sentinels onto API errors. Anything it does
// not recognise is logged and reported as a generic 500.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUnauthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c)
	case errors.Is(err, services.ErrForbidden):
		apierrors.Forbidden(c, "")
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, "")
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.AlreadyExists(c, "Email already registered")
	case errors.Is(err, services.ErrConflict):
		apierrors.Conflict(c, "The resource was modified concurrently, reload and retry")
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.InvalidTransition(c, err.Error())
	case errors.Is(err, services.ErrAIUnavailable):
		apierrors.ServiceUnavailable(c, "Issue suggestions are not configured")
	default:
		_ = c.Error(err)
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		apierrors.InternalError(c, "")
	}
}

func bindError(c *gin.Context, err error) {
	apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
}

func uploadTooLarge() string {
	return fmt.Sprintf("File exceeds the %d MB limit", constants.MaxUploadSize>>20)
}
