package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"otlobha/menuhub/internal/handler/middleware"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/response"
)

func getUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	claims, err := middleware.ClaimsFromContext(c)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(claims.Subject)
}

// writeServiceError maps service-layer errors onto the HTTP envelope.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrRefreshTokenInvalid),
		errors.Is(err, service.ErrSetupTokenRequired),
		errors.Is(err, service.ErrSetupTokenConsumed):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrUserDisabled),
		errors.Is(err, service.ErrAccessDenied),
		errors.Is(err, service.ErrSubscriptionNotFound):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrTenantNotFound),
		errors.Is(err, service.ErrQrCodeNotFound),
		errors.Is(err, service.ErrMembershipNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrMembershipExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrMissingTenant),
		errors.Is(err, service.ErrInvalidPlan),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrWebhookSignature):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, "internal server error")
	}
}
