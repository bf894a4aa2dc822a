package middleware

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/internal/service"
	"otlobha/menuhub/pkg/metrics"
	"otlobha/menuhub/pkg/response"
)

type tenantIDProbe struct {
	TenantID string `json:"tenant_id"`
}

// extractTenantID checks path, query, then JSON body for a tenant id. The
// body is probed with ShouldBindBodyWith so handlers can still re-bind it.
func extractTenantID(c *gin.Context) (uuid.UUID, error) {
	raw := c.Param("tenant_id")
	if raw == "" {
		raw = c.Query("tenant_id")
	}
	if raw == "" && c.Request.Body != nil && c.Request.ContentLength > 0 {
		var probe tenantIDProbe
		if err := c.ShouldBindBodyWith(&probe, binding.JSON); err == nil {
			raw = probe.TenantID
		}
	}
	if raw == "" {
		return uuid.Nil, service.ErrMissingTenant
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, service.ErrTenantNotFound
	}
	return id, nil
}

// TenantResolver loads the tenant named by the request and attaches it to the
// context. Fails closed when no id is present or the tenant is unknown.
func TenantResolver(tenantRepo repository.TenantRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := extractTenantID(c)
		if err != nil {
			if errors.Is(err, service.ErrMissingTenant) {
				response.BadRequest(c, service.ErrMissingTenant.Error())
			} else {
				response.NotFound(c, service.ErrTenantNotFound.Error())
			}
			c.Abort()
			return
		}

		tenant, err := tenantRepo.GetByID(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.NotFound(c, service.ErrTenantNotFound.Error())
			} else {
				response.InternalError(c, "failed to resolve tenant")
			}
			c.Abort()
			return
		}

		c.Set(ContextKeyTenant, tenant)
		c.Next()
	}
}

// TenantAccess authorizes the authenticated principal against the resolved
// tenant. Runs after JWTAuth and TenantResolver; the decision is re-derived
// from storage on every request.
func TenantAccess(access service.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := PrincipalFromContext(c)
		if err != nil {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		tenant, err := TenantFromContext(c)
		if err != nil {
			response.InternalError(c, "tenant not resolved")
			c.Abort()
			return
		}

		if err := access.Evaluate(c.Request.Context(), principal, tenant); err != nil {
			if errors.Is(err, service.ErrAccessDenied) {
				response.Forbidden(c, service.ErrAccessDenied.Error())
			} else {
				response.InternalError(c, "failed to evaluate access")
			}
			c.Abort()
			return
		}
		c.Next()
	}
}

// SubscriptionGate loads the resolved tenant's subscription and denies the
// request unless it admits access right now. Allowed requests get the
// subscription attached for downstream handlers.
func SubscriptionGate(subs service.SubscriptionService, reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant, err := TenantFromContext(c)
		if err != nil {
			response.InternalError(c, "tenant not resolved")
			c.Abort()
			return
		}

		sub, err := subs.GetForTenant(c.Request.Context(), tenant.ID)
		if err != nil && !errors.Is(err, service.ErrSubscriptionNotFound) {
			response.InternalError(c, "failed to load subscription")
			c.Abort()
			return
		}

		if gateErr := service.EvaluateGate(sub, time.Now()); gateErr != nil {
			WriteGateError(c, gateErr, reg)
			c.Abort()
			return
		}

		c.Set(ContextKeySubscription, sub)
		c.Next()
	}
}

// WriteGateError maps gate denials to HTTP, preserving the machine-checkable
// expired payload.
func WriteGateError(c *gin.Context, err error, reg *metrics.Registry) {
	var expired *service.SubscriptionExpiredError
	var inactive *service.SubscriptionInactiveError
	switch {
	case errors.As(err, &expired):
		reg.GateDenials.WithLabelValues("expired").Inc()
		response.ForbiddenPayload(c, gin.H{
			"message":    "Subscription period has ended. Please renew to restore access.",
			"code":       service.SubscriptionExpiredCode,
			"expired_at": expired.ExpiredAt,
		})
	case errors.As(err, &inactive):
		reg.GateDenials.WithLabelValues("inactive").Inc()
		response.Forbidden(c, inactive.Error())
	default:
		reg.GateDenials.WithLabelValues("missing").Inc()
		response.Forbidden(c, service.ErrSubscriptionNotFound.Error())
	}
}
