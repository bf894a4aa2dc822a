package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"otlobha/menuhub/internal/model"
	jwtpkg "otlobha/menuhub/pkg/jwt"
)

var (
	ErrNoClaims       = errors.New("claims not found in context")
	ErrNoTenant       = errors.New("tenant not found in context")
	ErrNoSubscription = errors.New("subscription not found in context")
)

func ClaimsFromContext(c *gin.Context) (*jwtpkg.Claims, error) {
	claimsVal, exists := c.Get(ContextKeyUserClaims)
	if !exists {
		return nil, ErrNoClaims
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}

func parseSubject(claims *jwtpkg.Claims) (uuid.UUID, error) {
	return uuid.Parse(claims.Subject)
}

func TenantFromContext(c *gin.Context) (*model.Tenant, error) {
	tenantVal, exists := c.Get(ContextKeyTenant)
	if !exists {
		return nil, ErrNoTenant
	}
	tenant, ok := tenantVal.(*model.Tenant)
	if !ok {
		return nil, ErrNoTenant
	}
	return tenant, nil
}

func SubscriptionFromContext(c *gin.Context) (*model.Subscription, error) {
	subVal, exists := c.Get(ContextKeySubscription)
	if !exists {
		return nil, ErrNoSubscription
	}
	sub, ok := subVal.(*model.Subscription)
	if !ok {
		return nil, ErrNoSubscription
	}
	return sub, nil
}
