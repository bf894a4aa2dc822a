package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPasswordRequired     = errors.New("password is required")
	ErrUserDisabled         = errors.New("user is disabled")
	ErrUserAlreadyExists    = errors.New("user with this phone already exists")
	ErrRefreshTokenInvalid  = errors.New("refresh token invalid or revoked")
	ErrSetupTokenRequired   = errors.New("password setup token required")
	ErrSetupTokenConsumed   = errors.New("password setup token already used")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrMissingTenant        = errors.New("tenant id is required")
	ErrTenantNotFound       = errors.New("tenant not found")
	ErrAccessDenied         = errors.New("access denied to this tenant")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrMembershipNotFound   = errors.New("membership not found")
	ErrMembershipExists     = errors.New("membership already exists")
	ErrQrCodeNotFound       = errors.New("qr code not found")
	ErrInvalidPlan          = errors.New("unknown subscription plan")
	ErrInvalidStatus        = errors.New("unknown subscription status")
	ErrWebhookSignature     = errors.New("webhook signature invalid or missing")
)

// SubscriptionExpiredCode is the stable machine-checkable error code carried
// by SubscriptionExpiredError responses.
const SubscriptionExpiredCode = "SUBSCRIPTION_EXPIRED"

// SubscriptionExpiredError marks a subscription whose status is still ACTIVE
// but whose paid period has lapsed. Kept distinct from the inactive case so
// clients can render a renewal prompt instead of a generic block.
type SubscriptionExpiredError struct {
	ExpiredAt time.Time
}

func (e *SubscriptionExpiredError) Error() string {
	return fmt.Sprintf("subscription expired at %s", e.ExpiredAt.Format(time.RFC3339))
}

// SubscriptionInactiveError carries the current non-ACTIVE status.
type SubscriptionInactiveError struct {
	Status string
}

func (e *SubscriptionInactiveError) Error() string {
	return fmt.Sprintf("subscription is not active (status %s)", e.Status)
}
