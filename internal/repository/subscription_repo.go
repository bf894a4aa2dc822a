package repository

import (
	"context"

	"github.com/google/uuid"

	"otlobha/menuhub/internal/model"
)

type SubscriptionRepository interface {
	GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error)
	GetByBillingRef(ctx context.Context, billingSubscriptionRef string) (*model.Subscription, error)
	// Upsert inserts or overwrites the subscription keyed by tenant id.
	// Status and period fields are replaced, never incremented, so replaying
	// the same transition is observationally a no-op.
	Upsert(ctx context.Context, sub *model.Subscription) error
	SetCancelAtPeriodEnd(ctx context.Context, tenantID uuid.UUID, cancel bool) error
}
