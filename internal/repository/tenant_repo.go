package repository

import (
	"context"

	"github.com/google/uuid"

	"otlobha/menuhub/internal/model"
)

type TenantRepository interface {
	// CreateWithSubscription persists the tenant and its subscription in one
	// transaction so a tenant is never observable without a subscription row.
	CreateWithSubscription(ctx context.Context, tenant *model.Tenant, sub *model.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Tenant, error)
	// DeleteCascade removes the tenant together with its subscription,
	// memberships, menu, QR codes, scan events and analytics rollups.
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type MembershipRepository interface {
	Create(ctx context.Context, m *model.Membership) error
	Get(ctx context.Context, tenantID, userID uuid.UUID) (*model.Membership, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error)
	Delete(ctx context.Context, tenantID, userID uuid.UUID) error
}
