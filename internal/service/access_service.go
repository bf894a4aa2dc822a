package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
)

// Principal is the authenticated caller as seen by the access checks.
type Principal struct {
	UserID uuid.UUID
	Role   model.UserRole
}

// AccessService decides whether a principal may act on a tenant. Decisions
// are re-derived from storage on every call; membership changes must take
// effect on the next request, so nothing is cached here.
type AccessService interface {
	// Evaluate returns nil when access is granted, ErrAccessDenied otherwise.
	// Order: platform admin, then tenant owner, then membership row.
	Evaluate(ctx context.Context, principal Principal, tenant *model.Tenant) error
}

type accessService struct {
	membershipRepo repository.MembershipRepository
}

func NewAccessService(membershipRepo repository.MembershipRepository) AccessService {
	return &accessService{membershipRepo: membershipRepo}
}

func (s *accessService) Evaluate(ctx context.Context, principal Principal, tenant *model.Tenant) error {
	if principal.Role == model.RoleSuperAdmin {
		return nil
	}

	if tenant.OwnerID == principal.UserID {
		return nil
	}

	_, err := s.membershipRepo.Get(ctx, tenant.ID, principal.UserID)
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAccessDenied
	}
	return err
}

var _ AccessService = (*accessService)(nil)
