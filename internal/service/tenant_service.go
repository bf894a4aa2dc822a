package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
)

type CreateTenantInput struct {
	Name     string
	Slug     string
	Email    string
	Settings datatypes.JSON
}

type AddStaffInput struct {
	Phone       string
	FirstName   string
	LastName    string
	Role        model.UserRole
	Permissions datatypes.JSON
}

type TenantService interface {
	// Create provisions the tenant together with its subscription in one
	// transaction; a tenant without a subscription row never exists.
	Create(ctx context.Context, ownerID uuid.UUID, input CreateTenantInput) (*model.Tenant, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error)
	// Delete cascades to subscription, memberships, menu, QR codes, scans
	// and analytics.
	Delete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, tenantID, userID uuid.UUID, role model.UserRole, permissions datatypes.JSON) (*model.Membership, error)
	// AddStaff creates a fresh account flagged requires_password_change and
	// enrolls it; the staff member sets their own password through the
	// bootstrap login.
	AddStaff(ctx context.Context, tenantID uuid.UUID, input AddStaffInput) (*model.User, *model.Membership, error)
	RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error
	ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error)
}

type tenantService struct {
	tenantRepo     repository.TenantRepository
	membershipRepo repository.MembershipRepository
	userRepo       repository.UserRepository
	trialDays      int
	logger         *zap.Logger
	now            func() time.Time
}

func NewTenantService(
	tenantRepo repository.TenantRepository,
	membershipRepo repository.MembershipRepository,
	userRepo repository.UserRepository,
	trialDays int,
	logger *zap.Logger,
) TenantService {
	if trialDays <= 0 {
		trialDays = 14
	}
	return &tenantService{
		tenantRepo:     tenantRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		trialDays:      trialDays,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *tenantService) Create(ctx context.Context, ownerID uuid.UUID, input CreateTenantInput) (*model.Tenant, error) {
	tenant := &model.Tenant{
		OwnerID:  ownerID,
		Name:     input.Name,
		Slug:     input.Slug,
		Email:    input.Email,
		IsActive: true,
		Settings: input.Settings,
	}

	now := s.now()
	sub := &model.Subscription{
		Plan:               model.PlanBasic,
		Status:             model.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, s.trialDays),
	}

	if err := s.tenantRepo.CreateWithSubscription(ctx, tenant, sub); err != nil {
		return nil, err
	}
	tenant.Subscription = sub

	s.logger.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug),
		zap.Time("trial_ends", sub.CurrentPeriodEnd),
	)
	return tenant, nil
}

func (s *tenantService) Get(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

func (s *tenantService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.tenantRepo.DeleteCascade(ctx, id)
}

func (s *tenantService) AddMember(ctx context.Context, tenantID, userID uuid.UUID, role model.UserRole, permissions datatypes.JSON) (*model.Membership, error) {
	if _, err := s.membershipRepo.Get(ctx, tenantID, userID); err == nil {
		return nil, ErrMembershipExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if role == "" {
		role = model.RoleStaff
	}
	m := &model.Membership{
		TenantID:    tenantID,
		UserID:      userID,
		Role:        role,
		Permissions: permissions,
	}
	if err := s.membershipRepo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *tenantService) AddStaff(ctx context.Context, tenantID uuid.UUID, input AddStaffInput) (*model.User, *model.Membership, error) {
	if _, err := s.userRepo.GetByPhone(ctx, input.Phone); err == nil {
		return nil, nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, err
	}

	role := input.Role
	if role == "" {
		role = model.RoleStaff
	}
	user := &model.User{
		Phone:     input.Phone,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      role,
		IsActive:  true,
		// The account has no password yet; the bootstrap login hands the
		// staff member a setup token to choose one.
		RequiresPasswordChange: true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	m, err := s.AddMember(ctx, tenantID, user.ID, role, input.Permissions)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("staff account provisioned",
		zap.String("tenant_id", tenantID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)),
	)
	return user, m, nil
}

func (s *tenantService) RemoveMember(ctx context.Context, tenantID, userID uuid.UUID) error {
	if _, err := s.membershipRepo.Get(ctx, tenantID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMembershipNotFound
		}
		return err
	}
	return s.membershipRepo.Delete(ctx, tenantID, userID)
}

func (s *tenantService) ListMembers(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error) {
	return s.membershipRepo.ListByTenant(ctx, tenantID)
}

var _ TenantService = (*tenantService)(nil)
