package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
)

type pgTenantRepository struct {
	db *gorm.DB
}

func NewPGTenantRepository(db *gorm.DB) TenantRepository {
	return &pgTenantRepository{db: db}
}

func (r *pgTenantRepository) CreateWithSubscription(ctx context.Context, tenant *model.Tenant, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tenant).Error; err != nil {
			return err
		}
		sub.TenantID = tenant.ID
		return tx.Create(sub).Error
	})
}

func (r *pgTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *pgTenantRepository) GetBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("lower(slug) = lower(?)", slug).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *pgTenantRepository) GetByIDAndOwner(ctx context.Context, id, ownerID uuid.UUID) (*model.Tenant, error) {
	var tenant model.Tenant
	if err := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *pgTenantRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&model.ScanEvent{},
			&model.QrCode{},
			&model.DailyAnalytics{},
			&model.Membership{},
			&model.Subscription{},
		} {
			if err := tx.Where("tenant_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("tenant_id = ?", id).Delete(&model.MenuItem{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("tenant_id = ?", id).Delete(&model.MenuCategory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Tenant{}, "id = ?", id).Error
	})
}

type pgMembershipRepository struct {
	db *gorm.DB
}

func NewPGMembershipRepository(db *gorm.DB) MembershipRepository {
	return &pgMembershipRepository{db: db}
}

func (r *pgMembershipRepository) Create(ctx context.Context, m *model.Membership) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *pgMembershipRepository) Get(ctx context.Context, tenantID, userID uuid.UUID) (*model.Membership, error) {
	var m model.Membership
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *pgMembershipRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.Membership, error) {
	var memberships []model.Membership
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *pgMembershipRepository) Delete(ctx context.Context, tenantID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Delete(&model.Membership{}).Error
}
