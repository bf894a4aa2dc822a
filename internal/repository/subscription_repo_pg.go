package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"otlobha/menuhub/internal/model"
)

type pgSubscriptionRepository struct {
	db *gorm.DB
}

func NewPGSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &pgSubscriptionRepository{db: db}
}

func (r *pgSubscriptionRepository) GetByTenantID(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pgSubscriptionRepository) GetByBillingRef(ctx context.Context, ref string) (*model.Subscription, error) {
	var sub model.Subscription
	if err := r.db.WithContext(ctx).Where("billing_subscription_ref = ?", ref).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *pgSubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan", "status",
			"current_period_start", "current_period_end",
			"billing_customer_ref", "billing_subscription_ref",
			"cancel_at_period_end", "updated_at",
		}),
	}).Create(sub).Error
}

func (r *pgSubscriptionRepository) SetCancelAtPeriodEnd(ctx context.Context, tenantID uuid.UUID, cancel bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("tenant_id = ?", tenantID).
		UpdateColumn("cancel_at_period_end", cancel)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
