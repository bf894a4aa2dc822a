package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
)

type MenuRepository interface {
	// ListActiveByTenant returns active categories with their available items,
	// both in sort order.
	ListActiveByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.MenuCategory, error)
}

type pgMenuRepository struct {
	db *gorm.DB
}

func NewPGMenuRepository(db *gorm.DB) MenuRepository {
	return &pgMenuRepository{db: db}
}

func (r *pgMenuRepository) ListActiveByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.MenuCategory, error) {
	var categories []model.MenuCategory
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_active = true", tenantID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_available = true").Order("sort_order ASC")
		}).
		Order("sort_order ASC").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}
