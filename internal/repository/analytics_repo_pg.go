package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"otlobha/menuhub/internal/model"
)

type pgAnalyticsRepository struct {
	db *gorm.DB
}

func NewPGAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &pgAnalyticsRepository{db: db}
}

// jsonb expression bumping map[key] by one, treating a missing map or key as zero.
func bumpCount(column, key string) clause.Expr {
	return gorm.Expr(
		"jsonb_set(coalesce(daily_analytics."+column+", '{}'::jsonb), ARRAY[?], "+
			"to_jsonb(coalesce((daily_analytics."+column+" ->> ?)::bigint, 0) + 1))",
		key, key,
	)
}

func seedCounts(key *string) model.ViewCounts {
	counts := map[string]int64{}
	if key != nil {
		counts[*key] = 1
	}
	return datatypes.NewJSONType(counts)
}

func (r *pgAnalyticsRepository) UpsertView(ctx context.Context, tenantID uuid.UUID, date time.Time, itemID, categoryID *string) error {
	assignments := map[string]interface{}{
		"views":      gorm.Expr("daily_analytics.views + 1"),
		"updated_at": time.Now(),
	}
	if itemID != nil {
		assignments["item_views"] = bumpCount("item_views", *itemID)
	}
	if categoryID != nil {
		assignments["category_views"] = bumpCount("category_views", *categoryID)
	}

	row := model.DailyAnalytics{
		TenantID:      tenantID,
		Date:          date,
		Views:         1,
		UniqueViews:   1,
		ItemViews:     seedCounts(itemID),
		CategoryViews: seedCounts(categoryID),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error
}

func (r *pgAnalyticsRepository) IncrementQrScans(ctx context.Context, tenantID uuid.UUID, date time.Time) error {
	row := model.DailyAnalytics{
		TenantID:      tenantID,
		Date:          date,
		QrScans:       1,
		ItemViews:     seedCounts(nil),
		CategoryViews: seedCounts(nil),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"qr_scans":   gorm.Expr("daily_analytics.qr_scans + 1"),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
}

func (r *pgAnalyticsRepository) ListRange(ctx context.Context, tenantID uuid.UUID, start, end *time.Time, limit int) ([]model.DailyAnalytics, error) {
	q := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID)
	if start != nil {
		q = q.Where("date >= ?", *start)
	}
	if end != nil {
		q = q.Where("date <= ?", *end)
	}

	var rows []model.DailyAnalytics
	if err := q.Order("date DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ AnalyticsRepository = (*pgAnalyticsRepository)(nil)
