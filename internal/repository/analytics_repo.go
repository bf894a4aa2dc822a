package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"otlobha/menuhub/internal/model"
)

type AnalyticsRepository interface {
	// UpsertView creates or increments the (tenant, date) rollup in one
	// statement: views +1, unique_views seeded to 1 only on first insert,
	// item/category maps merged server-side. Safe under concurrent callers.
	UpsertView(ctx context.Context, tenantID uuid.UUID, date time.Time, itemID, categoryID *string) error
	// IncrementQrScans bumps the day's qr_scans, creating the row if needed.
	IncrementQrScans(ctx context.Context, tenantID uuid.UUID, date time.Time) error
	ListRange(ctx context.Context, tenantID uuid.UUID, start, end *time.Time, limit int) ([]model.DailyAnalytics, error)
}
