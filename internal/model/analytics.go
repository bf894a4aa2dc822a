package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ViewCounts maps an item or category id to its accumulated view count.
type ViewCounts = datatypes.JSONType[map[string]int64]

// DailyAnalytics is one rollup row per tenant per calendar day (UTC).
type DailyAnalytics struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_analytics_tenant_date" json:"tenant_id"`
	Date          time.Time  `gorm:"type:date;not null;uniqueIndex:idx_analytics_tenant_date" json:"date"`
	Views         int64      `gorm:"not null;default:0" json:"views"`
	UniqueViews   int64      `gorm:"not null;default:0" json:"unique_views"`
	QrScans       int64      `gorm:"not null;default:0" json:"qr_scans"`
	ItemViews     ViewCounts `gorm:"type:jsonb" json:"item_views"`
	CategoryViews ViewCounts `gorm:"type:jsonb" json:"category_views"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (DailyAnalytics) TableName() string { return "daily_analytics" }
