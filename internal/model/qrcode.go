package model

import (
	"time"

	"github.com/google/uuid"
)

type QrCode struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	TableID       *string    `gorm:"type:varchar(128)" json:"table_id,omitempty"`
	Code          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`
	PublicURL     string     `gorm:"type:varchar(512);not null" json:"public_url"`
	ImageURL      string     `gorm:"type:varchar(512)" json:"image_url,omitempty"`
	ScanCount     int64      `gorm:"not null;default:0" json:"scan_count"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (QrCode) TableName() string { return "qr_codes" }

// ScanEvent is append-only; one row per public resolution of a QR code.
type ScanEvent struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	QrCodeID      uuid.UUID `gorm:"type:uuid;not null;index" json:"qr_code_id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SourceAddress string    `gorm:"type:varchar(64)" json:"source_address,omitempty"`
	UserAgent     string    `gorm:"type:varchar(512)" json:"user_agent,omitempty"`
	ScannedAt     time.Time `gorm:"not null;index" json:"scanned_at"`
}

func (ScanEvent) TableName() string { return "scan_events" }
