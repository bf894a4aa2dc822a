package repository

import (
	"context"

	"github.com/google/uuid"

	"otlobha/menuhub/internal/model"
)

type QrCodeRepository interface {
	// CreateIfTableFree inserts the code unless its table already has one.
	// Returns (true, nil) when the insert won; (false, nil) when another code
	// already holds the table and the caller should re-read the winner.
	CreateIfTableFree(ctx context.Context, qr *model.QrCode) (bool, error)
	Create(ctx context.Context, qr *model.QrCode) error
	GetByTableID(ctx context.Context, tableID string) (*model.QrCode, error)
	GetByCode(ctx context.Context, code string) (*model.QrCode, error)
	GetByIDAndTenant(ctx context.Context, id, tenantID uuid.UUID) (*model.QrCode, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.QrCode, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// RecordScan bumps scan_count/last_scanned_at and appends the event in a
	// single transaction so the counter always equals the event count.
	RecordScan(ctx context.Context, event *model.ScanEvent) error
}
