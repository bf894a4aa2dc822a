package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"otlobha/menuhub/internal/model"
)

type pgQrCodeRepository struct {
	db *gorm.DB
}

func NewPGQrCodeRepository(db *gorm.DB) QrCodeRepository {
	return &pgQrCodeRepository{db: db}
}

func (r *pgQrCodeRepository) CreateIfTableFree(ctx context.Context, qr *model.QrCode) (bool, error) {
	// The unique index on table_id is partial (WHERE table_id IS NOT NULL),
	// so the conflict target must carry the same predicate or Postgres
	// cannot use the index as arbiter.
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:     []clause.Column{{Name: "table_id"}},
		TargetWhere: clause.Where{Exprs: []clause.Expression{gorm.Expr("table_id IS NOT NULL")}},
		DoNothing:   true,
	}).Create(qr)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *pgQrCodeRepository) Create(ctx context.Context, qr *model.QrCode) error {
	return r.db.WithContext(ctx).Create(qr).Error
}

func (r *pgQrCodeRepository) GetByTableID(ctx context.Context, tableID string) (*model.QrCode, error) {
	var qr model.QrCode
	if err := r.db.WithContext(ctx).Where("table_id = ?", tableID).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *pgQrCodeRepository) GetByCode(ctx context.Context, code string) (*model.QrCode, error) {
	var qr model.QrCode
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *pgQrCodeRepository) GetByIDAndTenant(ctx context.Context, id, tenantID uuid.UUID) (*model.QrCode, error) {
	var qr model.QrCode
	if err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&qr).Error; err != nil {
		return nil, err
	}
	return &qr, nil
}

func (r *pgQrCodeRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]model.QrCode, error) {
	var codes []model.QrCode
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *pgQrCodeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.QrCode{}, "id = ?", id).Error
}

func (r *pgQrCodeRepository) RecordScan(ctx context.Context, event *model.ScanEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.QrCode{}).
			Where("id = ?", event.QrCodeID).
			UpdateColumns(map[string]interface{}{
				"scan_count":      gorm.Expr("scan_count + 1"),
				"last_scanned_at": event.ScannedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Create(event).Error
	})
}

var _ QrCodeRepository = (*pgQrCodeRepository)(nil)
