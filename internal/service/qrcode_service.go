package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/pkg/metrics"
)

// scanTimeout bounds the detached scan-recording write.
const scanTimeout = 5 * time.Second

type QrCodeService interface {
	// Issue returns the table's existing code when one exists, otherwise
	// creates one. Idempotent under concurrent first calls for the same
	// table: the conditional insert picks one winner and the loser returns
	// the winner's row.
	Issue(ctx context.Context, tenantID uuid.UUID, tableID *string) (*model.QrCode, error)
	// Resolve looks up a code for the public menu path and dispatches scan
	// recording without blocking the caller.
	Resolve(ctx context.Context, code, sourceAddress, userAgent string) (*model.QrCode, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]model.QrCode, error)
	Get(ctx context.Context, id, tenantID uuid.UUID) (*model.QrCode, error)
	// Remove deletes the code after an ownership check. The rendered image is
	// released best-effort; a storage failure never blocks the deletion.
	Remove(ctx context.Context, id, tenantID uuid.UUID) error
}

type qrCodeService struct {
	qrRepo        repository.QrCodeRepository
	analyticsRepo repository.AnalyticsRepository
	storage       ObjectStorage
	baseURL       string
	logger        *zap.Logger
	metrics       *metrics.Registry
}

func NewQrCodeService(
	qrRepo repository.QrCodeRepository,
	analyticsRepo repository.AnalyticsRepository,
	storage ObjectStorage,
	baseURL string,
	logger *zap.Logger,
	reg *metrics.Registry,
) QrCodeService {
	return &qrCodeService{
		qrRepo:        qrRepo,
		analyticsRepo: analyticsRepo,
		storage:       storage,
		baseURL:       baseURL,
		logger:        logger,
		metrics:       reg,
	}
}

func (s *qrCodeService) Issue(ctx context.Context, tenantID uuid.UUID, tableID *string) (*model.QrCode, error) {
	code := uuid.New().String()
	qr := &model.QrCode{
		TenantID:  tenantID,
		TableID:   tableID,
		Code:      code,
		PublicURL: fmt.Sprintf("%s/%s", s.baseURL, code),
	}

	if tableID == nil {
		if err := s.qrRepo.Create(ctx, qr); err != nil {
			return nil, err
		}
		return qr, nil
	}

	inserted, err := s.qrRepo.CreateIfTableFree(ctx, qr)
	if err != nil {
		return nil, err
	}
	if inserted {
		return qr, nil
	}

	// Lost the conditional insert: the table already has a code. That is
	// success by idempotence, not an error.
	existing, err := s.qrRepo.GetByTableID(ctx, *tableID)
	if err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *qrCodeService) Resolve(ctx context.Context, code, sourceAddress, userAgent string) (*model.QrCode, error) {
	qr, err := s.qrRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQrCodeNotFound
		}
		return nil, err
	}

	// Telemetry must never delay or fail the menu response; record on a
	// detached context and surface failures through logs and counters only.
	go s.recordScan(qr.ID, qr.TenantID, sourceAddress, userAgent)

	return qr, nil
}

func (s *qrCodeService) recordScan(qrCodeID, tenantID uuid.UUID, sourceAddress, userAgent string) {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	now := time.Now().UTC()
	event := &model.ScanEvent{
		QrCodeID:      qrCodeID,
		TenantID:      tenantID,
		SourceAddress: sourceAddress,
		UserAgent:     userAgent,
		ScannedAt:     now,
	}
	if err := s.qrRepo.RecordScan(ctx, event); err != nil {
		s.metrics.ScanFailures.Inc()
		s.logger.Error("failed to record qr scan",
			zap.String("qr_code_id", qrCodeID.String()),
			zap.Error(err),
		)
		return
	}
	s.metrics.ScansRecorded.Inc()

	day := now.Truncate(24 * time.Hour)
	if err := s.analyticsRepo.IncrementQrScans(ctx, tenantID, day); err != nil {
		s.logger.Error("failed to roll qr scan into daily analytics",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}

func (s *qrCodeService) List(ctx context.Context, tenantID uuid.UUID) ([]model.QrCode, error) {
	return s.qrRepo.ListByTenant(ctx, tenantID)
}

func (s *qrCodeService) Get(ctx context.Context, id, tenantID uuid.UUID) (*model.QrCode, error) {
	qr, err := s.qrRepo.GetByIDAndTenant(ctx, id, tenantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQrCodeNotFound
	}
	return qr, err
}

func (s *qrCodeService) Remove(ctx context.Context, id, tenantID uuid.UUID) error {
	qr, err := s.Get(ctx, id, tenantID)
	if err != nil {
		return err
	}

	if qr.ImageURL != "" {
		if err := s.storage.Delete(ctx, qr.ImageURL); err != nil {
			s.logger.Warn("failed to release qr image artifact",
				zap.String("qr_code_id", id.String()),
				zap.String("image_url", qr.ImageURL),
				zap.Error(err),
			)
		}
	}

	return s.qrRepo.Delete(ctx, id)
}

var _ QrCodeService = (*qrCodeService)(nil)
