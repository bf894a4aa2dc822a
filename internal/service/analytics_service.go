package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/pkg/metrics"
)

// summaryWindow caps the rows returned by Summarize.
const summaryWindow = 30

// topItemsLimit caps the popular-item ranking.
const topItemsLimit = 10

type ItemRanking struct {
	ItemID string `json:"item_id"`
	Views  int64  `json:"views"`
}

type AnalyticsTotals struct {
	Views       int64 `json:"views"`
	UniqueViews int64 `json:"unique_views"`
	QrScans     int64 `json:"qr_scans"`
}

type AnalyticsSummary struct {
	Totals       AnalyticsTotals        `json:"totals"`
	Daily        []model.DailyAnalytics `json:"daily"`
	PopularItems []ItemRanking          `json:"popular_items"`
}

type AnalyticsService interface {
	// RecordView rolls one menu view into today's (UTC) rollup. A single
	// atomic upsert at the storage layer keeps concurrent callers from
	// creating duplicate rows or losing increments.
	RecordView(ctx context.Context, tenantID uuid.UUID, itemID, categoryID *string) error
	// RecordViewDetached is RecordView dispatched off the request path;
	// failures are logged and counted, never returned.
	RecordViewDetached(tenantID uuid.UUID, itemID, categoryID *string)
	Summarize(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) (*AnalyticsSummary, error)
}

type analyticsService struct {
	analyticsRepo repository.AnalyticsRepository
	logger        *zap.Logger
	metrics       *metrics.Registry
	now           func() time.Time
}

func NewAnalyticsService(analyticsRepo repository.AnalyticsRepository, logger *zap.Logger, reg *metrics.Registry) AnalyticsService {
	return &analyticsService{
		analyticsRepo: analyticsRepo,
		logger:        logger,
		metrics:       reg,
		now:           time.Now,
	}
}

func (s *analyticsService) RecordView(ctx context.Context, tenantID uuid.UUID, itemID, categoryID *string) error {
	day := s.now().UTC().Truncate(24 * time.Hour)
	if err := s.analyticsRepo.UpsertView(ctx, tenantID, day, itemID, categoryID); err != nil {
		return err
	}
	s.metrics.MenuViews.Inc()
	return nil
}

func (s *analyticsService) RecordViewDetached(tenantID uuid.UUID, itemID, categoryID *string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		if err := s.RecordView(ctx, tenantID, itemID, categoryID); err != nil {
			s.metrics.ViewFailures.Inc()
			s.logger.Error("failed to record menu view",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
		}
	}()
}

func (s *analyticsService) Summarize(ctx context.Context, tenantID uuid.UUID, start, end *time.Time) (*AnalyticsSummary, error) {
	rows, err := s.analyticsRepo.ListRange(ctx, tenantID, start, end, summaryWindow)
	if err != nil {
		return nil, err
	}

	summary := &AnalyticsSummary{Daily: rows}
	itemTotals := make(map[string]int64)
	for _, row := range rows {
		summary.Totals.Views += row.Views
		summary.Totals.UniqueViews += row.UniqueViews
		summary.Totals.QrScans += row.QrScans
		for itemID, views := range row.ItemViews.Data() {
			itemTotals[itemID] += views
		}
	}

	rankings := make([]ItemRanking, 0, len(itemTotals))
	for itemID, views := range itemTotals {
		rankings = append(rankings, ItemRanking{ItemID: itemID, Views: views})
	}
	// Views descending; item id ascending keeps ties deterministic.
	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Views != rankings[j].Views {
			return rankings[i].Views > rankings[j].Views
		}
		return rankings[i].ItemID < rankings[j].ItemID
	})
	if len(rankings) > topItemsLimit {
		rankings = rankings[:topItemsLimit]
	}
	summary.PopularItems = rankings

	return summary, nil
}

var _ AnalyticsService = (*analyticsService)(nil)
