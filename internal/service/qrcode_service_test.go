package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"otlobha/menuhub/pkg/metrics"
)

type failingStorage struct {
	calls int
}

func (s *failingStorage) Delete(context.Context, string) error {
	s.calls++
	return errors.New("object store unavailable")
}

func newTestQrCodeService(qrRepo *fakeQrCodeRepo, analyticsRepo *fakeAnalyticsRepo, storage ObjectStorage) QrCodeService {
	if storage == nil {
		storage = NewNoopStorage()
	}
	return NewQrCodeService(qrRepo, analyticsRepo, storage, "https://menu.example.com/m", zap.NewNop(), metrics.New())
}

func TestQrCodeService_Issue(t *testing.T) {
	tenantID := uuid.New()

	t.Run("repeated issue for the same table returns the same code", func(t *testing.T) {
		repo := newFakeQrCodeRepo()
		svc := newTestQrCodeService(repo, newFakeAnalyticsRepo(), nil)
		tableID := "table-7"

		first, err := svc.Issue(context.Background(), tenantID, &tableID)
		require.NoError(t, err)
		require.NotEmpty(t, first.Code)
		assert.Equal(t, "https://menu.example.com/m/"+first.Code, first.PublicURL)

		second, err := svc.Issue(context.Background(), tenantID, &tableID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Code, second.Code)
		assert.Len(t, repo.codes, 1)
	})

	t.Run("concurrent first issue picks one winner", func(t *testing.T) {
		repo := newFakeQrCodeRepo()
		svc := newTestQrCodeService(repo, newFakeAnalyticsRepo(), nil)
		tableID := "table-9"

		const callers = 16
		results := make([]*uuid.UUID, callers)
		var wg sync.WaitGroup
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				qr, err := svc.Issue(context.Background(), tenantID, &tableID)
				if err == nil {
					results[i] = &qr.ID
				}
			}(i)
		}
		wg.Wait()

		require.Len(t, repo.codes, 1, "exactly one row for the table")
		for i, id := range results {
			require.NotNil(t, id, "caller %d", i)
			assert.Equal(t, *results[0], *id, "caller %d got a different code", i)
		}
	})

	t.Run("codes without a table are always fresh", func(t *testing.T) {
		repo := newFakeQrCodeRepo()
		svc := newTestQrCodeService(repo, newFakeAnalyticsRepo(), nil)

		first, err := svc.Issue(context.Background(), tenantID, nil)
		require.NoError(t, err)
		second, err := svc.Issue(context.Background(), tenantID, nil)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
		assert.Len(t, repo.codes, 2)
	})
}

func TestQrCodeService_Resolve(t *testing.T) {
	tenantID := uuid.New()

	t.Run("unknown code", func(t *testing.T) {
		svc := newTestQrCodeService(newFakeQrCodeRepo(), newFakeAnalyticsRepo(), nil)
		_, err := svc.Resolve(context.Background(), "nope", "203.0.113.9", "ua")
		assert.ErrorIs(t, err, ErrQrCodeNotFound)
	})

	t.Run("scan recording keeps counter and events in step", func(t *testing.T) {
		repo := newFakeQrCodeRepo()
		analyticsRepo := newFakeAnalyticsRepo()
		svc := newTestQrCodeService(repo, analyticsRepo, nil)

		qr, err := svc.Issue(context.Background(), tenantID, nil)
		require.NoError(t, err)

		const scans = 10
		for i := 0; i < scans; i++ {
			resolved, err := svc.Resolve(context.Background(), qr.Code, "203.0.113.9", "scanner/1.0")
			require.NoError(t, err)
			assert.Equal(t, qr.ID, resolved.ID)
		}

		// Recording is detached from the request path; wait for it to land.
		require.Eventually(t, func() bool {
			snap, events := repo.snapshot(qr.ID)
			return snap.ScanCount == scans && events == scans
		}, 2*time.Second, 10*time.Millisecond)

		snap, _ := repo.snapshot(qr.ID)
		require.NotNil(t, snap.LastScannedAt)

		// The scans also land in the day's analytics rollup.
		require.Eventually(t, func() bool {
			rows, err := analyticsRepo.ListRange(context.Background(), tenantID, nil, nil, summaryWindow)
			if err != nil || len(rows) != 1 {
				return false
			}
			return rows[0].QrScans == scans
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestQrCodeService_Get(t *testing.T) {
	repo := newFakeQrCodeRepo()
	svc := newTestQrCodeService(repo, newFakeAnalyticsRepo(), nil)
	tenantID := uuid.New()

	qr, err := svc.Issue(context.Background(), tenantID, nil)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), qr.ID, tenantID)
	require.NoError(t, err)
	assert.Equal(t, qr.ID, got.ID)

	_, err = svc.Get(context.Background(), qr.ID, uuid.New())
	assert.ErrorIs(t, err, ErrQrCodeNotFound, "other tenants cannot read the code")
}

func TestQrCodeService_Remove(t *testing.T) {
	tenantID := uuid.New()

	t.Run("storage failure never blocks the deletion", func(t *testing.T) {
		repo := newFakeQrCodeRepo()
		storage := &failingStorage{}
		svc := newTestQrCodeService(repo, newFakeAnalyticsRepo(), storage)

		qr, err := svc.Issue(context.Background(), tenantID, nil)
		require.NoError(t, err)

		repo.mu.Lock()
		withImage := repo.codes[qr.ID]
		withImage.ImageURL = "https://cdn.example.com/qr/" + qr.Code + ".png"
		repo.codes[qr.ID] = withImage
		repo.mu.Unlock()

		require.NoError(t, svc.Remove(context.Background(), qr.ID, tenantID))
		assert.Equal(t, 1, storage.calls)
		assert.Empty(t, repo.codes)
	})

	t.Run("ownership checked before deleting", func(t *testing.T) {
		repo := newFakeQrCodeRepo()
		svc := newTestQrCodeService(repo, newFakeAnalyticsRepo(), nil)

		qr, err := svc.Issue(context.Background(), tenantID, nil)
		require.NoError(t, err)

		err = svc.Remove(context.Background(), qr.ID, uuid.New())
		assert.ErrorIs(t, err, ErrQrCodeNotFound)
		assert.Len(t, repo.codes, 1)
	})
}
