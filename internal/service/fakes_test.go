package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
)

// In-memory repository fakes. They reproduce the storage-layer contracts the
// pg implementations provide, including the atomic conditional insert and the
// upsert-with-increment, so the concurrency properties can be exercised
// without a database.

type fakeSubscriptionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]model.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uuid.UUID]model.Subscription)}
}

func (r *fakeSubscriptionRepo) GetByTenantID(_ context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[tenantID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := sub
	return &out, nil
}

func (r *fakeSubscriptionRepo) GetByBillingRef(_ context.Context, ref string) (*model.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.BillingSubscriptionRef == ref {
			out := sub
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSubscriptionRepo) Upsert(_ context.Context, sub *model.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subs[sub.TenantID]; ok {
		sub.ID = existing.ID
	} else if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	r.subs[sub.TenantID] = *sub
	return nil
}

func (r *fakeSubscriptionRepo) SetCancelAtPeriodEnd(_ context.Context, tenantID uuid.UUID, cancel bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[tenantID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sub.CancelAtPeriodEnd = cancel
	r.subs[tenantID] = sub
	return nil
}

type fakeMembershipRepo struct {
	mu      sync.Mutex
	members map[string]model.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{members: make(map[string]model.Membership)}
}

func membershipKey(tenantID, userID uuid.UUID) string {
	return tenantID.String() + "/" + userID.String()
}

func (r *fakeMembershipRepo) Create(_ context.Context, m *model.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.members[membershipKey(m.TenantID, m.UserID)] = *m
	return nil
}

func (r *fakeMembershipRepo) Get(_ context.Context, tenantID, userID uuid.UUID) (*model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[membershipKey(tenantID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := m
	return &out, nil
}

func (r *fakeMembershipRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]model.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Membership
	for key, m := range r.members {
		if strings.HasPrefix(key, tenantID.String()+"/") {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMembershipRepo) Delete(_ context.Context, tenantID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, membershipKey(tenantID, userID))
	return nil
}

type fakeQrCodeRepo struct {
	mu     sync.Mutex
	codes  map[uuid.UUID]model.QrCode
	events []model.ScanEvent
}

func newFakeQrCodeRepo() *fakeQrCodeRepo {
	return &fakeQrCodeRepo{codes: make(map[uuid.UUID]model.QrCode)}
}

func (r *fakeQrCodeRepo) CreateIfTableFree(_ context.Context, qr *model.QrCode) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.codes {
		if existing.TableID != nil && qr.TableID != nil && *existing.TableID == *qr.TableID {
			return false, nil
		}
	}
	qr.ID = uuid.New()
	r.codes[qr.ID] = *qr
	return true, nil
}

func (r *fakeQrCodeRepo) Create(_ context.Context, qr *model.QrCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	qr.ID = uuid.New()
	r.codes[qr.ID] = *qr
	return nil
}

func (r *fakeQrCodeRepo) GetByTableID(_ context.Context, tableID string) (*model.QrCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qr := range r.codes {
		if qr.TableID != nil && *qr.TableID == tableID {
			out := qr
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQrCodeRepo) GetByCode(_ context.Context, code string) (*model.QrCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, qr := range r.codes {
		if qr.Code == code {
			out := qr
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQrCodeRepo) GetByIDAndTenant(_ context.Context, id, tenantID uuid.UUID) (*model.QrCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	qr, ok := r.codes[id]
	if !ok || qr.TenantID != tenantID {
		return nil, gorm.ErrRecordNotFound
	}
	out := qr
	return &out, nil
}

func (r *fakeQrCodeRepo) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]model.QrCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.QrCode
	for _, qr := range r.codes {
		if qr.TenantID == tenantID {
			out = append(out, qr)
		}
	}
	return out, nil
}

func (r *fakeQrCodeRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.codes, id)
	return nil
}

func (r *fakeQrCodeRepo) RecordScan(_ context.Context, event *model.ScanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	qr, ok := r.codes[event.QrCodeID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	qr.ScanCount++
	scannedAt := event.ScannedAt
	qr.LastScannedAt = &scannedAt
	r.codes[event.QrCodeID] = qr
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeQrCodeRepo) snapshot(id uuid.UUID) (model.QrCode, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.events {
		if e.QrCodeID == id {
			count++
		}
	}
	return r.codes[id], count
}

type fakeAnalyticsRepo struct {
	mu   sync.Mutex
	rows map[string]model.DailyAnalytics
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{rows: make(map[string]model.DailyAnalytics)}
}

func analyticsKey(tenantID uuid.UUID, date time.Time) string {
	return tenantID.String() + "/" + date.Format("2006-01-02")
}

func bumpMap(counts model.ViewCounts, key *string) model.ViewCounts {
	merged := make(map[string]int64)
	for k, v := range counts.Data() {
		merged[k] = v
	}
	if key != nil {
		merged[*key]++
	}
	return datatypes.NewJSONType(merged)
}

func (r *fakeAnalyticsRepo) UpsertView(_ context.Context, tenantID uuid.UUID, date time.Time, itemID, categoryID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := analyticsKey(tenantID, date)
	row, ok := r.rows[key]
	if !ok {
		row = model.DailyAnalytics{
			ID:          uuid.New(),
			TenantID:    tenantID,
			Date:        date,
			UniqueViews: 1,
		}
	}
	row.Views++
	row.ItemViews = bumpMap(row.ItemViews, itemID)
	row.CategoryViews = bumpMap(row.CategoryViews, categoryID)
	r.rows[key] = row
	return nil
}

func (r *fakeAnalyticsRepo) IncrementQrScans(_ context.Context, tenantID uuid.UUID, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := analyticsKey(tenantID, date)
	row, ok := r.rows[key]
	if !ok {
		row = model.DailyAnalytics{ID: uuid.New(), TenantID: tenantID, Date: date}
	}
	row.QrScans++
	r.rows[key] = row
	return nil
}

func (r *fakeAnalyticsRepo) ListRange(_ context.Context, tenantID uuid.UUID, start, end *time.Time, limit int) ([]model.DailyAnalytics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.DailyAnalytics
	for _, row := range r.rows {
		if row.TenantID != tenantID {
			continue
		}
		if start != nil && row.Date.Before(*start) {
			continue
		}
		if end != nil && row.Date.After(*end) {
			continue
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := user
	return &out, nil
}

func (r *fakeUserRepo) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Phone == phone {
			out := user
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) SetPassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = passwordHash
	user.RequiresPasswordChange = false
	r.users[id] = user
	return nil
}

type fakeTenantRepo struct {
	mu      sync.Mutex
	tenants map[uuid.UUID]model.Tenant
	subRepo *fakeSubscriptionRepo
}

func newFakeTenantRepo(subRepo *fakeSubscriptionRepo) *fakeTenantRepo {
	return &fakeTenantRepo{tenants: make(map[uuid.UUID]model.Tenant), subRepo: subRepo}
}

func (r *fakeTenantRepo) CreateWithSubscription(ctx context.Context, tenant *model.Tenant, sub *model.Subscription) error {
	r.mu.Lock()
	if tenant.ID == uuid.Nil {
		tenant.ID = uuid.New()
	}
	r.tenants[tenant.ID] = *tenant
	r.mu.Unlock()
	sub.TenantID = tenant.ID
	return r.subRepo.Upsert(ctx, sub)
}

func (r *fakeTenantRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant, ok := r.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	out := tenant
	return &out, nil
}

func (r *fakeTenantRepo) GetBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tenant := range r.tenants {
		if strings.EqualFold(tenant.Slug, slug) {
			out := tenant
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTenantRepo) GetByIDAndOwner(_ context.Context, id, ownerID uuid.UUID) (*model.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tenant, ok := r.tenants[id]
	if !ok || tenant.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	out := tenant
	return &out, nil
}

func (r *fakeTenantRepo) DeleteCascade(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	delete(r.tenants, id)
	r.mu.Unlock()
	r.subRepo.mu.Lock()
	delete(r.subRepo.subs, id)
	r.subRepo.mu.Unlock()
	return nil
}

var (
	_ repository.SubscriptionRepository = (*fakeSubscriptionRepo)(nil)
	_ repository.MembershipRepository   = (*fakeMembershipRepo)(nil)
	_ repository.QrCodeRepository       = (*fakeQrCodeRepo)(nil)
	_ repository.AnalyticsRepository    = (*fakeAnalyticsRepo)(nil)
	_ repository.UserRepository         = (*fakeUserRepo)(nil)
	_ repository.TenantRepository       = (*fakeTenantRepo)(nil)
)
