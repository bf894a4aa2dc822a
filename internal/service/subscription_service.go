package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/pkg/crypto"
	"otlobha/menuhub/pkg/metrics"
)

// EvaluateGate is the subscription gate rule set, shared by the authenticated
// middleware and the public menu path. Deny order: missing row (integrity
// fault), non-ACTIVE status, lapsed period.
func EvaluateGate(sub *model.Subscription, now time.Time) error {
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	if sub.Status != model.SubscriptionActive {
		return &SubscriptionInactiveError{Status: string(sub.Status)}
	}
	if now.After(sub.CurrentPeriodEnd) {
		return &SubscriptionExpiredError{ExpiredAt: sub.CurrentPeriodEnd}
	}
	return nil
}

// BillingEvent is the provider-neutral webhook payload.
type BillingEvent struct {
	ID   string             `json:"id"`
	Type string             `json:"type"`
	Data BillingEventDetail `json:"data"`
}

type BillingEventDetail struct {
	TenantID          uuid.UUID `json:"tenant_id"`
	Plan              string    `json:"plan,omitempty"`
	Status            string    `json:"status"`
	CustomerRef       string    `json:"customer_ref"`
	SubscriptionRef   string    `json:"subscription_ref"`
	PeriodStart       int64     `json:"period_start"`
	PeriodEnd         int64     `json:"period_end"`
	CancelAtPeriodEnd bool      `json:"cancel_at_period_end"`
}

// mapBillingStatus translates provider statuses to internal ones. Unknown
// values are rejected rather than defaulted.
func mapBillingStatus(status string) (model.SubscriptionStatus, error) {
	switch status {
	case "active":
		return model.SubscriptionActive, nil
	case "trialing":
		return model.SubscriptionTrialing, nil
	case "past_due":
		return model.SubscriptionPastDue, nil
	case "canceled", "unpaid":
		return model.SubscriptionCancelled, nil
	}
	return "", ErrInvalidStatus
}

type SubscriptionService interface {
	GetForTenant(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error)
	// Renew activates the subscription for months from now (service default
	// when months <= 0), optionally switching plan. Valid from any prior
	// state; a renewed CANCELLED subscription starts a fresh active period.
	Renew(ctx context.Context, tenantID uuid.UUID, plan *model.SubscriptionPlan, months int) (*model.Subscription, error)
	// CancelNow cancels administratively and forces immediate expiry,
	// discarding any remaining paid time.
	CancelNow(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error)
	// CancelAtPeriodEnd flags the subscription; status stays ACTIVE and the
	// gate's period check takes over once the period lapses.
	CancelAtPeriodEnd(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error)
	// HandleWebhook verifies the signature over the raw payload and applies
	// the billing event. Replays are harmless: transitions overwrite.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
	ApplyBillingEvent(ctx context.Context, event BillingEvent) error
}

type subscriptionService struct {
	subRepo       repository.SubscriptionRepository
	webhookSecret string
	defaultMonths int
	logger        *zap.Logger
	metrics       *metrics.Registry
	now           func() time.Time
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	webhookSecret string,
	defaultMonths int,
	logger *zap.Logger,
	reg *metrics.Registry,
) SubscriptionService {
	if defaultMonths <= 0 {
		defaultMonths = 1
	}
	return &subscriptionService{
		subRepo:       subRepo,
		webhookSecret: webhookSecret,
		defaultMonths: defaultMonths,
		logger:        logger,
		metrics:       reg,
		now:           time.Now,
	}
}

func (s *subscriptionService) GetForTenant(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.subRepo.GetByTenantID(ctx, tenantID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	return sub, err
}

func (s *subscriptionService) Renew(ctx context.Context, tenantID uuid.UUID, plan *model.SubscriptionPlan, months int) (*model.Subscription, error) {
	if plan != nil && !model.ValidPlan(*plan) {
		return nil, ErrInvalidPlan
	}
	if months <= 0 {
		months = s.defaultMonths
	}

	sub, err := s.subRepo.GetByTenantID(ctx, tenantID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if sub == nil {
		sub = &model.Subscription{TenantID: tenantID, Plan: model.PlanBasic}
	}
	if plan != nil {
		sub.Plan = *plan
	}

	now := s.now()
	sub.Status = model.SubscriptionActive
	sub.CurrentPeriodStart = now
	sub.CurrentPeriodEnd = now.AddDate(0, months, 0)
	sub.CancelAtPeriodEnd = false

	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("subscription renewed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("plan", string(sub.Plan)),
		zap.Time("period_end", sub.CurrentPeriodEnd),
	)
	return sub, nil
}

func (s *subscriptionService) CancelNow(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.GetForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sub.Status = model.SubscriptionCancelled
	sub.CurrentPeriodEnd = s.now()
	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Info("subscription cancelled immediately", zap.String("tenant_id", tenantID.String()))
	return sub, nil
}

func (s *subscriptionService) CancelAtPeriodEnd(ctx context.Context, tenantID uuid.UUID) (*model.Subscription, error) {
	sub, err := s.GetForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := s.subRepo.SetCancelAtPeriodEnd(ctx, tenantID, true); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	sub.CancelAtPeriodEnd = true
	return sub, nil
}

func (s *subscriptionService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if signature == "" || !crypto.VerifySignature(payload, signature, s.webhookSecret) {
		s.metrics.WebhookEvents.WithLabelValues("bad_signature").Inc()
		return ErrWebhookSignature
	}

	var event BillingEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.metrics.WebhookEvents.WithLabelValues("bad_payload").Inc()
		return err
	}

	if err := s.ApplyBillingEvent(ctx, event); err != nil {
		s.metrics.WebhookEvents.WithLabelValues("failed").Inc()
		return err
	}
	s.metrics.WebhookEvents.WithLabelValues("applied").Inc()
	return nil
}

func (s *subscriptionService) ApplyBillingEvent(ctx context.Context, event BillingEvent) error {
	status, err := mapBillingStatus(event.Data.Status)
	if err != nil {
		return err
	}

	tenantID := event.Data.TenantID
	if tenantID == uuid.Nil {
		// Provider-initiated updates identify the subscription by its ref.
		existing, err := s.subRepo.GetByBillingRef(ctx, event.Data.SubscriptionRef)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logger.Warn("billing event for unknown subscription ref",
					zap.String("event_id", event.ID),
					zap.String("subscription_ref", event.Data.SubscriptionRef),
				)
				return nil
			}
			return err
		}
		tenantID = existing.TenantID
	}

	sub := &model.Subscription{
		TenantID:               tenantID,
		Plan:                   model.PlanBasic,
		Status:                 status,
		CurrentPeriodStart:     time.Unix(event.Data.PeriodStart, 0).UTC(),
		CurrentPeriodEnd:       time.Unix(event.Data.PeriodEnd, 0).UTC(),
		BillingCustomerRef:     event.Data.CustomerRef,
		BillingSubscriptionRef: event.Data.SubscriptionRef,
		CancelAtPeriodEnd:      event.Data.CancelAtPeriodEnd,
	}
	if event.Data.Plan != "" {
		plan := model.SubscriptionPlan(event.Data.Plan)
		if !model.ValidPlan(plan) {
			return ErrInvalidPlan
		}
		sub.Plan = plan
	} else {
		// The event carries no plan; keep the stored one. A failed read here
		// must abort the apply, or the upsert would quietly reset the plan.
		existing, err := s.subRepo.GetByTenantID(ctx, tenantID)
		switch {
		case err == nil:
			sub.Plan = existing.Plan
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
	}

	if err := s.subRepo.Upsert(ctx, sub); err != nil {
		return err
	}
	s.logger.Info("billing event applied",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.String("tenant_id", tenantID.String()),
		zap.String("status", string(status)),
	)
	return nil
}

var _ SubscriptionService = (*subscriptionService)(nil)
