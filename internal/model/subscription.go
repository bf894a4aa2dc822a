package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionTrialing  SubscriptionStatus = "TRIALING"
	SubscriptionPastDue   SubscriptionStatus = "PAST_DUE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// ValidStatus reports whether s is one of the known subscription states.
func ValidStatus(s SubscriptionStatus) bool {
	switch s {
	case SubscriptionActive, SubscriptionTrialing, SubscriptionPastDue, SubscriptionCancelled:
		return true
	}
	return false
}

type SubscriptionPlan string

const (
	PlanBasic      SubscriptionPlan = "BASIC"
	PlanPro        SubscriptionPlan = "PRO"
	PlanEnterprise SubscriptionPlan = "ENTERPRISE"
)

// ValidPlan reports whether p is one of the known plans.
func ValidPlan(p SubscriptionPlan) bool {
	switch p {
	case PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

// Subscription is 1:1 with Tenant, created in the same transaction.
type Subscription struct {
	ID                     uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID               uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null" json:"tenant_id"`
	Plan                   SubscriptionPlan   `gorm:"type:varchar(32);not null;default:'BASIC'" json:"plan"`
	Status                 SubscriptionStatus `gorm:"type:varchar(32);not null;default:'ACTIVE'" json:"status"`
	CurrentPeriodStart     time.Time          `gorm:"not null" json:"current_period_start"`
	CurrentPeriodEnd       time.Time          `gorm:"not null" json:"current_period_end"`
	BillingCustomerRef     string             `gorm:"type:varchar(128)" json:"billing_customer_ref,omitempty"`
	BillingSubscriptionRef string             `gorm:"type:varchar(128);index" json:"billing_subscription_ref,omitempty"`
	CancelAtPeriodEnd      bool               `gorm:"not null;default:false" json:"cancel_at_period_end"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }
