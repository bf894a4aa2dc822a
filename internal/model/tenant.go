package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Tenant struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name      string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug      string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"slug"`
	Email     string         `gorm:"type:varchar(255)" json:"email,omitempty"`
	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	Settings  datatypes.JSON `gorm:"type:jsonb" json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Subscription *Subscription `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"subscription,omitempty"`
	Memberships  []Membership  `gorm:"foreignKey:TenantID;constraint:OnDelete:CASCADE" json:"memberships,omitempty"`
}

func (Tenant) TableName() string { return "tenants" }

// Membership grants a user staff-level access to one tenant.
type Membership struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_tenant_user" json:"tenant_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_membership_tenant_user" json:"user_id"`
	Role        UserRole       `gorm:"type:varchar(32);not null;default:'STAFF'" json:"role"`
	Permissions datatypes.JSON `gorm:"type:jsonb" json:"permissions,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
