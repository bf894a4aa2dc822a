package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleSuperAdmin      UserRole = "SUPER_ADMIN"
	RoleRestaurantOwner UserRole = "RESTAURANT_OWNER"
	RoleManager         UserRole = "MANAGER"
	RoleStaff           UserRole = "STAFF"
)

type User struct {
	ID                     uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Phone                  string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"phone"`
	PasswordHash           string         `gorm:"type:varchar(255);not null" json:"-"`
	FirstName              string         `gorm:"type:varchar(128)" json:"first_name"`
	LastName               string         `gorm:"type:varchar(128)" json:"last_name"`
	Role                   UserRole       `gorm:"type:varchar(32);not null;default:'RESTAURANT_OWNER'" json:"role"`
	IsActive               bool           `gorm:"not null;default:true" json:"is_active"`
	RequiresPasswordChange bool           `gorm:"not null;default:false" json:"requires_password_change"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }
