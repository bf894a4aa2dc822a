package repository

import (
	"context"

	"github.com/google/uuid"

	"otlobha/menuhub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	// SetPassword stores the hash and clears requires_password_change.
	SetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}
