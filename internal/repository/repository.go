package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/nkiryanov/accounts/internal/models"
)

// Optional fields for partial user update. Nil fields are left untouched,
// updated_at is refreshed on every call.
type UpdateUserFields struct {
	Login          *string
	HashedPassword *string
	Role           *models.Role
}

// User repository interface
type UserRepo interface {
	// Create user with default role
	// If login is taken (case insensitive) must return apperrors.ErrUserAlreadyExists
	Create(ctx context.Context, login string, hashedPassword string) (models.User, error)

	// Get user by id or login. Login match is case insensitive.
	// If user not found must return apperrors.ErrUserNotFound
	GetByID(ctx context.Context, id uuid.UUID) (models.User, error)
	GetByLogin(ctx context.Context, login string) (models.User, error)

	// List users page and total count
	List(ctx context.Context, offset uint64, limit uint64) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// Update supplied fields only
	// If user not found must return apperrors.ErrUserNotFound
	Update(ctx context.Context, id uuid.UUID, fields UpdateUserFields) (models.User, error)

	// Delete user and report affected rows
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// Storage aggregates repositories and owns the transaction scope
type Storage interface {
	User() UserRepo

	// InTx runs fn with a Storage bound to a single transaction.
	// Commit on nil error, rollback otherwise. The callback error is always
	// preserved: a failed rollback never masks the original cause.
	InTx(ctx context.Context, fn func(Storage) error) error
}
