// Package user holds the business rules over the user store: uniqueness
// prechecks, password hashing and role aware target resolution. Every
// mutating operation runs in exactly one transaction.
package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/repository"
	"github.com/nkiryanov/accounts/internal/service/auth"
)

type Service struct {
	hasher  auth.PasswordHasher
	storage repository.Storage
}

func NewService(hasher auth.PasswordHasher, storage repository.Storage) *Service {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &Service{
		hasher:  hasher,
		storage: storage,
	}
}

// Update or delete request. ID is honored for admin callers only.
type UpdateRequest struct {
	ID       *uuid.UUID
	Login    *string
	Password *string
	Role     *models.Role
}

type DeleteRequest struct {
	ID *uuid.UUID
}

// Create hashes the password and inserts the user inside one transaction.
// The login precheck gives a friendly Conflict error, while the unique index
// on lower(login) stays the source of truth when two creates race.
func (s *Service) Create(ctx context.Context, login string, password string) (models.User, error) {
	var user models.User

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return user, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		_, err := st.User().GetByLogin(ctx, login)
		switch {
		case err == nil:
			return apperrors.ErrUserAlreadyExists.WithDetails(map[string]any{"login": login})
		case !errors.Is(err, apperrors.ErrUserNotFound):
			return err
		}

		user, err = st.User().Create(ctx, login, hash)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Get user by id. Fails with apperrors.ErrUserNotFound if absent.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (models.User, error) {
	return s.storage.User().GetByID(ctx, id)
}

// List returns a page of users and the total count.
// A count failure is propagated, not silently degraded to an empty page.
func (s *Service) List(ctx context.Context, offset uint64, limit uint64) (total int64, users []models.User, err error) {
	total, err = s.storage.User().Count(ctx)
	if err != nil {
		return 0, nil, err
	}

	users, err = s.storage.User().List(ctx, offset, limit)
	if err != nil {
		return 0, nil, err
	}

	return total, users, nil
}

// Update mutates the target resolved from the caller role. A new login that
// belongs to a different user fails with Conflict, a new password is hashed
// before writing, a role change requires an admin caller.
func (s *Service) Update(ctx context.Context, caller models.User, req UpdateRequest) (models.User, error) {
	var user models.User

	target := ResolveTarget(caller, req.ID)

	if req.Role != nil && caller.Role != models.RoleAdmin {
		return user, apperrors.ErrRoleChangeDenied
	}

	fields := repository.UpdateUserFields{
		Login: req.Login,
		Role:  req.Role,
	}

	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return user, fmt.Errorf("can't use this as password. Err: %w", err)
		}
		fields.HashedPassword = &hash
	}

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if req.Login != nil {
			existing, err := st.User().GetByLogin(ctx, *req.Login)
			switch {
			case err == nil && existing.ID != target:
				return apperrors.ErrLoginAlreadyTaken.WithDetails(map[string]any{"login": *req.Login})
			case err != nil && !errors.Is(err, apperrors.ErrUserNotFound):
				return err
			}
		}

		var err error
		user, err = st.User().Update(ctx, target, fields)
		return err
	})
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Delete removes the target resolved from the caller role.
// Fails with apperrors.ErrUserNotFound if the target does not exist.
func (s *Service) Delete(ctx context.Context, caller models.User, req DeleteRequest) (bool, error) {
	target := ResolveTarget(caller, req.ID)

	var deleted bool
	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		exists, err := st.User().Exists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return apperrors.ErrUserNotFound
		}

		rows, err := st.User().Delete(ctx, target)
		if err != nil {
			return err
		}

		deleted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// ResolveTarget decides which record the caller may touch: an admin may name
// any id and falls back to self, everyone else always operates on self no
// matter what id the request carries.
func ResolveTarget(caller models.User, requested *uuid.UUID) uuid.UUID {
	if caller.Role == models.RoleAdmin && requested != nil {
		return *requested
	}
	return caller.ID
}
