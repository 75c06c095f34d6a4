package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/repository"
)

type UserRepo struct {
	db DBTX
}

const createUser = `-- name: CreateUser
INSERT INTO "user" (id, login, password)
VALUES ($1, $2, $3)
RETURNING id, login, password, role, created_at, updated_at
`

func (r *UserRepo) Create(ctx context.Context, login string, hashedPassword string) (models.User, error) {
	rows, _ := r.db.Query(ctx, createUser, uuid.New(), login, hashedPassword)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT id, login, password, role, created_at, updated_at
FROM "user"
WHERE id = $1
`

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.db.Query(ctx, getUserByID, id)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const getUserByLogin = `-- name: GetUserByLogin
SELECT id, login, password, role, created_at, updated_at
FROM "user"
WHERE LOWER(login) = LOWER($1)
`

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (models.User, error) {
	rows, _ := r.db.Query(ctx, getUserByLogin, login)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, fmt.Errorf("db error: %w", err)
	}
}

const listUsers = `-- name: ListUsers
SELECT id, login, password, role, created_at, updated_at
FROM "user"
ORDER BY created_at, id
OFFSET $1 LIMIT $2
`

func (r *UserRepo) List(ctx context.Context, offset uint64, limit uint64) ([]models.User, error) {
	rows, _ := r.db.Query(ctx, listUsers, offset, limit)
	users, err := pgx.CollectRows(rows, rowToUser)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return users, nil
}

const countUsers = `-- name: CountUsers
SELECT count(*) FROM "user"
`

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, countUsers).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return total, nil
}

const userExists = `-- name: UserExists
SELECT EXISTS (SELECT 1 FROM "user" WHERE id = $1)
`

func (r *UserRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, userExists, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}

const updateUser = `-- name: UpdateUser
UPDATE "user"
SET login      = COALESCE($2, login),
    password   = COALESCE($3, password),
    role       = COALESCE($4::role, role),
    updated_at = now()
WHERE id = $1
RETURNING id, login, password, role, created_at, updated_at
`

func (r *UserRepo) Update(ctx context.Context, id uuid.UUID, fields repository.UpdateUserFields) (models.User, error) {
	var role *string
	if fields.Role != nil {
		s := string(*fields.Role)
		role = &s
	}

	rows, _ := r.db.Query(ctx, updateUser, id, fields.Login, fields.HashedPassword, role)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrLoginAlreadyTaken
		}

		return user, fmt.Errorf("db error: %w", err)
	}
}

const deleteUser = `-- name: DeleteUser
DELETE FROM "user"
WHERE id = $1
`

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteUser, id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return tag.RowsAffected(), nil
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Login, &u.HashedPassword, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
