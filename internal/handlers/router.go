package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/accounts/internal/handlers/middleware"
	"github.com/nkiryanov/accounts/internal/logger"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/service/user"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

// NewRouter wires every endpoint. Registration, login, refresh, logout and
// healthcheck are open, the rest of /users sits behind the auth middleware.
func NewRouter(
	auth authService,
	users userService,
	authMiddleware func(http.Handler) http.Handler,
	l logger.Logger,
) http.Handler {
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /healthcheck", handleHealthcheck())

	mux.Handle("POST /auth/login", handleLogin(auth, l))
	mux.Handle("POST /auth/refresh", handleRefresh(auth, l))
	mux.Handle("POST /auth/logout", handleLogout())

	mux.Handle("POST /users", handleUserCreate(users, l))
	mux.Handle("GET /users", withAuth(handleUserList(users)))
	mux.Handle("GET /users/me", withAuth(handleUserMe()))
	mux.Handle("GET /users/{id}", withAuth(handleUserGet(users)))
	mux.Handle("PATCH /users", withAuth(handleUserUpdate(users, l)))
	mux.Handle("DELETE /users", withAuth(handleUserDelete(users, l)))

	return chain(mux,
		middleware.Logger(l),
	)
}

type authService interface {
	// Login user with login and password
	// Has to return apperrors.ErrUserNotFound if the user not found and
	// apperrors.ErrInvalidPassword on hash mismatch
	Login(ctx context.Context, login string, password string) (models.TokenPair, error)

	// Refresh rotates the pair using a valid refresh token
	// Has to return apperrors.ErrInvalidToken for anything not verifiable
	// as a refresh token
	Refresh(ctx context.Context, refresh string) (models.TokenPair, error)
}

type userService interface {
	Create(ctx context.Context, login string, password string) (models.User, error)
	Get(ctx context.Context, id uuid.UUID) (models.User, error)
	List(ctx context.Context, offset uint64, limit uint64) (int64, []models.User, error)
	Update(ctx context.Context, caller models.User, req user.UpdateRequest) (models.User, error)
	Delete(ctx context.Context, caller models.User, req user.DeleteRequest) (bool, error)
}
