package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/handlers/render"
	"github.com/nkiryanov/accounts/internal/handlers/userctx"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/service/token"
)

// Cookie that may carry the access token as an alternative to the
// Authorization header. Set by clients, never by this service.
const AccessTokenCookie = "token"

type tokenVerifier interface {
	Verify(tokenString string) (token.Claims, error)
}

type userGetter interface {
	Get(ctx context.Context, id uuid.UUID) (models.User, error)
}

// Auth gates a request: extract a credential, verify it, load the subject
// and attach it to the request context. Every failure is Unauthorized, and a
// missing user is deliberately collapsed into Unauthorized too so the
// endpoint neither confirms nor denies that an id exists.
func Auth(tokens tokenVerifier, users userGetter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				render.Error(w, err)
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				render.Error(w, err)
				return
			}

			// Only access tokens pass the gate, a refresh token replayed
			// here must be rejected
			if claims.Type != models.TokenTypeAccess {
				render.Error(w, apperrors.ErrInvalidToken)
				return
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				render.Error(w, apperrors.ErrInvalidToken)
				return
			}

			user, err := users.Get(r.Context(), userID)
			if err != nil {
				render.Error(w, apperrors.ErrUnauthorized)
				return
			}

			ctx := userctx.New(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken prefers the httponly cookie and falls back to the
// 'Authorization: Bearer' header
func extractToken(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	header := r.Header.Get("Authorization")
	if value, ok := strings.CutPrefix(header, "Bearer "); ok && value != "" {
		return value, nil
	}

	return "", apperrors.ErrTokenNotProvided
}
