package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/handlers/render"
	"github.com/nkiryanov/accounts/internal/logger"
	"github.com/nkiryanov/accounts/internal/models"
)

// Cookie the refresh token travels in. Set by login and refresh, cleared by
// logout. The access token is never put in a cookie by this service: it is
// returned in the response body only.
const RefreshTokenCookie = "refresh"

type tokenResponse struct {
	Type  models.TokenType `json:"typ"`
	Token string           `json:"token"`
}

type statusResponse struct {
	Status bool `json:"status"`
}

func handleLogin(auth authService, l logger.Logger) http.Handler {
	type request struct {
		Login    string `json:"login" validate:"required,max=128"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := auth.Login(r.Context(), data.Login, data.Password)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUserNotFound) && !errors.Is(err, apperrors.ErrInvalidPassword) {
				l.Error("login failed", "error", err.Error())
			}
			render.Error(w, err)
			return
		}

		setRefreshCookie(w, pair.Refresh)
		render.JSON(w, tokenResponse{Type: pair.Access.Type, Token: pair.Access.Value})
	})
}

func handleRefresh(auth authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshTokenCookie)
		if err != nil || cookie.Value == "" {
			render.Error(w, apperrors.ErrTokenNotProvided)
			return
		}

		pair, err := auth.Refresh(r.Context(), cookie.Value)
		if err != nil {
			render.Error(w, err)
			return
		}

		setRefreshCookie(w, pair.Refresh)
		render.JSON(w, tokenResponse{Type: pair.Access.Type, Token: pair.Access.Value})
	})
}

// Logout clears the refresh cookie unconditionally: no token required.
// Stateless access tokens stay valid until expiry, there is nothing to
// revoke server side.
func handleLogout() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clearRefreshCookie(w)
		render.JSON(w, statusResponse{Status: true})
	})
}

func setRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refresh.Value,
		Path:     "/",
		Expires:  refresh.ExpiresAt,
		MaxAge:   int(time.Until(refresh.ExpiresAt).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
