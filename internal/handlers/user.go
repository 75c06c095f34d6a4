package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/accounts/internal/apperrors"
	"github.com/nkiryanov/accounts/internal/handlers/render"
	"github.com/nkiryanov/accounts/internal/handlers/userctx"
	"github.com/nkiryanov/accounts/internal/logger"
	"github.com/nkiryanov/accounts/internal/models"
	"github.com/nkiryanov/accounts/internal/service/user"
)

// User as rendered to callers. The password hash never leaves the service.
type userResponse struct {
	ID        uuid.UUID   `json:"id"`
	Login     string      `json:"login"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUserResponse(u models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Login:     u.Login,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func handleUserCreate(users userService, l logger.Logger) http.Handler {
	type request struct {
		Login           string `json:"login" validate:"required,max=128"`
		Password        string `json:"password" validate:"required"`
		ConfirmPassword string `json:"confirm_password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if data.Password != data.ConfirmPassword {
			render.Error(w, apperrors.ErrPasswordMismatch)
			return
		}

		created, err := users.Create(r.Context(), data.Login, data.Password)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUserAlreadyExists) {
				l.Error("user create failed", "error", err.Error())
			}
			render.Error(w, err)
			return
		}

		render.JSONWithStatus(w, toUserResponse(created), http.StatusCreated)
	})
}

func handleUserList(users userService) http.Handler {
	type response struct {
		Total int64          `json:"total"`
		Data  []userResponse `json:"data"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)

		total, items, err := users.List(r.Context(), offset, limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		data := make([]userResponse, 0, len(items))
		for _, u := range items {
			data = append(data, toUserResponse(u))
		}

		render.JSON(w, response{Total: total, Data: data})
	})
}

func handleUserGet(users userService) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			render.Error(w, apperrors.New(apperrors.KindBadRequest, "Invalid user id"))
			return
		}

		u, err := users.Get(r.Context(), id)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, toUserResponse(u))
	})
}

func handleUserMe() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Middleware guarantees the user is set on protected routes
		u, _ := userctx.FromContext(r.Context())
		render.JSON(w, toUserResponse(u))
	})
}

func handleUserUpdate(users userService, l logger.Logger) http.Handler {
	type request struct {
		ID       *uuid.UUID   `json:"id"`
		Login    *string      `json:"login" validate:"omitempty,min=1,max=128"`
		Password *string      `json:"password" validate:"omitempty,min=1"`
		Role     *models.Role `json:"role"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		if data.Role != nil && !data.Role.Valid() {
			render.Error(w, apperrors.New(apperrors.KindBadRequest, "Invalid role"))
			return
		}

		caller, _ := userctx.FromContext(r.Context())

		updated, err := users.Update(r.Context(), caller, user.UpdateRequest{
			ID:       data.ID,
			Login:    data.Login,
			Password: data.Password,
			Role:     data.Role,
		})
		if err != nil {
			if apperrors.FromError(err).Kind == apperrors.KindUnknown {
				l.Error("user update failed", "error", err.Error())
			}
			render.Error(w, err)
			return
		}

		render.JSON(w, toUserResponse(updated))
	})
}

func handleUserDelete(users userService, l logger.Logger) http.Handler {
	type request struct {
		ID *uuid.UUID `json:"id"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		caller, _ := userctx.FromContext(r.Context())

		deleted, err := users.Delete(r.Context(), caller, user.DeleteRequest{ID: data.ID})
		if err != nil {
			if apperrors.FromError(err).Kind == apperrors.KindUnknown {
				l.Error("user delete failed", "error", err.Error())
			}
			render.Error(w, err)
			return
		}

		render.JSON(w, statusResponse{Status: deleted})
	})
}
