package render

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/accounts/internal/apperrors"
)

func TestRender_JSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		data := map[string]any{"key1": 1, "key2": "222"}
		JSON(w, data)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.JSONEq(t, `{"key1":1,"key2":"222"}`+"\n", string(body))
}

func TestRender_JSONWithStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		JSONWithStatus(w, map[string]string{"login": "alice"}, http.StatusCreated)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRender_Error(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "taxonomy error",
			err:            apperrors.ErrUserNotFound,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"message": "User not found", "details": null}`,
		},
		{
			name:           "error with details",
			err:            apperrors.ErrUserAlreadyExists.WithDetails(map[string]any{"login": "alice"}),
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"message": "User already exists", "details": {"login": "alice"}}`,
		},
		{
			name:           "wrapped taxonomy error",
			err:            apperrors.ErrInvalidToken.Wrap(errors.New("signature is invalid")),
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"message": "Invalid token provided", "details": null}`,
		},
		{
			name:           "foreign error is opaque",
			err:            errors.New("pq: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"message": "Unknown", "details": null}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				Error(w, tc.err)
			}))
			defer ts.Close()

			resp, err := http.Get(ts.URL + "/test")
			require.NoError(t, err)
			require.Equal(t, tc.expectedStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, string(body))
		})
	}
}

func TestRender_DecodeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		value := struct {
			Key   string `json:"key"`
			Count int    `json:"count"`
		}{}

		err := json.NewDecoder(r.Body).Decode(&value)
		require.Error(t, err, "Please check what JSON was sent. Test expected that it is invalid")
		DecodeError(w, err)
	}))
	defer ts.Close()

	tests := []struct {
		name          string
		requestBody   string
		expectedField string
	}{
		{
			name:        "json parsing error",
			requestBody: `invalid-json`,
		},
		{
			name:          "invalid type reports the field",
			requestBody:   `{"key": "valid_json", "count": "but incorrect type"}`,
			expectedField: "count",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			defer resp.Body.Close() //nolint:errcheck

			var envelope ErrorMessage
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
			assert.Equal(t, "Failed to parse JSON", envelope.Message)
			if tc.expectedField != "" {
				assert.Equal(t, tc.expectedField, envelope.Details["field"])
			}
		})
	}
}

func TestRender_ValidationErrors(t *testing.T) {
	type T struct {
		Username string `validate:"required"`
		Password string `validate:"min=6"`
		Email    string `validate:"email"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		invalidData := T{
			Password: "123",
			Email:    "not-valid-email",
		}

		err := validator.New().Struct(invalidData)
		require.Error(t, err, "test expects that data not pass validation")
		errs, ok := err.(validator.ValidationErrors)
		require.True(t, ok, "be sure you pass structure to validator")
		ValidationErrors(w, errs)
	}))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/test")
	require.NoError(t, err)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	defer resp.Body.Close() //nolint:errcheck

	var envelope ErrorMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	assert.Equal(t, "Request validation failed", envelope.Message)
	assert.Equal(t, "This field is required", envelope.Details["Username"])
	assert.Equal(t, "Value is too short (minimum 6)", envelope.Details["Password"])
	assert.Equal(t, "Invalid value", envelope.Details["Email"], "unknown tag falls back to default message")
}

func TestRender_BindAndValidate(t *testing.T) {
	type User struct {
		Login string `json:"login" validate:"required"`
	}

	tests := []struct {
		name           string
		requestBody    string
		expectedStatus int
	}{
		{
			name:           "valid request",
			requestBody:    `{"login": "john"}`,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid json",
			requestBody:    `invalid-json`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation failed",
			requestBody:    `{}`,
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, err := BindAndValidate[User](w, r)
				if err != nil {
					return // Error response already written
				}
				// Success case
				JSON(w, map[string]bool{"success": true})
			}))
			defer ts.Close()

			resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(tc.requestBody))
			require.NoError(t, err)
			defer resp.Body.Close() //nolint:errcheck

			assert.Equal(t, tc.expectedStatus, resp.StatusCode)
		})
	}
}

func TestRender_ValidationUsesJSONNames(t *testing.T) {
	type User struct {
		ConfirmPassword string `json:"confirm_password" validate:"required"`
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := BindAndValidate[User](w, r)
		if err != nil {
			return
		}
		JSON(w, map[string]bool{"success": true})
	}))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/test", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	var envelope ErrorMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Contains(t, envelope.Details, "confirm_password", "field errors must use json names")
}
