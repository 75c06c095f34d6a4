package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/accounts/internal/apperrors"
)

// ErrorMessage is the envelope every error response uses
type ErrorMessage struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func JSON(w http.ResponseWriter, data any) {
	JSONWithStatus(w, data, http.StatusOK)
}

// JSONWithStatus sends data as json and enforces status code
func JSONWithStatus(w http.ResponseWriter, data any, code int) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)

	if err := enc.Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(buf.Bytes())
}

// Error maps a taxonomy error to its status and envelope. Anything outside
// the taxonomy is rewritten to the opaque "Unknown" message so lower layer
// failures never leak to the caller.
func Error(w http.ResponseWriter, err error) {
	appErr := apperrors.FromError(err)

	JSONWithStatus(w,
		ErrorMessage{Message: appErr.Message, Details: appErr.Details},
		appErr.Kind.HTTPStatus(),
	)
}

// DecodeError renders a json decoding failure as BadRequest
func DecodeError(w http.ResponseWriter, err error) {
	message := "Failed to parse JSON"

	var details map[string]any
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		details = map[string]any{"field": typeErr.Field}
	default:
		details = map[string]any{"error": err.Error()}
	}

	JSONWithStatus(w, ErrorMessage{Message: message, Details: details}, http.StatusBadRequest)
}

// ValidationErrors renders field errors as UnprocessableEntity
func ValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	details := make(map[string]any, len(errs))

	for _, fieldError := range errs {
		var message string
		switch fieldError.Tag() {
		case "required":
			message = "This field is required"
		case "min":
			message = fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
		case "max":
			message = fmt.Sprintf("Value is too long (maximum %s)", fieldError.Param())
		default:
			message = "Invalid value"
		}

		details[fieldError.Field()] = message
	}

	JSONWithStatus(w,
		ErrorMessage{Message: "Request validation failed", Details: details},
		http.StatusUnprocessableEntity,
	)
}
