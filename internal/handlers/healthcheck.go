package handlers

import (
	"net/http"

	"github.com/nkiryanov/accounts/internal/handlers/render"
)

func handleHealthcheck() http.Handler {
	type response struct {
		OK bool `json:"ok"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, response{OK: true})
	})
}
