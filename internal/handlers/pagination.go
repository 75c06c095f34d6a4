package handlers

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// pageParams reads 'page' and 'limit' query parameters.
// Invalid or out of range values fall back to the defaults: page 1, limit 20
// clamped to [1, 200].
func pageParams(r *http.Request) (offset uint64, limit uint64) {
	query := r.URL.Query()

	limit = defaultPageLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err == nil && parsed >= 1 && parsed <= maxPageLimit {
			limit = parsed
		}
	}

	page := uint64(1)
	if raw := query.Get("page"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err == nil && parsed >= 1 {
			page = parsed
		}
	}

	return (page - 1) * limit, limit
}
