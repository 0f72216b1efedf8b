package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Limit bounds enforced at the HTTP layer. The upstream accepts up to 100;
// these keep individual pages small enough to enrich.
const (
	maxLimit        = 15
	maxSidebarLimit = 20

	defaultTopLimit = 10
	defaultLimit    = 5
)

// parseLimit reads the limit query parameter, falling back to def when absent.
// Non-integers and values outside 1..max are validation errors.
func parseLimit(r *http.Request, def, max int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, invalid(msgInvalidParams)
	}
	if limit < 1 || limit > max {
		return 0, invalid(fmt.Sprintf("Limit must be between 1 and %d", max))
	}
	return limit, nil
}

// requiredQuery returns the trimmed query parameter or a validation error.
func requiredQuery(r *http.Request) (string, error) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		return "", invalid("Query parameter is required")
	}
	return query, nil
}

// pathValue returns the trimmed path segment, or a validation error with message.
func pathValue(value, message string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", invalid(message)
	}
	return value, nil
}

// optional returns the query parameter, or "" when unset.
func optional(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
