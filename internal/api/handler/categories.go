package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iconidentify/streamrelay/internal/domain"
)

// CategoryLister is the category operations the handler needs.
type CategoryLister interface {
	TopCategories(ctx context.Context, limit int, cursor string) (domain.Page[domain.Category], error)
	SearchCategories(ctx context.Context, query string, limit int, cursor string) (domain.Page[domain.Category], error)
}

// CategoryHandler handles category endpoints.
type CategoryHandler struct {
	categories CategoryLister
	logger     *slog.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(categories CategoryLister, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		categories: categories,
		logger:     logger,
	}
}

// Top handles GET /api/v1/categories/top
func (h *CategoryHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultTopLimit, maxLimit)
	if err != nil {
		respond(w, h.logger, "TopCategories", generic(err))
		return
	}

	page, err := h.categories.TopCategories(r.Context(), limit, optional(r, "cursor"))
	if err != nil {
		respond(w, h.logger, "TopCategories", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Search handles GET /api/v1/search/games
func (h *CategoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultLimit, maxLimit)
	if err != nil {
		respond(w, h.logger, "SearchGames", err)
		return
	}
	query, err := requiredQuery(r)
	if err != nil {
		respond(w, h.logger, "SearchGames", err)
		return
	}

	page, err := h.categories.SearchCategories(r.Context(), query, limit, optional(r, "cursor"))
	if err != nil {
		respond(w, h.logger, "SearchGames", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
