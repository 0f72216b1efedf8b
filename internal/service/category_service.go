package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/pkg/helix"
)

// CategoryService lists and searches games/categories.
type CategoryService struct {
	client Requester
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(client Requester, logger *slog.Logger) *CategoryService {
	return &CategoryService{client: client, logger: logger}
}

// TopCategories returns the most watched categories.
func (s *CategoryService) TopCategories(ctx context.Context, limit int, cursor string) (domain.Page[domain.Category], error) {
	return s.list(ctx, "games/top", pageParams(limit, cursor), "Error processing categories")
}

// SearchCategories returns categories matching query.
func (s *CategoryService) SearchCategories(ctx context.Context, query string, limit int, cursor string) (domain.Page[domain.Category], error) {
	params := pageParams(limit, cursor)
	params.Set("query", query)
	return s.list(ctx, "search/categories", params, "Error processing search games")
}

func (s *CategoryService) list(ctx context.Context, endpoint string, params url.Values, op string) (domain.Page[domain.Category], error) {
	page, err := fetchPage[helix.Game](ctx, s.client, endpoint, params)
	if err != nil {
		return domain.Page[domain.Category]{}, s.fail(err, op)
	}

	categories, err := formatEach(page.Data, FormatCategory)
	if err != nil {
		return domain.Page[domain.Category]{}, s.fail(err, op)
	}
	return domain.NewPage(categories, page.NextCursor()), nil
}

func (s *CategoryService) fail(err error, op string) error {
	s.logger.Error(op, "error", err)
	return domain.Wrap(err, op)
}
