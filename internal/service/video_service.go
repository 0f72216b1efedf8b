package service

import (
	"context"
	"log/slog"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/internal/resolver"
	"github.com/iconidentify/streamrelay/pkg/helix"
)

// UserResolver maps a login to its user record.
type UserResolver interface {
	UserByLogin(ctx context.Context, login string) (*helix.User, error)
}

// VideoService lists a channel's past broadcasts.
type VideoService struct {
	client    Requester
	users     UserResolver
	formatter *VideoFormatter
	logger    *slog.Logger
}

// NewVideoService creates a new video service.
func NewVideoService(client Requester, users UserResolver, enricher *resolver.Enricher, logger *slog.Logger) *VideoService {
	return &VideoService{
		client:    client,
		users:     users,
		formatter: NewVideoFormatter(enricher),
		logger:    logger,
	}
}

// ChannelVideos returns archived broadcasts of login. An unknown login
// fails with NotFound rather than an empty page.
func (s *VideoService) ChannelVideos(ctx context.Context, login string, limit int, cursor string) (domain.Page[domain.Video], error) {
	const op = "Error processing channel VODs"

	user, err := s.users.UserByLogin(ctx, login)
	if err != nil {
		return domain.Page[domain.Video]{}, s.fail(err, op)
	}

	params := pageParams(limit, cursor)
	params.Set("user_id", user.ID)
	params.Set("type", "archive")

	page, err := fetchPage[helix.Video](ctx, s.client, "videos", params)
	if err != nil {
		return domain.Page[domain.Video]{}, s.fail(err, op)
	}

	videos, err := s.formatter.FormatAll(ctx, page.Data)
	if err != nil {
		return domain.Page[domain.Video]{}, s.fail(err, op)
	}
	return domain.NewPage(videos, page.NextCursor()), nil
}

func (s *VideoService) fail(err error, op string) error {
	s.logger.Error(op, "error", err)
	return domain.Wrap(err, op)
}
