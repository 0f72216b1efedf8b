package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/pkg/helix"
)

// ChannelService searches channels and looks up users.
type ChannelService struct {
	client Requester
	logger *slog.Logger
}

// NewChannelService creates a new channel service.
func NewChannelService(client Requester, logger *slog.Logger) *ChannelService {
	return &ChannelService{client: client, logger: logger}
}

// SearchChannels returns channels matching query.
func (s *ChannelService) SearchChannels(ctx context.Context, query string, limit int, cursor string) (domain.Page[domain.Channel], error) {
	params := pageParams(limit, cursor)
	params.Set("query", query)

	page, err := fetchPage[helix.Channel](ctx, s.client, "search/channels", params)
	if err != nil {
		return domain.Page[domain.Channel]{}, s.fail(err, "Error processing search channels")
	}

	channels, err := formatEach(page.Data, FormatChannel)
	if err != nil {
		return domain.Page[domain.Channel]{}, s.fail(err, "Error processing search channels")
	}
	return domain.NewPage(channels, page.NextCursor()), nil
}

// UserByLogin resolves a login to its user record. No match is NotFound.
func (s *ChannelService) UserByLogin(ctx context.Context, login string) (*helix.User, error) {
	page, err := fetchPage[helix.User](ctx, s.client, "users", url.Values{"login": {login}})
	if err != nil {
		return nil, s.fail(err, "Error fetching user")
	}
	if len(page.Data) == 0 {
		return nil, domain.Errorf(domain.KindNotFound, "User '%s' not found", login)
	}
	return &page.Data[0], nil
}

// UsersByID fetches users in batches of 100.
func (s *ChannelService) UsersByID(ctx context.Context, ids []string) ([]helix.User, error) {
	var users []helix.User
	for start := 0; start < len(ids); start += maxLimit {
		end := min(start+maxLimit, len(ids))
		page, err := fetchPage[helix.User](ctx, s.client, "users", url.Values{"id": ids[start:end]})
		if err != nil {
			return nil, s.fail(err, "Error fetching users")
		}
		users = append(users, page.Data...)
	}
	return users, nil
}

func (s *ChannelService) fail(err error, op string) error {
	s.logger.Error(op, "error", err)
	return domain.Wrap(err, op)
}
