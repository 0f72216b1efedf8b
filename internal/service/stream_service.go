package service

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/samber/lo"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/internal/resolver"
	"github.com/iconidentify/streamrelay/pkg/helix"
)

// UserLookup fetches user records by id.
type UserLookup interface {
	UsersByID(ctx context.Context, ids []string) ([]helix.User, error)
}

// StreamQuery filters a stream listing.
type StreamQuery struct {
	Limit    int
	Language string
	GameID   string
	Cursor   string
}

// StreamService lists live streams.
type StreamService struct {
	client    Requester
	formatter *StreamFormatter
	users     UserLookup
	logger    *slog.Logger
}

// NewStreamService creates a new stream service. When users is non-nil,
// full stream records get a best-effort profile_image_url.
func NewStreamService(client Requester, enricher *resolver.Enricher, users UserLookup, logger *slog.Logger) *StreamService {
	return &StreamService{
		client:    client,
		formatter: NewStreamFormatter(enricher),
		users:     users,
		logger:    logger,
	}
}

// TopStreams returns the most watched live streams.
func (s *StreamService) TopStreams(ctx context.Context, q StreamQuery) (domain.Page[domain.LiveStream], error) {
	params := pageParams(q.Limit, q.Cursor)
	return s.list(ctx, params, q, ProjectionFull, "Error processing streams")
}

// SidebarStreams returns the first page of top streams in the reduced
// sidebar projection. Any cursor is ignored.
func (s *StreamService) SidebarStreams(ctx context.Context, q StreamQuery) (domain.Page[domain.LiveStream], error) {
	params := pageParams(q.Limit, "")
	return s.list(ctx, params, q, ProjectionSidebar, "Error processing streams")
}

// GameStreams returns live streams for one category.
func (s *StreamService) GameStreams(ctx context.Context, gameID string, limit int, cursor string) (domain.Page[domain.LiveStream], error) {
	params := pageParams(limit, cursor)
	return s.list(ctx, params, StreamQuery{GameID: gameID}, ProjectionFull, "Error processing game streams")
}

// ChannelLive returns the live stream of login, if any. Records carry is_live.
func (s *StreamService) ChannelLive(ctx context.Context, login string) (domain.Page[domain.LiveStream], error) {
	params := pageParams(1, "")
	params.Set("user_login", login)

	page, err := s.list(ctx, params, StreamQuery{}, ProjectionFull, "Error processing channel live stream")
	if err != nil {
		return page, err
	}
	for i := range page.Data {
		page.Data[i].IsLive = lo.ToPtr(true)
	}
	return page, nil
}

func (s *StreamService) list(ctx context.Context, params url.Values, q StreamQuery, projection Projection, op string) (domain.Page[domain.LiveStream], error) {
	params.Set("type", "live")
	setIf(params, "language", q.Language)
	setIf(params, "game_id", q.GameID)

	page, err := fetchPage[helix.Stream](ctx, s.client, "streams", params)
	if err != nil {
		return domain.Page[domain.LiveStream]{}, s.fail(err, op)
	}

	streams, err := s.formatter.FormatAll(ctx, page.Data, projection)
	if err != nil {
		return domain.Page[domain.LiveStream]{}, s.fail(err, op)
	}

	if projection == ProjectionFull {
		s.attachProfileImages(ctx, streams)
	}
	return domain.NewPage(streams, page.NextCursor()), nil
}

// attachProfileImages fills profile_image_url from a single batched users
// lookup. Failure leaves the field null.
func (s *StreamService) attachProfileImages(ctx context.Context, streams []domain.LiveStream) {
	if s.users == nil || len(streams) == 0 {
		return
	}

	ids := lo.Uniq(lo.Map(streams, func(st domain.LiveStream, _ int) string { return st.UserID }))
	users, ok := resolver.BestEffort(ctx, s.logger, "lookup profile images", func(ctx context.Context) ([]helix.User, error) {
		return s.users.UsersByID(ctx, ids)
	})
	if !ok {
		return
	}

	images := lo.SliceToMap(users, func(u helix.User) (string, string) { return u.ID, u.ProfileImageURL })
	for i := range streams {
		if img, found := images[streams[i].UserID]; found && img != "" {
			streams[i].ProfileImageURL = lo.ToPtr(img)
		}
	}
}

func (s *StreamService) fail(err error, op string) error {
	s.logger.Error(op, "error", err)
	return domain.Wrap(err, op)
}
