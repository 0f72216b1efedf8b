package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/internal/service"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withURLParam attaches a chi route parameter to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func strPtr(s string) *string { return &s }

// mockStreamLister records the arguments of the last call.
type mockStreamLister struct {
	page   domain.Page[domain.LiveStream]
	err    error
	calls  int
	query  service.StreamQuery
	login  string
	gameID string
}

func (m *mockStreamLister) TopStreams(ctx context.Context, q service.StreamQuery) (domain.Page[domain.LiveStream], error) {
	m.calls++
	m.query = q
	return m.page, m.err
}

func (m *mockStreamLister) SidebarStreams(ctx context.Context, q service.StreamQuery) (domain.Page[domain.LiveStream], error) {
	m.calls++
	m.query = q
	return m.page, m.err
}

func (m *mockStreamLister) GameStreams(ctx context.Context, gameID string, limit int, cursor string) (domain.Page[domain.LiveStream], error) {
	m.calls++
	m.gameID = gameID
	m.query = service.StreamQuery{Limit: limit, Cursor: cursor, GameID: gameID}
	return m.page, m.err
}

func (m *mockStreamLister) ChannelLive(ctx context.Context, login string) (domain.Page[domain.LiveStream], error) {
	m.calls++
	m.login = login
	return m.page, m.err
}

type mockCategoryLister struct {
	page   domain.Page[domain.Category]
	err    error
	calls  int
	query  string
	limit  int
	cursor string
}

func (m *mockCategoryLister) TopCategories(ctx context.Context, limit int, cursor string) (domain.Page[domain.Category], error) {
	m.calls++
	m.limit, m.cursor = limit, cursor
	return m.page, m.err
}

func (m *mockCategoryLister) SearchCategories(ctx context.Context, query string, limit int, cursor string) (domain.Page[domain.Category], error) {
	m.calls++
	m.query, m.limit, m.cursor = query, limit, cursor
	return m.page, m.err
}

type mockChannelSearcher struct {
	page   domain.Page[domain.Channel]
	err    error
	calls  int
	query  string
	limit  int
	cursor string
}

func (m *mockChannelSearcher) SearchChannels(ctx context.Context, query string, limit int, cursor string) (domain.Page[domain.Channel], error) {
	m.calls++
	m.query, m.limit, m.cursor = query, limit, cursor
	return m.page, m.err
}

type mockVideoLister struct {
	page   domain.Page[domain.Video]
	err    error
	calls  int
	login  string
	limit  int
	cursor string
}

func (m *mockVideoLister) ChannelVideos(ctx context.Context, login string, limit int, cursor string) (domain.Page[domain.Video], error) {
	m.calls++
	m.login, m.limit, m.cursor = login, limit, cursor
	return m.page, m.err
}
