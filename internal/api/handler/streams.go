package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/internal/service"
)

// StreamLister is the stream operations the handler needs.
type StreamLister interface {
	TopStreams(ctx context.Context, q service.StreamQuery) (domain.Page[domain.LiveStream], error)
	SidebarStreams(ctx context.Context, q service.StreamQuery) (domain.Page[domain.LiveStream], error)
	GameStreams(ctx context.Context, gameID string, limit int, cursor string) (domain.Page[domain.LiveStream], error)
	ChannelLive(ctx context.Context, login string) (domain.Page[domain.LiveStream], error)
}

// StreamHandler handles live stream endpoints.
type StreamHandler struct {
	streams StreamLister
	logger  *slog.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(streams StreamLister, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		streams: streams,
		logger:  logger,
	}
}

// Top handles GET /api/v1/streams/top
func (h *StreamHandler) Top(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultTopLimit, maxLimit)
	if err != nil {
		respond(w, h.logger, "TopLiveStreams", generic(err))
		return
	}

	page, err := h.streams.TopStreams(r.Context(), service.StreamQuery{
		Limit:    limit,
		Language: optional(r, "language"),
		GameID:   optional(r, "game_id"),
		Cursor:   optional(r, "cursor"),
	})
	if err != nil {
		respond(w, h.logger, "TopLiveStreams", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// Sidebar handles GET /api/v1/streams/sidebar
func (h *StreamHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultLimit, maxSidebarLimit)
	if err != nil {
		respond(w, h.logger, "SidebarStreams", generic(err))
		return
	}

	page, err := h.streams.SidebarStreams(r.Context(), service.StreamQuery{
		Limit:    limit,
		Language: optional(r, "language"),
		GameID:   optional(r, "game_id"),
	})
	if err != nil {
		respond(w, h.logger, "SidebarStreams", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// ChannelLive handles GET /api/v1/channels/{login}/live
func (h *StreamHandler) ChannelLive(w http.ResponseWriter, r *http.Request) {
	login, err := pathValue(chi.URLParam(r, "login"), "Invalid username")
	if err != nil {
		respond(w, h.logger, "CheckChannelLive", err)
		return
	}

	page, err := h.streams.ChannelLive(r.Context(), login)
	if err != nil {
		respond(w, h.logger, "CheckChannelLive", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// GameStreams handles GET /api/v1/games/{gameID}/streams
func (h *StreamHandler) GameStreams(w http.ResponseWriter, r *http.Request) {
	gameID, err := pathValue(chi.URLParam(r, "gameID"), "Invalid game ID")
	if err != nil {
		respond(w, h.logger, "GetGameStreams", err)
		return
	}
	limit, err := parseLimit(r, defaultLimit, maxLimit)
	if err != nil {
		respond(w, h.logger, "GetGameStreams", err)
		return
	}

	page, err := h.streams.GameStreams(r.Context(), gameID, limit, optional(r, "cursor"))
	if err != nil {
		respond(w, h.logger, "GetGameStreams", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
