package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iconidentify/streamrelay/internal/domain"
)

// VideoLister lists a channel's archived broadcasts.
type VideoLister interface {
	ChannelVideos(ctx context.Context, login string, limit int, cursor string) (domain.Page[domain.Video], error)
}

// VideoHandler handles VOD endpoints.
type VideoHandler struct {
	videos VideoLister
	logger *slog.Logger
}

// NewVideoHandler creates a new video handler.
func NewVideoHandler(videos VideoLister, logger *slog.Logger) *VideoHandler {
	return &VideoHandler{
		videos: videos,
		logger: logger,
	}
}

// ChannelVideos handles GET /api/v1/channels/{login}/vods
func (h *VideoHandler) ChannelVideos(w http.ResponseWriter, r *http.Request) {
	login, err := pathValue(chi.URLParam(r, "login"), "Invalid username")
	if err != nil {
		respond(w, h.logger, "GetChannelVODs", err)
		return
	}
	limit, err := parseLimit(r, defaultLimit, maxLimit)
	if err != nil {
		respond(w, h.logger, "GetChannelVODs", err)
		return
	}

	page, err := h.videos.ChannelVideos(r.Context(), login, limit, optional(r, "cursor"))
	if err != nil {
		respond(w, h.logger, "GetChannelVODs", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
