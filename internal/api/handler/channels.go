package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iconidentify/streamrelay/internal/domain"
)

// ChannelSearcher searches channels by name.
type ChannelSearcher interface {
	SearchChannels(ctx context.Context, query string, limit int, cursor string) (domain.Page[domain.Channel], error)
}

// ChannelHandler handles channel search.
type ChannelHandler struct {
	channels ChannelSearcher
	logger   *slog.Logger
}

// NewChannelHandler creates a new channel handler.
func NewChannelHandler(channels ChannelSearcher, logger *slog.Logger) *ChannelHandler {
	return &ChannelHandler{
		channels: channels,
		logger:   logger,
	}
}

// Search handles GET /api/v1/search/channels
func (h *ChannelHandler) Search(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultLimit, maxLimit)
	if err != nil {
		respond(w, h.logger, "SearchChannels", err)
		return
	}
	query, err := requiredQuery(r)
	if err != nil {
		respond(w, h.logger, "SearchChannels", err)
		return
	}

	page, err := h.channels.SearchChannels(r.Context(), query, limit, optional(r, "cursor"))
	if err != nil {
		respond(w, h.logger, "SearchChannels", err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
