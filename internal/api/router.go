package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iconidentify/streamrelay/internal/api/handler"
	mw "github.com/iconidentify/streamrelay/internal/api/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Streams    *handler.StreamHandler
	Categories *handler.CategoryHandler
	Channels   *handler.ChannelHandler
	Videos     *handler.VideoHandler
	Health     *handler.HealthHandler
}

// Options configures the middleware stack.
type Options struct {
	// APIKey protects the resource endpoints when non-empty.
	APIKey string
	// RateLimit is the per-IP request budget per minute. Zero disables it.
	RateLimit int
	// RequestTimeout bounds each request's context.
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(h Handlers, opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.StripSlashes) // Accept /streams/top/ as well as /streams/top
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(opts.Logger))
	r.Use(mw.Recovery(opts.Logger))
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	r.Use(mw.CORS)

	// Probes and metrics (no auth, no rate limit)
	r.Get("/", h.Health.Home)
	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", h.Health.Home)
		r.Get("/health", h.Health.Live)

		r.Group(func(r chi.Router) {
			if opts.RateLimit > 0 {
				r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
			}
			if opts.APIKey != "" {
				r.Use(mw.APIKeyAuth(opts.APIKey))
			}

			r.Get("/stats", h.Health.Stats)

			// Streams
			r.Get("/streams/top", h.Streams.Top)
			r.Get("/streams/sidebar", h.Streams.Sidebar)
			r.Get("/games/{gameID}/streams", h.Streams.GameStreams)
			r.Get("/channels/{login}/live", h.Streams.ChannelLive)

			// Categories
			r.Get("/categories/top", h.Categories.Top)
			r.Get("/search/games", h.Categories.Search)

			// Channels and VODs
			r.Get("/search/channels", h.Channels.Search)
			r.Get("/channels/{login}/vods", h.Videos.ChannelVideos)
		})
	})

	return r
}
