package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/iconidentify/streamrelay/internal/api"
	"github.com/iconidentify/streamrelay/internal/api/handler"
)

const shutdownTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Override the configured listen port",
			},
		},
		Action: serve,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	s, err := loadStack(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	if port := int(cmd.Int("port")); port > 0 {
		s.cfg.Server.Port = port
	}

	s.logger.Info("starting streamrelay",
		"version", Version,
		"build_time", BuildTime,
		"resolver_enabled", s.cfg.Resolver.Enabled,
		"workers", s.pool.Workers(),
	)

	srv := &http.Server{
		Addr:         s.cfg.Server.Address(),
		Handler:      s.router(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop accepting new requests; the deferred close drains the worker pool.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown error", "error", err)
		return err
	}

	s.logger.Info("shutdown complete")
	return nil
}

// router mounts the API handlers over the stack's services.
func (s *stack) router() http.Handler {
	logger := s.logger.With("component", "api")

	return api.NewRouter(api.Handlers{
		Streams:    handler.NewStreamHandler(s.streams, logger),
		Categories: handler.NewCategoryHandler(s.categories, logger),
		Channels:   handler.NewChannelHandler(s.channels, logger),
		Videos:     handler.NewVideoHandler(s.videos, logger),
		Health: handler.NewHealthHandler(
			handler.ReadinessCheck{Name: "config", Check: func(context.Context) error { return s.cfg.Validate() }},
			handler.ReadinessCheck{Name: "worker_pool", Check: s.pool.Check},
		),
	}, api.Options{
		APIKey:         s.cfg.Server.APIKey,
		RateLimit:      s.cfg.Server.RateLimit,
		RequestTimeout: s.cfg.Server.WriteTimeout,
		Logger:         logger,
	})
}
