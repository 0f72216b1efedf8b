package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/iconidentify/streamrelay/internal/config"
	"github.com/iconidentify/streamrelay/internal/logging"
	"github.com/iconidentify/streamrelay/internal/resolver"
	"github.com/iconidentify/streamrelay/internal/service"
	"github.com/iconidentify/streamrelay/internal/worker"
	"github.com/iconidentify/streamrelay/pkg/helix"
	"github.com/iconidentify/streamrelay/pkg/usher"
)

// poolStopTimeout bounds how long in-flight resolutions may run at exit.
const poolStopTimeout = 10 * time.Second

// newApp builds the command tree. Results go to stdout, logs to stderr.
func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "streamrelay",
		Usage:     "Twitch Helix proxy with HLS playback URL enrichment",
		Version:   fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				Sources: cli.EnvVars("STREAMRELAY_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			streamsCommand(),
			categoriesCommand(),
			channelsCommand(),
			vodsCommand(),
			resolveCommand(),
		},
	}
}

// stack is the wired dependency graph shared by every command.
type stack struct {
	cfg    *config.Config
	logger *slog.Logger
	pool   *worker.Pool

	resolver   *resolver.Resolver
	streams    *service.StreamService
	categories *service.CategoryService
	channels   *service.ChannelService
	videos     *service.VideoService
}

// loadStack reads configuration named by --config and wires the services.
// Callers must call close.
func loadStack(cmd *cli.Command) (*stack, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.Root().ErrWriter, logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, err
	}

	return newStack(cfg, logger), nil
}

func newStack(cfg *config.Config, logger *slog.Logger) *stack {
	pool := worker.NewPool(worker.Config{Workers: cfg.Resolver.Workers}, logger.With("component", "worker"))
	pool.Start()

	client := helix.NewClient(cfg.Twitch, logger.With("component", "helix"))
	res := resolver.New(
		usher.NewExtractor(cfg.Resolver, logger.With("component", "usher")),
		cfg.Resolver,
		logger.With("component", "resolver"),
	)

	var enricher *resolver.Enricher
	if cfg.Resolver.Enabled {
		enricher = resolver.NewEnricher(res, pool, cfg.Resolver.Quality, logger)
	}

	channels := service.NewChannelService(client, logger)
	var users service.UserLookup
	if cfg.Twitch.ProfileImages {
		users = channels
	}

	return &stack{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		resolver:   res,
		streams:    service.NewStreamService(client, enricher, users, logger),
		categories: service.NewCategoryService(client, logger),
		channels:   channels,
		videos:     service.NewVideoService(client, channels, enricher, logger),
	}
}

func (s *stack) close() {
	if err := s.pool.Stop(poolStopTimeout); err != nil {
		s.logger.Warn("worker pool did not stop cleanly", "error", err)
	}
}
