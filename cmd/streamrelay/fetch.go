package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/iconidentify/streamrelay/internal/resolver"
	"github.com/iconidentify/streamrelay/internal/service"
)

func limitFlag(value int) cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Number of records to fetch",
		Value:   value,
	}
}

func cursorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "cursor",
		Usage: "Pagination cursor from a previous page",
	}
}

func languageFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "language",
		Usage: "Filter by broadcast language (ISO 639-1)",
	}
}

func gameFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "game-id",
		Usage: "Filter by category id",
	}
}

func streamsCommand() *cli.Command {
	return &cli.Command{
		Name:  "streams",
		Usage: "Live stream listings",
		Commands: []*cli.Command{
			{
				Name:  "top",
				Usage: "Most watched live streams",
				Flags: []cli.Flag{limitFlag(10), languageFlag(), gameFlag(), cursorFlag()},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					return s.streams.TopStreams(ctx, streamQuery(cmd))
				}),
			},
			{
				Name:  "sidebar",
				Usage: "Top streams in the reduced sidebar form",
				Flags: []cli.Flag{limitFlag(5), languageFlag(), gameFlag()},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					return s.streams.SidebarStreams(ctx, streamQuery(cmd))
				}),
			},
			{
				Name:      "live",
				Usage:     "Show a channel's live stream, if any",
				Arguments: []cli.Argument{&cli.StringArg{Name: "login"}},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					login, err := requiredArg(cmd, "login")
					if err != nil {
						return nil, err
					}
					return s.streams.ChannelLive(ctx, login)
				}),
			},
			{
				Name:      "game",
				Usage:     "Live streams in one category",
				Arguments: []cli.Argument{&cli.StringArg{Name: "game-id"}},
				Flags:     []cli.Flag{limitFlag(5), cursorFlag()},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					gameID, err := requiredArg(cmd, "game-id")
					if err != nil {
						return nil, err
					}
					return s.streams.GameStreams(ctx, gameID, int(cmd.Int("limit")), cmd.String("cursor"))
				}),
			},
		},
	}
}

func categoriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Category listings",
		Commands: []*cli.Command{
			{
				Name:  "top",
				Usage: "Most watched categories",
				Flags: []cli.Flag{limitFlag(10), cursorFlag()},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					return s.categories.TopCategories(ctx, int(cmd.Int("limit")), cmd.String("cursor"))
				}),
			},
			{
				Name:      "search",
				Usage:     "Search categories by name",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{limitFlag(5), cursorFlag()},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					query, err := requiredArg(cmd, "query")
					if err != nil {
						return nil, err
					}
					return s.categories.SearchCategories(ctx, query, int(cmd.Int("limit")), cmd.String("cursor"))
				}),
			},
		},
	}
}

func channelsCommand() *cli.Command {
	return &cli.Command{
		Name:  "channels",
		Usage: "Channel lookups",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search channels by name",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     []cli.Flag{limitFlag(5), cursorFlag()},
				Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
					query, err := requiredArg(cmd, "query")
					if err != nil {
						return nil, err
					}
					return s.channels.SearchChannels(ctx, query, int(cmd.Int("limit")), cmd.String("cursor"))
				}),
			},
		},
	}
}

func vodsCommand() *cli.Command {
	return &cli.Command{
		Name:      "vods",
		Usage:     "List a channel's archived broadcasts",
		Arguments: []cli.Argument{&cli.StringArg{Name: "login"}},
		Flags:     []cli.Flag{limitFlag(5), cursorFlag()},
		Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
			login, err := requiredArg(cmd, "login")
			if err != nil {
				return nil, err
			}
			return s.videos.ChannelVideos(ctx, login, int(cmd.Int("limit")), cmd.String("cursor"))
		}),
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve the HLS playlist URL of a live channel or VOD",
		Arguments: []cli.Argument{&cli.StringArg{Name: "target"}},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "vod",
				Usage: "Treat the target as a VOD id instead of a channel login",
			},
			&cli.StringFlag{
				Name:  "quality",
				Usage: "Variant name, or best/worst",
				Value: resolver.DefaultQuality,
			},
		},
		Action: withStack(func(ctx context.Context, cmd *cli.Command, s *stack) (any, error) {
			target, err := requiredArg(cmd, "target")
			if err != nil {
				return nil, err
			}
			subject := resolver.Live(target)
			if cmd.Bool("vod") {
				subject = resolver.VOD(target)
			}

			url, err := s.resolver.Resolve(ctx, subject, cmd.String("quality"))
			if err != nil {
				return nil, err
			}
			return map[string]string{
				"subject": subject.String(),
				"hls_url": url,
			}, nil
		}),
	}
}

// withStack loads the stack for the duration of one command and prints the
// result as indented JSON.
func withStack(fn func(ctx context.Context, cmd *cli.Command, s *stack) (any, error)) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		s, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		result, err := fn(ctx, cmd, s)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.Root().Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}

func streamQuery(cmd *cli.Command) service.StreamQuery {
	return service.StreamQuery{
		Limit:    int(cmd.Int("limit")),
		Language: cmd.String("language"),
		GameID:   cmd.String("game-id"),
		Cursor:   cmd.String("cursor"),
	}
}

func requiredArg(cmd *cli.Command, name string) (string, error) {
	value := strings.TrimSpace(cmd.StringArg(name))
	if value == "" {
		return "", fmt.Errorf("missing required argument %q", name)
	}
	return value, nil
}
