// Package resolver turns channel logins and video ids into directly playable
// HLS URLs. Resolution is best-effort: callers use BestEffort or Enricher so
// a failure here never fails the request that asked for it.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/time/rate"

	"github.com/iconidentify/streamrelay/internal/config"
	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/pkg/usher"
)

// DefaultQuality selects the highest-bandwidth rendition.
const DefaultQuality = "best"

// Extractor lists every variant available for a watch URL, keyed by quality.
type Extractor interface {
	Streams(ctx context.Context, watchURL string) (map[string]usher.Variant, error)
}

// SubjectKind distinguishes live channels from recorded videos.
type SubjectKind int

const (
	SubjectLive SubjectKind = iota
	SubjectVOD
)

func (k SubjectKind) String() string {
	if k == SubjectVOD {
		return "vod"
	}
	return "live"
}

// Subject identifies what to resolve: a channel login or a video id.
type Subject struct {
	Kind SubjectKind
	ID   string
}

// Live returns the subject for a channel's live stream.
func Live(login string) Subject { return Subject{Kind: SubjectLive, ID: login} }

// VOD returns the subject for a recorded video.
func VOD(id string) Subject { return Subject{Kind: SubjectVOD, ID: id} }

// WatchURL is the canonical twitch.tv page for the subject.
func (s Subject) WatchURL() string {
	if s.Kind == SubjectVOD {
		return "https://www.twitch.tv/videos/" + s.ID
	}
	return "https://twitch.tv/" + s.ID
}

func (s Subject) describe() string {
	if s.Kind == SubjectVOD {
		return "VOD " + s.ID
	}
	return s.ID
}

// Resolver picks one HLS variant for a subject.
type Resolver struct {
	extractor Extractor
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a resolver. A zero RateLimit disables pacing.
func New(extractor Extractor, cfg config.ResolverConfig, logger *slog.Logger) *Resolver {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}
	return &Resolver{
		extractor: extractor,
		limiter:   limiter,
		logger:    logger,
	}
}

// Resolve returns the URL of the requested quality. It fails with NotFound
// when nothing (or nothing HLS) is available, with BadRequest when quality is
// not among the HLS variants, and with Unknown for anything else.
func (r *Resolver) Resolve(ctx context.Context, subject Subject, quality string) (string, error) {
	if quality == "" {
		quality = DefaultQuality
	}
	logger := r.logger.With("subject", subject.Kind.String(), "id", subject.ID)

	if err := r.limiter.Wait(ctx); err != nil {
		return "", r.unexpected(subject, err)
	}

	streams, err := r.extractor.Streams(ctx, subject.WatchURL())
	if err != nil {
		logger.Error("extract streams failed", "error", err)
		return "", r.unexpected(subject, err)
	}

	if len(streams) == 0 {
		logger.Warn("no streams available")
		if subject.Kind == SubjectVOD {
			return "", domain.Errorf(domain.KindNotFound, "No VOD streams available for ID %s", subject.ID)
		}
		return "", domain.Errorf(domain.KindNotFound, "No streams available for %s", subject.ID)
	}

	hls := lo.PickBy(streams, func(_ string, v usher.Variant) bool {
		return v.Protocol == usher.ProtocolHLS
	})
	if len(hls) == 0 {
		logger.Warn("no HLS streams available")
		return "", domain.Errorf(domain.KindNotFound, "No HLS streams available for %s", subject.describe())
	}

	variant, ok := hls[quality]
	if !ok {
		available := availableQualities(hls)
		logger.Warn("quality not available", "quality", quality, "options", available)
		return "", domain.Errorf(domain.KindBadRequest, "Quality '%s' not available. Options: [%s]",
			quality, strings.Join(available, ", "))
	}

	logger.Info("extracted HLS URL", "quality", quality)
	return variant.URL, nil
}

func (r *Resolver) unexpected(subject Subject, err error) *domain.ClassifiedError {
	prefix := "Failed to extract HLS URL"
	if subject.Kind == SubjectVOD {
		prefix = "Failed to extract VOD HLS URL"
	}
	return domain.Errorf(domain.KindUnknown, "%s: %v", prefix, err).WithCause(err)
}

// availableQualities lists quality keys by ascending bandwidth, then name.
func availableQualities(variants map[string]usher.Variant) []string {
	keys := lo.Keys(variants)
	sort.Slice(keys, func(i, j int) bool {
		bi, bj := variants[keys[i]].Bandwidth, variants[keys[j]].Bandwidth
		if bi != bj {
			return bi < bj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// String implements fmt.Stringer for log output.
func (s Subject) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.ID)
}
