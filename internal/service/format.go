package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/internal/resolver"
	"github.com/iconidentify/streamrelay/pkg/helix"
)

// Projection selects which stream fields are emitted.
type Projection int

const (
	// ProjectionFull emits every stream field.
	ProjectionFull Projection = iota
	// ProjectionSidebar emits only name, viewer count, thumbnails and URLs.
	ProjectionSidebar
)

const noCategory = "No Category"

// fields reads required values off a raw record, remembering the first
// one that is missing.
type fields struct {
	resource string
	err      *domain.ClassifiedError
}

func require[T any](f *fields, name string, v *T) T {
	if v == nil {
		if f.err == nil {
			f.err = domain.MissingField(f.resource, name)
		}
		var zero T
		return zero
	}
	return *v
}

func (f *fields) check() error {
	if f.err != nil {
		return f.err
	}
	return nil
}

// FormatStream maps a raw stream without enrichment; HLSURL is left nil.
func FormatStream(raw helix.Stream, projection Projection) (domain.LiveStream, error) {
	f := &fields{resource: "stream"}

	login := require(f, "user_login", raw.UserLogin)
	thumb := require(f, "thumbnail_url", raw.ThumbnailURL)
	rec := domain.LiveStream{
		StreamSummary: domain.StreamSummary{
			UserName:     require(f, "user_name", raw.UserName),
			ViewerCount:  require(f, "viewer_count", raw.ViewerCount),
			ThumbnailURL: thumb,
			Thumbnail:    domain.DeriveThumbnails(thumb, domain.BracePlaceholders),
			StreamURL:    "https://twitch.tv/" + login,
		},
	}

	if projection == ProjectionSidebar {
		return rec, f.check()
	}

	rec.StreamDetail = &domain.StreamDetail{
		ID:        require(f, "id", raw.ID),
		UserID:    require(f, "user_id", raw.UserID),
		UserLogin: login,
		GameID:    raw.GameID,
		GameName:  lo.CoalesceOrEmpty(lo.FromPtr(raw.GameName), noCategory),
		Title:     require(f, "title", raw.Title),
		StartedAt: require(f, "started_at", raw.StartedAt),
		Language:  require(f, "language", raw.Language),
		Tags:      lo.Ternary(raw.Tags == nil, []string{}, raw.Tags),
		IsMature:  lo.FromPtr(raw.IsMature),
		Type:      lo.FromPtrOr(raw.Type, "live"),
	}
	return rec, f.check()
}

// FormatCategory maps a raw game/category.
func FormatCategory(raw helix.Game) (domain.Category, error) {
	f := &fields{resource: "category"}

	boxArt := require(f, "box_art_url", raw.BoxArtURL)
	rec := domain.Category{
		ID:        require(f, "id", raw.ID),
		Name:      require(f, "name", raw.Name),
		BoxArtURL: boxArt,
		IGDBID:    lo.FromPtr(raw.IGDBID),
		Thumbnail: domain.DeriveThumbnails(boxArt, domain.BracePlaceholders),
	}
	return rec, f.check()
}

// FormatChannel maps a raw channel search result.
func FormatChannel(raw helix.Channel) (domain.Channel, error) {
	f := &fields{resource: "channel"}

	thumb := require(f, "thumbnail_url", raw.ThumbnailURL)
	rec := domain.Channel{
		ID:               require(f, "id", raw.ID),
		BroadcasterLogin: require(f, "broadcaster_login", raw.BroadcasterLogin),
		DisplayName:      require(f, "display_name", raw.DisplayName),
		Description:      lo.FromPtr(raw.Description),
		ThumbnailURL:     thumb,
		IsLive:           lo.FromPtr(raw.IsLive),
		Thumbnail:        domain.DeriveThumbnails(thumb, domain.BracePlaceholders),
	}
	return rec, f.check()
}

// FormatVideo maps a raw video without enrichment; HLSURL is left nil.
func FormatVideo(raw helix.Video) (domain.Video, error) {
	f := &fields{resource: "video"}

	thumb := lo.FromPtr(raw.ThumbnailURL)
	rec := domain.Video{
		ID:           require(f, "id", raw.ID),
		UserID:       require(f, "user_id", raw.UserID),
		UserLogin:    require(f, "user_login", raw.UserLogin),
		UserName:     require(f, "user_name", raw.UserName),
		Title:        require(f, "title", raw.Title),
		CreatedAt:    require(f, "created_at", raw.CreatedAt),
		Duration:     lo.FromPtr(raw.Duration),
		ViewCount:    lo.FromPtr(raw.ViewCount),
		URL:          require(f, "url", raw.URL),
		ThumbnailURL: thumb,
		Type:         lo.FromPtrOr(raw.Type, "archive"),
		Thumbnail:    domain.DeriveThumbnails(thumb, domain.PercentPlaceholders),
	}
	return rec, f.check()
}

// StreamFormatter formats streams and attaches their live HLS URL.
type StreamFormatter struct {
	enricher *resolver.Enricher
}

// NewStreamFormatter creates a stream formatter. A nil enricher leaves
// hls_url null on every record.
func NewStreamFormatter(enricher *resolver.Enricher) *StreamFormatter {
	return &StreamFormatter{enricher: enricher}
}

// Format formats and enriches a single stream.
func (f *StreamFormatter) Format(ctx context.Context, raw helix.Stream, projection Projection) (domain.LiveStream, error) {
	rec, err := FormatStream(raw, projection)
	if err != nil {
		return domain.LiveStream{}, err
	}
	rec.HLSURL = f.enricher.MediaURL(ctx, resolver.Live(*raw.UserLogin))
	return rec, nil
}

// FormatAll formats every stream, failing on the first invalid record, then
// resolves HLS URLs for all of them concurrently. Order is preserved.
func (f *StreamFormatter) FormatAll(ctx context.Context, raws []helix.Stream, projection Projection) ([]domain.LiveStream, error) {
	out := make([]domain.LiveStream, 0, len(raws))
	subjects := make([]resolver.Subject, 0, len(raws))
	for _, raw := range raws {
		rec, err := FormatStream(raw, projection)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
		subjects = append(subjects, resolver.Live(*raw.UserLogin))
	}

	for i, url := range f.enricher.MediaURLs(ctx, subjects) {
		out[i].HLSURL = url
	}
	return out, nil
}

// VideoFormatter formats videos and attaches their VOD HLS URL.
type VideoFormatter struct {
	enricher *resolver.Enricher
}

// NewVideoFormatter creates a video formatter. A nil enricher leaves
// hls_url null on every record.
func NewVideoFormatter(enricher *resolver.Enricher) *VideoFormatter {
	return &VideoFormatter{enricher: enricher}
}

// Format formats and enriches a single video.
func (f *VideoFormatter) Format(ctx context.Context, raw helix.Video) (domain.Video, error) {
	rec, err := FormatVideo(raw)
	if err != nil {
		return domain.Video{}, err
	}
	rec.HLSURL = f.enricher.MediaURL(ctx, resolver.VOD(rec.ID))
	return rec, nil
}

// FormatAll is the video counterpart of StreamFormatter.FormatAll.
func (f *VideoFormatter) FormatAll(ctx context.Context, raws []helix.Video) ([]domain.Video, error) {
	out, err := formatEach(raws, FormatVideo)
	if err != nil {
		return nil, err
	}

	subjects := lo.Map(out, func(v domain.Video, _ int) resolver.Subject { return resolver.VOD(v.ID) })
	for i, url := range f.enricher.MediaURLs(ctx, subjects) {
		out[i].HLSURL = url
	}
	return out, nil
}

// formatEach applies a pure formatter to every raw record, stopping at the
// first failure.
func formatEach[R, T any](raws []R, format func(R) (T, error)) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		rec, err := format(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
