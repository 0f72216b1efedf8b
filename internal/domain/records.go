package domain

// Thumbnail holds the three fixed-size renditions derived from a template URL.
type Thumbnail struct {
	Small  string `json:"small"`
	Medium string `json:"medium"`
	Large  string `json:"large"`
}

// StreamSummary is the sidebar projection of a live stream.
type StreamSummary struct {
	UserName     string    `json:"user_name"`
	ViewerCount  int       `json:"viewer_count"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Thumbnail    Thumbnail `json:"thumbnail"`
	StreamURL    string    `json:"stream_url"`
	HLSURL       *string   `json:"hls_url"`
}

// StreamDetail carries the fields only present in the full projection.
type StreamDetail struct {
	ID              string   `json:"id"`
	UserID          string   `json:"user_id"`
	UserLogin       string   `json:"user_login"`
	GameID          *string  `json:"game_id"`
	GameName        string   `json:"game_name"`
	Title           string   `json:"title"`
	StartedAt       string   `json:"started_at"`
	Language        string   `json:"language"`
	Tags            []string `json:"tags"`
	IsMature        bool     `json:"is_mature"`
	Type            string   `json:"type"`
	ProfileImageURL *string  `json:"profile_image_url"`
}

// LiveStream is a formatted stream record. Detail is nil for sidebar records,
// which drops its fields from the JSON output.
type LiveStream struct {
	StreamSummary
	*StreamDetail
	IsLive *bool `json:"is_live,omitempty"`
}

// Category is a formatted game/category record.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BoxArtURL string    `json:"box_art_url"`
	IGDBID    string    `json:"igdb_id"`
	Thumbnail Thumbnail `json:"thumbnail"`
}

// Channel is a formatted channel search result.
type Channel struct {
	ID               string    `json:"id"`
	BroadcasterLogin string    `json:"broadcaster_login"`
	DisplayName      string    `json:"display_name"`
	Description      string    `json:"description"`
	ThumbnailURL     string    `json:"thumbnail_url"`
	IsLive           bool      `json:"is_live"`
	Thumbnail        Thumbnail `json:"thumbnail"`
}

// Video is a formatted VOD record.
type Video struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	UserLogin    string    `json:"user_login"`
	UserName     string    `json:"user_name"`
	Title        string    `json:"title"`
	CreatedAt    string    `json:"created_at"`
	Duration     string    `json:"duration"`
	ViewCount    int       `json:"view_count"`
	URL          string    `json:"url"`
	HLSURL       *string   `json:"hls_url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Type         string    `json:"type"`
	Thumbnail    Thumbnail `json:"thumbnail"`
}

// Pagination carries the opaque continuation token. Cursor is nil on the last page.
type Pagination struct {
	Cursor *string `json:"cursor"`
}

// Page is one page of formatted records.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage builds a page, normalising an empty cursor to nil and a nil slice to an empty one.
func NewPage[T any](data []T, cursor *string) Page[T] {
	if data == nil {
		data = []T{}
	}
	if cursor != nil && *cursor == "" {
		cursor = nil
	}
	return Page[T]{Data: data, Pagination: Pagination{Cursor: cursor}}
}
