package helix

import "encoding/json"

// Page is the list envelope Helix wraps every collection in.
type Page[T any] struct {
	Data       []T `json:"data"`
	Pagination struct {
		Cursor string `json:"cursor"`
	} `json:"pagination"`
}

// NextCursor returns the continuation token, or nil when there is none.
func (p *Page[T]) NextCursor() *string {
	if p.Pagination.Cursor == "" {
		return nil
	}
	c := p.Pagination.Cursor
	return &c
}

// DecodePage unmarshals a list response. A body without a data array
// decodes to an empty page.
func DecodePage[T any](resp *Response) (*Page[T], error) {
	var page Page[T]
	if err := json.Unmarshal(resp.Body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Raw upstream records. Pointer fields distinguish "absent" from the zero
// value so formatters can reject records missing required fields.

// Stream is an entry of GET /streams.
type Stream struct {
	ID           *string  `json:"id"`
	UserID       *string  `json:"user_id"`
	UserLogin    *string  `json:"user_login"`
	UserName     *string  `json:"user_name"`
	GameID       *string  `json:"game_id"`
	GameName     *string  `json:"game_name"`
	Type         *string  `json:"type"`
	Title        *string  `json:"title"`
	ViewerCount  *int     `json:"viewer_count"`
	StartedAt    *string  `json:"started_at"`
	Language     *string  `json:"language"`
	ThumbnailURL *string  `json:"thumbnail_url"`
	Tags         []string `json:"tags"`
	IsMature     *bool    `json:"is_mature"`
}

// Game is an entry of GET /games/top and GET /search/categories.
type Game struct {
	ID        *string `json:"id"`
	Name      *string `json:"name"`
	BoxArtURL *string `json:"box_art_url"`
	IGDBID    *string `json:"igdb_id"`
}

// Channel is an entry of GET /search/channels.
type Channel struct {
	ID               *string `json:"id"`
	BroadcasterLogin *string `json:"broadcaster_login"`
	DisplayName      *string `json:"display_name"`
	Description      *string `json:"description"`
	ThumbnailURL     *string `json:"thumbnail_url"`
	IsLive           *bool   `json:"is_live"`
}

// Video is an entry of GET /videos.
type Video struct {
	ID           *string `json:"id"`
	UserID       *string `json:"user_id"`
	UserLogin    *string `json:"user_login"`
	UserName     *string `json:"user_name"`
	Title        *string `json:"title"`
	CreatedAt    *string `json:"created_at"`
	Duration     *string `json:"duration"`
	ViewCount    *int    `json:"view_count"`
	URL          *string `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Type         *string `json:"type"`
}

// User is an entry of GET /users.
type User struct {
	ID              string `json:"id"`
	Login           string `json:"login"`
	DisplayName     string `json:"display_name"`
	ProfileImageURL string `json:"profile_image_url"`
}
