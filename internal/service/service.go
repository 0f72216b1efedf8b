// Package service orchestrates Helix requests and record formatting for each
// resource the API exposes.
package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/iconidentify/streamrelay/pkg/helix"
)

const (
	minLimit = 1
	maxLimit = 100
)

// Requester is the one capability services need from the upstream client.
type Requester interface {
	Request(ctx context.Context, method, endpoint string, params url.Values) (*helix.Response, error)
}

// clampLimit forces limit into the range Helix accepts.
func clampLimit(limit int) int {
	return min(max(limit, minLimit), maxLimit)
}

// pageParams builds the first/after parameters shared by every listing.
func pageParams(limit int, cursor string) url.Values {
	params := url.Values{}
	params.Set("first", strconv.Itoa(clampLimit(limit)))
	if cursor != "" {
		params.Set("after", cursor)
	}
	return params
}

// setIf sets key only when value is non-empty.
func setIf(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func fetchPage[R any](ctx context.Context, client Requester, endpoint string, params url.Values) (*helix.Page[R], error) {
	resp, err := client.Request(ctx, http.MethodGet, endpoint, params)
	if err != nil {
		return nil, err
	}
	return helix.DecodePage[R](resp)
}
