// Package usher resolves Twitch watch URLs into HLS variant playlists using
// the public playback-token and usher endpoints.
package usher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/grafov/m3u8"

	"github.com/iconidentify/streamrelay/internal/config"
)

// ProtocolHLS tags variants served as HLS playlists.
const ProtocolHLS = "hls"

const playbackTokenHash = "0828119ded1c13477966434e15800ff57ddacf13ba1911c129dc2200705b0712"

// ErrUnsupportedURL is returned for watch URLs that name neither a channel nor a video.
var ErrUnsupportedURL = errors.New("unsupported watch URL")

// Variant describes one playable rendition.
type Variant struct {
	Protocol   string
	URL        string
	Bandwidth  int
	Resolution string
}

// Extractor lists the HLS variants available for a watch URL.
type Extractor struct {
	gqlURL     string
	usherURL   string
	clientID   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewExtractor creates an extractor from the resolver configuration.
func NewExtractor(cfg config.ResolverConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		gqlURL:   cfg.GQLURL,
		usherURL: strings.TrimRight(cfg.UsherURL, "/"),
		clientID: cfg.ClientID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// target is a parsed watch URL.
type target struct {
	login string
	vodID string
}

func (t target) isVOD() bool { return t.vodID != "" }

func parseWatchURL(raw string) (target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return target{}, fmt.Errorf("%w: %v", ErrUnsupportedURL, err)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	if host != "twitch.tv" {
		return target{}, fmt.Errorf("%w: %s", ErrUnsupportedURL, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "videos" && parts[1] != "":
		return target{vodID: strings.TrimPrefix(parts[1], "v")}, nil
	case len(parts) == 1 && parts[0] != "" && parts[0] != "videos":
		return target{login: strings.ToLower(parts[0])}, nil
	default:
		return target{}, fmt.Errorf("%w: %s", ErrUnsupportedURL, raw)
	}
}

// Streams returns the variants for watchURL keyed by quality name, plus the
// synthesised "best" and "worst" aliases. An offline channel or unknown video
// yields an empty map and no error.
func (e *Extractor) Streams(ctx context.Context, watchURL string) (map[string]Variant, error) {
	t, err := parseWatchURL(watchURL)
	if err != nil {
		return nil, err
	}

	token, err := e.accessToken(ctx, t)
	if err != nil {
		return nil, err
	}
	if token == nil {
		e.logger.Debug("no playback token", "url", watchURL)
		return map[string]Variant{}, nil
	}

	master, err := e.masterPlaylist(ctx, t, token)
	if err != nil {
		return nil, err
	}
	if master == nil {
		return map[string]Variant{}, nil
	}

	return variantsFromMaster(master), nil
}

type playbackToken struct {
	Value     string `json:"value"`
	Signature string `json:"signature"`
}

type gqlRequest struct {
	OperationName string         `json:"operationName"`
	Extensions    map[string]any `json:"extensions"`
	Variables     map[string]any `json:"variables"`
}

type gqlResponse struct {
	Data struct {
		Stream *playbackToken `json:"streamPlaybackAccessToken"`
		Video  *playbackToken `json:"videoPlaybackAccessToken"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *Extractor) accessToken(ctx context.Context, t target) (*playbackToken, error) {
	body, err := json.Marshal(gqlRequest{
		OperationName: "PlaybackAccessToken",
		Extensions: map[string]any{
			"persistedQuery": map[string]any{"version": 1, "sha256Hash": playbackTokenHash},
		},
		Variables: map[string]any{
			"isLive":     !t.isVOD(),
			"login":      t.login,
			"isVod":      t.isVOD(),
			"vodID":      t.vodID,
			"playerType": "embed",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.gqlURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Client-ID", e.clientID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request playback token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("playback token request returned status %d", resp.StatusCode)
	}

	var gr gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode playback token: %w", err)
	}
	if len(gr.Errors) > 0 {
		return nil, fmt.Errorf("playback token: %s", gr.Errors[0].Message)
	}

	token := gr.Data.Stream
	if t.isVOD() {
		token = gr.Data.Video
	}
	if token == nil || token.Value == "" {
		return nil, nil
	}
	return token, nil
}

func (e *Extractor) masterPlaylist(ctx context.Context, t target, token *playbackToken) (*m3u8.MasterPlaylist, error) {
	path := "/api/channel/hls/" + url.PathEscape(t.login) + ".m3u8"
	if t.isVOD() {
		path = "/vod/" + url.PathEscape(t.vodID) + ".m3u8"
	}

	q := url.Values{}
	q.Set("sig", token.Signature)
	q.Set("token", token.Value)
	q.Set("allow_source", "true")
	q.Set("allow_audio_only", "true")
	q.Set("player", "twitchweb")
	q.Set("p", strconv.Itoa(rand.IntN(9_000_000)+1_000_000))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.usherURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create usher request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request usher playlist: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("usher returned status %d", resp.StatusCode)
	}

	playlist, listType, err := m3u8.DecodeFrom(io.LimitReader(resp.Body, 1<<20), false)
	if err != nil {
		return nil, fmt.Errorf("parse usher playlist: %w", err)
	}
	master, ok := playlist.(*m3u8.MasterPlaylist)
	if listType != m3u8.MASTER || !ok {
		return nil, fmt.Errorf("usher returned a media playlist, expected a master playlist")
	}
	return master, nil
}

// variantsFromMaster names each variant after its EXT-X-MEDIA rendition and
// adds best/worst aliases by bandwidth. audio_only never becomes an alias.
func variantsFromMaster(master *m3u8.MasterPlaylist) map[string]Variant {
	names := make(map[string]string)
	for _, v := range master.Variants {
		if v == nil {
			continue
		}
		for _, alt := range v.Alternatives {
			if alt != nil && strings.EqualFold(alt.Type, "VIDEO") && alt.Name != "" {
				names[alt.GroupId] = alt.Name
			}
		}
	}

	out := make(map[string]Variant)
	for _, v := range master.Variants {
		if v == nil || v.URI == "" {
			continue
		}
		name := qualityName(names[v.Video], v.Video, v.Resolution)
		if name == "" {
			continue
		}
		variant := Variant{
			Protocol:   ProtocolHLS,
			URL:        v.URI,
			Bandwidth:  int(v.Bandwidth),
			Resolution: v.Resolution,
		}
		if prev, ok := out[name]; ok && prev.Bandwidth >= variant.Bandwidth {
			continue
		}
		out[name] = variant
	}

	var video []Variant
	for name, v := range out {
		if name != "audio_only" {
			video = append(video, v)
		}
	}
	if len(video) > 0 {
		sort.Slice(video, func(i, j int) bool { return video[i].Bandwidth < video[j].Bandwidth })
		out["worst"] = video[0]
		out["best"] = video[len(video)-1]
	}
	return out
}

func qualityName(mediaName, group, resolution string) string {
	name := mediaName
	if name == "" {
		switch {
		case group == "audio_only":
			name = "audio_only"
		case resolution != "":
			if _, h, ok := strings.Cut(resolution, "x"); ok {
				name = h + "p"
			}
		default:
			name = group
		}
	}
	name = strings.TrimSuffix(name, " (source)")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}
