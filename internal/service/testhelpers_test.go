package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sync"

	"github.com/iconidentify/streamrelay/internal/config"
	"github.com/iconidentify/streamrelay/internal/resolver"
	"github.com/iconidentify/streamrelay/pkg/helix"
	"github.com/iconidentify/streamrelay/pkg/usher"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordedCall struct {
	method   string
	endpoint string
	params   url.Values
}

// fakeRequester serves canned bodies per endpoint and records every call.
type fakeRequester struct {
	mu     sync.Mutex
	bodies map[string]string
	errs   map[string]error
	calls  []recordedCall
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{bodies: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeRequester) Request(ctx context.Context, method, endpoint string, params url.Values) (*helix.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{method: method, endpoint: endpoint, params: params})
	if err, ok := f.errs[endpoint]; ok {
		return nil, err
	}
	body, ok := f.bodies[endpoint]
	if !ok {
		return nil, fmt.Errorf("unexpected endpoint %q", endpoint)
	}
	return &helix.Response{StatusCode: 200, Body: json.RawMessage(body)}, nil
}

func (f *fakeRequester) lastCall(endpoint string) recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].endpoint == endpoint {
			return f.calls[i]
		}
	}
	return recordedCall{}
}

// fakeExtractor serves canned HLS variants keyed by watch URL.
type fakeExtractor struct {
	streams map[string]map[string]usher.Variant
}

func (f *fakeExtractor) Streams(ctx context.Context, watchURL string) (map[string]usher.Variant, error) {
	return f.streams[watchURL], nil
}

// newTestEnricher resolves "best" for the given subjects only.
func newTestEnricher(urls map[resolver.Subject]string) *resolver.Enricher {
	ex := &fakeExtractor{streams: map[string]map[string]usher.Variant{}}
	for subject, u := range urls {
		ex.streams[subject.WatchURL()] = map[string]usher.Variant{
			"best": {Protocol: usher.ProtocolHLS, URL: u},
		}
	}
	r := resolver.New(ex, config.ResolverConfig{}, testLogger())
	return resolver.NewEnricher(r, nil, "best", testLogger())
}

const streamsBody = `{
  "data": [
    {
      "id": "40952121085",
      "user_id": "101051819",
      "user_login": "afro",
      "user_name": "Afro",
      "game_id": "32982",
      "game_name": "Grand Theft Auto V",
      "type": "live",
      "title": "Jacob: Digital Den Laptops & Routers",
      "tags": ["English"],
      "viewer_count": 1490,
      "started_at": "2021-03-10T03:18:11Z",
      "language": "en",
      "thumbnail_url": "https://static-cdn.jtvnw.net/previews-ttv/live_user_afro-{width}x{height}.jpg",
      "is_mature": false
    },
    {
      "id": "40952121086",
      "user_id": "202",
      "user_login": "bob",
      "user_name": "Bob",
      "game_id": "",
      "game_name": "",
      "type": "live",
      "title": "chatting",
      "viewer_count": 12,
      "started_at": "2021-03-10T04:00:00Z",
      "language": "de",
      "thumbnail_url": ""
    }
  ],
  "pagination": {"cursor": "eyJiIjp7IkN1cnNvciI6ImV5SnpJam8zT0RNMk5TNDBORFF4TlRjMU1UY3hOU3dpWkNJNlptRnNjMlVzSW5RaU9uUnlkV1Y5In0sImEiOnsiQ3Vyc29yIjoiZXlKeklqb3hOVGd4TGpVMk5ETXhOVEl3TmpVMk1Dd2laQ0k2Wm1Gc2MyVXNJblFpT25SeWRXVjkifX0"}
}`
