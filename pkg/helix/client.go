// Package helix is a thin client for the Twitch Helix REST API. Every
// failure is reported as a *domain.ClassifiedError.
package helix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/oauth2"

	"github.com/iconidentify/streamrelay/internal/config"
	"github.com/iconidentify/streamrelay/internal/domain"
	"github.com/iconidentify/streamrelay/internal/metrics"
)

const maxBodySize = 10 << 20

// Response is a successful Helix reply. Body is always valid JSON.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// errorBody is the shape Helix uses for error replies.
type errorBody struct {
	Error      string `json:"error"`
	Status     int    `json:"status"`
	Message    string `json:"message"`
	RetryAfter *int   `json:"retry_after"`
}

// Client issues authenticated requests against the Helix API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new Helix API client. The access token is attached as
// a bearer token and the client id as the Client-ID header on every request.
func NewClient(cfg config.TwitchConfig, logger *slog.Logger) *Client {
	token := &oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.StaticTokenSource(token),
				Base:   &headerTransport{clientID: cfg.ClientID, base: http.DefaultTransport},
			},
		},
		logger: logger,
	}
}

type headerTransport struct {
	clientID string
	base     http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Client-ID", t.clientID)
	req.Header.Set("Content-Type", "application/json")
	return t.base.RoundTrip(req)
}

// Get is shorthand for Request with http.MethodGet.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Response, error) {
	return c.Request(ctx, http.MethodGet, endpoint, params)
}

// Request sends params to endpoint. GET requests carry params in the query
// string; POST requests carry them as a JSON object.
func (c *Client) Request(ctx context.Context, method, endpoint string, params url.Values) (*Response, error) {
	endpoint = strings.TrimLeft(endpoint, "/")
	fullURL := c.baseURL + "/" + endpoint
	method = strings.ToUpper(method)

	req, err := c.newRequest(ctx, method, fullURL, params)
	if err != nil {
		return nil, domain.Errorf(domain.KindUnknown, "Unexpected error: %v", err).WithCause(err)
	}

	c.logger.Info("helix request", "method", method, "url", fullURL)

	start := time.Now()
	resp, err := c.do(req)
	outcome := "ok"
	if err != nil {
		if ce, ok := domain.AsClassified(err); ok {
			outcome = ce.Kind.String()
		}
	}
	metrics.ObserveUpstream(endpoint, outcome, time.Since(start))

	return resp, err
}

func (c *Client) newRequest(ctx context.Context, method, fullURL string, params url.Values) (*http.Request, error) {
	if method == http.MethodPost {
		body, err := json.Marshal(valuesToJSON(params))
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		return http.NewRequestWithContext(ctx, method, fullURL, bytes.NewReader(body))
	}

	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	return http.NewRequestWithContext(ctx, method, fullURL, nil)
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classifyTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classifyTransportError(err)
	}

	body := normalizeBody(raw)

	if resp.StatusCode == http.StatusOK {
		var list struct {
			Data []json.RawMessage `json:"data"`
		}
		_ = json.Unmarshal(body, &list)
		c.logger.Info("helix request successful", "items", len(list.Data))
		return &Response{StatusCode: resp.StatusCode, Body: body}, nil
	}

	return nil, c.classifyStatus(resp, body)
}

// normalizeBody returns raw if it is valid JSON, otherwise a synthetic error
// object carrying the raw text.
func normalizeBody(raw []byte) json.RawMessage {
	if json.Valid(raw) {
		return raw
	}
	synthetic, _ := json.Marshal(errorBody{Error: "Unknown", Message: string(raw)})
	return synthetic
}

func (c *Client) classifyStatus(resp *http.Response, body json.RawMessage) error {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := func(fallback string) string {
		if eb.Message != "" {
			return eb.Message
		}
		return fallback
	}

	var ce *domain.ClassifiedError
	switch resp.StatusCode {
	case http.StatusBadRequest:
		ce = domain.Errorf(domain.KindBadRequest, "Bad Request: %s", msg("Bad Request"))
	case http.StatusUnauthorized:
		ce = domain.Errorf(domain.KindUnauthorized, "Unauthorized: %s. Check access token.", msg("Unauthorized"))
	case http.StatusForbidden:
		ce = domain.Errorf(domain.KindForbidden, "Forbidden: %s", msg("Forbidden"))
	case http.StatusNotFound:
		ce = domain.Errorf(domain.KindNotFound, "Not Found: %s", msg("Not Found"))
	case http.StatusTooManyRequests:
		retryAfter := retryAfterSeconds(eb, resp.Header)
		ce = domain.Errorf(domain.KindRateLimited, "Rate limit exceeded: %s. Retry after %ds", msg("Rate limit exceeded"), retryAfter).
			WithRetryAfter(retryAfter)
		c.logger.Warn("helix rate limit exceeded", "message", ce.Message, "retry_after", retryAfter)
		return ce
	case http.StatusInternalServerError:
		ce = domain.Errorf(domain.KindServerError, "Internal Server Error: %s", msg("Internal Server Error"))
	default:
		ce = domain.Errorf(domain.KindUnknown, "API request failed: %s", msg(fmt.Sprintf("HTTP %d", resp.StatusCode))).
			WithStatus(resp.StatusCode)
	}

	c.logger.Error("helix request failed", "status", resp.StatusCode, "error", ce.Message)
	return ce
}

// retryAfterSeconds prefers the body's retry_after, then the Retry-After header.
func retryAfterSeconds(eb errorBody, header http.Header) int {
	if eb.RetryAfter != nil {
		return *eb.RetryAfter
	}
	if v, err := strconv.Atoi(header.Get("Retry-After")); err == nil {
		return v
	}
	return 0
}

func (c *Client) classifyTransportError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		c.logger.Error("helix request timeout", "error", err)
		return domain.Errorf(domain.KindTimeout, "Request timeout after %d seconds", int(c.timeout.Seconds())).WithCause(err)
	case isConnectionError(err):
		c.logger.Error("helix connection error", "error", err)
		return domain.NewError(domain.KindConnectionFailure, "Failed to connect to Twitch API").WithCause(err)
	default:
		c.logger.Error("helix request error", "error", err)
		return domain.Errorf(domain.KindUnknown, "Request failed: %v", err).WithCause(err)
	}
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	var dnsErr *net.DNSError
	return errors.As(err, &opErr) ||
		errors.As(err, &dnsErr) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}

func valuesToJSON(params url.Values) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if len(v) == 1 {
			out[k] = v[0]
		} else {
			out[k] = v
		}
	}
	return out
}
