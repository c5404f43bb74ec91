// Package api is the REST client for the project dashboard backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/project-dashboard/internal/apperr"
)

// maxResponseBodyBytes bounds how much of a response body is read.
const maxResponseBodyBytes = 4 << 20

// TokenSource supplies the session bearer token. An empty token means
// "not logged in" and the request is sent without credentials.
type TokenSource interface {
	Token() (string, error)
}

// Client is a thin HTTP client for the dashboard REST API. It attaches
// the bearer token, unwraps the {success, data, message} envelope and
// maps failures onto the apperr taxonomy. It never retries.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	timeout    time.Duration // 0 keeps the http.Client's own timeout
	log        zerolog.Logger
}

const defaultTimeout = 30 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sends requests through h. A nil h keeps the default.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout bounds each request. It applies to a copy of the HTTP
// client, so a client passed to WithHTTPClient is never modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client. baseURL is the API root
// (e.g. https://pm.example.com/api).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.httpClient == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		h := *c.httpClient
		h.Timeout = c.timeout
		c.httpClient = &h
	}
	return c
}

// envelope is the standard response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// response is an unwrapped successful envelope.
type response struct {
	status int
	data   json.RawMessage
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*response, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (*response, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) put(ctx context.Context, path string, body any) (*response, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) patch(ctx context.Context, path string, body any) (*response, error) {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string) (*response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// do is the core HTTP method that builds the request, attaches auth,
// and unwraps the response envelope.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	query url.Values,
	body any,
) (*response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, apperr.Network(fmt.Errorf("executing request %s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, apperr.Network(fmt.Errorf("reading response body: %w", err))
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(started)).
		Msg("api request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errorFromResponse(resp.StatusCode, resp.Header.Get("Content-Type"), payload)
	}

	// No content to parse (e.g. 204 after a delete).
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(payload)) == 0 {
		return &response{status: resp.StatusCode}, nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, apperr.Malformed(resp.StatusCode, classifyDecodeError(resp.Header.Get("Content-Type"), payload, err))
	}
	if env.Success == nil && len(env.Data) == 0 {
		return nil, apperr.Malformed(resp.StatusCode, "missing response envelope")
	}
	if env.Success != nil && !*env.Success {
		return nil, apperr.Server(resp.StatusCode, env.Message)
	}

	return &response{status: resp.StatusCode, data: env.Data}, nil
}

// token asks the token source for the bearer credential. Failures are
// logged and the request proceeds unauthenticated; the backend decides.
func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	token, err := c.tokens.Token()
	if err != nil {
		c.log.Debug().Err(err).Msg("session token unavailable")
		return ""
	}
	return strings.TrimSpace(token)
}

// identifiable is satisfied by every entity the API returns.
type identifiable interface {
	GetID() string
}

// decodeOne decodes the envelope data into a single entity and rejects
// entities without an id.
func decodeOne[T identifiable](r *response) (T, error) {
	var out T
	if isNull(r.data) {
		return out, apperr.Malformed(r.status, "missing data")
	}
	if err := json.Unmarshal(r.data, &out); err != nil {
		return out, apperr.Malformed(r.status, err.Error())
	}
	if strings.TrimSpace(out.GetID()) == "" {
		return out, apperr.Malformed(r.status, "entity without id")
	}
	return out, nil
}

// decodeList decodes the envelope data into a list. The data may be the
// array itself or an object holding it under key.
func decodeList[T identifiable](r *response, key string) ([]T, error) {
	if isNull(r.data) {
		return nil, apperr.Malformed(r.status, "missing data")
	}

	raw := r.data
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, apperr.Malformed(r.status, err.Error())
		}
		inner, ok := wrapped[key]
		if !ok || isNull(inner) {
			return nil, apperr.Malformed(r.status, fmt.Sprintf("missing %q list", key))
		}
		raw = inner
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperr.Malformed(r.status, err.Error())
	}
	for i, item := range out {
		if strings.TrimSpace(item.GetID()) == "" {
			return nil, apperr.Malformed(r.status, fmt.Sprintf("entity %d without id", i))
		}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// escape path-escapes a single id segment.
func escape(id string) string {
	return url.PathEscape(id)
}

// requireID guards operations that target a specific entity.
func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation(field, field+" must not be empty")
	}
	return nil
}

// IsCanceled reports whether err came from a canceled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
