package bamboo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// maxResponseSize is the maximum allowed response body size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// Config holds Bamboo API client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// UnauthorizedFunc is invoked whenever the API rejects a bearer token with 401.
// It receives the token that was rejected.
type UnauthorizedFunc func(ctx context.Context, token string)

// Client is the HTTP client for the Bamboo financial API. Every request carries
// the bearer token found in its context (see WithToken).
type Client struct {
	httpClient     *http.Client
	baseURL        string
	debug          bool
	onUnauthorized []UnauthorizedFunc
}

// NewClient constructs a new Bamboo API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		debug:      cfg.Debug,
	}
}

// OnUnauthorized registers a hook fired on every 401 response, whichever
// endpoint triggered it.
func (c *Client) OnUnauthorized(fn UnauthorizedFunc) {
	c.onUnauthorized = append(c.onUnauthorized, fn)
}

type tokenKey struct{}

// WithToken returns a context whose requests are authenticated with token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token attached to ctx, if any.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, nil, body, result)
}

func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, nil, body, result)
}

func (c *Client) patch(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPatch, path, nil, body, result)
}

func (c *Client) delete(ctx context.Context, path string, result any) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil, result)
}

// doRequest performs the HTTP call, attaches the bearer token from ctx and
// decodes the JSON response into result. Non-2xx responses are mapped to
// typed errors; nothing is retried.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.debug {
		evt := log.Debug().Str("method", method).Str("endpoint", endpoint)
		if payload != nil && !sensitivePath(path) {
			evt = evt.RawJSON("request", payload)
		}
		evt.Msg("[BAMBOO] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := TokenFrom(ctx)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", path).
			Int("status_code", resp.StatusCode).
			Int("bytes", len(respBody)).
			Msg("[BAMBOO] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := newAPIError(resp.StatusCode, respBody)
		if resp.StatusCode == http.StatusUnauthorized {
			for _, fn := range c.onUnauthorized {
				fn(ctx, token)
			}
		}
		return apiErr
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// sensitivePath reports whether request bodies for path carry credentials.
func sensitivePath(path string) bool {
	return strings.Contains(path, "login") ||
		strings.Contains(path, "password") ||
		strings.Contains(path, "register")
}
