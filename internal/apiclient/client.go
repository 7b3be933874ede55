package apiclient

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

	"farsha/internal/config"
	"farsha/internal/logging"
	"farsha/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Namespace tags a request with the session it belongs to.
type Namespace string

const (
	NamespaceCustomer Namespace = "customer"
	NamespacePartner  Namespace = "partner"
)

const maxBodyBytes = 4 << 20

// TokenSource yields the persisted bearer token of a namespace for the
// visitor carried by ctx. An empty token sends no Authorization header.
type TokenSource interface {
	Token(ctx context.Context, ns Namespace) (string, error)
}

// UnauthorizedHandler is called on HTTP 401 with the namespace of the
// rejected request.
type UnauthorizedHandler func(ctx context.Context, ns Namespace)

// Client calls the remote REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *zerolog.Logger

	onUnauthorized UnauthorizedHandler

	redis    *redis.Client
	cacheTTL time.Duration
}

func New(cfg config.BackendConfig, tokens TokenSource, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		logger:     logging.Component(logger, "apiclient"),
	}
}

// OnUnauthorized registers the 401 handler.
func (c *Client) OnUnauthorized(fn UnauthorizedHandler) {
	c.onUnauthorized = fn
}

// UseRedisCache configures optional Redis caching for reference data.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, "farsha:cache:"+key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(val), out) == nil
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, "farsha:cache:"+key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// getCached is doGet behind the redis cache. Only public reference
// data goes through here.
func (c *Client) getCached(ctx context.Context, key, path string, out any) error {
	if c.readCache(ctx, key, out) {
		return nil
	}
	if err := c.doGet(ctx, NamespaceCustomer, path, nil, out); err != nil {
		return err
	}
	c.writeCache(ctx, key, out)
	return nil
}

func (c *Client) doGet(ctx context.Context, ns Namespace, path string, query url.Values, out any) error {
	return c.do(ctx, ns, http.MethodGet, path, query, nil, out)
}

func (c *Client) doJSON(ctx context.Context, ns Namespace, method, path string, body, out any) error {
	return c.do(ctx, ns, method, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, ns Namespace, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.addAuth(ctx, req, ns); err != nil {
		return err
	}

	group := endpointGroup(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveBackend(group, "transport", time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.ObserveBackend(group, "transport", time.Since(start))
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Str("namespace", string(ns)).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend call")

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		metrics.ObserveBackend(group, "unauthorized", time.Since(start))
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx, ns)
		}
		ue := &UnauthorizedError{Namespace: ns}
		_ = json.Unmarshal(raw, &ue.Payload)
		return ue
	case resp.StatusCode >= 300:
		metrics.ObserveBackend(group, "error", time.Since(start))
		apiErr := &APIError{Status: resp.StatusCode, Body: string(raw)}
		var payload map[string]any
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Payload = payload
		}
		return apiErr
	}

	metrics.ObserveBackend(group, "ok", time.Since(start))
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) addAuth(ctx context.Context, req *http.Request, ns Namespace) error {
	if c.tokens == nil {
		return nil
	}
	token, err := c.tokens.Token(ctx, ns)
	if err != nil {
		return fmt.Errorf("read %s token: %w", ns, err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// endpointGroup maps "/partner/bookings/9/" to "partner_bookings" for
// metric labels.
func endpointGroup(path string) string {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) == 0 {
		return "root"
	}
	if parts[0] == "partner" && len(parts) > 1 {
		return "partner_" + strings.ReplaceAll(parts[1], "-", "_")
	}
	return strings.ReplaceAll(parts[0], "-", "_")
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, id)
}
