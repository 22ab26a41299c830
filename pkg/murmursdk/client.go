package murmursdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/murmurapp/murmur-go/pkg/tokenstore"

	"golang.org/x/time/rate"
)

// Client is a client for the Murmur API. All calls flow through the
// authenticated request pipeline (Transport), which attaches bearer tokens
// and transparently recovers from access-token expiry.
type Client struct {
	baseURL   string
	httpc     *http.Client
	store     tokenstore.Store
	transport *Transport
	log       *slog.Logger
}

// Config configures a Client. Only BaseURL is required.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.murmur.example".
	BaseURL string

	// Store persists the credential pair. Defaults to an in-memory store,
	// which does not survive restarts; production callers should pass a
	// tokenstore.SQLite.
	Store tokenstore.Store

	// HTTPTimeout bounds each request including the pipeline's single
	// refresh-and-retry. Default: 15s.
	HTTPTimeout time.Duration

	// RequestsPerMinute rate-limits outbound calls. Zero disables limiting.
	RequestsPerMinute int

	// Base is the underlying RoundTripper. Default: http.DefaultTransport.
	Base http.RoundTripper

	Logger *slog.Logger
}

// New creates a Murmur API client.
func New(cfg Config) *Client {
	store := cfg.Store
	if store == nil {
		store = tokenstore.NewMemory()
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(
			rate.Limit(float64(cfg.RequestsPerMinute)/60.0),
			cfg.RequestsPerMinute,
		)
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")

	transport := &Transport{
		base:    cfg.Base,
		store:   store,
		baseURL: baseURL,
		limiter: limiter,
		log:     log,
	}

	return &Client{
		baseURL: baseURL,
		httpc: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		store:     store,
		transport: transport,
		log:       log,
	}
}

// Store exposes the credential store backing this client.
func (c *Client) Store() tokenstore.Store { return c.store }

// url builds a complete URL by appending the path to the base URL.
func (c *Client) url(path string) string {
	return c.baseURL + path
}

// doJSON performs a JSON request through the pipeline and decodes the
// response into out when the status matches expected. Errors are logged and
// returned to the caller unchanged; the view layer is the recovery point.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any, expected int) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("request failed", "method", method, "path", path, "err", err)
		return err
	}

	if err := decodeJSON(resp, out, expected); err != nil {
		c.log.Error("request failed", "method", method, "path", path, "err", err)
		return err
	}

	return nil
}

// doVoid performs a request where only the status matters; any 2xx is
// success.
func (c *Client) doVoid(ctx context.Context, method, path string, in any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Error("request failed", "method", method, "path", path, "err", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		parseErr := parseErrorResponse(resp.StatusCode, bodyBytes)
		c.log.Error("request failed", "method", method, "path", path, "err", parseErr)
		return parseErr
	}

	return nil
}

// decodeJSON decodes a JSON response into target, mapping non-expected
// statuses to typed errors.
func decodeJSON(resp *http.Response, target any, expected int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expected {
		return parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
