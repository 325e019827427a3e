// Package droidrun is the HTTP client for the on-device control service.
package droidrun

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/devicelab-dev/droidreplay/pkg/core"
	"github.com/devicelab-dev/droidreplay/pkg/logger"
)

// Default per-call timeouts.
const (
	DefaultActionTimeout = 5 * time.Second
	DefaultFetchTimeout  = 10 * time.Second
	DefaultStateTimeout  = 3 * time.Second
	DefaultPingTimeout   = 2 * time.Second
	DefaultPort          = 8080
)

// Config is the connection to one device. There is no process-wide default;
// every caller builds its own.
type Config struct {
	Host  string
	Port  int
	Token string

	ActionTimeout time.Duration // tap, swipe, keys, text
	FetchTimeout  time.Duration // trees, packages, screenshot
	StateTimeout  time.Duration // phone state
	PingTimeout   time.Duration

	// RateLimit caps requests per second; 0 disables throttling.
	RateLimit float64

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// Client communicates with the device control service.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	cfg     Config
	limiter *rate.Limiter
}

var _ core.Device = (*Client)(nil)

// NewClient creates a client for cfg, filling in default timeouts.
func NewClient(cfg Config) *Client {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.ActionTimeout <= 0 {
		cfg.ActionTimeout = DefaultActionTimeout
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.StateTimeout <= 0 {
		cfg.StateTimeout = DefaultStateTimeout
	}
	if cfg.PingTimeout <= 0 {
		cfg.PingTimeout = DefaultPingTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		http:    httpClient,
		baseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		token:   cfg.Token,
		cfg:     cfg,
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c
}

// BaseURL returns the service root, e.g. http://192.168.1.20:8080.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetBaseURL points the client at another root (tests).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// response is a successful reply.
type response struct {
	body        []byte
	contentType string
}

// request makes one HTTP call bounded by timeout.
func (c *Client) request(ctx context.Context, method, path string, body interface{}, timeout time.Duration) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, core.ErrTimeout.WithCause(err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, core.ErrTransport.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		e := core.ErrTransport.WithCause(err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			e = core.ErrTimeout.WithCause(err)
		}
		logger.Warn("droidrun").
			Str("method", method).
			Str("path", path).
			Dur("elapsed", elapsed).
			Str("code", e.Code).
			Err(err).
			Msg("request failed")
		return nil, e
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.ErrTransport.WithCause(fmt.Errorf("read response: %w", err))
	}

	logger.Debug("droidrun").
		Str("method", method).
		Str("path", path).
		Dur("elapsed", elapsed).
		Int("status", resp.StatusCode).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := string(respBody)
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		logger.Warn("droidrun").
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("code", core.ErrHTTPStatus.Code).
			Msg("device returned error status")
		return nil, core.ErrHTTPStatus.
			WithMessage(fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode)).
			WithDetails(map[string]interface{}{"status": resp.StatusCode, "body": snippet})
	}

	return &response{body: respBody, contentType: resp.Header.Get("Content-Type")}, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	_, err := c.request(ctx, http.MethodPost, path, payload, c.cfg.ActionTimeout)
	return err
}

func (c *Client) get(ctx context.Context, path string, timeout time.Duration) (*response, error) {
	return c.request(ctx, http.MethodGet, path, nil, timeout)
}
