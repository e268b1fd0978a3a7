// Package client talks to a running bridge over HTTP, the way the browser
// control panel does.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"audio_bridge/internal/daemon"
)

// BridgePath is the bridge endpoint kept for browser compatibility.
const BridgePath = "/php/main.php"

const defaultTimeout = 10 * time.Second

// Client sends commands through a bridge and tracks whether the daemon
// behind it answered.
type Client struct {
	baseURL    string
	httpClient *http.Client
	available  atomic.Bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the bridge at baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	c.available.Store(true)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the last response came from the daemon.
func (c *Client) Available() bool {
	return c.available.Load()
}

// Execute sends command and returns the bridged body. An unreachable bridge
// or a body carrying the connect-failure marker marks the daemon unavailable
// and yields an error matching daemon.ErrUnavailable.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	u := c.baseURL + BridgePath + "?command=" + url.QueryEscape(command)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("build bridge request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			c.available.Store(false)
			return "", fmt.Errorf("%w: bridge request: %w", daemon.ErrUnavailable, err)
		}
		return "", fmt.Errorf("bridge request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read bridge response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("bridge returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	ans := string(body)
	if strings.Contains(ans, daemon.ConnectFailedMarker) {
		c.available.Store(false)
		return "", fmt.Errorf("%w: %s", daemon.ErrUnavailable, strings.TrimSpace(ans))
	}
	c.available.Store(true)
	return ans, nil
}
