package daemon

import (
	"bytes"
	"context"
	"io"
	"net"
	"time"

	"audio_bridge/internal/models"
)

const (
	defaultDialTimeout = 2 * time.Second
	readChunkSize      = 1000
)

// Client performs single-shot command exchanges with the daemon.
// It keeps no connection between calls and is safe for concurrent use.
type Client struct {
	dialTimeout time.Duration
	readTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDialTimeout bounds the TCP connect.
func WithDialTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.dialTimeout = d
	}
}

// WithReadTimeout bounds the whole write+read phase. Zero disables it.
func WithReadTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.readTimeout = d
	}
}

// NewClient creates a daemon client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{dialTimeout: defaultDialTimeout}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Exchange opens one TCP connection to ep, writes command, and reads until the
// daemon closes the stream. The protocol has no framing: a daemon that keeps
// the connection open blocks the read until the read timeout (if any) or the
// context deadline fires.
func (c *Client) Exchange(ctx context.Context, ep models.Endpoint, command string) ([]byte, error) {
	dialer := net.Dialer{Timeout: c.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", ep.String())
	if err != nil {
		return nil, &TransportError{Op: OpConnect, Endpoint: ep, Err: err}
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := c.deadline(ctx); ok {
		_ = conn.SetDeadline(deadline)
	}

	if _, err := io.WriteString(conn, command); err != nil {
		return nil, &TransportError{Op: OpWrite, Endpoint: ep, Err: err}
	}

	var ans bytes.Buffer
	buf := make([]byte, readChunkSize)
	for {
		n, err := conn.Read(buf)
		ans.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &TransportError{Op: OpRead, Endpoint: ep, Err: err}
		}
	}
	return ans.Bytes(), nil
}

// deadline picks the earlier of the context deadline and the read timeout.
func (c *Client) deadline(ctx context.Context) (time.Time, bool) {
	d, ok := ctx.Deadline()
	if c.readTimeout > 0 {
		rt := time.Now().Add(c.readTimeout)
		if !ok || rt.Before(d) {
			return rt, true
		}
	}
	return d, ok
}
