package ipc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"
	"unicode/utf8"

	"hawarun/internal/logging"
)

const (
	DefaultSocketPath       = "/run/Hawa/game-launcher.sock"
	DefaultConnectTimeout   = 3 * time.Second
	DefaultResponseTimeout  = 3 * time.Second
	DefaultMaxResponseBytes = 64 * 1024

	readChunkSize = 4096
)

// DialFunc opens a stream connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	SocketPath       string
	ConnectTimeout   time.Duration
	ResponseTimeout  time.Duration
	MaxResponseBytes int
	Logger           *slog.Logger
	Dial             DialFunc
}

// Reply is what the daemon sent back. Closed is set when the daemon hung up
// without sending a single byte.
type Reply struct {
	Payload string
	Closed  bool
}

// Client performs one request/reply exchange per Send over a fresh connection.
type Client struct {
	socketPath       string
	connectTimeout   time.Duration
	responseTimeout  time.Duration
	maxResponseBytes int
	logger           *slog.Logger
	dial             DialFunc
}

// NewClient builds a client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		socketPath:       opts.SocketPath,
		connectTimeout:   opts.ConnectTimeout,
		responseTimeout:  opts.ResponseTimeout,
		maxResponseBytes: opts.MaxResponseBytes,
		logger:           logging.NewComponentLogger(opts.Logger, "ipc"),
		dial:             opts.Dial,
	}
	if c.socketPath == "" {
		c.socketPath = DefaultSocketPath
	}
	if c.connectTimeout <= 0 {
		c.connectTimeout = DefaultConnectTimeout
	}
	if c.responseTimeout <= 0 {
		c.responseTimeout = DefaultResponseTimeout
	}
	if c.maxResponseBytes <= 0 {
		c.maxResponseBytes = DefaultMaxResponseBytes
	}
	if c.dial == nil {
		var dialer net.Dialer
		c.dial = dialer.DialContext
	}
	return c
}

// SocketPath returns the daemon socket the client dials.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Send delivers req and waits for the daemon's reply. The connection is
// closed before Send returns on every path.
func (c *Client) Send(ctx context.Context, req LaunchRequest) (Reply, error) {
	frame, err := EncodeFrame(req)
	if err != nil {
		return Reply{}, fmt.Errorf("encode launch request: %w", err)
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return Reply{}, err
	}
	defer c.release(conn)

	// Cancellation interrupts blocked I/O by expiring the deadline.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write(frame); err != nil {
		if ctx.Err() != nil {
			return Reply{}, fmt.Errorf("send launch request: %w", ctx.Err())
		}
		return Reply{}, &ConnectionError{Socket: c.socketPath, Reason: ReasonWrite, Err: err}
	}
	c.logger.Debug("launch request sent",
		logging.String(logging.FieldEventType, "launch_request_sent"),
		logging.Int("frame_bytes", len(frame)))

	if err := conn.SetReadDeadline(time.Now().Add(c.responseTimeout)); err != nil {
		return Reply{}, &ConnectionError{Socket: c.socketPath, Reason: ReasonUnknown, Err: err}
	}

	payload, err := readFrame(conn, c.maxResponseBytes)
	if err != nil {
		if ctx.Err() != nil {
			return Reply{}, fmt.Errorf("await daemon reply: %w", ctx.Err())
		}
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout() && len(payload) > 0:
			// The daemon replied but kept the connection open without a delimiter.
			c.logger.Debug("reply deadline reached with partial frame",
				logging.String(logging.FieldEventType, "daemon_reply_undelimited"),
				logging.Int("reply_bytes", len(payload)))
		case errors.As(err, &netErr) && netErr.Timeout():
			return Reply{}, &TimeoutError{Socket: c.socketPath, Timeout: c.responseTimeout, Err: err}
		case errors.Is(err, errFrameTooLarge):
			return Reply{}, &ProtocolError{Socket: c.socketPath, Reason: fmt.Sprintf("reply exceeds %d bytes", c.maxResponseBytes)}
		default:
			return Reply{}, &ConnectionError{Socket: c.socketPath, Reason: ReasonUnknown, Err: err}
		}
	}

	if len(payload) == 0 {
		c.logger.Debug("daemon closed the connection without replying",
			logging.String(logging.FieldEventType, "daemon_reply_empty"))
		return Reply{Closed: true}, nil
	}
	if !utf8.Valid(payload) {
		return Reply{}, &ProtocolError{Socket: c.socketPath, Reason: "reply is not valid UTF-8"}
	}
	c.logger.Debug("daemon reply received",
		logging.String(logging.FieldEventType, "daemon_reply_received"),
		logging.Int("reply_bytes", len(payload)))
	return Reply{Payload: string(payload)}, nil
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	dialCtx, cancel := context.WithTimeout(ctx, c.connectTimeout)
	defer cancel()

	c.logger.Debug("dialing launcher daemon",
		logging.String("socket", c.socketPath),
		logging.Duration("connect_timeout", c.connectTimeout))
	conn, err := c.dial(dialCtx, "unix", c.socketPath)
	if err != nil {
		return nil, classifyDialError(ctx, c.socketPath, err)
	}
	return conn, nil
}

// release closes conn. A close failure is only logged: it must never replace
// the outcome of the exchange.
func (c *Client) release(conn net.Conn) {
	if err := conn.Close(); err != nil {
		c.logger.Debug("closing daemon connection failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_close_failed"))
	}
}

var errFrameTooLarge = errors.New("frame exceeds size limit")

// readFrame reads until the first FrameDelimiter or EOF. The returned bytes
// include the delimiter when one was seen; anything after it is discarded.
func readFrame(r io.Reader, limit int) ([]byte, error) {
	buf := make([]byte, 0, min(limit, readChunkSize))
	chunk := make([]byte, readChunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			start := len(buf)
			buf = append(buf, chunk[:n]...)
			if i := bytes.IndexByte(buf[start:], FrameDelimiter); i >= 0 {
				end := start + i + 1
				if end > limit {
					return buf[:limit], errFrameTooLarge
				}
				return buf[:end], nil
			}
			if len(buf) > limit {
				return buf[:limit], errFrameTooLarge
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return buf, err
		}
	}
}
