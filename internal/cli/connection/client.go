package connection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// DefaultTimeout bounds dialing and each request when the caller's context
// has no deadline.
const DefaultTimeout = 5 * time.Second

// ErrConnectionClosed is returned when the server closes the connection
// before a complete reply arrives.
var ErrConnectionClosed = errors.New("connection: closed by server")

// Client is a RESP client over one TCP connection. It is safe for
// concurrent use; requests are serialized.
type Client struct {
	addr    string
	timeout time.Duration

	mu   sync.Mutex
	conn net.Conn
	buf  []byte
}

// UnixPrefix marks an address as a Unix socket path.
const UnixPrefix = "unix://"

// Dial connects to addr, a host:port pair or a Unix socket path prefixed
// with unix://.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	network, address := splitNetwork(addr)
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return &Client{addr: addr, timeout: timeout, conn: conn}, nil
}

func splitNetwork(addr string) (network, address string) {
	if path, ok := strings.CutPrefix(addr, UnixPrefix); ok {
		return "unix", path
	}
	return "tcp", addr
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends a command built from args and returns the reply. An error reply
// from the server is returned as a value of kind KindError, not as an error.
func (c *Client) Do(ctx context.Context, args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("connection: empty command")
	}
	return c.DoValue(ctx, resp.CommandArgs(args[0], args[1:]...))
}

// DoValue sends an arbitrary request frame and returns the reply.
func (c *Client) DoValue(ctx context.Context, req resp.Value) (resp.Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return resp.Value{}, net.ErrClosed
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return resp.Value{}, err
	}

	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetDeadline(time.Unix(1, 0))
	})
	defer stop()

	if err := resp.WriteValue(c.conn, req); err != nil {
		return resp.Value{}, c.wrapErr(ctx, err)
	}
	v, err := c.readReply()
	if err != nil {
		return resp.Value{}, c.wrapErr(ctx, err)
	}
	return v, nil
}

func (c *Client) readReply() (resp.Value, error) {
	chunk := make([]byte, 4096)
	for {
		if len(c.buf) > 0 {
			v, n, err := resp.Decode(c.buf)
			if err == nil {
				c.buf = append(c.buf[:0], c.buf[n:]...)
				return v, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				return resp.Value{}, fmt.Errorf("decode reply: %w", err)
			}
		}

		n, err := c.conn.Read(chunk)
		c.buf = append(c.buf, chunk[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) && n == 0 {
				return resp.Value{}, ErrConnectionClosed
			}
			if n == 0 {
				return resp.Value{}, err
			}
		}
	}
}

func (c *Client) wrapErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
