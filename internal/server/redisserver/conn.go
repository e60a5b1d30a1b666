package redisserver

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/respkv-go/pkg/resp"
)

const (
	// readChunk is the minimum free space offered to each socket read.
	readChunk = 4 * 1024

	// retainedBufferCap is the largest idle buffer a connection keeps;
	// larger buffers are released once fully consumed.
	retainedBufferCap = 64 * 1024
)

// ErrTruncatedFrame means the peer closed the connection in the middle of
// a request.
var ErrTruncatedFrame = errors.New("redisserver: connection closed mid-frame")

// Conn is one client connection. buf[off:] holds bytes read from the
// socket that have not been decoded yet, and scan remembers how much of
// the frame at off has already been validated. Only the serving goroutine
// touches them.
type Conn struct {
	id      string
	netConn net.Conn
	buf     []byte
	off     int
	scan    resp.Scanner
	readErr error

	ip      string
	limiter *rate.Limiter

	bytesRead    int
	bytesWritten int

	closed atomic.Bool
}

func newConn(id string, c net.Conn) *Conn {
	return &Conn{
		id:      id,
		netConn: c,
		ip:      clientIP(c.RemoteAddr()),
	}
}

// ID returns the connection id used in logs.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the socket. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// Buffered returns the number of received bytes not yet decoded.
func (c *Conn) Buffered() int {
	return len(c.buf) - c.off
}

// ReadValue returns the next complete value from the connection, reading
// from the socket as often as needed.
//
// idle bounds the wait for the first byte of a request and read bounds the
// wait for the rest of a partially received one; zero means no deadline.
// A clean close between requests yields io.EOF.
//
// Work per frame is linear in its size however it is fragmented: the
// scanner resumes where the previous read stopped and the frame is
// decoded once, after its last byte arrives.
func (c *Conn) ReadValue(idle, read time.Duration, maxBuffered int) (resp.Value, error) {
	for {
		if pending := c.buf[c.off:]; len(pending) > 0 {
			n, err := c.scan.Scan(pending)
			if err == nil {
				v, _, err := resp.Decode(pending[:n])
				c.scan.Reset()
				if err != nil {
					return resp.Value{}, err
				}
				c.consume(n)
				return v, nil
			}
			if !errors.Is(err, resp.ErrIncomplete) {
				c.scan.Reset()
				return resp.Value{}, err
			}
			if maxBuffered > 0 && len(pending) >= maxBuffered {
				return resp.Value{}, fmt.Errorf("%w: %d bytes buffered without a complete frame", resp.ErrLimitExceeded, len(pending))
			}
		}

		if c.readErr != nil {
			if errors.Is(c.readErr, io.EOF) && c.Buffered() > 0 {
				return resp.Value{}, fmt.Errorf("%w: %d bytes pending", ErrTruncatedFrame, c.Buffered())
			}
			return resp.Value{}, c.readErr
		}

		timeout := read
		if c.Buffered() == 0 {
			timeout = idle
		}
		if err := c.fill(timeout); err != nil {
			return resp.Value{}, err
		}
	}
}

// fill performs one socket read into the buffer's spare capacity. A read
// error is kept in readErr so bytes that arrived with it are decoded first.
func (c *Conn) fill(timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.netConn.SetReadDeadline(deadline); err != nil {
		return err
	}

	if c.off > 0 {
		// Frames are offset-relative, so moving the partial one keeps the
		// scanner's progress valid.
		n := copy(c.buf, c.buf[c.off:])
		c.buf = c.buf[:n]
		c.off = 0
	}
	if cap(c.buf)-len(c.buf) < readChunk {
		grown := make([]byte, len(c.buf), 2*cap(c.buf)+readChunk)
		copy(grown, c.buf)
		c.buf = grown
	}

	n, err := c.netConn.Read(c.buf[len(c.buf):cap(c.buf)])
	c.buf = c.buf[:len(c.buf)+n]
	c.bytesRead += n
	if err != nil {
		c.readErr = err
	}
	return nil
}

// consume marks the next n buffered bytes as decoded. The remainder is
// moved to the front only before the next socket read, so draining a
// pipeline does not copy it once per frame.
func (c *Conn) consume(n int) {
	c.off += n
	if c.off < len(c.buf) {
		return
	}
	c.off = 0
	c.buf = c.buf[:0]
	if cap(c.buf) > retainedBufferCap {
		c.buf = nil
	}
}

// WriteValue encodes v and writes the whole frame before returning.
func (c *Conn) WriteValue(v resp.Value, timeout time.Duration) error {
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	if err := c.netConn.SetWriteDeadline(deadline); err != nil {
		return err
	}

	frame := resp.Encode(v)
	for len(frame) > 0 {
		n, err := c.netConn.Write(frame)
		c.bytesWritten += n
		if err != nil {
			return err
		}
		frame = frame[n:]
	}
	return nil
}

// takeCounters returns the bytes read and written since the last call.
func (c *Conn) takeCounters() (read, written int) {
	read, written = c.bytesRead, c.bytesWritten
	c.bytesRead, c.bytesWritten = 0, 0
	return read, written
}
