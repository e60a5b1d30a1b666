package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Protocol limits. A peer that exceeds one is treated as malformed.
const (
	// MaxBulkLen limits the payload of a single bulk string (512MB, as Redis).
	MaxBulkLen = 512 * 1024 * 1024

	// MaxArrayLen limits the element count of a single array.
	MaxArrayLen = 1024 * 1024

	// MaxDepth limits array nesting.
	MaxDepth = 64

	// MaxLineLen limits a header or simple line while waiting for its CRLF.
	MaxLineLen = 64 * 1024
)

var (
	// ErrIncomplete means the buffer holds only a prefix of a frame.
	// It is not a failure: retry once more bytes are available.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrProtocol is wrapped by every malformed-input error.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrLimitExceeded is a protocol error raised when a frame breaks a limit.
	ErrLimitExceeded = fmt.Errorf("%w: limit exceeded", ErrProtocol)
)

// Decode decodes the first complete value in buf and returns it together
// with the number of bytes it occupied.
//
// buf is never modified. If buf holds only part of a value, Decode returns
// ErrIncomplete and the caller should retry from the same position after
// appending more bytes; nothing is partially consumed, including for
// arrays whose later elements have not arrived yet. Each retry walks buf
// from the start, so readers that accumulate a frame over many reads should
// track it with a Scanner and call Decode once the frame is whole.
func Decode(buf []byte) (Value, int, error) {
	d := decoder{buf: buf}
	v, err := d.value(0)
	if err != nil {
		return Value{}, 0, err
	}
	return v, d.pos, nil
}

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) value(depth int) (Value, error) {
	if d.pos >= len(d.buf) {
		return Value{}, ErrIncomplete
	}

	kind := Kind(d.buf[d.pos])
	switch kind {
	case KindSimpleString, KindError, KindInteger, KindBulkString, KindArray:
	default:
		return Value{}, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, d.buf[d.pos])
	}
	d.pos++

	line, err := d.line()
	if err != nil {
		return Value{}, err
	}

	switch kind {
	case KindSimpleString:
		return SimpleString(string(line)), nil
	case KindError:
		return Error(string(line)), nil
	case KindInteger:
		n, err := strconv.ParseInt(string(line), 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
		}
		return Integer(n), nil
	case KindBulkString:
		return d.bulk(line)
	default:
		return d.array(line, depth)
	}
}

// line returns the bytes up to the next CRLF and moves past it.
func (d *decoder) line() ([]byte, error) {
	rest := d.buf[d.pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		if len(rest) > MaxLineLen {
			return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrLimitExceeded, MaxLineLen)
		}
		return nil, ErrIncomplete
	}
	if i == 0 || rest[i-1] != '\r' {
		return nil, fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}

	line := rest[:i-1]
	if len(line) > MaxLineLen {
		return nil, fmt.Errorf("%w: line exceeds %d bytes", ErrLimitExceeded, MaxLineLen)
	}
	if bytes.IndexByte(line, '\r') >= 0 {
		return nil, fmt.Errorf("%w: stray CR in line", ErrProtocol)
	}

	d.pos += i + 1
	return line, nil
}

func (d *decoder) bulk(header []byte) (Value, error) {
	n, err := parseLength(header)
	if err != nil {
		return Value{}, fmt.Errorf("%w: invalid bulk length", err)
	}
	if n == -1 {
		return NullBulkString(), nil
	}
	if n > MaxBulkLen {
		return Value{}, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, MaxBulkLen)
	}

	if len(d.buf)-d.pos < n+2 {
		return Value{}, ErrIncomplete
	}
	end := d.pos + n
	if d.buf[end] != '\r' || d.buf[end+1] != '\n' {
		return Value{}, fmt.Errorf("%w: bulk payload not terminated by CRLF", ErrProtocol)
	}

	v := BulkString(string(d.buf[d.pos:end]))
	d.pos = end + 2
	return v, nil
}

func (d *decoder) array(header []byte, depth int) (Value, error) {
	n, err := parseLength(header)
	if err != nil {
		return Value{}, fmt.Errorf("%w: invalid array length", err)
	}
	if n == -1 {
		return NullArray(), nil
	}
	if n > MaxArrayLen {
		return Value{}, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, MaxArrayLen)
	}
	if depth >= MaxDepth {
		return Value{}, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
	}

	// The count comes from the peer; grow with the data actually received.
	elems := make([]Value, 0, min(n, 16))
	for i := 0; i < n; i++ {
		v, err := d.value(depth + 1)
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return ArrayOf(elems...), nil
}

// parseLength parses a bulk or array length: a decimal >= 0, or -1.
func parseLength(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, ErrProtocol
	}
	if len(b) == 2 && b[0] == '-' && b[1] == '1' {
		return -1, nil
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, ErrProtocol
		}
		n = n*10 + int(c-'0')
		if n > MaxBulkLen {
			// Large enough to fail every limit; stop before overflowing.
			return MaxBulkLen + 1, nil
		}
	}
	return n, nil
}
