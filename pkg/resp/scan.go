package resp

import (
	"bytes"
	"fmt"
	"strconv"
)

// Scanner finds where the next frame ends in a buffer that grows between
// calls. It keeps its progress, so every byte is examined once no matter
// how many reads the frame arrives in, and it allocates nothing per
// element. Once Scan reports a complete frame, Decode turns those bytes
// into a Value.
//
// Scan checks the same framing rules and limits as Decode, so a frame it
// accepts always decodes.
type Scanner struct {
	// pos is the offset of the first byte not yet validated.
	pos int
	// searched is how far past pos the current line has been searched
	// for LF without finding one.
	searched int
	// bulkEnd is the offset of the CRLF that ends a bulk payload whose
	// header has been read, or -1.
	bulkEnd int
	// need holds the values still missing at each open nesting level,
	// outermost first. The bottom entry is the frame itself.
	need []int
}

// Reset discards progress so the next Scan starts a new frame at offset 0.
func (s *Scanner) Reset() {
	s.pos = 0
	s.searched = 0
	s.bulkEnd = -1
	s.need = s.need[:0]
}

// Scan returns the length of the frame at the start of buf. buf must
// begin with the bytes passed to the previous call, possibly followed by
// more. It returns ErrIncomplete until the frame is whole and a protocol
// error wrapping ErrProtocol for malformed input. Call Reset after a
// frame or an error before scanning the next frame.
func (s *Scanner) Scan(buf []byte) (int, error) {
	if len(s.need) == 0 {
		if s.pos != 0 {
			return s.pos, nil
		}
		s.bulkEnd = -1
		s.need = append(s.need, 1)
	}

	for len(s.need) > 0 {
		if s.bulkEnd >= 0 {
			if len(buf) < s.bulkEnd+2 {
				return 0, ErrIncomplete
			}
			if buf[s.bulkEnd] != '\r' || buf[s.bulkEnd+1] != '\n' {
				return 0, fmt.Errorf("%w: bulk payload not terminated by CRLF", ErrProtocol)
			}
			s.pos = s.bulkEnd + 2
			s.bulkEnd = -1
			s.complete()
			continue
		}

		if s.pos >= len(buf) {
			return 0, ErrIncomplete
		}
		kind := Kind(buf[s.pos])
		switch kind {
		case KindSimpleString, KindError, KindInteger, KindBulkString, KindArray:
		default:
			return 0, fmt.Errorf("%w: unexpected type byte %q", ErrProtocol, buf[s.pos])
		}

		line, next, err := s.line(buf)
		if err != nil {
			return 0, err
		}

		switch kind {
		case KindSimpleString, KindError:
			s.pos = next
			s.complete()
		case KindInteger:
			if _, err := strconv.ParseInt(string(line), 10, 64); err != nil {
				return 0, fmt.Errorf("%w: invalid integer %q", ErrProtocol, line)
			}
			s.pos = next
			s.complete()
		case KindBulkString:
			n, err := parseLength(line)
			if err != nil {
				return 0, fmt.Errorf("%w: invalid bulk length", err)
			}
			s.pos = next
			if n == -1 {
				s.complete()
				continue
			}
			if n > MaxBulkLen {
				return 0, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, n, MaxBulkLen)
			}
			s.bulkEnd = next + n
		default:
			n, err := parseLength(line)
			if err != nil {
				return 0, fmt.Errorf("%w: invalid array length", err)
			}
			s.pos = next
			if n == -1 {
				s.complete()
				continue
			}
			if n > MaxArrayLen {
				return 0, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, n, MaxArrayLen)
			}
			if len(s.need)-1 >= MaxDepth {
				return 0, fmt.Errorf("%w: nesting deeper than %d", ErrLimitExceeded, MaxDepth)
			}
			if n == 0 {
				s.complete()
				continue
			}
			s.need = append(s.need, n)
		}
	}
	return s.pos, nil
}

// line returns the header line starting at pos (after the type byte) and
// the offset just past its CRLF. The LF search resumes where the previous
// call stopped.
func (s *Scanner) line(buf []byte) ([]byte, int, error) {
	start := s.pos + 1
	from := start + s.searched
	i := bytes.IndexByte(buf[from:], '\n')
	if i < 0 {
		s.searched = len(buf) - start
		if s.searched > MaxLineLen {
			return nil, 0, fmt.Errorf("%w: line exceeds %d bytes", ErrLimitExceeded, MaxLineLen)
		}
		return nil, 0, ErrIncomplete
	}
	lf := from + i
	s.searched = 0

	if lf == start || buf[lf-1] != '\r' {
		return nil, 0, fmt.Errorf("%w: line not terminated by CRLF", ErrProtocol)
	}
	line := buf[start : lf-1]
	if len(line) > MaxLineLen {
		return nil, 0, fmt.Errorf("%w: line exceeds %d bytes", ErrLimitExceeded, MaxLineLen)
	}
	if bytes.IndexByte(line, '\r') >= 0 {
		return nil, 0, fmt.Errorf("%w: stray CR in line", ErrProtocol)
	}
	return line, lf + 1, nil
}

// complete records one finished value and closes every array it fills.
func (s *Scanner) complete() {
	for len(s.need) > 0 {
		top := len(s.need) - 1
		s.need[top]--
		if s.need[top] > 0 {
			return
		}
		s.need = s.need[:top]
	}
}
