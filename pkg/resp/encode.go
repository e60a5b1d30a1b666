package resp

import (
	"io"
	"strconv"
)

const crlf = "\r\n"

// Encode returns the canonical wire encoding of v.
func Encode(v Value) []byte {
	return AppendValue(nil, v)
}

// AppendValue appends the canonical wire encoding of v to dst.
//
// Simple strings and errors are single-line by definition; CR or LF bytes in
// their text are written as spaces. The zero Value encodes as a null bulk
// string.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString, KindError:
		dst = append(dst, byte(v.Kind))
		dst = appendSingleLine(dst, v.Str)
		return append(dst, crlf...)
	case KindInteger:
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, v.Int, 10)
		return append(dst, crlf...)
	case KindArray:
		if v.Null {
			return append(dst, "*-1\r\n"...)
		}
		dst = append(dst, '*')
		dst = strconv.AppendInt(dst, int64(len(v.Array)), 10)
		dst = append(dst, crlf...)
		for _, e := range v.Array {
			dst = AppendValue(dst, e)
		}
		return dst
	case KindBulkString:
		if v.Null {
			return append(dst, "$-1\r\n"...)
		}
		dst = append(dst, '$')
		dst = strconv.AppendInt(dst, int64(len(v.Str)), 10)
		dst = append(dst, crlf...)
		dst = append(dst, v.Str...)
		return append(dst, crlf...)
	default:
		return append(dst, "$-1\r\n"...)
	}
}

// WriteValue writes the encoding of v to w in a single Write call.
func WriteValue(w io.Writer, v Value) error {
	_, err := w.Write(Encode(v))
	return err
}

func appendSingleLine(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' || c == '\n' {
			c = ' '
		}
		dst = append(dst, c)
	}
	return dst
}
