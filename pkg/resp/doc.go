// Package resp implements the REdis Serialization Protocol (RESP2) codec.
//
// The package is split into:
//
//   - value.go: the Value type covering the five RESP2 kinds
//   - decode.go: incremental, stateless decoding from a byte buffer
//   - encode.go: canonical encoding of a Value
//   - command.go: extraction of a dispatchable command from a request frame
//
// Decoding never consumes input on failure. Decode reports how many bytes a
// complete frame occupied, or ErrIncomplete when the buffer holds only a
// prefix of one, so callers can keep accumulating bytes and retry:
//
//	v, n, err := resp.Decode(buf)
//	switch {
//	case errors.Is(err, resp.ErrIncomplete):
//		// read more, then retry with the same buffer
//	case err != nil:
//		// protocol violation
//	default:
//		buf = buf[n:]
//	}
package resp
