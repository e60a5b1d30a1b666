package logger

import (
	"log/slog"
	"strconv"
)

// MaxPayloadLen is the longest payload attribute written verbatim.
const MaxPayloadLen = 128

// Attribute keys that carry client data rather than server state.
var payloadKeys = map[string]bool{
	"value":   true,
	"args":    true,
	"payload": true,
	"reply":   true,
}

// truncatePayload shortens long client payloads so a single large SET
// cannot flood the log.
func truncatePayload(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = truncatePayload(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}

	if !payloadKeys[a.Key] {
		return a
	}
	if a.Value.Kind() != slog.KindString && a.Value.Kind() != slog.KindAny {
		return a
	}
	s := a.Value.String()
	if len(s) <= MaxPayloadLen {
		return a
	}
	return slog.String(a.Key, Truncate(s))
}

// Truncate shortens s to MaxPayloadLen bytes and records the original size.
func Truncate(s string) string {
	if len(s) <= MaxPayloadLen {
		return s
	}
	return s[:MaxPayloadLen] + "...(" + strconv.Itoa(len(s)) + " bytes)"
}

// IsPayloadKey reports whether attributes under key are truncated.
func IsPayloadKey(key string) bool {
	return payloadKeys[key]
}
