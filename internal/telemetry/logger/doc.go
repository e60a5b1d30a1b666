// Package logger provides structured logging for the respkv server.
//
// It wraps the standard library log/slog:
//
//   - logger.go: Logger interface, handler setup, dynamic level
//   - context.go: context propagation of the logger and connection id
//   - redact.go: bounding of payload attributes (stored values, echoed args)
//
// Log lines are JSON by default; "text" selects the slog text handler.
package logger
