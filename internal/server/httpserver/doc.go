// Package httpserver provides the admin HTTP endpoint of respkv-server.
//
// Routes:
//
//   - GET /metrics: Prometheus exposition of the server registry
//   - GET /health: liveness, always 200 while the process serves HTTP
//   - GET /ready: 200 once the RESP listener accepts connections, 503 otherwise
//   - GET /version: build information as JSON
//
// Every route runs behind the same middleware chain: Recover, RequestID,
// an optional NetworkACL and AccessLog.
package httpserver
