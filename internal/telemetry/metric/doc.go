// Package metric provides Prometheus metrics for the respkv server.
//
// Metrics include:
//
//   - Connection gauges and counters (active, accepted, rejected)
//   - Commands processed, by command name
//   - Command latency histogram
//   - Protocol errors, by reason
//   - Bytes read from and written to clients
//   - Number of keys in the store
//
// Metrics are exposed at /metrics in Prometheus text format.
package metric
