// Package main provides the entry point for respkv-server.
//
// respkv-server is an in-memory key-value server speaking the Redis
// serialization protocol (RESP). It answers PING, ECHO, GET and SET.
//
// Usage:
//
//	respkv-server [flags]
//	respkv-server --config /etc/respkv/respkv.yaml
//	respkv-server --addr 0.0.0.0:6379 --metrics-addr 127.0.0.1:9121
//	respkv-server --socket /run/respkv/respkv.sock
//
// With --metrics-addr the server also answers /health, /ready and
// /version on that address.
//
// Settings come from the YAML file, then RESPKV_* environment variables,
// then flags. Editing log.level in the file takes effect without a restart.
package main
