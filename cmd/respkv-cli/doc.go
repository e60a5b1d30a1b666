// Package main provides the entry point for respkv-cli.
//
// respkv-cli sends PING, ECHO, GET, SET or any raw command to a
// respkv-server and prints the reply. Without a command it starts an
// interactive prompt.
//
// Usage:
//
//	respkv-cli set greeting hello
//	respkv-cli --server 10.0.0.5:6379 get greeting
//	respkv-cli -o json raw ECHO hi
//	respkv-cli
package main
