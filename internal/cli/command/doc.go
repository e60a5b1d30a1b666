// Package command defines the respkv-cli command tree using urfave/cli/v2.
//
//   - root.go: App, global flags and the shared connection helper
//   - kv.go: ping, echo, get, set and raw commands
//   - interactive.go: the repl command, also the default with no arguments
package command
