// Package repl provides the interactive mode of respkv-cli.
//
//   - repl.go: read-eval-print loop and argument splitting
//   - completer.go: command name lookup used by help
//   - history.go: command history persistence
package repl
