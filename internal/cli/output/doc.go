// Package output renders RESP replies for respkv-cli.
//
//   - formatter.go: Formatter interface and factory
//   - text.go: redis-cli style output, human readable
//   - raw.go: unquoted output for scripting
//   - json.go, yaml.go: structured output
package output
