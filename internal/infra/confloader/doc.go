// Package confloader loads configuration with koanf and watches the
// configuration file for changes.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (RESPKV_ prefix)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct
//
// Environment variable names are matched against the koanf tags of the
// target struct, so RESPKV_SERVER_REDIS_MAX_CONNECTIONS sets
// server.redis.max_connections.
package confloader
