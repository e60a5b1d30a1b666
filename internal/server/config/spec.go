package config

import "time"

// ServerConfig is the root configuration for respkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	Redis   RedisConfig   `koanf:"redis"`
	Local   LocalConfig   `koanf:"local"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LocalConfig configures the Unix socket listener.
type LocalConfig struct {
	// SocketPath enables a RESP listener on this Unix socket when set.
	SocketPath string `koanf:"socket_path"`
}

// RedisConfig configures the RESP listener.
type RedisConfig struct {
	Addr string `koanf:"addr"`

	// IdleTimeout closes a connection that sends no request for this long.
	// Zero keeps idle connections open forever.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// ReadTimeout bounds the wait for the remainder of a partial request.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds writing a single reply.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// MaxConnections caps concurrently open client connections (0 = no cap).
	MaxConnections int `koanf:"max_connections"`

	// RateLimit is commands per second per client IP (0 = unlimited).
	RateLimit int `koanf:"rate_limit"`
	RateBurst int `koanf:"rate_burst"`

	// MaxBufferLen caps the bytes a connection may hold while a request
	// is incomplete (0 = protocol maximum).
	MaxBufferLen int `koanf:"max_buffer_len"`
}

// MetricsConfig configures the admin HTTP endpoint serving /metrics,
// /health, /ready and /version.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// Allow restricts the endpoint to these IPs or CIDR blocks.
	// Empty allows every client.
	Allow []string `koanf:"allow"`
}

// StorageSection configures the in-memory store.
type StorageSection struct {
	// ShardCount is the number of lock shards; must be a power of two.
	ShardCount int `koanf:"shard_count"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
