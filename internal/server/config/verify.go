package config

import (
	"errors"
	"fmt"
	"net"

	"github.com/yndnr/respkv-go/internal/server/httpserver"
	"github.com/yndnr/respkv-go/internal/server/localserver"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/pkg/cmap"
)

// maxSocketPathLen is the smallest sun_path limit among supported systems.
const maxSocketPathLen = 104

// Verify validates the configuration. All problems are reported together.
func Verify(cfg *ServerConfig) error {
	var errs []error
	errs = append(errs, verifyServer(&cfg.Server)...)
	errs = append(errs, verifyStorage(&cfg.Storage)...)
	errs = append(errs, verifyLog(&cfg.Log)...)
	return errors.Join(errs...)
}

func verifyServer(cfg *ServerSection) []error {
	var errs []error

	if err := verifyAddr(cfg.Redis.Addr); err != nil {
		errs = append(errs, fmt.Errorf("server.redis.addr: %w", err))
	}
	if cfg.Redis.IdleTimeout < 0 {
		errs = append(errs, errors.New("server.redis.idle_timeout must not be negative"))
	}
	if cfg.Redis.ReadTimeout < 0 {
		errs = append(errs, errors.New("server.redis.read_timeout must not be negative"))
	}
	if cfg.Redis.WriteTimeout < 0 {
		errs = append(errs, errors.New("server.redis.write_timeout must not be negative"))
	}
	if cfg.Redis.MaxConnections < 0 {
		errs = append(errs, errors.New("server.redis.max_connections must not be negative"))
	}
	if cfg.Redis.RateLimit < 0 || cfg.Redis.RateBurst < 0 {
		errs = append(errs, errors.New("server.redis.rate_limit and rate_burst must not be negative"))
	}
	if cfg.Redis.MaxBufferLen < 0 {
		errs = append(errs, errors.New("server.redis.max_buffer_len must not be negative"))
	}
	if p := cfg.Local.SocketPath; p != "" && localserver.BindPathLen(p) > maxSocketPathLen {
		errs = append(errs, fmt.Errorf("server.local.socket_path needs %d bytes to bind, limit is %d", localserver.BindPathLen(p), maxSocketPathLen))
	}

	if cfg.Metrics.Enabled {
		if err := verifyAddr(cfg.Metrics.Addr); err != nil {
			errs = append(errs, fmt.Errorf("server.metrics.addr: %w", err))
		} else if cfg.Metrics.Addr == cfg.Redis.Addr {
			errs = append(errs, errors.New("server.metrics.addr conflicts with server.redis.addr"))
		}
		for _, entry := range cfg.Metrics.Allow {
			if !httpserver.ValidAllowEntry(entry) {
				errs = append(errs, fmt.Errorf("server.metrics.allow: %q is not an IP or CIDR", entry))
			}
		}
	}
	return errs
}

func verifyStorage(cfg *StorageSection) []error {
	if !cmap.IsPowerOfTwo(cfg.ShardCount) {
		return []error{fmt.Errorf("storage.shard_count must be a power of two, got %d", cfg.ShardCount)}
	}
	return nil
}

func verifyLog(cfg *LogSection) []error {
	var errs []error
	if _, err := logger.ParseLevel(cfg.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch cfg.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", cfg.Format))
	}
	return errs
}

func verifyAddr(addr string) error {
	if addr == "" {
		return errors.New("address is required")
	}
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if port == "" {
		return errors.New("port is required")
	}
	return nil
}
