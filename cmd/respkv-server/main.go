package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
	"github.com/yndnr/respkv-go/internal/infra/confloader"
	"github.com/yndnr/respkv-go/internal/infra/shutdown"
	"github.com/yndnr/respkv-go/internal/server/config"
	"github.com/yndnr/respkv-go/internal/server/httpserver"
	"github.com/yndnr/respkv-go/internal/server/localserver"
	"github.com/yndnr/respkv-go/internal/server/redisserver"
	"github.com/yndnr/respkv-go/internal/storage/memory"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "respkv-server",
		Usage:   "In-memory key-value server speaking RESP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				EnvVars: []string{"RESPKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (server.redis.addr)",
			},
			&cli.StringFlag{
				Name:  "socket",
				Usage: "Also serve RESP on this Unix socket (server.local.socket_path)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format: json, text",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve metrics and health endpoints on this address",
			},
			&cli.StringSliceFlag{
				Name:  "metrics-allow",
				Usage: "IP or CIDR allowed to reach the metrics endpoint (repeatable)",
			},
			&cli.IntFlag{
				Name:  "max-connections",
				Usage: "Maximum concurrent client connections (0 = unlimited)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c.String("config"), flagOverrides(c))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(c.Context, c.String("config"), cfg)
		},
	}
}

// flagOverrides returns the configuration keys set explicitly on the
// command line.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("addr") {
		overrides["server.redis.addr"] = c.String("addr")
	}
	if c.IsSet("socket") {
		overrides["server.local.socket_path"] = c.String("socket")
	}
	if c.IsSet("log-level") {
		overrides["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		overrides["log.format"] = c.String("log-format")
	}
	if c.IsSet("metrics-addr") {
		overrides["server.metrics.enabled"] = true
		overrides["server.metrics.addr"] = c.String("metrics-addr")
	}
	if c.IsSet("metrics-allow") {
		overrides["server.metrics.allow"] = c.StringSlice("metrics-allow")
	}
	if c.IsSet("max-connections") {
		overrides["server.redis.max_connections"] = c.Int("max-connections")
	}
	return overrides
}

// loadConfig loads configuration from file, environment and overrides on
// top of the defaults.
func loadConfig(configFile string, overrides map[string]any) (*config.ServerConfig, error) {
	cfg := config.Default()

	opts := []confloader.Option{confloader.WithOverrides(overrides)}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// redisConfig maps the redis section onto the server's settings.
func redisConfig(cfg *config.ServerConfig) *redisserver.Config {
	r := cfg.Server.Redis
	return &redisserver.Config{
		Address:        r.Addr,
		IdleTimeout:    r.IdleTimeout,
		ReadTimeout:    r.ReadTimeout,
		WriteTimeout:   r.WriteTimeout,
		MaxConnections: r.MaxConnections,
		RateLimit:      r.RateLimit,
		RateBurst:      r.RateBurst,
		MaxBufferLen:   r.MaxBufferLen,
	}
}

func serve(ctx context.Context, configFile string, cfg *config.ServerConfig) error {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	info := buildinfo.Get()
	log.Info("starting respkv-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", configFile)

	store := memory.New(memory.WithShardCount(cfg.Storage.ShardCount))

	var metrics *metric.Registry
	if cfg.Server.Metrics.Enabled {
		metrics = metric.NewRegistry()
		metrics.RegisterKeyCount(store.Len)
		metrics.RegisterBuildInfo(info.Version, info.Commit, info.GoVersion)
	}

	srv := redisserver.New(redisConfig(cfg), store, log, metrics)
	ln, err := net.Listen("tcp", cfg.Server.Redis.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Redis.Addr, err)
	}

	sh := shutdown.NewHandler(shutdownTimeout, shutdown.WithLogger(log))

	if metrics != nil {
		admin := httpserver.New(cfg.Server.Metrics.Addr, httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics:   metrics,
			Ready:     srv.Ready,
			Logger:    log,
			AllowList: cfg.Server.Metrics.Allow,
		}))
		sh.OnShutdown("admin", admin.Shutdown)
		go func() {
			log.Info("admin server listening", "addr", cfg.Server.Metrics.Addr)
			if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server error", "error", err)
				sh.Trigger()
			}
		}()
	}

	sh.OnShutdown("redis", srv.Shutdown)
	serveErr := make(chan error, 2)
	go func() {
		err := srv.Serve(ctx, ln)
		if err != nil && !errors.Is(err, redisserver.ErrServerClosed) && ctx.Err() == nil {
			log.Error("redis server error", "error", err)
			serveErr <- err
			sh.Trigger()
		}
	}()

	if path := cfg.Server.Local.SocketPath; path != "" {
		local := localserver.New(path, 0, redisserver.New(redisConfig(cfg), store, log.With("listener", "unix"), metrics))
		sh.OnShutdown("local", local.Shutdown)
		go func() {
			err := local.ListenAndServe(ctx)
			if err != nil && !errors.Is(err, redisserver.ErrServerClosed) && ctx.Err() == nil {
				log.Error("local server error", "path", path, "error", err)
				serveErr <- err
				sh.Trigger()
			}
		}()
	}

	if configFile != "" {
		w, err := watchLogLevel(configFile, log)
		if err != nil {
			log.Warn("config file watch disabled", "path", configFile, "error", err)
		} else {
			sh.OnShutdown("watcher", func(context.Context) error { return w.Stop() })
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	select {
	case err := <-serveErr:
		return err
	default:
	}
	log.Info("server stopped gracefully")
	return nil
}

func watchLogLevel(path string, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	apply := func(level string) error {
		if _, err := logger.ParseLevel(level); err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	}
	w.OnChange(confloader.ReloadLogLevel(confloader.DefaultEnvPrefix, apply, log))
	w.StartAsync()
	return w, nil
}
