package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/yndnr/respkv-go/internal/infra/buildinfo"
	"github.com/yndnr/respkv-go/internal/telemetry/logger"
	"github.com/yndnr/respkv-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the admin router.
type RouterConfig struct {
	// Metrics is served at /metrics. Nil disables the route.
	Metrics *metric.Registry

	// Ready reports whether the RESP listener is accepting connections.
	// Nil means always ready.
	Ready func() bool

	// Logger for access and panic logging. Nil discards.
	Logger logger.Logger

	// AllowList restricts clients to these IPs or CIDR blocks.
	// Empty means no restriction.
	AllowList []string
}

// NewRouter creates the admin router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "httpserver")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /ready", readyHandler(cfg.Ready))
	mux.HandleFunc("GET /version", handleVersion)
	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", cfg.Metrics.Handler())
	}

	middlewares := []Middleware{Recover(log), RequestID()}
	if len(cfg.AllowList) > 0 {
		middlewares = append(middlewares, NetworkACL(&NetworkACLConfig{
			AllowList: cfg.AllowList,
			Logger:    log,
		}))
	}
	middlewares = append(middlewares, AccessLog(log))

	return Chain(mux, middlewares...)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func readyHandler(ready func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil && !ready() {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
		})
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
