package httpserver

import (
	"net/http"

	"github.com/yndnr/respkv/internal/server/httpserver/handler"
	"github.com/yndnr/respkv/internal/telemetry/logger"
	"github.com/yndnr/respkv/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Keyspace backs /admin/v1/status.
	Keyspace handler.Keyspace

	// Clients backs /ready and /admin/v1/status. May be nil.
	Clients handler.Clients

	// Metrics is served on /metrics. Nil disables the endpoint.
	Metrics *metric.Registry

	// Logger for request logging.
	Logger logger.Logger

	// AllowList is the IP/CIDR allowlist for /metrics and /admin (empty = no restriction).
	AllowList []string
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	h := handler.New(cfg.Keyspace, cfg.Clients, log)
	acl := NetworkACL(&NetworkACLConfig{AllowList: cfg.AllowList, Logger: log})

	mux := http.NewServeMux()

	// Health endpoints are never restricted.
	health := Chain(h, RequestID(), Recover(log))
	mux.Handle("GET /healthz", health)
	mux.Handle("GET /ready", health)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(log), acl))
	}

	mux.Handle("GET /admin/v1/status", Chain(h,
		RequestID(),
		Recover(log),
		AccessLog(log),
		acl,
	))

	return mux
}
