package fetch

import (
	"github.com/rs/zerolog"

	"github.com/hoplink/hoplink/pkg/transport"
)

// Engine is the policy-driven entry point for issuing requests. It resolves
// redirects itself, retries failure statuses, maps status codes onto
// outcomes, and discovers pagination links. An Engine is safe for concurrent
// use: all per-request state lives inside one call.
type Engine struct {
	registry *transport.Registry
	logger   zerolog.Logger
	cfg      Config
}

func New(cfg Config) *Engine {
	reg := transport.DefaultRegistry
	if cfg.UserAgent != "" || cfg.RatePerSecond > 0 {
		reg = transport.NewRegistry()
		ht := transport.NewHTTPTransport()
		if cfg.UserAgent != "" {
			ht.SetUserAgent(cfg.UserAgent)
		}
		ht.SetRateLimit(cfg.RatePerSecond)
		reg.Register(ht)
		reg.Register(transport.NewFileTransport())
	}
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = DefaultConfig().MaxHops
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultConfig().MaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Engine{
		registry: reg,
		logger:   zerolog.Nop(),
		cfg:      cfg,
	}
}

// SetLogger attaches a logger for protocol tracing. Request lines and
// response status/headers are emitted at debug level; recovered conditions
// like a missing content type are warnings.
func (e *Engine) SetLogger(logger zerolog.Logger) {
	e.logger = logger
}

// SetRegistry replaces the transport registry, e.g. to add schemes.
func (e *Engine) SetRegistry(registry *transport.Registry) {
	e.registry = registry
}
