package fetch

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds engine-wide defaults. Every field can be set through
// HOPLINK_* environment variables; per-request Options override them.
type Config struct {
	// MaxHops caps the redirect chain length per logical request
	MaxHops int `envconfig:"MAX_HOPS" default:"5"`

	// MaxRetries caps attempts on failure statuses; the first attempt counts,
	// so the default of 1 performs no retry at all
	MaxRetries int `envconfig:"MAX_RETRIES" default:"1"`

	// Timeout applies per physical attempt, at the transport
	Timeout time.Duration `envconfig:"TIMEOUT" default:"60s"`

	// UserAgent identifies the client on outgoing requests
	UserAgent string `envconfig:"USER_AGENT" default:"hoplink/1.0"`

	// RatePerSecond throttles outgoing attempts; 0 means unlimited
	RatePerSecond float64 `envconfig:"RATE_PER_SECOND" default:"0"`
}

// LoadConfig reads defaults from the environment, falling back to the
// built-in values above.
func LoadConfig() (Config, error) {
	var c Config
	err := envconfig.Process("hoplink", &c)
	return c, err
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() Config {
	return Config{
		MaxHops:    5,
		MaxRetries: 1,
		Timeout:    time.Second * 60,
		UserAgent:  "hoplink/1.0",
	}
}
