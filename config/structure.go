package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config is the declarative client configuration loaded from defaults,
// YAML and environment variables.
type Config struct {
	BaseURL     string            `koanf:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration     `koanf:"timeout" validate:"min=0"`
	Retry       RetryConfig       `koanf:"retry"`
	Rate        RateConfig        `koanf:"rate"`
	Log         LogConfig         `koanf:"log"`
	Auth        AuthConfig        `koanf:"auth"`
	Headers     map[string]string `koanf:"headers"`
	TraceHeader string            `koanf:"trace_header"`
	W3CTrace    bool              `koanf:"w3c_trace"`

	// k holds the underlying Koanf instance for flexible access to custom keys
	k *koanf.Koanf `json:"-" yaml:"-" toml:"-" mapstructure:"-"`
}

type RetryConfig struct {
	Max      int           `koanf:"max" validate:"min=0"`
	MinDelay time.Duration `koanf:"min_delay" validate:"min=0"`
	MaxDelay time.Duration `koanf:"max_delay" validate:"min=0"`
	Factor   float64       `koanf:"factor"`
	Jitter   bool          `koanf:"jitter"`
}

type RateConfig struct {
	Limit float64 `koanf:"limit" validate:"min=0"`
	Burst int     `koanf:"burst" validate:"min=0"`
}

type LogConfig struct {
	Level           string `koanf:"level" validate:"oneof=trace debug info warn error fatal panic"`
	Pretty          bool   `koanf:"pretty"`
	Payloads        bool   `koanf:"payloads"`
	MaxPayloadBytes int    `koanf:"max_payload_bytes" validate:"min=0"`
}

type AuthConfig struct {
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// Get returns an arbitrary key from the merged configuration tree, for
// settings outside the typed structure.
func (c *Config) Get(key string) any {
	if c.k == nil {
		return nil
	}
	return c.k.Get(key)
}
