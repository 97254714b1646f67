package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables read by Load. A double
// underscore separates nesting levels: MORTAR_RETRY__MAX_DELAY maps to
// retry.max_delay.
const EnvPrefix = "MORTAR_"

// defaultConfigFile is loaded when Load is called without an explicit path.
const defaultConfigFile = "mortar.yaml"

// Load merges configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. The YAML configuration file
// 3. Default values (lowest priority)
//
// An explicit path must exist; the default file is optional.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	switch {
	case path != "":
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	default:
		if _, err := os.Stat(defaultConfigFile); err == nil {
			if err := k.Load(file.Provider(defaultConfigFile), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", defaultConfigFile, err)
			}
		}
	}

	if err := k.Load(envprovider.Provider(".", envprovider.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
			return strings.ReplaceAll(key, "__", "."), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"base_url": "",
		"timeout":  "30s",

		"retry.max":       3,
		"retry.min_delay": "100ms",
		"retry.max_delay": "5s",
		"retry.factor":    2.0,
		"retry.jitter":    true,

		"rate.limit": 0.0,
		"rate.burst": 1,

		"log.level":             "info",
		"log.pretty":            false,
		"log.payloads":          false,
		"log.max_payload_bytes": 1024,

		"trace_header": "X-Request-ID",
		"w3c_trace":    false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
