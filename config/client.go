package config

import (
	"github.com/buildsys/mortar/httpclient"
	"github.com/buildsys/mortar/logger"
)

// ClientConfig converts the declarative configuration into the programmatic
// client configuration. Interceptors and custom transports stay code-side.
func (c *Config) ClientConfig() *httpclient.Config {
	cfg := &httpclient.Config{
		BaseURL:            c.BaseURL,
		Timeout:            c.Timeout,
		DefaultHeaders:     c.Headers,
		LogPayloads:        c.Log.Payloads,
		MaxPayloadLogBytes: c.Log.MaxPayloadBytes,
		TraceIDHeader:      c.TraceHeader,
		EnableW3CTrace:     c.W3CTrace,
		RateLimit:          c.Rate.Limit,
		RateBurst:          c.Rate.Burst,
	}

	if c.Retry.Max > 0 {
		factor := c.Retry.Factor
		if factor <= 1 {
			factor = 2.0
		}
		cfg.Retry = httpclient.RetryPolicy{
			MaxRetries:  c.Retry.Max,
			Delay:       httpclient.ExponentialBackoff(c.Retry.MinDelay, c.Retry.MaxDelay, factor, c.Retry.Jitter),
			ShouldRetry: httpclient.RetryTransient,
		}
	}

	if c.Auth.Username != "" {
		cfg.BasicAuth = &httpclient.BasicAuth{
			Username: c.Auth.Username,
			Password: c.Auth.Password,
		}
	}

	return cfg
}

// NewLogger builds the structured logger described by the log section.
func (c *Config) NewLogger() logger.Logger {
	return logger.New(c.Log.Level, c.Log.Pretty)
}

// NewClient builds a ready-to-use client from the configuration.
func (c *Config) NewClient() httpclient.Client {
	return httpclient.NewClient(c.ClientConfig(), c.NewLogger())
}
