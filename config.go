// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the file form of a connector configuration:
//
//	base_url = "http://host/api/"
//	max_cached_endpoints = 10
//
//	[http]
//	timeout = "30s"
//	attempts = 3
//	headers = { "X-Token" = "secret" }
//	query = { "v" = "2" }
type Config struct {
	BaseURL            string     `toml:"base_url"`
	MaxCachedEndpoints int        `toml:"max_cached_endpoints"`
	HTTP               HTTPConfig `toml:"http"`
}

// HTTPConfig tunes the JSON-RPC over HTTP transport
type HTTPConfig struct {
	Timeout  time.Duration     `toml:"timeout"`
	Attempts int               `toml:"attempts"`
	Headers  map[string]string `toml:"headers"`
	Query    map[string]string `toml:"query"`
}

// LoadConfig reads and parses a TOML configuration file
func LoadConfig(file string) (*Config, error) {
	input, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(string(input))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", file, err)
	}
	return cfg, nil
}

// ParseConfig parses a TOML configuration. A missing max_cached_endpoints
// means DefaultMaxCachedEndpoints; an explicit 0 disables caching.
func ParseConfig(input string) (*Config, error) {
	cfg := &Config{}
	md, err := toml.Decode(input, cfg)
	if err != nil {
		return nil, err
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown keys %v", unknown)
	}
	if !md.IsDefined("max_cached_endpoints") {
		cfg.MaxCachedEndpoints = DefaultMaxCachedEndpoints
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrInvalidBaseURL)
	}
	if _, err := ParseBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.MaxCachedEndpoints < 0 {
		return fmt.Errorf("max_cached_endpoints must not be negative, got %d", c.MaxCachedEndpoints)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout)
	}
	if c.HTTP.Attempts < 0 {
		return fmt.Errorf("http.attempts must not be negative, got %d", c.HTTP.Attempts)
	}
	return nil
}

func (c *Config) dispatchOptions() []DispatchOption {
	var opts []DispatchOption
	if c.HTTP.Timeout > 0 {
		opts = append(opts, WithTimeout(c.HTTP.Timeout))
	}
	if c.HTTP.Attempts > 0 {
		opts = append(opts, WithAttempts(c.HTTP.Attempts))
	}
	var request []Option
	for k, v := range c.HTTP.Headers {
		request = append(request, WithHeader(k, v))
	}
	for k, v := range c.HTTP.Query {
		request = append(request, WithQueryParam(k, v))
	}
	if len(request) > 0 {
		opts = append(opts, WithRequestOptions(request...))
	}
	return opts
}
