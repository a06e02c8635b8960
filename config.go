package transloader

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration sourced from the environment or an
// optional config file.
type Config struct {
	Key     string        `mapstructure:"key"`
	Secret  string        `mapstructure:"secret"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoadConfig reads configuration from the TRANSLOADIT_* environment
// variables, optionally layered over a config file:
//
//	TRANSLOADIT_KEY       API key
//	TRANSLOADIT_SECRET    API secret
//	TRANSLOADIT_BASE_URL  API endpoint (default http://api2.transloadit.com)
//	TRANSLOADIT_TIMEOUT   per-request timeout (default 30s)
//
// path may be empty, in which case only the environment is consulted.
func LoadConfig(path string) (*Config, error) {
	vip := viper.New()
	vip.SetEnvPrefix("TRANSLOADIT")
	vip.AutomaticEnv()
	for _, key := range []string{"key", "secret", "base_url", "timeout"} {
		if err := vip.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	vip.SetDefault("base_url", DefaultBaseURL)
	vip.SetDefault("timeout", DefaultTimeout)

	if path != "" {
		vip.SetConfigFile(path)
		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// NewFromEnv creates a Client from LoadConfig("") plus any extra options.
// Options are applied after the environment so they win on conflict.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	all := []Option{
		WithBaseURL(cfg.BaseURL),
		WithTimeout(cfg.Timeout),
	}
	all = append(all, opts...)
	return New(cfg.Key, cfg.Secret, all...)
}
