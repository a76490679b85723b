package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config captures the runtime settings for forward. Every field can be set by
// flag, by FORWARD_* environment variable or from a config file.
type Config struct {
	Store           string `mapstructure:"store"`
	Backend         string `mapstructure:"backend"`
	IPTablesBinary  string `mapstructure:"iptables-binary"`
	IP6TablesBinary string `mapstructure:"ip6tables-binary"`
	Wait            int    `mapstructure:"wait"`
	Sudo            bool   `mapstructure:"sudo"`
	AuditMap        string `mapstructure:"audit-map"`
	MetricsTextfile string `mapstructure:"metrics-textfile"`
	LogLevel        string `mapstructure:"log-level"`
	LogFormat       string `mapstructure:"log-format"`
}

// Load reads configuration values from viper into a Config instance.
func Load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	switch strings.TrimSpace(c.Backend) {
	case "", "exec", "go-iptables":
	default:
		return fmt.Errorf("invalid backend %q: must be one of exec|go-iptables", c.Backend)
	}
	if c.Wait < 0 {
		return fmt.Errorf("invalid wait %d: must not be negative", c.Wait)
	}
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "text", "json":
	default:
		return fmt.Errorf("invalid log format %q: must be one of text|json", c.LogFormat)
	}
	return nil
}
