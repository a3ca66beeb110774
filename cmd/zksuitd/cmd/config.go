package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment override, e.g. ZKSUIT_PROVER_WORKERS.
	EnvPrefix = "ZKSUIT"

	configName = "zksuit"
)

// Config is the zksuitd configuration.
type Config struct {
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Prover    ProverConfig    `mapstructure:"prover"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ArtifactsConfig locates the proving artifacts. A non-empty passphrase
// seals artifacts at rest.
type ArtifactsConfig struct {
	Dir        string `mapstructure:"dir"`
	Passphrase string `mapstructure:"passphrase"`
}

// ProverConfig bounds proving concurrency and retries.
type ProverConfig struct {
	Workers              int           `mapstructure:"workers"`
	MaxRetries           uint64        `mapstructure:"max_retries"`
	RetryInitialInterval time.Duration `mapstructure:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `mapstructure:"retry_max_interval"`
	RateLimit            float64       `mapstructure:"rate_limit"`
	RateBurst            int           `mapstructure:"rate_burst"`
}

// TelemetryConfig enables OTLP trace export when OTLPEndpoint is set.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig enables the Prometheus exporter when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultHome returns the default zksuitd home directory.
func DefaultHome() string {
	if home := os.Getenv(EnvPrefix + "_HOME"); home != "" {
		return home
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return ".zksuit"
	}
	return filepath.Join(userHome, ".zksuit")
}

func setDefaults(v *viper.Viper, home string) {
	v.SetDefault("artifacts.dir", filepath.Join(home, "artifacts"))
	v.SetDefault("artifacts.passphrase", "")

	v.SetDefault("prover.workers", 1)
	v.SetDefault("prover.max_retries", 3)
	v.SetDefault("prover.retry_initial_interval", "200ms")
	v.SetDefault("prover.retry_max_interval", "5s")
	v.SetDefault("prover.rate_limit", 0)
	v.SetDefault("prover.rate_burst", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.sample_rate", 1.0)
}

// LoadConfig reads zksuit.toml (or .yaml) from home if present, applies
// ZKSUIT_ environment overrides and validates the result. Flags bound to v
// take precedence over both.
func LoadConfig(v *viper.Viper, home string) (*Config, error) {
	setDefaults(v, home)

	v.SetConfigName(configName)
	v.AddConfigPath(home)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir is required")
	}
	if c.Prover.Workers < 1 {
		return fmt.Errorf("prover.workers must be at least 1")
	}
	if c.Prover.RetryInitialInterval <= 0 {
		return fmt.Errorf("prover.retry_initial_interval must be positive")
	}
	if c.Prover.RetryMaxInterval < c.Prover.RetryInitialInterval {
		return fmt.Errorf("prover.retry_max_interval must not be below prover.retry_initial_interval")
	}
	if c.Prover.RateLimit < 0 {
		return fmt.Errorf("prover.rate_limit cannot be negative")
	}
	if c.Prover.RateLimit > 0 && c.Prover.RateBurst < 1 {
		return fmt.Errorf("prover.rate_burst must be at least 1 when rate limiting")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("telemetry.sample_rate must be between 0 and 1")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return nil
}
