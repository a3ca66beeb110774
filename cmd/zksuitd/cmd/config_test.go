package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()

	cfg, err := LoadConfig(viper.New(), home)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "artifacts"), cfg.Artifacts.Dir)
	require.Empty(t, cfg.Artifacts.Passphrase)
	require.Equal(t, 1, cfg.Prover.Workers)
	require.EqualValues(t, 3, cfg.Prover.MaxRetries)
	require.Equal(t, 200*time.Millisecond, cfg.Prover.RetryInitialInterval)
	require.Equal(t, 5*time.Second, cfg.Prover.RetryMaxInterval)
	require.Equal(t, "info", cfg.Log.Level)
	require.Empty(t, cfg.Metrics.Addr)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "zksuit.toml"), []byte(`
[artifacts]
dir = "/var/lib/zksuit"

[prover]
workers = 4
retry_initial_interval = "1s"
retry_max_interval = "10s"

[log]
level = "debug"
`), 0o600))
	t.Setenv("ZKSUIT_PROVER_WORKERS", "8")
	t.Setenv("ZKSUIT_METRICS_ADDR", "127.0.0.1:9464")

	cfg, err := LoadConfig(viper.New(), home)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/zksuit", cfg.Artifacts.Dir)
	require.Equal(t, 8, cfg.Prover.Workers, "environment overrides the file")
	require.Equal(t, time.Second, cfg.Prover.RetryInitialInterval)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "127.0.0.1:9464", cfg.Metrics.Addr)
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"no workers", map[string]string{"ZKSUIT_PROVER_WORKERS": "0"}, "prover.workers"},
		{"inverted intervals", map[string]string{"ZKSUIT_PROVER_RETRY_MAX_INTERVAL": "1ms"}, "retry_max_interval"},
		{"zero interval", map[string]string{"ZKSUIT_PROVER_RETRY_INITIAL_INTERVAL": "0s"}, "retry_initial_interval"},
		{"bad level", map[string]string{"ZKSUIT_LOG_LEVEL": "loud"}, "log.level"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(viper.New(), t.TempDir())
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "zksuit.toml"), []byte("[prover\nworkers ="), 0o600))

	_, err := LoadConfig(viper.New(), home)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfigTelemetryAndRateLimit(t *testing.T) {
	t.Setenv("ZKSUIT_PROVER_RATE_LIMIT", "2.5")
	t.Setenv("ZKSUIT_PROVER_RATE_BURST", "3")
	t.Setenv("ZKSUIT_TELEMETRY_OTLP_ENDPOINT", "http://localhost:4318")
	t.Setenv("ZKSUIT_TELEMETRY_SAMPLE_RATE", "0.25")

	cfg, err := LoadConfig(viper.New(), t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 2.5, cfg.Prover.RateLimit)
	require.Equal(t, 3, cfg.Prover.RateBurst)
	require.Equal(t, "http://localhost:4318", cfg.Telemetry.OTLPEndpoint)
	require.Equal(t, 0.25, cfg.Telemetry.SampleRate)

	t.Setenv("ZKSUIT_TELEMETRY_SAMPLE_RATE", "2")
	_, err = LoadConfig(viper.New(), t.TempDir())
	require.ErrorContains(t, err, "sample_rate")
}

func TestSetupTracingDisabled(t *testing.T) {
	shutdown, err := setupTracing(t.Context(), TelemetryConfig{})
	require.NoError(t, err)
	require.NoError(t, shutdown(t.Context()))
}
