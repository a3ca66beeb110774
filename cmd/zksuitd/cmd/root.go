package cmd

import (
	"context"
	"net/http"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zksuit/zksuit/x/suitability/artifacts"
	"github.com/zksuit/zksuit/x/suitability/prover"
	"github.com/zksuit/zksuit/x/suitability/protocol"
)

const (
	flagHome         = "home"
	flagArtifactsDir = "artifacts-dir"
	flagLogLevel     = "log-level"
	flagMetricsAddr  = "metrics-addr"
	flagWorkers      = "workers"
)

// appContext carries what PersistentPreRunE loads to every subcommand.
type appContext struct {
	cfg      *Config
	logger   log.Logger
	metrics  *http.Server
	shutdown func(context.Context) error
}

// NewRootCmd creates the zksuitd root command.
func NewRootCmd() *cobra.Command {
	app := &appContext{logger: log.NewNopLogger()}

	rootCmd := &cobra.Command{
		Use:   "zksuitd",
		Short: "Privacy-preserving attribute suitability proofs",
		Long: `zksuitd generates Groth16 artifacts for the suitability circuit, derives
identities and certificates, and builds and verifies suitability proofs whose
calldata can be submitted to the on-chain suitability module.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())

			home, err := cmd.Flags().GetString(flagHome)
			if err != nil {
				return err
			}

			v := viper.New()
			if err := bindFlags(v, cmd.Flags()); err != nil {
				return err
			}

			cfg, err := LoadConfig(v, home)
			if err != nil {
				return err
			}
			level, _ := zerolog.ParseLevel(cfg.Log.Level)

			app.cfg = cfg
			app.logger = log.NewLogger(cmd.ErrOrStderr(), log.LevelOption(level)).With("module", "zksuitd")
			if app.shutdown, err = setupTracing(cmd.Context(), cfg.Telemetry); err != nil {
				return err
			}
			if cfg.Metrics.Addr != "" {
				app.metrics = StartPrometheusServer(cfg.Metrics.Addr, app.logger)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			var err error
			if app.shutdown != nil {
				err = app.shutdown(ctx)
			}
			if app.metrics != nil {
				if shutdownErr := app.metrics.Shutdown(ctx); shutdownErr != nil && err == nil {
					err = shutdownErr
				}
			}
			return err
		},
	}

	rootCmd.PersistentFlags().String(flagHome, DefaultHome(), "directory holding zksuit.toml")
	rootCmd.PersistentFlags().String(flagArtifactsDir, "", "artifact directory (default <home>/artifacts)")
	rootCmd.PersistentFlags().String(flagLogLevel, "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String(flagMetricsAddr, "", "serve Prometheus metrics on this address")
	rootCmd.PersistentFlags().Int(flagWorkers, 1, "concurrent proving jobs")

	rootCmd.AddCommand(
		newSetupCmd(app),
		newIdentityCmd(),
		newCertificateCmd(),
		newProveCmd(app),
		newVerifyCmd(app),
		newExportVerifierCmd(app),
	)

	return rootCmd
}

// bindFlags lets command-line flags override the config keys they name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range map[string]string{
		"artifacts.dir":  flagArtifactsDir,
		"log.level":      flagLogLevel,
		"metrics.addr":   flagMetricsAddr,
		"prover.workers": flagWorkers,
	} {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}

// artifactStore opens the configured artifact directory, sealed when a
// passphrase is set.
func (a *appContext) artifactStore() (artifacts.Store, error) {
	fs := artifacts.NewFileStore(a.cfg.Artifacts.Dir)
	if a.cfg.Artifacts.Passphrase == "" {
		return fs, nil
	}
	return artifacts.NewSealedStore(fs, []byte(a.cfg.Artifacts.Passphrase))
}

func (a *appContext) openBackend(ctx context.Context) (*prover.Backend, error) {
	store, err := a.artifactStore()
	if err != nil {
		return nil, err
	}
	return prover.Open(ctx, store, prover.WithLogger(a.logger))
}

func (a *appContext) retryConfig() protocol.RetryConfig {
	return protocol.RetryConfig{
		MaxRetries:      a.cfg.Prover.MaxRetries,
		InitialInterval: a.cfg.Prover.RetryInitialInterval,
		MaxInterval:     a.cfg.Prover.RetryMaxInterval,
	}
}
