package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zksuit/zksuit/x/suitability/protocol"
	"github.com/zksuit/zksuit/x/suitability/types"
)

const (
	flagCertificate = "certificate"
	flagDirections  = "directions"
	flagThresholds  = "thresholds"
	flagOutput      = "output"
)

func newProveCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Build a suitability proof and print its calldata as JSON",
		Long: `Prove that the attributes committed in a certificate satisfy the given
directions and thresholds, without revealing the attributes. Directions are
ge (attribute >= threshold) or le (attribute <= threshold). When --certificate
is omitted it is derived from the password, salt and attributes.

The password and salt are read from --secret-file, from ZKSUIT_PASSWORD and
ZKSUIT_SALT, or from the --password and --salt flags.`,
		Example: `printf '123\n456\n' | zksuitd prove --secret-file - --attributes 1,73,600 \
  --directions ge,ge,le --thresholds 0,70,670`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := proofRequestFromFlags(cmd)
			if err != nil {
				return err
			}

			backend, err := app.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			orch := protocol.NewOrchestrator(backend,
				protocol.WithRetryConfig(app.retryConfig()),
				protocol.WithLogger(app.logger),
			)
			pool, err := protocol.NewPool(orch, app.cfg.Prover.Workers,
				protocol.WithRateLimit(app.cfg.Prover.RateLimit, app.cfg.Prover.RateBurst),
			)
			if err != nil {
				return err
			}
			_, results := pool.Submit(cmd.Context(), req)
			res := <-results
			pool.Wait()
			if res.Err != nil {
				return res.Err
			}

			bz, err := json.MarshalIndent(res.Result.Calldata, "", "  ")
			if err != nil {
				return err
			}
			if err := writeOutput(cmd, bz); err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "proof %s built in %s (%d attempt(s))\n",
				res.JobID, res.Result.Duration.Round(time.Millisecond), res.Result.Attempts)
			return nil
		},
	}

	addSecretFlags(cmd)
	cmd.Flags().StringSlice(flagAttributes, nil, "comma-separated attribute values")
	cmd.Flags().String(flagCertificate, "", "attested certificate (derived when empty)")
	cmd.Flags().StringSlice(flagDirections, nil, "comma-separated directions: ge or le")
	cmd.Flags().StringSlice(flagThresholds, nil, "comma-separated thresholds")
	cmd.Flags().String(flagOutput, "", "write calldata to this file instead of stdout")
	for _, f := range []string{flagAttributes, flagDirections, flagThresholds} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func proofRequestFromFlags(cmd *cobra.Command) (protocol.ProofRequest, error) {
	password, salt, err := readSecrets(cmd)
	if err != nil {
		return protocol.ProofRequest{}, err
	}
	attributes, _ := cmd.Flags().GetStringSlice(flagAttributes)
	certificate, _ := cmd.Flags().GetString(flagCertificate)
	rawDirections, _ := cmd.Flags().GetStringSlice(flagDirections)
	thresholds, _ := cmd.Flags().GetStringSlice(flagThresholds)

	directions := make([]types.Direction, len(rawDirections))
	for i, s := range rawDirections {
		d, err := types.ParseDirection(s)
		if err != nil {
			return protocol.ProofRequest{}, fmt.Errorf("direction %d: %w", i, err)
		}
		directions[i] = d
	}

	if certificate == "" {
		identity, err := protocol.DeriveIdentity(password, salt)
		if err != nil {
			return protocol.ProofRequest{}, err
		}
		if certificate, err = protocol.DeriveCertificate(identity, attributes); err != nil {
			return protocol.ProofRequest{}, err
		}
	}

	return protocol.ProofRequest{
		Password:    password,
		Salt:        salt,
		Attributes:  attributes,
		Certificate: certificate,
		Directions:  directions,
		Thresholds:  thresholds,
	}, nil
}

func writeOutput(cmd *cobra.Command, data []byte) error {
	path, _ := cmd.Flags().GetString(flagOutput)
	if path == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
