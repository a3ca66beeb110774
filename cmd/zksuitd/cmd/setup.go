package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zksuit/zksuit/x/suitability/artifacts"
	"github.com/zksuit/zksuit/x/suitability/setup"
)

const flagSolidityOut = "solidity-out"

func newSetupCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Compile the suitability circuit and generate Groth16 artifacts",
		Long: `Compile the suitability circuit, run a single-party Groth16 setup and store the
constraint system, proving key, verifying key, Solidity verifier and metadata in
the artifact directory. Existing artifacts are overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := app.artifactStore()
			if err != nil {
				return err
			}

			start := time.Now()
			meta, err := setup.NewKeyGenerator(store, setup.WithLogger(app.logger)).GenerateKeys(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "key id:       %s\n", meta.KeyID)
			fmt.Fprintf(out, "circuit:      %s (%s constraints, %d public inputs)\n",
				meta.CircuitName, humanize.Comma(int64(meta.ConstraintCount)), meta.PublicInputs)
			fmt.Fprintf(out, "ceremony:     %s\n", meta.CeremonyID)
			fmt.Fprintf(out, "artifacts:    %s\n", app.cfg.Artifacts.Dir)
			fmt.Fprintf(out, "took:         %s\n", time.Since(start).Round(time.Millisecond))

			solOut, _ := cmd.Flags().GetString(flagSolidityOut)
			if solOut == "" {
				return nil
			}
			sol, err := store.Load(cmd.Context(), artifacts.SolidityVerifierFile)
			if err != nil {
				return err
			}
			if err := os.WriteFile(solOut, sol, 0o644); err != nil {
				return fmt.Errorf("failed to write solidity verifier: %w", err)
			}
			fmt.Fprintf(out, "verifier:     %s (%s)\n", solOut, humanize.Bytes(uint64(len(sol))))
			return nil
		},
	}

	cmd.Flags().String(flagSolidityOut, "", "also write the Solidity verifier to this file")
	return cmd
}
