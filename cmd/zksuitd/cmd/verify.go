package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/zksuit/zksuit/x/suitability/types"
)

func newVerifyCmd(app *appContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [calldata-file]",
		Short: "Verify suitability calldata produced by prove",
		Long: `Verify suitability calldata JSON against the verifying key in the artifact
directory. Use - to read from stdin. Exits non-zero when the proof does not
verify.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var cd types.Calldata
			if err := json.Unmarshal(bz, &cd); err != nil {
				return errorsmod.Wrapf(types.ErrMalformedProof, "calldata is not valid JSON: %s", err)
			}

			backend, err := app.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			ok, err := backend.VerifyCalldata(cd)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return types.WrapWithRecovery(types.ErrProofRejected, "proof does not verify")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
}

func newExportVerifierCmd(app *appContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-verifier",
		Short: "Export the Solidity verifier contract for the current verifying key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend, err := app.openBackend(cmd.Context())
			if err != nil {
				return err
			}
			defer backend.Close()

			buf := new(bytes.Buffer)
			if err := backend.ExportSolidity(buf); err != nil {
				return err
			}
			if err := writeOutput(cmd, buf.Bytes()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %s Solidity verifier\n", humanize.Bytes(uint64(buf.Len())))
			return nil
		},
	}

	cmd.Flags().String(flagOutput, "", "write the contract to this file instead of stdout")
	return cmd
}
