package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zksuit/zksuit/x/suitability/protocol"
)

const (
	flagPassword   = "password"
	flagSalt       = "salt"
	flagIdentity   = "identity"
	flagAttributes = "attributes"
)

func newIdentityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Derive the identity commitment of a password and salt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, salt, err := readSecrets(cmd)
			if err != nil {
				return err
			}

			identity, err := protocol.DeriveIdentity(password, salt)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), identity)
			return nil
		},
	}

	addSecretFlags(cmd)
	return cmd
}

func newCertificateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "certificate",
		Short: "Derive the certificate binding an identity to its attributes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, _ := cmd.Flags().GetString(flagIdentity)
			attributes, _ := cmd.Flags().GetStringSlice(flagAttributes)

			certificate, err := protocol.DeriveCertificate(identity, attributes)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), certificate)
			return nil
		},
	}

	cmd.Flags().String(flagIdentity, "", "identity commitment")
	cmd.Flags().StringSlice(flagAttributes, nil, "comma-separated attribute values")
	_ = cmd.MarkFlagRequired(flagIdentity)
	_ = cmd.MarkFlagRequired(flagAttributes)
	return cmd
}
