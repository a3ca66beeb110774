package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const flagSecretFile = "secret-file"

// addSecretFlags registers the ways a command can receive the password and
// salt. Flags are visible in process listings, so the file and environment
// forms are preferred outside of tests.
func addSecretFlags(cmd *cobra.Command) {
	cmd.Flags().String(flagPassword, "", "password field element (prefer --secret-file or "+EnvPrefix+"_PASSWORD)")
	cmd.Flags().String(flagSalt, "", "salt field element (prefer --secret-file or "+EnvPrefix+"_SALT)")
	cmd.Flags().String(flagSecretFile, "", "file holding the password and salt on two lines, - for stdin")
}

// readSecrets resolves the password and salt. Per value the order is flag,
// then --secret-file, then ZKSUIT_PASSWORD / ZKSUIT_SALT.
func readSecrets(cmd *cobra.Command) (string, string, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if err := v.BindPFlag(flagPassword, cmd.Flags().Lookup(flagPassword)); err != nil {
		return "", "", err
	}
	if err := v.BindPFlag(flagSalt, cmd.Flags().Lookup(flagSalt)); err != nil {
		return "", "", err
	}

	password, salt := v.GetString(flagPassword), v.GetString(flagSalt)

	path, _ := cmd.Flags().GetString(flagSecretFile)
	if path != "" {
		bz, err := readInput(cmd, path)
		if err != nil {
			return "", "", fmt.Errorf("failed to read secrets: %w", err)
		}
		filePassword, fileSalt, err := parseSecrets(bz)
		if err != nil {
			return "", "", err
		}
		if !cmd.Flags().Changed(flagPassword) {
			password = filePassword
		}
		if !cmd.Flags().Changed(flagSalt) {
			salt = fileSalt
		}
	}

	if password == "" || salt == "" {
		return "", "", fmt.Errorf("password and salt are required: use --%s, %s_PASSWORD and %s_SALT, or --%s and --%s",
			flagSecretFile, EnvPrefix, EnvPrefix, flagPassword, flagSalt)
	}
	return password, salt, nil
}

// parseSecrets reads the first two non-empty lines as password and salt.
func parseSecrets(bz []byte) (string, string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(bz))
	for scanner.Scan() && len(lines) < 2 {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", fmt.Errorf("failed to read secrets: %w", err)
	}
	if len(lines) != 2 {
		return "", "", fmt.Errorf("secret file must hold the password and the salt on separate lines")
	}
	return lines[0], lines[1], nil
}
