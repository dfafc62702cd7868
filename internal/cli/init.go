package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Klingon-tech/klingnet-lockup/config"
	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/internal/wallet"
	"github.com/Klingon-tech/klingnet-lockup/pkg/crypto"
	"github.com/spf13/cobra"
)

// signKeyName is the key file created by "init --signkey".
const signKeyName = "journal.key"

// kdfParams protects new key files. Lowered in tests.
var kdfParams = wallet.DefaultKDFParams()

// NewInitCommand creates the init command.
func NewInitCommand(opts *RootOptions) *cobra.Command {
	var withKey bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the data directory and a default config file",
		Long: "Create the data directory tree and write lockup.conf if it is missing.\n" +
			"With --signkey, also generate an encrypted journal signing key.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, opts, withKey)
		},
	}
	cmd.Flags().BoolVar(&withKey, "signkey", false, "generate a journal signing key")
	return cmd
}

func runInit(cmd *cobra.Command, opts *RootOptions, withKey bool) error {
	cfg := opts.Config
	out := cmd.OutOrStdout()

	if err := cfg.EnsureDataDirs(); err != nil {
		return WrapExitError(ExitCommandError, "create data directories", err)
	}

	path := cfg.ConfigFile()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.WriteDefaultConfig(path, cfg.Network); err != nil {
			return WrapExitError(ExitCommandError, "write config", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", path)
	} else {
		fmt.Fprintf(out, "Config %s already exists\n", path)
	}

	if !withKey {
		return nil
	}

	keyPath := filepath.Join(cfg.KeysDir(), signKeyName)
	if _, err := os.Stat(keyPath); err == nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("signing key %s already exists", keyPath))
	}
	pw, err := opts.password("New key password: ")
	if err != nil {
		return WrapExitError(ExitCommandError, "read password", err)
	}
	if os.Getenv("LOCKUP_PASSWORD") == "" {
		again, err := opts.Prompt("Repeat password: ")
		if err != nil {
			return WrapExitError(ExitCommandError, "read password", err)
		}
		if !bytes.Equal(pw, again) {
			return NewExitError(ExitCommandError, "passwords do not match")
		}
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return WrapExitError(ExitCommandError, "generate key", err)
	}
	defer key.Zero()
	if err := wallet.SaveKey(keyPath, key, pw, kdfParams); err != nil {
		return WrapExitError(ExitCommandError, "save key", err)
	}
	if err := appendConfigLine(path, "journal.signkey = "+signKeyName); err != nil {
		return WrapExitError(ExitCommandError, "update config", err)
	}

	klog.CLI.Info().Str("path", keyPath).Str("address", key.Address().String()).Msg("Journal signing key created")
	fmt.Fprintf(out, "Signing key %s\nAddress     %s\n", keyPath, key.Address())
	return nil
}

func appendConfigLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "\n%s\n", line); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
