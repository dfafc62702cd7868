// Package cli implements the lockup command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/Klingon-tech/klingnet-lockup/config"
	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the configuration they resolve to.
type RootOptions struct {
	Overrides config.Overrides
	JSON      bool

	// Config is loaded in PersistentPreRunE.
	Config *config.Config

	// Prompt reads a secret from the terminal. Replaced in tests.
	Prompt func(prompt string) ([]byte, error)
}

// NewRootCommand creates the root command for the lockup CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{Prompt: readSecret}
	o := &opts.Overrides

	cmd := &cobra.Command{
		Use:           "lockup",
		Short:         "Lockable token ledger with time-locked transfers",
		Long:          "Run scripted lockup scenarios, manage holder keys, and inspect the receipt journal.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			o.SetJournal = flags.Changed("journal")
			o.SetMetrics = flags.Changed("metrics")
			o.SetLogJSON = flags.Changed("log-json")

			cfg, err := config.Load(o)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File); err != nil {
				return WrapExitError(ExitCommandError, "init logging", err)
			}
			types.SetAddressHRP(cfg.AddressHRP())
			opts.Config = cfg
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.Network, "network", "", "network type (mainnet or testnet)")
	pf.StringVar(&o.DataDir, "datadir", "", "data directory (default: "+config.DefaultDataDir()+")")
	pf.BoolVar(&o.Journal, "journal", false, "record receipts in the journal")
	pf.StringVar(&o.JournalBackend, "journal-backend", "", "journal storage (memory or badger)")
	pf.StringVar(&o.SignKey, "journal-signkey", "", "encrypted key file used to sign journal entries")
	pf.BoolVar(&o.Metrics, "metrics", false, "collect and print token metrics")
	pf.StringVar(&o.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&o.LogFile, "log-file", "", "append JSON logs to this file")
	pf.BoolVar(&o.LogJSON, "log-json", false, "log JSON instead of console output")
	pf.BoolVar(&opts.JSON, "json", false, "output in JSON format")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// Execute runs the root command and exits with the command's exit code.
func Execute(version string) {
	cmd := NewRootCommand(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(GetExitCode(err))
	}
}
