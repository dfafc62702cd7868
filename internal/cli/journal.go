package cli

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-lockup/config"
	"github.com/Klingon-tech/klingnet-lockup/internal/journal"
	"github.com/Klingon-tech/klingnet-lockup/internal/wallet"
	"github.com/spf13/cobra"
)

// NewJournalCommand creates the journal command group.
func NewJournalCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the receipt journal",
	}
	cmd.AddCommand(newJournalListCommand(opts))
	cmd.AddCommand(newJournalVerifyCommand(opts))
	return cmd
}

func requirePersistentJournal(cfg *config.Config) error {
	if cfg.Journal.Backend != config.BackendBadger {
		return NewExitError(ExitCommandError, "journal backend is memory; nothing is persisted")
	}
	return nil
}

func newJournalListCommand(opts *RootOptions) *cobra.Command {
	var (
		from  uint64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePersistentJournal(opts.Config); err != nil {
				return err
			}
			j, closeDB, err := openJournal(opts, false)
			if err != nil {
				return WrapExitError(ExitCommandError, "journal", err)
			}
			defer closeDB()

			entries, err := j.List(from, limit)
			if err != nil {
				return WrapExitError(ExitCommandError, "list journal", err)
			}
			out := cmd.OutOrStdout()
			if opts.JSON {
				return writeJSON(out, entries)
			}
			for _, e := range entries {
				rc, err := e.Decode()
				if err != nil {
					return WrapExitError(ExitFailure, fmt.Sprintf("entry %d", e.Seq), err)
				}
				signed := ""
				if e.Signed() {
					signed = " signed"
				}
				fmt.Fprintf(out, "%6d  %s  %-18s %s  events=%d%s\n",
					e.Seq, rc.Time.Format("2006-01-02T15:04:05Z07:00"), rc.Op, rc.Caller.Short(), len(rc.Events), signed)
			}
			return nil
		},
	}
	cmd.Flags().Uint64Var(&from, "from", 1, "first sequence number")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to list")
	return cmd
}

type verifyOutput struct {
	Entries int    `json:"entries"`
	Signed  int    `json:"signed"`
	Head    string `json:"head"`
}

func newJournalVerifyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check the journal hash chain and signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.Config
			if err := requirePersistentJournal(cfg); err != nil {
				return err
			}

			var pub []byte
			if cfg.Journal.SignKey != "" {
				var err error
				pub, err = wallet.PublicKeyFromFile(cfg.SignKeyFile())
				if err != nil {
					return WrapExitError(ExitCommandError, "signing key", err)
				}
			}

			j, closeDB, err := openJournal(opts, false)
			if err != nil {
				return WrapExitError(ExitCommandError, "journal", err)
			}
			defer closeDB()

			rep, err := j.Verify(pub)
			if errors.Is(err, journal.ErrBrokenChain) || errors.Is(err, journal.ErrBadSignature) {
				return WrapExitError(ExitFailure, "journal verification failed", err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "verify journal", err)
			}

			out := cmd.OutOrStdout()
			res := verifyOutput{Entries: rep.Entries, Signed: rep.Signed, Head: rep.Head.String()}
			if opts.JSON {
				return writeJSON(out, res)
			}
			fmt.Fprintf(out, "OK: %d entries (%d signed), head %s\n", res.Entries, res.Signed, res.Head)
			return nil
		},
	}
}
