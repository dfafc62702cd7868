package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-lockup/internal/wallet"
	"github.com/spf13/cobra"
)

type keysOptions struct {
	generate   bool
	count      int
	account    uint32
	passphrase bool
}

type holderOutput struct {
	Path    string `json:"path"`
	Address string `json:"address"`
	PubKey  string `json:"pubkey"`
}

type keysOutput struct {
	Mnemonic string         `json:"mnemonic,omitempty"`
	Holders  []holderOutput `json:"holders"`
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(opts *RootOptions) *cobra.Command {
	ko := &keysOptions{}

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Derive holder addresses from a mnemonic",
		Long: "Derive holder addresses along m/44'/8888'/account'/0/index.\n" +
			"The mnemonic is read from LOCKUP_MNEMONIC or prompted for; --new generates one.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeys(cmd, opts, ko)
		},
	}
	cmd.Flags().BoolVar(&ko.generate, "new", false, "generate a new mnemonic")
	cmd.Flags().IntVar(&ko.count, "count", 1, "number of holders to derive")
	cmd.Flags().Uint32Var(&ko.account, "account", 0, "BIP-44 account index")
	cmd.Flags().BoolVar(&ko.passphrase, "passphrase", false, "prompt for a BIP-39 passphrase")
	return cmd
}

func runKeys(cmd *cobra.Command, opts *RootOptions, ko *keysOptions) error {
	if ko.count < 1 {
		return NewExitError(ExitCommandError, "--count must be at least 1")
	}

	var (
		mnemonic string
		err      error
	)
	if ko.generate {
		mnemonic, err = wallet.GenerateMnemonic()
		if err != nil {
			return WrapExitError(ExitCommandError, "generate mnemonic", err)
		}
	} else {
		mnemonic, err = readMnemonic(opts)
		if err != nil {
			return err
		}
	}

	var passphrase string
	if ko.passphrase {
		pp, err := opts.Prompt("BIP-39 passphrase: ")
		if err != nil {
			return WrapExitError(ExitCommandError, "read passphrase", err)
		}
		passphrase = string(pp)
	}

	holders, err := wallet.DeriveHolders(mnemonic, passphrase, ko.account, ko.count)
	if err != nil {
		return WrapExitError(ExitCommandError, "derive holders", err)
	}

	res := keysOutput{}
	if ko.generate {
		res.Mnemonic = mnemonic
	}
	for _, h := range holders {
		res.Holders = append(res.Holders, holderOutput{
			Path:    h.Path,
			Address: h.Address.String(),
			PubKey:  fmt.Sprintf("%x", h.Key.PublicKey()),
		})
		h.Key.Zero()
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		return writeJSON(out, res)
	}
	if res.Mnemonic != "" {
		fmt.Fprintf(out, "Mnemonic: %s\n\nWrite these words down; they are the only backup.\n\n", res.Mnemonic)
	}
	for _, h := range res.Holders {
		fmt.Fprintf(out, "%-24s %s\n", h.Path, h.Address)
	}
	return nil
}

func readMnemonic(opts *RootOptions) (string, error) {
	m := os.Getenv("LOCKUP_MNEMONIC")
	if m == "" {
		b, err := opts.Prompt("Mnemonic: ")
		if err != nil {
			return "", WrapExitError(ExitCommandError, "read mnemonic", err)
		}
		m = string(b)
	}
	m = strings.Join(strings.Fields(m), " ")
	if !wallet.ValidateMnemonic(m) {
		return "", WrapExitError(ExitCommandError, "read mnemonic", wallet.ErrInvalidMnemonic)
	}
	return m, nil
}
