package cli

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-lockup/config"
	"github.com/Klingon-tech/klingnet-lockup/internal/journal"
	"github.com/Klingon-tech/klingnet-lockup/internal/storage"
	"github.com/Klingon-tech/klingnet-lockup/internal/wallet"
)

// openJournal opens the configured receipt journal inside its network
// namespace. When sign is true and a signing key is configured, entries are
// signed with it.
func openJournal(opts *RootOptions, sign bool) (*journal.Journal, func() error, error) {
	cfg := opts.Config

	var db storage.DB
	switch cfg.Journal.Backend {
	case config.BackendBadger:
		bdb, err := storage.NewBadger(cfg.JournalDir())
		if err != nil {
			return nil, nil, fmt.Errorf("open journal: %w", err)
		}
		db = bdb
	default:
		db = storage.NewMemory()
	}

	var jopts []journal.Option
	if sign && cfg.Journal.SignKey != "" {
		pw, err := opts.password("Journal key password: ")
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("read password: %w", err)
		}
		key, err := wallet.LoadKey(cfg.SignKeyFile(), pw)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("load signing key: %w", err)
		}
		jopts = append(jopts, journal.WithSigner(key))
	}

	j, err := journal.Open(storage.NewPrefixDB(db, cfg.JournalNamespace()), jopts...)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return j, db.Close, nil
}
