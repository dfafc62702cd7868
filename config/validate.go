package config

import (
	"fmt"
)

// Validate checks the configuration for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.Network != Mainnet && cfg.Network != Testnet {
		return fmt.Errorf("network must be %q or %q", Mainnet, Testnet)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.Token.Symbol == "" {
		return fmt.Errorf("token.symbol must not be empty")
	}
	if cfg.Token.Decimals > 18 {
		return fmt.Errorf("token.decimals must be in range [0, 18]")
	}
	if _, err := cfg.OwnerAddress(); err != nil {
		return fmt.Errorf("token.owner: %w", err)
	}
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = BackendMemory
	}
	switch cfg.Journal.Backend {
	case BackendMemory, BackendBadger:
	default:
		return fmt.Errorf("journal.backend must be %q or %q", BackendMemory, BackendBadger)
	}
	if cfg.Journal.SignKey != "" && !cfg.Journal.Enabled {
		return fmt.Errorf("journal.signkey requires journal.enabled")
	}
	switch cfg.Log.Level {
	case "trace", "debug", "info", "warn", "error":
	case "":
		cfg.Log.Level = "info"
	default:
		return fmt.Errorf("log.level must be trace, debug, info, warn, or error")
	}
	return nil
}
