// Package config handles lockup tool configuration.
//
// Settings come from three layers, later ones winning: network defaults,
// the lockup.conf file in the data directory, and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// NetworkType identifies mainnet or testnet.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// Journal storage backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
)

// Config holds the runtime configuration of the lockup tool.
type Config struct {
	Network NetworkType `conf:"network"`
	DataDir string      `conf:"datadir"`

	// Token defaults used when a scenario does not set its own.
	Token TokenConfig

	// Receipt journal
	Journal JournalConfig

	Metrics MetricsConfig

	Log LogConfig
}

// TokenConfig holds token metadata and supply settings.
type TokenConfig struct {
	Name     string `conf:"token.name"`
	Symbol   string `conf:"token.symbol"`
	Decimals uint8  `conf:"token.decimals"`
	Cap      uint64 `conf:"token.cap"` // 0 = uncapped
	Owner    string `conf:"token.owner"`
}

// JournalConfig holds receipt journal settings.
type JournalConfig struct {
	Enabled bool   `conf:"journal.enabled"`
	Backend string `conf:"journal.backend"` // memory or badger
	SignKey string `conf:"journal.signkey"` // Path to encrypted signing key file
}

// MetricsConfig holds metrics settings.
type MetricsConfig struct {
	Enabled bool `conf:"metrics.enabled"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// AddressHRP returns the bech32 prefix used on this network.
func (c *Config) AddressHRP() string {
	if c.Network == Testnet {
		return types.TestnetHRP
	}
	return types.MainnetHRP
}

// OwnerAddress parses Token.Owner. An empty owner yields the zero address.
func (c *Config) OwnerAddress() (types.Address, error) {
	if c.Token.Owner == "" {
		return types.Address{}, nil
	}
	return types.ParseAddress(c.Token.Owner)
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.lockup
//	macOS:   ~/Library/Application Support/Lockup
//	Windows: %APPDATA%\Lockup
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lockup"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Lockup")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "Lockup")
		}
		return filepath.Join(home, "AppData", "Roaming", "Lockup")
	default:
		return filepath.Join(home, ".lockup")
	}
}

// NetworkDir returns the network-specific data directory.
func (c *Config) NetworkDir() string {
	return filepath.Join(c.DataDir, string(c.Network))
}

// JournalDir returns the Badger journal directory.
func (c *Config) JournalDir() string {
	return filepath.Join(c.NetworkDir(), "journal")
}

// JournalNamespace returns the key prefix the journal occupies inside its
// database.
func (c *Config) JournalNamespace() []byte {
	return []byte("j/" + string(c.Network) + "/")
}

// KeysDir returns the directory holding encrypted key files.
func (c *Config) KeysDir() string {
	return filepath.Join(c.NetworkDir(), "keys")
}

// SignKeyFile returns the journal signing key path, resolving a relative
// journal.signkey against KeysDir.
func (c *Config) SignKeyFile() string {
	if c.Journal.SignKey == "" || filepath.IsAbs(c.Journal.SignKey) {
		return c.Journal.SignKey
	}
	return filepath.Join(c.KeysDir(), c.Journal.SignKey)
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "lockup.conf")
}

// EnsureDataDirs creates the data directory tree.
func (c *Config) EnsureDataDirs() error {
	for _, dir := range []string{c.DataDir, c.NetworkDir(), c.KeysDir(), c.LogsDir()} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	if c.Journal.Enabled && c.Journal.Backend == BackendBadger {
		return os.MkdirAll(c.JournalDir(), 0700)
	}
	return nil
}
