package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFile reads a lockup.conf file. A missing file yields no values.
// Format: key = value (one per line, # for comments)
func LoadFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid format (expected key = value)", lineNum)
		}
		values[strings.TrimSpace(key)] = unquote(strings.TrimSpace(value))
	}

	return values, scanner.Err()
}

func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// ApplyFileConfig applies file values to cfg.
func ApplyFileConfig(cfg *Config, values map[string]string) error {
	for key, value := range values {
		if err := setConfigValue(cfg, key, value); err != nil {
			return fmt.Errorf("config key %q: %w", key, err)
		}
	}
	return nil
}

func setConfigValue(cfg *Config, key, value string) error {
	switch key {
	case "network":
		cfg.Network = NetworkType(value)
	case "datadir":
		cfg.DataDir = value

	case "token.name":
		cfg.Token.Name = value
	case "token.symbol":
		cfg.Token.Symbol = value
	case "token.decimals":
		n, err := strconv.ParseUint(value, 10, 8)
		if err != nil {
			return err
		}
		cfg.Token.Decimals = uint8(n)
	case "token.cap":
		n, err := strconv.ParseUint(strings.ReplaceAll(value, "_", ""), 10, 64)
		if err != nil {
			return err
		}
		cfg.Token.Cap = n
	case "token.owner":
		cfg.Token.Owner = value

	case "journal.enabled", "journal":
		cfg.Journal.Enabled = parseBool(value)
	case "journal.backend":
		cfg.Journal.Backend = strings.ToLower(value)
	case "journal.signkey":
		cfg.Journal.SignKey = value

	case "metrics.enabled", "metrics":
		cfg.Metrics.Enabled = parseBool(value)

	case "log.level":
		cfg.Log.Level = value
	case "log.file":
		cfg.Log.File = value
	case "log.json":
		cfg.Log.JSON = parseBool(value)

	default:
		// Unknown keys are ignored
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "1" || s == "yes" || s == "on"
}

// WriteDefaultConfig writes a commented default configuration file.
func WriteDefaultConfig(path string, network NetworkType) error {
	cfg := Default(network)
	content := `# Klingnet Lockup Configuration

# Network: mainnet or testnet
network = ` + string(network) + `

# Data directory (default: ~/.lockup)
# datadir = ~/.lockup

# ============================================================================
# Token defaults (scenarios may override)
# ============================================================================

token.name = "` + cfg.Token.Name + `"
token.symbol = ` + cfg.Token.Symbol + `
token.decimals = ` + strconv.Itoa(int(cfg.Token.Decimals)) + `
# Supply cap in base units, 0 for uncapped
token.cap = ` + strconv.FormatUint(cfg.Token.Cap, 10) + `
# token.owner = <address>

# ============================================================================
# Receipt journal
# ============================================================================

journal.enabled = ` + strconv.FormatBool(cfg.Journal.Enabled) + `
# memory or badger
journal.backend = ` + cfg.Journal.Backend + `
# Encrypted signing key, relative to the keys directory
# journal.signkey = journal.key

# ============================================================================
# Metrics
# ============================================================================

metrics.enabled = ` + strconv.FormatBool(cfg.Metrics.Enabled) + `

# ============================================================================
# Logging
# ============================================================================

log.level = ` + cfg.Log.Level + `
# log.file =
log.json = false
`
	return os.WriteFile(path, []byte(content), 0644)
}
