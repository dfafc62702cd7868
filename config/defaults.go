package config

// DefaultCap is the default supply cap: 500M tokens with 8 decimals.
const DefaultCap uint64 = 500_000_000_00000000

// DefaultMainnet returns the default configuration for mainnet.
func DefaultMainnet() *Config {
	return &Config{
		Network: Mainnet,
		DataDir: DefaultDataDir(),
		Token: TokenConfig{
			Name:     "Klingnet Lockup Token",
			Symbol:   "KLT",
			Decimals: 8,
			Cap:      DefaultCap,
		},
		Journal: JournalConfig{
			Enabled: true,
			Backend: BackendBadger,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}

// DefaultTestnet returns the default configuration for testnet.
func DefaultTestnet() *Config {
	cfg := DefaultMainnet()
	cfg.Network = Testnet
	cfg.Token.Name = "Klingnet Lockup Test Token"
	cfg.Token.Symbol = "tKLT"
	cfg.Journal.Backend = BackendMemory
	cfg.Metrics.Enabled = true
	cfg.Log.Level = "debug"
	return cfg
}

// Default returns the default configuration for the given network.
func Default(network NetworkType) *Config {
	if network == Testnet {
		return DefaultTestnet()
	}
	return DefaultMainnet()
}
