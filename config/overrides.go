package config

// Overrides holds command-line values that take precedence over the
// config file. Set* fields record whether a bool flag was given at all.
type Overrides struct {
	Network string
	DataDir string

	JournalBackend string
	SignKey        string
	Journal        bool
	SetJournal     bool

	Metrics    bool
	SetMetrics bool

	LogLevel   string
	LogFile    string
	LogJSON    bool
	SetLogJSON bool
}

// Apply copies every set override into cfg.
func (o *Overrides) Apply(cfg *Config) {
	if o.Network != "" {
		cfg.Network = NetworkType(o.Network)
	}
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.JournalBackend != "" {
		cfg.Journal.Backend = o.JournalBackend
	}
	if o.SignKey != "" {
		cfg.Journal.SignKey = o.SignKey
	}
	if o.SetJournal {
		cfg.Journal.Enabled = o.Journal
	}
	if o.SetMetrics {
		cfg.Metrics.Enabled = o.Metrics
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	if o.LogFile != "" {
		cfg.Log.File = o.LogFile
	}
	if o.SetLogJSON {
		cfg.Log.JSON = o.LogJSON
	}
}

// Load builds the effective configuration: network defaults, then the
// config file in the data directory, then the overrides.
func Load(o *Overrides) (*Config, error) {
	network := Mainnet
	if o.Network != "" {
		network = NetworkType(o.Network)
	}
	cfg := Default(network)
	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}

	values, err := LoadFile(cfg.ConfigFile())
	if err != nil {
		return nil, err
	}
	if err := ApplyFileConfig(cfg, values); err != nil {
		return nil, err
	}
	o.Apply(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
