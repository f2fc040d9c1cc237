package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:              "~/.config/recipeledger",
			SQLiteFile:        "ledger.db",
			NamespaceKey:      "recipeHistory",
			SQLiteJournalMode: "wal",
		},
		Ledger: LedgerConfig{
			TopN:                  5,
			FavoriteCreatesRecord: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "recipeledger.log",
			MaxSizeMB:  1,
			MaxBackups: 10,
			MaxAgeDays: 30,
		},
	}
}
