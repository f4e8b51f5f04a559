package config

import "os"

// Secrets are read from the environment so they stay out of shell history
// and config files.
const (
	EnvAPIKey          = "OTVETBOT_API_KEY"
	EnvStorePassphrase = "OTVETBOT_STORE_PASSPHRASE"
)

func parseEnv(cfg *Config) {
	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvStorePassphrase); v != "" {
		cfg.StorePassphrase = v
	}
}
