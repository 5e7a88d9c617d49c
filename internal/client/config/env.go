package config

import "os"

// lookupEnv is replaced in tests.
var lookupEnv = os.LookupEnv

// parseEnv applies the encryption secret from the environment. An empty
// value counts as unset.
func parseEnv(cfg *Config) {
	if v, ok := lookupEnv(EncryptionKeyEnv); ok && v != "" {
		cfg.EncryptionKey = v
	}
}
