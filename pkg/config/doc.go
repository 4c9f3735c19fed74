// Package config loads typed configuration structs from environment
// variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - The default `.env` file in the working directory is loaded once, if
//     present. LoadEnv loads additional files explicitly.
//   - Load parses the environment into a struct using `env` and `envDefault`
//     tags and caches the result per type, so every package that asks for the
//     same config type sees the same values.
//   - Parse skips the cache, which is what tests and command-line tools that
//     set variables at runtime want.
//   - MustLoad panics on failure for configuration required at startup.
//
// # Usage
//
//	type VaultConfig struct {
//		MasterKey string `env:"VAULT_MASTER_KEY,required"`
//		Cipher    string `env:"VAULT_CIPHER" envDefault:"aes-gcm"`
//	}
//
//	var cfg VaultConfig
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// # Error Handling
//
// Failures are joined with the sentinels in errors.go (ErrParsingConfig,
// ErrNilPointer, ErrLoadingEnvFile); match them with errors.Is.
package config
