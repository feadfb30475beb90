package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Pacing      PacingConfig      `toml:"pacing"`
}

// CredentialsConfig holds credentials for the two accounts involved in a migration.
type CredentialsConfig struct {
	Source      AccountConfig `toml:"source"`
	Destination AccountConfig `toml:"destination"`
}

// AccountConfig contains one account's handle and app password.
//
// AppPassword must be an App Password generated in Bluesky settings,
// never the account's main password. It is read at call time and never
// written to logs or the database.
type AccountConfig struct {
	Handle      string `toml:"handle"`
	AppPassword string `toml:"app_password"`
	PDS         string `toml:"pds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PacingConfig configures the delays between membership writes.
type PacingConfig struct {
	WriteDelayMS   int `toml:"write_delay_ms"`
	FailureDelayMS int `toml:"failure_delay_ms"`
	PageDelayMS    int `toml:"page_delay_ms"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that an account's credentials are present.
func (a AccountConfig) Validate() error {
	if a.Handle == "" {
		return fmt.Errorf("%w: handle is required", ErrMissingCredentials)
	}
	if a.AppPassword == "" {
		return fmt.Errorf("%w: app_password is required", ErrMissingCredentials)
	}
	return nil
}
