// Package config handles the XDG configuration directory, file paths and
// settings loaded from config.yml, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "tasktrack"

	// SettingsFile is the optional YAML settings file.
	SettingsFile = "config.yml"

	// EnvFile is the optional dotenv file.
	EnvFile = ".env"

	// TokenFile is the stored credential filename for the file store.
	TokenFile = "token.json"

	// CredentialsDBFile is the bbolt database for the bolt store.
	CredentialsDBFile = "credentials.db"

	// GoogleClientFile is the Google OAuth client credentials filename.
	GoogleClientFile = "oauth_client.json"

	// GoogleTokenFile is the stored Google OAuth token filename.
	GoogleTokenFile = "google_token.json"
)

// Credential store backends.
const (
	StoreFile = "file"
	StoreBolt = "bolt"
)

// APIConfig configures the task REST API client.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"        env:"TASKTRACK_API_URL"         env-default:"http://localhost:3001/api"`
	Timeout        time.Duration `yaml:"timeout"         env:"TASKTRACK_TIMEOUT"         env-default:"10s"`
	RefreshTimeout time.Duration `yaml:"refresh_timeout" env:"TASKTRACK_REFRESH_TIMEOUT" env-default:"15s"`
}

// Settings are the values read from config.yml and the environment.
type Settings struct {
	API             APIConfig `yaml:"api"`
	CredentialStore string    `yaml:"credential_store" env:"TASKTRACK_CREDENTIAL_STORE" env-default:"file"`
	LogEncoding     string    `yaml:"log_encoding"     env:"TASKTRACK_LOG_ENCODING"     env-default:"console"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/tasktrack or $HOME/.config/tasktrack.
// Settings are loaded from <dir>/.env, <dir>/config.yml and the environment,
// the environment taking precedence.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	// .env is optional and never overrides variables already set.
	if err := godotenv.Load(filepath.Join(c.Dir, EnvFile)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read %s: %w", EnvFile, err)
	}

	path := c.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &c.Settings); err != nil {
			return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
		}
	} else if err := cleanenv.ReadEnv(&c.Settings); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	switch c.CredentialStore {
	case StoreFile, StoreBolt:
	default:
		return fmt.Errorf("invalid credential_store: %q (want %s or %s)", c.CredentialStore, StoreFile, StoreBolt)
	}
	if c.API.BaseURL == "" {
		return errors.New("api base_url is empty")
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.yml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// CredentialsDBPath returns the path to the bbolt credentials database.
func (c *Config) CredentialsDBPath() string {
	return filepath.Join(c.Dir, CredentialsDBFile)
}

// GoogleClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) GoogleClientPath() string {
	return filepath.Join(c.Dir, GoogleClientFile)
}

// GoogleTokenPath returns the path to the stored Google OAuth token.
func (c *Config) GoogleTokenPath() string {
	return filepath.Join(c.Dir, GoogleTokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasGoogleClient checks if the Google OAuth client credentials file exists.
func (c *Config) HasGoogleClient() bool {
	_, err := os.Stat(c.GoogleClientPath())
	return err == nil
}

