package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the lockable binaries.
type Config struct {
	// ServerAddress is the gRPC address of the lock server.
	ServerAddress string `yaml:"server_addr"`
	// StateFile is the path to the JSON file storing the guard state.
	StateFile string `yaml:"state_file"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `yaml:"log_level"`
	// MetricsAddress enables the Prometheus endpoint when set.
	MetricsAddress string `yaml:"metrics_addr,omitempty"`
	// Tracing enables span export to stdout.
	Tracing bool `yaml:"tracing,omitempty"`
	// Admin pins the guard owner. When empty the server process user owns a new guard.
	Admin *Identity `yaml:"admin,omitempty"`
	// Auth configures API key authentication of callers.
	Auth AuthConfig `yaml:"auth,omitempty"`
}

// Identity is a caller identity as written in settings.
type Identity struct {
	Hostname string `yaml:"hostname"`
	Username string `yaml:"username"`
}

// AuthConfig holds API key authentication configuration.
type AuthConfig struct {
	// Enabled makes the server derive caller identities from API keys only.
	Enabled bool `yaml:"enabled"`
	// Keys maps tokens to identities on the server side.
	Keys []APIKey `yaml:"keys,omitempty"`
	// Token is the key the client presents.
	Token string `yaml:"token,omitempty"`
}

// APIKey maps a token to the identity it authenticates.
type APIKey struct {
	Name     string   `yaml:"name"`
	Token    string   `yaml:"token"`
	Identity Identity `yaml:"identity"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "lockable-settings.yaml"

	// DefaultStateFilename is the default filename for the guard state JSON.
	DefaultStateFilename = "lockable-state.json"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultLogLevel is used when the settings do not name one.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for settings and state files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errServerSocketRequired is returned when server address is missing.
	errServerSocketRequired = errors.New("server address must be provided")
	// errNoAPIKeys is returned when auth is enabled without any server key.
	errNoAPIKeys = errors.New("auth is enabled but no keys are configured")
	// errIncompleteAPIKey is returned for keys without token or identity.
	errIncompleteAPIKey = errors.New("api key needs a token and an identity")
	// errDuplicateToken is returned when two keys share a token.
	errDuplicateToken = errors.New("duplicate api key token")
	// errEmptyAdmin is returned for a pinned admin without hostname and username.
	errEmptyAdmin = errors.New("pinned admin needs a hostname or a username")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes Config to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Keys live in this file.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ServerAddress == "" {
		return errServerSocketRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ServerAddress); err != nil {
		return fmt.Errorf("invalid server socket: %w", err)
	}

	if settings.MetricsAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics socket: %w", err)
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if settings.StateFile == "" {
		settings.StateFile = DefaultStateFilename
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	return validateAuth(&settings.Auth)
}

// validateAuth checks server-side keys. A client-only config with just a token is valid.
func validateAuth(auth *AuthConfig) error {
	if auth.Enabled && len(auth.Keys) == 0 && auth.Token == "" {
		return errNoAPIKeys
	}

	seen := make(map[string]struct{}, len(auth.Keys))

	for _, key := range auth.Keys {
		if key.Token == "" || (key.Identity.Hostname == "" && key.Identity.Username == "") {
			return fmt.Errorf("key %q: %w", key.Name, errIncompleteAPIKey)
		}

		if _, ok := seen[key.Token]; ok {
			return fmt.Errorf("key %q: %w", key.Name, errDuplicateToken)
		}

		seen[key.Token] = struct{}{}
	}

	return nil
}

// ValidateServer checks what only the lock server needs on top of Validate:
// enabled auth must carry server keys and a pinned admin must be a real identity.
func ValidateServer(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.Auth.Enabled && len(settings.Auth.Keys) == 0 {
		return errNoAPIKeys
	}

	if settings.Admin != nil && settings.Admin.Hostname == "" && settings.Admin.Username == "" {
		return errEmptyAdmin
	}

	return nil
}
