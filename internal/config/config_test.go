package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, format validations and defaults.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Missing socket.
	settings := new(Config)

	err := Validate(settings)
	require.Error(t, err)

	// Bad socket.
	settings = &Config{
		ServerAddress: "bad:address",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Bad metrics socket.
	settings = &Config{
		ServerAddress:  "127.0.0.1:0",
		MetricsAddress: "bad:address",
	}

	err = Validate(settings)
	require.Error(t, err)

	// Defaults.
	settings = &Config{
		ServerAddress: "127.0.0.1:0",
	}

	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultStateFilename, settings.StateFile)
	require.Equal(t, DefaultLogLevel, settings.LogLevel)
}

// TestValidate_Auth checks API key validation on both server and client settings.
func TestValidate_Auth(t *testing.T) {
	t.Parallel()

	key := APIKey{
		Name:     "registrar",
		Token:    "s3cret",
		Identity: Identity{Hostname: "vote-01", Username: "registrar"},
	}

	cases := map[string]struct {
		auth    AuthConfig
		wantErr bool
	}{
		"disabled":        {auth: AuthConfig{}},
		"server keys":     {auth: AuthConfig{Enabled: true, Keys: []APIKey{key}}},
		"client token":    {auth: AuthConfig{Enabled: true, Token: "s3cret"}},
		"no keys":         {auth: AuthConfig{Enabled: true}, wantErr: true},
		"no token":        {auth: AuthConfig{Keys: []APIKey{{Name: "x", Identity: key.Identity}}}, wantErr: true},
		"no identity":     {auth: AuthConfig{Keys: []APIKey{{Name: "x", Token: "t"}}}, wantErr: true},
		"duplicate token": {auth: AuthConfig{Keys: []APIKey{key, key}}, wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := Validate(&Config{ServerAddress: "127.0.0.1:0", Auth: tc.auth})
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestValidateServer(t *testing.T) {
	t.Parallel()

	key := APIKey{
		Name:     "registrar",
		Token:    "s3cret",
		Identity: Identity{Hostname: "vote-01", Username: "registrar"},
	}

	cases := map[string]struct {
		settings *Config
		wantErr  error
	}{
		"nil":             {settings: nil, wantErr: errConfigIsNotSet},
		"open":            {settings: &Config{}},
		"server keys":     {settings: &Config{Auth: AuthConfig{Enabled: true, Keys: []APIKey{key}}}},
		"only client key": {settings: &Config{Auth: AuthConfig{Enabled: true, Token: "s3cret"}}, wantErr: errNoAPIKeys},
		"pinned admin":    {settings: &Config{Admin: &Identity{Username: "registrar"}}},
		"empty admin":     {settings: &Config{Admin: &Identity{}}, wantErr: errEmptyAdmin},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := ValidateServer(tc.settings)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ServerAddress: "127.0.0.1:50051",
		Timeout:       3 * time.Second,
		Admin:         &Identity{Hostname: "vote-01", Username: "registrar"},
		Auth: AuthConfig{
			Enabled: true,
			Keys: []APIKey{{
				Name:     "registrar",
				Token:    "s3cret",
				Identity: Identity{Hostname: "vote-01", Username: "registrar"},
			}},
		},
	}

	require.Error(t, Save(path, nil))
	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	// File exists and is private.
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(DefaultFilePermissions), info.Mode().Perm())
}

// TestLoad_Missing verifies a missing file is reported.
func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
