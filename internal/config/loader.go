// This file contains config loading functionality including:
// - XDG config path detection
// - TOML file parsing
// - Environment variable overrides
// - Validation

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// DefaultConfigPath returns where the config file lives, whether or not it
// exists: $XDG_CONFIG_HOME/igaupdate/config.toml, else
// ~/.config/igaupdate/config.toml.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "igaupdate", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine user home: %w", err)
	}
	return filepath.Join(homeDir, ".config", "igaupdate", "config.toml"), nil
}

// DetectConfigPath returns the config file path if one exists, or an empty
// string (caller should use defaults).
func DetectConfigPath() string {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(configPath); err == nil {
		return configPath
	}
	return ""
}

// Load loads a config from the specified path.
// If the file doesn't exist, returns an error.
// After loading, applies environment variable overrides and validates.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &igaerrors.ConfigError{Path: path, Err: fmt.Errorf("config file not found: %w", igaerrors.ErrNotFound)}
		}
		return nil, &igaerrors.ConfigError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	// Start with defaults
	cfg := DefaultConfig()

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, &igaerrors.ConfigError{Path: path, Err: fmt.Errorf("failed to parse config file: %w", igaerrors.Classify(igaerrors.ErrInvalid, err))}
	}

	applyEnvOverrides(cfg)
	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, &igaerrors.ConfigError{Path: path, Err: fmt.Errorf("config validation failed: %w", igaerrors.Classify(igaerrors.ErrInvalid, err))}
	}

	return cfg, nil
}

// LoadWithDefaults loads the config at path, or from the XDG location when
// path is empty. If no config file is found, returns the defaults with
// environment overrides applied.
func LoadWithDefaults(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	configPath := DetectConfigPath()
	if configPath == "" {
		cfg := DefaultConfig()
		applyEnvOverrides(cfg)
		expandPaths(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &igaerrors.ConfigError{Err: fmt.Errorf("config validation failed: %w", igaerrors.Classify(igaerrors.ErrInvalid, err))}
		}
		return cfg, nil
	}

	return Load(configPath)
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables follow the pattern: IGAUPDATE_<SECTION>_<FIELD>
//
// Examples:
// - IGAUPDATE_UPDATE_ENDPOINT_URL overrides [update].endpoint_url
// - IGAUPDATE_MANIFEST_PATH overrides [manifest].path
// - IGAUPDATE_LOG_DEBUG overrides [log].debug
//
// Boolean fields: use "true"/"false" strings
func applyEnvOverrides(c *Config) {
	applyString := func(key string, target *string) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			*target = val
		}
	}

	applyBool := func(key string, target *bool) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			switch strings.ToLower(val) {
			case "true", "1", "yes", "on":
				*target = true
			case "false", "0", "no", "off":
				*target = false
			}
		}
	}

	applyInt := func(key string, target *int) {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			var i int
			if _, err := fmt.Sscanf(val, "%d", &i); err == nil {
				*target = i
			}
		}
	}

	// Update section
	applyString("IGAUPDATE_UPDATE_SOURCE", &c.Update.Source)
	applyString("IGAUPDATE_UPDATE_ENDPOINT_URL", &c.Update.EndpointURL)
	applyString("IGAUPDATE_UPDATE_GITHUB_REPO", &c.Update.GitHubRepo)
	applyString("IGAUPDATE_UPDATE_COMPARISON", &c.Update.Comparison)
	applyString("IGAUPDATE_UPDATE_CONSTRAINT", &c.Update.Constraint)
	applyString("IGAUPDATE_UPDATE_TIMEOUT", &c.Update.Timeout)
	applyInt("IGAUPDATE_UPDATE_RETRIES", &c.Update.Retries)

	// Manifest section
	applyString("IGAUPDATE_MANIFEST_PATH", &c.Manifest.Path)

	// Download section
	applyString("IGAUPDATE_DOWNLOAD_DIR", &c.Download.Dir)
	applyString("IGAUPDATE_DOWNLOAD_TIMEOUT", &c.Download.Timeout)

	// Verify section
	applyBool("IGAUPDATE_VERIFY_REQUIRE_CHECKSUM", &c.Verify.RequireChecksum)
	applyString("IGAUPDATE_VERIFY_MINISIGN_PUBLIC_KEY", &c.Verify.MinisignPublicKey)

	// Log section
	applyBool("IGAUPDATE_LOG_DEBUG", &c.Log.Debug)
	applyString("IGAUPDATE_LOG_FILE", &c.Log.File)

	// TUI section
	applyBool("IGAUPDATE_TUI_ENABLED", &c.TUI.Enabled)
}

// expandPaths expands a leading ~ in path-valued settings.
func expandPaths(c *Config) {
	for _, p := range []*string{&c.Manifest.Path, &c.Download.Dir, &c.Log.File, &c.Verify.MinisignPublicKey} {
		*p = expandHome(*p)
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(p, "~"), "/"))
}
