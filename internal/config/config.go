// Package config provides configuration management for igaupdate.
//
// The configuration is stored in TOML format and supports validation
// and default values for all fields.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mchave3/Intune-Group-Assignments/internal/version"
)

// Update sources.
const (
	SourceEndpoint = "endpoint"
	SourceGitHub   = "github"
)

// Config is the top-level configuration struct for igaupdate.
type Config struct {
	Update   UpdateConfig   `toml:"update"`
	Manifest ManifestConfig `toml:"manifest"`
	Download DownloadConfig `toml:"download"`
	Verify   VerifyConfig   `toml:"verify"`
	Log      LogConfig      `toml:"log"`
	TUI      TUIConfig      `toml:"tui"`
}

// UpdateConfig contains update source and comparison settings.
type UpdateConfig struct {
	// Source selects where release metadata comes from.
	// Valid values: "endpoint", "github".
	Source string `toml:"source"`

	// EndpointURL is the HTTP(S) URL of the JSON or YAML metadata document.
	EndpointURL string `toml:"endpoint_url"`

	// GitHubRepo is the "owner/name" repository used by the github source.
	GitHubRepo string `toml:"github_repo"`

	// Comparison selects version semantics.
	// Valid values: "numeric", "literal".
	Comparison string `toml:"comparison"`

	// Constraint optionally limits which versions are offered (e.g. ">= 2.0, < 3").
	Constraint string `toml:"constraint"`

	// Timeout bounds each metadata request (duration string, e.g. "30s").
	Timeout string `toml:"timeout"`

	// Retries is the number of attempts for transient network failures.
	Retries int `toml:"retries"`
}

// ManifestConfig locates the installed application's manifest.
type ManifestConfig struct {
	// Path is the Package.appxmanifest path (default: current directory).
	Path string `toml:"path"`
}

// DownloadConfig contains artifact download settings.
type DownloadConfig struct {
	// Dir is where installer artifacts are saved.
	Dir string `toml:"dir"`

	// Timeout bounds a whole download including retries.
	Timeout string `toml:"timeout"`
}

// VerifyConfig contains artifact verification settings.
type VerifyConfig struct {
	// RequireChecksum fails downloads whose metadata has no sha256.
	RequireChecksum bool `toml:"require_checksum"`

	// MinisignPublicKey is a minisign public key, or a path to one.
	// When set, every artifact must carry a valid signature.
	MinisignPublicKey string `toml:"minisign_public_key"`
}

// LogConfig contains diagnostic log settings.
type LogConfig struct {
	// Debug enables the debug log file.
	Debug bool `toml:"debug"`

	// File overrides the debug log location (default ~/.igaupdate/debug.log).
	File string `toml:"file"`
}

// TUIConfig contains terminal UI settings.
type TUIConfig struct {
	// Enabled controls whether to use interactive forms (when false, falls back to plain prompts).
	Enabled bool `toml:"enabled"`
}

// DefaultConfig returns a Config with all default values set.
func DefaultConfig() *Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}

	return &Config{
		Update: UpdateConfig{
			Source:      SourceEndpoint,
			EndpointURL: "https://github.com/mchave3/Intune-Group-Assignments/releases/latest/download/latest.json",
			GitHubRepo:  "mchave3/Intune-Group-Assignments",
			Comparison:  string(version.SemanticsNumeric),
			Constraint:  "",
			Timeout:     "30s",
			Retries:     3,
		},
		Manifest: ManifestConfig{
			Path: "",
		},
		Download: DownloadConfig{
			Dir:     filepath.Join(cacheDir, "igaupdate", "downloads"),
			Timeout: "10m",
		},
		Verify: VerifyConfig{
			RequireChecksum:   false,
			MinisignPublicKey: "",
		},
		Log: LogConfig{
			Debug: false,
			File:  "",
		},
		TUI: TUIConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for valid values.
// Returns a nil error if the config is valid, or an error describing the problem.
func (c *Config) Validate() error {
	// Validate Update section
	switch c.Update.Source {
	case SourceEndpoint:
		if c.Update.EndpointURL == "" {
			return fmt.Errorf("update.endpoint_url cannot be empty when update.source is %q", SourceEndpoint)
		}
		u, err := url.Parse(c.Update.EndpointURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("update.endpoint_url must be an http(s) URL; got %q", c.Update.EndpointURL)
		}
	case SourceGitHub:
		owner, name, ok := strings.Cut(c.Update.GitHubRepo, "/")
		if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
			return fmt.Errorf("update.github_repo must be owner/name; got %q", c.Update.GitHubRepo)
		}
	default:
		return fmt.Errorf("update.source must be one of: endpoint, github; got %q", c.Update.Source)
	}

	if _, err := version.ParseSemantics(c.Update.Comparison); err != nil {
		return fmt.Errorf("update.comparison must be one of: numeric, literal; got %q", c.Update.Comparison)
	}
	if _, err := version.ParseConstraint(c.Update.Constraint); err != nil {
		return fmt.Errorf("update.constraint is invalid: %w", err)
	}
	if _, err := parsePositiveDuration(c.Update.Timeout); err != nil {
		return fmt.Errorf("update.timeout %w", err)
	}
	if c.Update.Retries < 1 || c.Update.Retries > 10 {
		return fmt.Errorf("update.retries must be between 1 and 10; got %d", c.Update.Retries)
	}

	// Validate Download section
	if c.Download.Dir == "" {
		return fmt.Errorf("download.dir cannot be empty")
	}
	if _, err := parsePositiveDuration(c.Download.Timeout); err != nil {
		return fmt.Errorf("download.timeout %w", err)
	}

	return nil
}

// UpdateTimeout returns update.timeout as a duration.
func (c *Config) UpdateTimeout() time.Duration {
	d, _ := parsePositiveDuration(c.Update.Timeout)
	return d
}

// DownloadTimeout returns download.timeout as a duration.
func (c *Config) DownloadTimeout() time.Duration {
	d, _ := parsePositiveDuration(c.Download.Timeout)
	return d
}

func parsePositiveDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("must be a duration like \"30s\"; got %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive; got %q", s)
	}
	return d, nil
}
