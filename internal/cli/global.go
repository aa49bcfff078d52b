// Package cli provides global state and utilities for CLI commands.
package cli

import (
	"sync"

	"github.com/spf13/cobra"
)

var (
	// NoTUI indicates that TUI/interactive mode should be disabled.
	// This is set by the global --no-tui flag.
	NoTUI bool

	// ConfigPath is the config file chosen with --config. Empty means the
	// XDG location or defaults.
	ConfigPath string

	// Debug forces the debug log on, whatever [log].debug says.
	Debug bool

	// globalMutex protects the flag values for concurrent access.
	globalMutex sync.RWMutex
)

// AddGlobalFlags adds global flags to a command.
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&NoTUI, "no-tui", false,
		"disable TUI/interactive mode; use plain prompts")
	cmd.PersistentFlags().StringVar(&ConfigPath, "config", "",
		"config file path (default $XDG_CONFIG_HOME/igaupdate/config.toml)")
	cmd.PersistentFlags().BoolVar(&Debug, "debug", false,
		"write a debug log (default ~/.igaupdate/debug.log)")
}

// IsNoTUI returns true if TUI mode is disabled.
func IsNoTUI() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return NoTUI
}

func configPath() string {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return ConfigPath
}

func debugFlag() bool {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return Debug
}
