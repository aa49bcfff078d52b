package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the igaupdate command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "igaupdate",
		Short: "Self-update checker for Intune Group Assignments",
		Long: `igaupdate checks whether a newer Intune Group Assignments release is
published, asks before updating, and downloads, verifies and launches
the installer.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", build.Version, build.Commit, build.Date),
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	AddGlobalFlags(rootCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewCompareCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand(build))

	return rootCmd
}
