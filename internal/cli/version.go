package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo is set at build time using ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

// VersionInfo contains version information for the binary.
type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	BuiltBy string `json:"built_by"`
	Go      string `json:"go_version"`
}

// VersionOptions contains the options for the version command.
type VersionOptions struct {
	Short bool
	JSON  bool
}

// NewVersionCommand creates the version command.
func NewVersionCommand(build BuildInfo) *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long: `Display the igaupdate version information.

Shows version, commit hash, build date, who built it, and Go version.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(cmd.OutOrStdout(), opts, build)
		},
	}

	cmd.Flags().BoolVar(&opts.Short, "short", false, "print only the version number")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	return cmd
}

func runVersion(w io.Writer, opts *VersionOptions, build BuildInfo) error {
	info := VersionInfo{
		Version: build.Version,
		Commit:  build.Commit,
		Date:    build.Date,
		BuiltBy: build.BuiltBy,
		Go:      runtime.Version(),
	}

	if opts.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(info); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	}

	if opts.Short {
		fmt.Fprintln(w, info.Version)
		return nil
	}

	fmt.Fprintf(w, "igaupdate version %s\n", info.Version)
	fmt.Fprintf(w, "commit: %s\n", info.Commit)
	fmt.Fprintf(w, "built at: %s\n", info.Date)
	if info.BuiltBy != "" && info.BuiltBy != "unknown" {
		fmt.Fprintf(w, "built by: %s\n", info.BuiltBy)
	}
	fmt.Fprintf(w, "go version: %s\n", info.Go)

	return nil
}
