package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mchave3/Intune-Group-Assignments/internal/config"
)

// ConfigInitOptions contains the options for the config init command.
type ConfigInitOptions struct {
	Force bool

	// Scriptable/flag options for --no-tui mode
	Source      string
	EndpointURL string
	GitHubRepo  string
	Comparison  string
	Manifest    string
}

func newConfigInitCommand() *cobra.Command {
	opts := &ConfigInitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file",
		Long: `Write an igaupdate config file.

On a terminal the command asks for the update source, the comparison
mode and the manifest location. Use --no-tui with flags for scripted
setup; unset flags keep their defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing config file")
	cmd.Flags().StringVar(&opts.Source, "source", "", "update source: endpoint or github")
	cmd.Flags().StringVar(&opts.EndpointURL, "endpoint-url", "", "metadata endpoint URL")
	cmd.Flags().StringVar(&opts.GitHubRepo, "github-repo", "", "GitHub repository (owner/name)")
	cmd.Flags().StringVar(&opts.Comparison, "comparison", "", "version comparison: numeric or literal")
	cmd.Flags().StringVar(&opts.Manifest, "manifest", "", "path to Package.appxmanifest")

	return cmd
}

func runConfigInit(in io.Reader, w io.Writer, opts *ConfigInitOptions) error {
	path := configPath()
	if path == "" {
		var err error
		if path, err = config.DefaultConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !opts.Force {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	cfg := config.DefaultConfig()
	if useTUI(cfg, in) {
		if err := runConfigWizard(in, w, cfg); err != nil {
			return err
		}
	} else {
		applyInitFlags(cfg, opts)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(w, "Config written to %s\n", path)
	return nil
}

func applyInitFlags(cfg *config.Config, opts *ConfigInitOptions) {
	if opts.Source != "" {
		cfg.Update.Source = opts.Source
	}
	if opts.EndpointURL != "" {
		cfg.Update.EndpointURL = opts.EndpointURL
	}
	if opts.GitHubRepo != "" {
		cfg.Update.GitHubRepo = opts.GitHubRepo
	}
	if opts.Comparison != "" {
		cfg.Update.Comparison = opts.Comparison
	}
	if opts.Manifest != "" {
		cfg.Manifest.Path = opts.Manifest
	}
}

// runConfigWizard fills cfg from huh forms.
func runConfigWizard(in io.Reader, w io.Writer, cfg *config.Config) error {
	run := func(fields ...huh.Field) error {
		if err := huh.NewForm(huh.NewGroup(fields...)).WithInput(in).WithOutput(w).Run(); err != nil {
			return fmt.Errorf("form error: %w", err)
		}
		return nil
	}

	// Step 1: Update source
	if err := run(
		huh.NewSelect[string]().
			Title("Update source").
			Options(
				huh.NewOption("Metadata endpoint (latest.json or latest.yaml)", config.SourceEndpoint),
				huh.NewOption("GitHub releases", config.SourceGitHub),
			).
			Value(&cfg.Update.Source),
	); err != nil {
		return err
	}

	// Step 2: Source location
	if cfg.Update.Source == config.SourceGitHub {
		if err := run(
			huh.NewInput().
				Title("GitHub repository").
				Description("owner/name").
				Value(&cfg.Update.GitHubRepo),
		); err != nil {
			return err
		}
	} else {
		if err := run(
			huh.NewInput().
				Title("Endpoint URL").
				Description("HTTP(S) URL of the release metadata document").
				Value(&cfg.Update.EndpointURL),
		); err != nil {
			return err
		}
	}

	// Step 3: Comparison and manifest
	return run(
		huh.NewSelect[string]().
			Title("Version comparison").
			Options(
				huh.NewOption("Numeric - only newer versions are offered", "numeric"),
				huh.NewOption("Literal - any different version is offered", "literal"),
			).
			Value(&cfg.Update.Comparison),
		huh.NewInput().
			Title("Manifest path").
			Description("Leave empty to use Package.appxmanifest in the working directory").
			Value(&cfg.Manifest.Path),
	)
}
