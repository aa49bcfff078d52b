package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/mchave3/Intune-Group-Assignments/internal/app"
	"github.com/mchave3/Intune-Group-Assignments/internal/config"
)

// StatusOptions contains the options for the status command.
type StatusOptions struct {
	Current string
	JSON    bool
}

// StatusOutput is the status command's JSON document.
type StatusOutput struct {
	CurrentVersion  string `json:"current_version,omitempty"`
	LatestVersion   string `json:"latest_version,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	Outcome         string `json:"outcome"`
	Source          string `json:"source"`
	Comparison      string `json:"comparison"`
	Constraint      string `json:"constraint,omitempty"`
	PublishedAt     string `json:"published_at,omitempty"`
	Error           string `json:"error,omitempty"`
}

// NewStatusCommand creates the status command.
func NewStatusCommand() *cobra.Command {
	opts := &StatusOptions{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show installed and latest versions",
		Long: `Display the installed version next to the latest published one.

Never prompts and never downloads. Shows:
- Installed version (from the manifest)
- Latest version (from the update source)
- Whether an update is available
- Update source and comparison mode`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Current, "current", "", "use this as the installed version")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "output in JSON format")

	return cmd
}

func runStatus(ctx context.Context, w io.Writer, opts *StatusOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	client, err := newClient(cfg, source, nil)
	if err != nil {
		return err
	}
	updateOpts, err := updateOptions(cfg)
	if err != nil {
		return err
	}
	updateOpts.CheckOnly = true

	res := app.NewUpdater(newManifestReader(cfg, opts.Current), client, nil, updateOpts).CheckForUpdates(ctx)
	status := buildStatus(cfg, res)

	if opts.JSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(status); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	} else {
		printStatusTable(w, status)
	}

	if res.Outcome == app.OutcomeFailed {
		return res.Err
	}
	return nil
}

func buildStatus(cfg *config.Config, res app.Result) StatusOutput {
	s := StatusOutput{
		CurrentVersion:  res.CurrentVersion,
		UpdateAvailable: res.Outcome == app.OutcomeAvailable,
		Outcome:         string(res.Outcome),
		Source:          sourceLabel(cfg),
		Comparison:      cfg.Update.Comparison,
		Constraint:      strings.TrimSpace(cfg.Update.Constraint),
		Error:           res.Error,
	}
	if res.Info != nil {
		s.LatestVersion = res.Info.Version
		s.PublishedAt = res.Info.PublishedAt
	}
	return s
}

// printStatusTable prints status as an aligned two-column table.
func printStatusTable(w io.Writer, s StatusOutput) {
	tbl := table.New("Field", "Value").WithWriter(w)

	tbl.AddRow("Installed", orDash(s.CurrentVersion))
	tbl.AddRow("Latest", orDash(s.LatestVersion))
	if s.UpdateAvailable {
		tbl.AddRow("Update", "available")
	} else {
		tbl.AddRow("Update", strings.ReplaceAll(s.Outcome, "_", " "))
	}
	if s.PublishedAt != "" {
		tbl.AddRow("Published", s.PublishedAt)
	}
	tbl.AddRow("Source", s.Source)
	tbl.AddRow("Comparison", s.Comparison)
	if s.Constraint != "" {
		tbl.AddRow("Constraint", s.Constraint)
	}
	if s.Error != "" {
		tbl.AddRow("Error", s.Error)
	}

	tbl.Print()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
