package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mchave3/Intune-Group-Assignments/internal/app"
	"github.com/mchave3/Intune-Group-Assignments/internal/tui"
	"github.com/mchave3/Intune-Group-Assignments/internal/upgrade"
)

// CheckOptions contains the options for the check command.
type CheckOptions struct {
	Yes       bool
	CheckOnly bool
	Current   string
	JSON      bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check for an update and install it",
		Long: `Check the update source for a newer version and offer to install it.

This command will:
1. Read the installed version from Package.appxmanifest
2. Fetch the latest release metadata
3. Compare the two versions
4. Ask for confirmation (unless --yes)
5. Download and verify the installer
6. Launch the installer

Exit codes:
  0 - Success or already up-to-date
  1 - Generic error
  2 - Network error
  3 - Verification failed
  4 - Installation failed
  5 - Already on latest version (with --check-only)
  6 - Malformed metadata or manifest
  7 - Manifest not found`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false,
		"skip confirmation prompt")
	cmd.Flags().BoolVar(&opts.CheckOnly, "check-only", false,
		"check for updates without installing")
	cmd.Flags().StringVar(&opts.Current, "current", "",
		"use this as the installed version instead of reading the manifest")
	cmd.Flags().BoolVar(&opts.JSON, "json", false,
		"output the result in JSON format")

	return cmd
}

func runCheck(ctx context.Context, in io.Reader, out, errOut io.Writer, opts *CheckOptions) error {
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

	var display *tui.ProgressDisplay
	var hook upgrade.ProgressHook
	if !opts.JSON && !opts.CheckOnly && useTUI(cfg, in) {
		display = tui.NewProgressDisplay(errOut, "Downloading update")
		hook = display.Update
	}

	client, err := newClient(cfg, source, hook)
	if err != nil {
		return err
	}

	updateOpts, err := updateOptions(cfg)
	if err != nil {
		return err
	}
	updateOpts.AutoConfirm = opts.Yes
	updateOpts.CheckOnly = opts.CheckOnly

	// Prompts go to stderr so --json output stays parseable.
	promptOut := out
	if opts.JSON {
		promptOut = errOut
	}
	updater := app.NewUpdater(newManifestReader(cfg, opts.Current), client, newPresenter(cfg, in, promptOut), updateOpts)

	if display != nil {
		defer display.Stop()
		prev := updater.State().Get()
		unsubscribe := updater.State().Subscribe(func(s app.State) {
			if prev == app.StateDownloading {
				display.Stop()
			}
			prev = s
		})
		defer unsubscribe()
	}

	if !opts.JSON {
		fmt.Fprintln(errOut, "Checking for updates...")
	}
	res := updater.CheckForUpdates(ctx)

	if opts.JSON {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(res); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	} else {
		printCheckResult(out, res, updateOpts)
	}

	return resultError(res, opts.CheckOnly)
}

func printCheckResult(w io.Writer, res app.Result, opts app.Options) {
	latest := ""
	if res.Info != nil {
		latest = res.Info.Version
	}

	switch res.Outcome {
	case app.OutcomeNoUpdate:
		fmt.Fprintf(w, "Already on latest version: %s\n", res.CurrentVersion)
	case app.OutcomeAvailable:
		fmt.Fprintf(w, "Update available: %s -> %s\n", res.CurrentVersion, latest)
		fmt.Fprintln(w, "\nRun 'igaupdate check' without --check-only to install the update")
	case app.OutcomeRejected:
		fmt.Fprintf(w, "Version %s is outside the allowed range %q; staying on %s\n", latest, opts.Constraint.String(), res.CurrentVersion)
	case app.OutcomeDeclined:
		fmt.Fprintln(w, "Update cancelled")
	case app.OutcomeLaunched:
		fmt.Fprintf(w, "Installer for %s started: %s\n", latest, res.Path)
	case app.OutcomeBusy:
		fmt.Fprintln(w, "An update check is already in progress")
	}
}

// resultError turns a cycle result into the command error that carries its
// exit code.
func resultError(res app.Result, checkOnly bool) error {
	switch res.Outcome {
	case app.OutcomeFailed:
		return res.Err
	case app.OutcomeNoUpdate:
		if checkOnly {
			return upgrade.NewError(upgrade.ExitAlreadyLatest, "Already on latest version", nil)
		}
	}
	return nil
}
