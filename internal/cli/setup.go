package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/mchave3/Intune-Group-Assignments/internal/app"
	"github.com/mchave3/Intune-Group-Assignments/internal/config"
	"github.com/mchave3/Intune-Group-Assignments/internal/debug"
	"github.com/mchave3/Intune-Group-Assignments/internal/manifest"
	"github.com/mchave3/Intune-Group-Assignments/internal/tui"
	"github.com/mchave3/Intune-Group-Assignments/internal/upgrade"
	"github.com/mchave3/Intune-Group-Assignments/internal/version"
)

// loadConfig loads the configuration and opens the debug log if enabled.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := debug.Init(cfg.Log.Debug || debugFlag(), cfg.Log.File); err != nil {
		// The debug log is optional; report and continue.
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	debug.Logf("config loaded (source=%s comparison=%s)", cfg.Update.Source, cfg.Update.Comparison)
	return cfg, nil
}

// newSource builds the metadata source named by [update].source.
func newSource(cfg *config.Config) (upgrade.Source, error) {
	switch cfg.Update.Source {
	case config.SourceGitHub:
		return upgrade.NewGitHubSource(cfg.Update.GitHubRepo,
			upgrade.WithGitHubToken(os.Getenv("GITHUB_TOKEN")))
	default:
		return upgrade.NewEndpointSource(cfg.Update.EndpointURL,
			upgrade.WithHTTPClient(&http.Client{Timeout: cfg.UpdateTimeout()}),
			upgrade.WithRetries(cfg.Update.Retries))
	}
}

// sourceLabel describes where metadata comes from, for display.
func sourceLabel(cfg *config.Config) string {
	if cfg.Update.Source == config.SourceGitHub {
		return "github:" + cfg.Update.GitHubRepo
	}
	return cfg.Update.EndpointURL
}

// newClient builds the update client. hook may be nil.
func newClient(cfg *config.Config, source upgrade.Source, hook upgrade.ProgressHook) (*upgrade.Client, error) {
	verifyOpts := []upgrade.VerifierOption{upgrade.RequireChecksum(cfg.Verify.RequireChecksum)}
	if cfg.Verify.MinisignPublicKey != "" {
		key, err := upgrade.LoadPublicKey(cfg.Verify.MinisignPublicKey)
		if err != nil {
			return nil, fmt.Errorf("verify.minisign_public_key: %w", err)
		}
		verifyOpts = append(verifyOpts, upgrade.WithPublicKey(key))
	}

	opts := []upgrade.ClientOption{
		upgrade.WithDownloader(upgrade.NewDownloader(upgrade.WithDownloadRetries(cfg.Update.Retries))),
		upgrade.WithVerifier(upgrade.NewVerifier(verifyOpts...)),
		upgrade.WithDownloadDir(cfg.Download.Dir),
		upgrade.WithDownloadTimeout(cfg.DownloadTimeout()),
	}
	if hook != nil {
		opts = append(opts, upgrade.WithProgressHook(hook))
	}
	return upgrade.NewClient(source, opts...), nil
}

// newManifestReader returns the --current override or the manifest reader.
func newManifestReader(cfg *config.Config, current string) app.ManifestReader {
	if current != "" {
		return manifest.Static(current)
	}
	return manifest.NewReader(cfg.Manifest.Path)
}

// updateOptions builds the orchestrator options from config.
func updateOptions(cfg *config.Config) (app.Options, error) {
	semantics, err := version.ParseSemantics(cfg.Update.Comparison)
	if err != nil {
		return app.Options{}, err
	}
	constraint, err := version.ParseConstraint(cfg.Update.Constraint)
	if err != nil {
		return app.Options{}, err
	}
	return app.Options{
		Comparator: version.Comparator{Semantics: semantics},
		Constraint: constraint,
	}, nil
}

// useTUI reports whether interactive forms can be shown on in.
func useTUI(cfg *config.Config, in io.Reader) bool {
	if IsNoTUI() || !cfg.TUI.Enabled {
		return false
	}
	f, ok := in.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// newPresenter picks the huh forms on a terminal and plain prompts
// otherwise.
func newPresenter(cfg *config.Config, in io.Reader, out io.Writer) app.Presenter {
	if useTUI(cfg, in) {
		return tui.NewFormPresenter(tui.WithFormIO(in, out))
	}
	return tui.NewPlainPresenter(in, out)
}
