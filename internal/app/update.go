// Package app provides the update orchestrator behind the igaupdate commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/mchave3/Intune-Group-Assignments/internal/debug"
	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
	"github.com/mchave3/Intune-Group-Assignments/internal/upgrade"
	"github.com/mchave3/Intune-Group-Assignments/internal/version"
)

// ManifestReader reports the installed application version.
type ManifestReader interface {
	CurrentVersion() (string, error)
}

// UpdateClient is the update source the orchestrator drives.
type UpdateClient interface {
	CheckForUpdates(ctx context.Context) (*upgrade.UpdateInfo, error)
	DownloadUpdate(ctx context.Context, info upgrade.UpdateInfo) (string, error)
	InstallUpdate(ctx context.Context, path string) error
}

// Options contains the options for update cycles.
type Options struct {
	// Comparator decides whether the latest version is newer.
	// The zero value uses numeric semantics.
	Comparator version.Comparator
	// Constraint optionally restricts which newer versions are offered.
	Constraint version.Constraint
	// AutoConfirm skips the prompt and proceeds as if the user chose Yes.
	AutoConfirm bool
	// CheckOnly stops once an update is found, without prompting.
	CheckOnly bool
	// NewCycleID returns the correlation id for a cycle.
	// If nil, a random UUID is used.
	NewCycleID func() string
}

// Result describes how one update cycle ended.
type Result struct {
	// Outcome is how the cycle ended.
	Outcome Outcome `json:"outcome"`
	// CycleID correlates the cycle's debug log lines.
	CycleID string `json:"cycle_id,omitempty"`
	// CurrentVersion is the installed version, if it was read.
	CurrentVersion string `json:"current_version,omitempty"`
	// Info is the latest release metadata, if it was fetched.
	Info *upgrade.UpdateInfo `json:"latest,omitempty"`
	// Path is the downloaded artifact handed to the installer.
	Path string `json:"path,omitempty"`
	// Stage is the step that failed when Outcome is OutcomeFailed.
	Stage igaerrors.Stage `json:"stage,omitempty"`
	// Err is the failure cause, wrapped in an *errors.StageError.
	Err error `json:"-"`
	// Error is Err's message for JSON output.
	Error string `json:"error,omitempty"`
}

// Updater sequences check, confirm, download and install. At most one
// cycle runs at a time.
type Updater struct {
	manifest  ManifestReader
	client    UpdateClient
	presenter Presenter
	opts      Options

	running atomic.Bool
	latest  *Observable[string]
	state   *Observable[State]
}

// NewUpdater creates an Updater. A nil presenter declines every prompt and
// drops notices.
func NewUpdater(manifest ManifestReader, client UpdateClient, presenter Presenter, opts Options) *Updater {
	if presenter == nil {
		presenter = nopPresenter{}
	}
	if opts.NewCycleID == nil {
		opts.NewCycleID = uuid.NewString
	}
	return &Updater{
		manifest:  manifest,
		client:    client,
		presenter: presenter,
		opts:      opts,
		latest:    NewObservable(""),
		state:     NewObservable(StateIdle),
	}
}

// LatestVersion is the last newer version found, for display.
func (u *Updater) LatestVersion() *Observable[string] { return u.latest }

// State is the current cycle state.
func (u *Updater) State() *Observable[State] { return u.state }

// CheckForUpdates runs one update cycle. Failures are logged, reported to
// the presenter with the same generic notice whatever the stage, and
// returned in the Result. The state is Idle again when it returns.
func (u *Updater) CheckForUpdates(ctx context.Context) Result {
	if !u.running.CompareAndSwap(false, true) {
		debug.Log("update check skipped: another check is in progress")
		return Result{Outcome: OutcomeBusy}
	}
	defer u.running.Store(false)
	defer u.state.Set(StateIdle)

	cycle := u.opts.NewCycleID()
	debug.Logf("[%s] update check started", cycle)

	res := u.run(ctx, cycle)
	res.CycleID = cycle

	if res.Err != nil {
		res.Error = res.Err.Error()
		debug.Logf("[%s] update check failed at %s: %v", cycle, res.Stage, res.Err)
		// Leave the failed stage before the notice so stage displays are torn down.
		u.state.Set(StateIdle)
		if err := u.presenter.Notify(context.WithoutCancel(ctx), ErrorNotice); err != nil {
			debug.Logf("[%s] error notice not shown: %v", cycle, err)
		}
		return res
	}

	debug.Logf("[%s] update check finished: %s", cycle, res.Outcome)
	return res
}

func (u *Updater) run(ctx context.Context, cycle string) Result {
	var res Result
	fail := func(stage igaerrors.Stage, err error) Result {
		res.Outcome = OutcomeFailed
		res.Stage = stage
		res.Err = &igaerrors.StageError{Stage: stage, Err: err}
		return res
	}

	u.state.Set(StateChecking)

	current, err := u.manifest.CurrentVersion()
	if err != nil {
		return fail(igaerrors.StageManifest, err)
	}
	res.CurrentVersion = current
	debug.Logf("[%s] installed version %s", cycle, current)

	info, err := u.client.CheckForUpdates(ctx)
	if err != nil {
		return fail(igaerrors.StageCheck, err)
	}
	if info == nil {
		return fail(igaerrors.StageCheck, fmt.Errorf("%w: empty update metadata", igaerrors.ErrInvalid))
	}
	res.Info = info
	debug.Logf("[%s] latest version %s at %s", cycle, info.Version, info.DownloadURL)

	newer, err := u.opts.Comparator.IsNewVersionAvailable(current, info.Version)
	if err != nil {
		return fail(igaerrors.StageCompare, err)
	}
	if !newer {
		u.state.Set(StateNoUpdate)
		res.Outcome = OutcomeNoUpdate
		return res
	}

	if !u.opts.Constraint.IsEmpty() {
		latest, err := version.Parse(info.Version)
		if err != nil {
			return fail(igaerrors.StageCompare, err)
		}
		if !u.opts.Constraint.Allows(latest) {
			debug.Logf("[%s] %s is outside %q", cycle, info.Version, u.opts.Constraint)
			u.state.Set(StateNoUpdate)
			res.Outcome = OutcomeRejected
			return res
		}
	}

	u.state.Set(StateUpdateAvailable)
	u.latest.Set(info.Version)

	if u.opts.CheckOnly {
		res.Outcome = OutcomeAvailable
		return res
	}

	if !u.opts.AutoConfirm {
		choice, err := u.presenter.Confirm(ctx, UpdatePrompt(*info))
		if err != nil && !igaerrors.IsCanceled(err) && !errors.Is(err, context.Canceled) {
			return fail(igaerrors.StageConfirm, err)
		}
		if err != nil || choice != ChoiceYes {
			debug.Logf("[%s] update declined", cycle)
			res.Outcome = OutcomeDeclined
			return res
		}
	}

	u.state.Set(StateDownloading)
	path, err := u.client.DownloadUpdate(ctx, *info)
	if err != nil {
		return fail(igaerrors.StageDownload, err)
	}
	res.Path = path
	debug.Logf("[%s] downloaded %s", cycle, path)

	u.state.Set(StateInstalling)
	if err := u.client.InstallUpdate(ctx, path); err != nil {
		return fail(igaerrors.StageInstall, err)
	}

	res.Outcome = OutcomeLaunched
	return res
}
