package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
	"github.com/mchave3/Intune-Group-Assignments/internal/manifest"
	"github.com/mchave3/Intune-Group-Assignments/internal/upgrade"
	"github.com/mchave3/Intune-Group-Assignments/internal/version"
)

type fakeManifest struct {
	version string
	err     error
	entered chan struct{}
	release chan struct{}
}

func (m *fakeManifest) CurrentVersion() (string, error) {
	if m.entered != nil {
		close(m.entered)
		<-m.release
	}
	return m.version, m.err
}

type fakeClient struct {
	mu sync.Mutex

	info        *upgrade.UpdateInfo
	checkErr    error
	path        string
	downloadErr error
	installErr  error

	checks    int
	downloads []upgrade.UpdateInfo
	installs  []string
}

func (c *fakeClient) CheckForUpdates(context.Context) (*upgrade.UpdateInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks++
	return c.info, c.checkErr
}

func (c *fakeClient) DownloadUpdate(_ context.Context, info upgrade.UpdateInfo) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.downloads = append(c.downloads, info)
	if c.downloadErr != nil {
		return "", c.downloadErr
	}
	return c.path, nil
}

func (c *fakeClient) InstallUpdate(_ context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.installs = append(c.installs, path)
	return c.installErr
}

type fakePresenter struct {
	choice     Choice
	confirmErr error
	prompts    []Prompt
	notices    []Notice
	onNotify   func()
}

func (p *fakePresenter) Confirm(_ context.Context, pr Prompt) (Choice, error) {
	p.prompts = append(p.prompts, pr)
	return p.choice, p.confirmErr
}

func (p *fakePresenter) Notify(_ context.Context, n Notice) error {
	p.notices = append(p.notices, n)
	if p.onNotify != nil {
		p.onNotify()
	}
	return nil
}

func release101() *upgrade.UpdateInfo {
	return &upgrade.UpdateInfo{Version: "1.0.1", DownloadURL: "https://example/installer.exe"}
}

func fixedCycleID() string { return "cycle-1" }

func newTestUpdater(m ManifestReader, c UpdateClient, p Presenter, opts Options) *Updater {
	if opts.NewCycleID == nil {
		opts.NewCycleID = fixedCycleID
	}
	return NewUpdater(m, c, p, opts)
}

func recordStates(u *Updater) *[]State {
	var states []State
	u.State().Subscribe(func(s State) { states = append(states, s) })
	return &states
}

func TestCheckForUpdates_ConfirmedUpdateIsLaunched(t *testing.T) {
	client := &fakeClient{info: release101(), path: "/tmp/installer.exe"}
	presenter := &fakePresenter{choice: ChoiceYes}
	u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{})

	var latest []string
	u.LatestVersion().Subscribe(func(v string) { latest = append(latest, v) })
	states := recordStates(u)

	res := u.CheckForUpdates(context.Background())

	require.NoError(t, res.Err)
	assert.Equal(t, OutcomeLaunched, res.Outcome)
	assert.Equal(t, "cycle-1", res.CycleID)
	assert.Equal(t, "1.0.0", res.CurrentVersion)
	assert.Equal(t, "/tmp/installer.exe", res.Path)
	assert.Equal(t, []string{"1.0.1"}, latest)
	assert.Equal(t, []State{StateChecking, StateUpdateAvailable, StateDownloading, StateInstalling, StateIdle}, *states)
	assert.Equal(t, StateIdle, u.State().Get())

	require.Len(t, presenter.prompts, 1)
	prompt := presenter.prompts[0]
	assert.Equal(t, "Update Available", prompt.Title)
	assert.Equal(t, "A new version 1.0.1 is available. Would you like to update now?", prompt.Message)
	assert.Equal(t, "Yes", prompt.Yes)
	assert.Equal(t, "Cancel", prompt.Cancel)

	require.Len(t, client.downloads, 1)
	assert.Equal(t, *release101(), client.downloads[0])
	assert.Equal(t, []string{"/tmp/installer.exe"}, client.installs)
	assert.Empty(t, presenter.notices)
}

func TestCheckForUpdates_SameVersionIsNoUpdate(t *testing.T) {
	client := &fakeClient{info: &upgrade.UpdateInfo{Version: "2.0.0", DownloadURL: "https://example/a.msi"}}
	presenter := &fakePresenter{choice: ChoiceYes}
	u := newTestUpdater(&fakeManifest{version: "2.0.0"}, client, presenter, Options{})
	states := recordStates(u)

	res := u.CheckForUpdates(context.Background())

	assert.Equal(t, OutcomeNoUpdate, res.Outcome)
	assert.Empty(t, presenter.prompts)
	assert.Empty(t, presenter.notices)
	assert.Empty(t, client.downloads)
	assert.Equal(t, "", u.LatestVersion().Get())
	assert.Equal(t, []State{StateChecking, StateNoUpdate, StateIdle}, *states)
}

func TestCheckForUpdates_Downgrade(t *testing.T) {
	older := &upgrade.UpdateInfo{Version: "2.5.0", DownloadURL: "https://example/a.msi"}

	t.Run("numeric ignores older release", func(t *testing.T) {
		presenter := &fakePresenter{}
		u := newTestUpdater(&fakeManifest{version: "3.0.0"}, &fakeClient{info: older}, presenter, Options{})

		assert.Equal(t, OutcomeNoUpdate, u.CheckForUpdates(context.Background()).Outcome)
		assert.Empty(t, presenter.prompts)
	})

	t.Run("literal offers older release", func(t *testing.T) {
		presenter := &fakePresenter{choice: ChoiceCancel}
		opts := Options{Comparator: version.Comparator{Semantics: version.SemanticsLiteral}}
		u := newTestUpdater(&fakeManifest{version: "3.0.0"}, &fakeClient{info: older}, presenter, opts)

		assert.Equal(t, OutcomeDeclined, u.CheckForUpdates(context.Background()).Outcome)
		assert.Len(t, presenter.prompts, 1)
	})
}

func TestCheckForUpdates_ManifestMissingSkipsNetwork(t *testing.T) {
	client := &fakeClient{info: release101()}
	presenter := &fakePresenter{choice: ChoiceYes}
	u := newTestUpdater(manifest.NewReader(t.TempDir()+"/Package.appxmanifest"), client, presenter, Options{})

	res := u.CheckForUpdates(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, igaerrors.StageManifest, res.Stage)
	assert.True(t, igaerrors.IsNotFound(res.Err))
	assert.NotEmpty(t, res.Error)
	assert.Zero(t, client.checks, "no network call after a manifest failure")
	assert.Empty(t, presenter.prompts)
	assert.Equal(t, []Notice{ErrorNotice}, presenter.notices)
	assert.Equal(t, StateIdle, u.State().Get())
}

func TestCheckForUpdates_CheckFailureShowsNoPrompt(t *testing.T) {
	client := &fakeClient{checkErr: upgrade.NewError(upgrade.ExitNetworkError, "unreachable", igaerrors.ErrNetwork)}
	presenter := &fakePresenter{choice: ChoiceYes}
	u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{})

	res := u.CheckForUpdates(context.Background())

	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, igaerrors.StageCheck, res.Stage)
	assert.True(t, igaerrors.IsNetwork(res.Err))
	assert.Empty(t, presenter.prompts)
	assert.Empty(t, client.downloads)
	assert.Equal(t, []Notice{ErrorNotice}, presenter.notices)
}

func TestCheckForUpdates_EmptyMetadata(t *testing.T) {
	u := newTestUpdater(&fakeManifest{version: "1.0.0"}, &fakeClient{}, &fakePresenter{}, Options{})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, igaerrors.StageCheck, res.Stage)
	assert.True(t, igaerrors.IsInvalid(res.Err))
}

func TestCheckForUpdates_UnparseableVersion(t *testing.T) {
	presenter := &fakePresenter{}
	u := newTestUpdater(&fakeManifest{version: "1.0.0.x"}, &fakeClient{info: release101()}, presenter, Options{})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, igaerrors.StageCompare, res.Stage)
	assert.True(t, igaerrors.IsInvalid(res.Err))
	assert.Equal(t, []Notice{ErrorNotice}, presenter.notices)
}

func TestCheckForUpdates_Declined(t *testing.T) {
	tests := []struct {
		name      string
		presenter *fakePresenter
	}{
		{"cancel button", &fakePresenter{choice: ChoiceCancel}},
		{"user abort", &fakePresenter{confirmErr: igaerrors.ErrCanceled}},
		{"context canceled", &fakePresenter{confirmErr: context.Canceled}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{info: release101()}
			u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, tt.presenter, Options{})
			states := recordStates(u)

			res := u.CheckForUpdates(context.Background())

			assert.Equal(t, OutcomeDeclined, res.Outcome)
			assert.NoError(t, res.Err)
			assert.Empty(t, client.downloads)
			assert.Empty(t, client.installs)
			assert.Empty(t, tt.presenter.notices)
			assert.Equal(t, []State{StateChecking, StateUpdateAvailable, StateIdle}, *states)
		})
	}
}

func TestCheckForUpdates_ConfirmError(t *testing.T) {
	presenter := &fakePresenter{confirmErr: errors.New("no terminal")}
	client := &fakeClient{info: release101()}
	u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, igaerrors.StageConfirm, res.Stage)
	assert.Empty(t, client.downloads)
}

func TestCheckForUpdates_DownloadAndInstallFailures(t *testing.T) {
	t.Run("download", func(t *testing.T) {
		client := &fakeClient{info: release101(), downloadErr: upgrade.NewError(upgrade.ExitVerificationError, "bad sum", igaerrors.ErrVerification)}
		presenter := &fakePresenter{choice: ChoiceYes}
		u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{})

		res := u.CheckForUpdates(context.Background())
		assert.Equal(t, igaerrors.StageDownload, res.Stage)
		assert.True(t, igaerrors.IsVerification(res.Err))
		assert.Empty(t, client.installs)
		assert.Equal(t, []Notice{ErrorNotice}, presenter.notices)
	})

	t.Run("notice shown after leaving the stage", func(t *testing.T) {
		client := &fakeClient{info: release101(), downloadErr: errors.New("connection reset")}
		presenter := &fakePresenter{choice: ChoiceYes}
		u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{})
		states := recordStates(u)

		var atNotice State
		presenter.onNotify = func() { atNotice = u.State().Get() }

		res := u.CheckForUpdates(context.Background())
		assert.Equal(t, igaerrors.StageDownload, res.Stage)
		assert.Equal(t, StateIdle, atNotice)
		assert.Equal(t, []State{StateChecking, StateUpdateAvailable, StateDownloading, StateIdle}, *states)
	})

	t.Run("install", func(t *testing.T) {
		client := &fakeClient{info: release101(), path: "/tmp/a.exe", installErr: igaerrors.ErrInstall}
		presenter := &fakePresenter{choice: ChoiceYes}
		u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{})

		res := u.CheckForUpdates(context.Background())
		assert.Equal(t, igaerrors.StageInstall, res.Stage)
		assert.Equal(t, "/tmp/a.exe", res.Path)
		assert.Equal(t, []Notice{ErrorNotice}, presenter.notices)
		assert.Equal(t, StateIdle, u.State().Get())
	})
}

func TestCheckForUpdates_ConstraintRejects(t *testing.T) {
	constraint, err := version.ParseConstraint("< 2")
	require.NoError(t, err)

	presenter := &fakePresenter{choice: ChoiceYes}
	client := &fakeClient{info: &upgrade.UpdateInfo{Version: "2.0.0", DownloadURL: "https://example/a.msi"}}
	u := newTestUpdater(&fakeManifest{version: "1.9.0"}, client, presenter, Options{Constraint: constraint})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, OutcomeRejected, res.Outcome)
	assert.Empty(t, presenter.prompts)
	assert.Empty(t, client.downloads)
}

func TestCheckForUpdates_AutoConfirm(t *testing.T) {
	presenter := &fakePresenter{}
	client := &fakeClient{info: release101(), path: "/tmp/a.exe"}
	u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{AutoConfirm: true})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, OutcomeLaunched, res.Outcome)
	assert.Empty(t, presenter.prompts)
	assert.Len(t, client.installs, 1)
}

func TestCheckForUpdates_CheckOnly(t *testing.T) {
	presenter := &fakePresenter{choice: ChoiceYes}
	client := &fakeClient{info: release101()}
	u := newTestUpdater(&fakeManifest{version: "1.0.0"}, client, presenter, Options{CheckOnly: true})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, OutcomeAvailable, res.Outcome)
	assert.Equal(t, "1.0.1", u.LatestVersion().Get())
	assert.Empty(t, presenter.prompts)
	assert.Empty(t, client.downloads)
}

func TestCheckForUpdates_NilPresenterDeclines(t *testing.T) {
	client := &fakeClient{info: release101()}
	u := NewUpdater(&fakeManifest{version: "1.0.0"}, client, nil, Options{})

	res := u.CheckForUpdates(context.Background())
	assert.Equal(t, OutcomeDeclined, res.Outcome)
	assert.NotEmpty(t, res.CycleID, "default cycle id should be generated")
}

func TestCheckForUpdates_SingleInFlight(t *testing.T) {
	m := &fakeManifest{version: "2.0.0", entered: make(chan struct{}), release: make(chan struct{})}
	client := &fakeClient{info: &upgrade.UpdateInfo{Version: "2.0.0", DownloadURL: "https://example/a.msi"}}
	u := newTestUpdater(m, client, &fakePresenter{}, Options{})

	first := make(chan Result, 1)
	go func() { first <- u.CheckForUpdates(context.Background()) }()

	select {
	case <-m.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first check never started")
	}

	second := u.CheckForUpdates(context.Background())
	assert.Equal(t, OutcomeBusy, second.Outcome)

	close(m.release)
	assert.Equal(t, OutcomeNoUpdate, (<-first).Outcome)

	// The guard is released once the first cycle ends.
	m.entered = nil
	assert.Equal(t, OutcomeNoUpdate, u.CheckForUpdates(context.Background()).Outcome)
}
