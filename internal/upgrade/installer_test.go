package upgrade

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

func TestInstallCommand(t *testing.T) {
	tests := []struct {
		goos       string
		path       string
		wantName   string
		wantArgs   []string
		executable bool
	}{
		{"windows", `C:\dl\app.msi`, "msiexec", []string{"/i", `C:\dl\app.msi`}, false},
		{"windows", `C:\dl\Setup.EXE`, `C:\dl\Setup.EXE`, nil, false},
		{"windows", `C:\dl\app.msixbundle`, "cmd", []string{"/c", "start", "", `C:\dl\app.msixbundle`}, false},
		{"windows", `C:\dl\app.appinstaller`, "cmd", []string{"/c", "start", "", `C:\dl\app.appinstaller`}, false},
		{"darwin", "/tmp/app.dmg", "open", []string{"/tmp/app.dmg"}, false},
		{"linux", "/tmp/App.AppImage", "/tmp/App.AppImage", nil, true},
		{"linux", "/tmp/app.deb", "xdg-open", []string{"/tmp/app.deb"}, false},
		{"freebsd", "/tmp/app.pkg", "xdg-open", []string{"/tmp/app.pkg"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"_"+filepath.Ext(tt.path), func(t *testing.T) {
			name, args, executable := installCommand(tt.goos, tt.path)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.executable, executable)
		})
	}
}

func TestInstaller_Launch(t *testing.T) {
	path := writeArtifact(t, "msi")

	var started *exec.Cmd
	inst := NewInstaller(WithGOOS("windows"), WithStarter(func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}))

	require.NoError(t, inst.Launch(context.Background(), path))
	require.NotNil(t, started)
	assert.Equal(t, []string{"msiexec", "/i", path}, started.Args)
	assert.Equal(t, filepath.Dir(path), started.Dir)
}

func TestInstaller_LaunchAppImageIsMadeExecutable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "App.AppImage")
	require.NoError(t, os.WriteFile(path, []byte("elf"), 0644))

	inst := NewInstaller(WithGOOS("linux"), WithStarter(func(*exec.Cmd) error { return nil }))
	require.NoError(t, inst.Launch(context.Background(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode().Perm()&0100)
}

func TestInstaller_LaunchErrors(t *testing.T) {
	failing := NewInstaller(WithGOOS("linux"), WithStarter(func(*exec.Cmd) error {
		return errors.New("exec format error")
	}))

	err := failing.Launch(context.Background(), writeArtifact(t, "x"))
	require.Error(t, err)
	assert.True(t, igaerrors.IsInstall(err))
	assert.Equal(t, ExitInstallError, ExitCode(err))

	err = failing.Launch(context.Background(), filepath.Join(t.TempDir(), "missing.msi"))
	assert.True(t, igaerrors.IsInstall(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = failing.Launch(ctx, writeArtifact(t, "x"))
	assert.True(t, igaerrors.IsInstall(err))
}
