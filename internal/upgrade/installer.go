package upgrade

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Starter starts cmd without waiting for it to exit.
type Starter func(cmd *exec.Cmd) error

// Installer hands a downloaded artifact to the platform installer.
type Installer struct {
	goos  string
	start Starter
}

// InstallerOption configures an Installer.
type InstallerOption func(*Installer)

// WithGOOS overrides the target operating system.
func WithGOOS(goos string) InstallerOption {
	return func(i *Installer) { i.goos = goos }
}

// WithStarter replaces the process starter.
func WithStarter(s Starter) InstallerOption {
	return func(i *Installer) {
		if s != nil {
			i.start = s
		}
	}
}

// NewInstaller creates an Installer for the running OS.
func NewInstaller(opts ...InstallerOption) *Installer {
	i := &Installer{
		goos:  runtime.GOOS,
		start: startDetached,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Launch starts the installer for path and returns once the process has
// been started. The installer runs independently of this process.
func (i *Installer) Launch(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return installError("Install canceled", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return installError("Artifact not found", err)
	}
	if info.IsDir() {
		return installError("Artifact is a directory", nil)
	}

	name, args, executable := installCommand(i.goos, path)
	if executable {
		if err := os.Chmod(path, 0755); err != nil {
			return installError("Failed to mark artifact executable", err)
		}
	}

	// Not CommandContext: the installer must outlive this process.
	// #nosec G204 -- command comes from the fixed installer table
	cmd := exec.Command(name, args...)
	cmd.Dir = filepath.Dir(path)
	if err := i.start(cmd); err != nil {
		return installError("Failed to launch installer", err)
	}
	return nil
}

// installCommand returns the program and arguments that install path on
// goos, and whether path itself must be made executable first.
func installCommand(goos, path string) (name string, args []string, executable bool) {
	ext := strings.ToLower(filepath.Ext(path))

	switch goos {
	case "windows":
		switch ext {
		case ".msi":
			return "msiexec", []string{"/i", path}, false
		case ".exe":
			return path, nil, false
		default:
			// .msix, .msixbundle, .appx, .appinstaller go through the shell association.
			return "cmd", []string{"/c", "start", "", path}, false
		}
	case "darwin":
		return "open", []string{path}, false
	default:
		if ext == ".appimage" {
			return path, nil, true
		}
		return "xdg-open", []string{path}, false
	}
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
