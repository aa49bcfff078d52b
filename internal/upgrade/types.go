// Package upgrade fetches update metadata, downloads installer artifacts
// and hands them to the platform installer.
package upgrade

import (
	"context"
	"runtime"
	"strings"
)

// UpdateInfo describes the latest published release.
type UpdateInfo struct {
	Version     string `json:"version" yaml:"version"`
	DownloadURL string `json:"downloadUrl" yaml:"downloadUrl"`

	// Optional integrity data.
	SHA256       string `json:"sha256,omitempty" yaml:"sha256,omitempty"`
	SignatureURL string `json:"signatureUrl,omitempty" yaml:"signatureUrl,omitempty"`

	// Optional presentation data.
	Name         string `json:"name,omitempty" yaml:"name,omitempty"`
	ReleaseNotes string `json:"releaseNotes,omitempty" yaml:"releaseNotes,omitempty"`
	PublishedAt  string `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
}

// ArtifactName returns the last path element of the download URL,
// without any query string.
func (u UpdateInfo) ArtifactName() string {
	name := u.DownloadURL
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return "update.bin"
	}
	return name
}

// Source reports the latest published release.
type Source interface {
	Latest(ctx context.Context) (*UpdateInfo, error)
}

// Platform identifies the current platform.
type Platform struct {
	OS   string // runtime.GOOS
	Arch string // runtime.GOARCH
}

// NewPlatform returns the current platform.
func NewPlatform() Platform {
	return Platform{
		OS:   runtime.GOOS,
		Arch: runtime.GOARCH,
	}
}

// String returns the platform string in the format "os_arch".
func (p Platform) String() string {
	return p.OS + "_" + p.Arch
}

const userAgent = "igaupdate"
