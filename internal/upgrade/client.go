package upgrade

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultDownloadTimeout bounds an artifact download including retries.
const DefaultDownloadTimeout = 10 * time.Minute

// maxSignatureSize caps a downloaded minisign signature.
const maxSignatureSize = 8 << 10

// Client fetches update metadata, downloads artifacts and launches the
// installer. It is the only component doing network or file I/O for updates.
type Client struct {
	source          Source
	downloader      *Downloader
	verifier        *Verifier
	installer       *Installer
	downloadDir     string
	downloadTimeout time.Duration
	progressHook    ProgressHook
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithDownloader sets the artifact downloader.
func WithDownloader(d *Downloader) ClientOption {
	return func(c *Client) { c.downloader = d }
}

// WithVerifier sets the artifact verifier.
func WithVerifier(v *Verifier) ClientOption {
	return func(c *Client) { c.verifier = v }
}

// WithInstaller sets the installer launcher.
func WithInstaller(i *Installer) ClientOption {
	return func(c *Client) { c.installer = i }
}

// WithDownloadDir sets where artifacts are stored.
func WithDownloadDir(dir string) ClientOption {
	return func(c *Client) { c.downloadDir = dir }
}

// WithDownloadTimeout bounds each DownloadUpdate call.
func WithDownloadTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.downloadTimeout = d }
}

// WithProgressHook reports download progress.
func WithProgressHook(h ProgressHook) ClientOption {
	return func(c *Client) { c.progressHook = h }
}

// NewClient creates a Client reading metadata from source.
func NewClient(source Source, opts ...ClientOption) *Client {
	c := &Client{
		source:          source,
		downloadTimeout: DefaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.downloader == nil {
		c.downloader = NewDownloader()
	}
	if c.verifier == nil {
		c.verifier = NewVerifier()
	}
	if c.installer == nil {
		c.installer = NewInstaller()
	}
	if c.downloadDir == "" {
		c.downloadDir = filepath.Join(os.TempDir(), "igaupdate")
	}
	if c.progressHook != nil {
		c.downloader.SetProgressHook(c.progressHook)
	}
	return c
}

// CheckForUpdates returns the latest published release.
func (c *Client) CheckForUpdates(ctx context.Context) (*UpdateInfo, error) {
	info, err := c.source.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateInfo(info); err != nil {
		return nil, err
	}
	return info, nil
}

// DownloadUpdate downloads info's artifact into the download directory and
// verifies it. It returns the local path; on any failure no file is left.
func (c *Client) DownloadUpdate(ctx context.Context, info UpdateInfo) (string, error) {
	if info.DownloadURL == "" {
		return "", parseError("Metadata has no download URL", nil)
	}
	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	name := filepath.Base(info.ArtifactName())
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", parseError("Unsafe artifact name "+name, nil)
	}
	dest := filepath.Join(c.downloadDir, name)

	if err := c.downloader.Download(ctx, info.DownloadURL, dest); err != nil {
		return "", err
	}

	if err := c.verify(ctx, dest, info); err != nil {
		_ = os.Remove(dest)
		return "", err
	}
	return dest, nil
}

func (c *Client) verify(ctx context.Context, path string, info UpdateInfo) error {
	if err := c.verifier.VerifyChecksum(path, info.SHA256); err != nil {
		return err
	}
	if !c.verifier.VerifiesSignatures() {
		return nil
	}
	if info.SignatureURL == "" {
		return verificationError("Signature required but none published", nil)
	}
	sig, err := c.downloader.Fetch(ctx, info.SignatureURL, maxSignatureSize)
	if err != nil {
		return err
	}
	return c.verifier.VerifySignature(path, sig)
}

// InstallUpdate launches the installer for path without waiting for it.
// The artifact is removed only if the installer cannot be started.
func (c *Client) InstallUpdate(ctx context.Context, path string) error {
	if err := c.installer.Launch(ctx, path); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
