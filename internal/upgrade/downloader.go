package upgrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ProgressHook is called during download with bytes downloaded and total bytes.
// total is -1 when the server does not report a length.
type ProgressHook func(downloaded, total int64)

// Downloader streams release artifacts to disk.
type Downloader struct {
	httpClient   *http.Client
	maxRetries   int
	backoff      time.Duration
	progressHook ProgressHook
}

// DownloaderOption configures a Downloader.
type DownloaderOption func(*Downloader)

// WithDownloadHTTPClient sets the HTTP client used for transfers.
func WithDownloadHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) {
		if client != nil {
			d.httpClient = client
		}
	}
}

// WithDownloadRetries sets the number of attempts per transfer.
func WithDownloadRetries(n int) DownloaderOption {
	return func(d *Downloader) { d.maxRetries = n }
}

// WithDownloadBackoff sets the delay before the first retry.
func WithDownloadBackoff(b time.Duration) DownloaderOption {
	return func(d *Downloader) { d.backoff = b }
}

// NewDownloader creates a new Downloader.
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{},
		maxRetries: 3,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetProgressHook sets the progress callback.
func (d *Downloader) SetProgressHook(hook ProgressHook) {
	d.progressHook = hook
}

// Download downloads url to destPath. The body is written to destPath.part
// and renamed on success; a failed transfer leaves no file behind.
func (d *Downloader) Download(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return ioError("Failed to create download directory", err)
	}

	partPath := destPath + ".part"
	err := withRetry(ctx, d.maxRetries, d.backoff, func(int) error {
		return d.downloadAttempt(ctx, url, partPath)
	})
	if err != nil {
		_ = os.Remove(partPath)
		return err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		_ = os.Remove(partPath)
		return ioError("Failed to finalize download", err)
	}
	return nil
}

// Fetch downloads a small resource into memory, at most limit bytes.
func (d *Downloader) Fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, d.maxRetries, d.backoff, func(int) error {
		resp, err := d.get(ctx, url)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return networkError("Download interrupted", err)
		}
		if int64(len(data)) > limit {
			return permanent(verificationError(fmt.Sprintf("Resource exceeds %d bytes", limit), nil))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (d *Downloader) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent(networkError("Failed to create request", err))
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, networkError("Failed to download", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		err := networkError(fmt.Sprintf("Download failed with status %d", resp.StatusCode), nil)
		if retryableStatus(resp.StatusCode) {
			return nil, err
		}
		return nil, permanent(err)
	}
	return resp, nil
}

func (d *Downloader) downloadAttempt(ctx context.Context, url, destPath string) error {
	resp, err := d.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	// #nosec G304 -- destination is derived from the configured download dir
	f, err := os.Create(destPath)
	if err != nil {
		return permanent(ioError("Failed to create file", err))
	}
	defer func() { _ = f.Close() }()

	total := resp.ContentLength
	var downloaded int64

	if d.progressHook != nil {
		d.progressHook(0, total)
	}

	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return permanent(ioError("Failed to write file", writeErr))
			}
			downloaded += int64(n)
			if d.progressHook != nil {
				d.progressHook(downloaded, total)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return networkError("Download interrupted", err)
		}
	}

	if err := f.Sync(); err != nil {
		return permanent(ioError("Failed to flush file", err))
	}
	return nil
}
