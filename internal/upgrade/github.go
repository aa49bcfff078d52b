package upgrade

import (
	"context"
	"fmt"
	"strings"
	"time"

	selfupdate "github.com/creativeprojects/go-selfupdate"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// detectFunc returns the latest release of repo, or found=false if the
// repository has no release with an asset for the platform.
type detectFunc func(ctx context.Context, repo string) (info *UpdateInfo, found bool, err error)

// GitHubSource reports the latest GitHub release of a repository.
type GitHubSource struct {
	repo   string
	detect detectFunc
}

// GitHubOption configures a GitHubSource.
type GitHubOption func(*githubSettings)

type githubSettings struct {
	token    string
	platform Platform
}

// WithGitHubToken authenticates API requests for higher rate limits.
func WithGitHubToken(token string) GitHubOption {
	return func(s *githubSettings) { s.token = token }
}

// WithPlatform overrides the platform used for asset detection.
func WithPlatform(p Platform) GitHubOption {
	return func(s *githubSettings) { s.platform = p }
}

// NewGitHubSource creates a source for repo in "owner/name" form.
func NewGitHubSource(repo string, opts ...GitHubOption) (*GitHubSource, error) {
	if owner, name, ok := strings.Cut(repo, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, parseError(fmt.Sprintf("Invalid GitHub repository %q, want owner/name", repo), nil)
	}

	settings := githubSettings{platform: NewPlatform()}
	for _, opt := range opts {
		opt(&settings)
	}
	return &GitHubSource{
		repo:   repo,
		detect: detectWithSelfupdate(settings),
	}, nil
}

// Repo returns the owner/name slug.
func (s *GitHubSource) Repo() string { return s.repo }

// Latest returns the newest release carrying an asset for the platform.
func (s *GitHubSource) Latest(ctx context.Context) (*UpdateInfo, error) {
	info, found, err := s.detect(ctx, s.repo)
	if err != nil {
		return nil, networkError("Failed to query GitHub releases", err)
	}
	if !found {
		return nil, NewError(ExitNotFound, fmt.Sprintf("No release found for %s", s.repo), igaerrors.ErrNotFound)
	}
	if err := validateInfo(info); err != nil {
		return nil, err
	}
	return info, nil
}

func detectWithSelfupdate(settings githubSettings) detectFunc {
	return func(ctx context.Context, repo string) (*UpdateInfo, bool, error) {
		source, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{APIToken: settings.token})
		if err != nil {
			return nil, false, fmt.Errorf("create github source: %w", err)
		}

		updater, err := selfupdate.NewUpdater(selfupdate.Config{
			Source: source,
			OS:     settings.platform.OS,
			Arch:   settings.platform.Arch,
		})
		if err != nil {
			return nil, false, fmt.Errorf("create updater: %w", err)
		}

		rel, found, err := updater.DetectLatest(ctx, selfupdate.ParseSlug(repo))
		if err != nil {
			return nil, false, fmt.Errorf("detect latest release: %w", err)
		}
		if !found {
			return nil, false, nil
		}

		info := &UpdateInfo{
			Version:      rel.Version(),
			DownloadURL:  rel.AssetURL,
			Name:         rel.Name,
			ReleaseNotes: rel.ReleaseNotes,
		}
		if !rel.PublishedAt.IsZero() {
			info.PublishedAt = rel.PublishedAt.Format(time.RFC3339)
		}
		return info, true, nil
	}
}
