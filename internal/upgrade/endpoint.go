package upgrade

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a single metadata request.
const DefaultTimeout = 30 * time.Second

// maxMetadataSize caps the metadata body read from the endpoint.
const maxMetadataSize = 1 << 20

// EndpointSource reads update metadata from an HTTP(S) endpoint.
type EndpointSource struct {
	url        string
	httpClient *http.Client
	retries    int
	backoff    time.Duration
}

// EndpointOption configures an EndpointSource.
type EndpointOption func(*EndpointSource)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) EndpointOption {
	return func(s *EndpointSource) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithRetries sets the number of attempts for transient failures.
func WithRetries(n int) EndpointOption {
	return func(s *EndpointSource) {
		s.retries = n
	}
}

// WithBackoff sets the delay before the first retry.
func WithBackoff(d time.Duration) EndpointOption {
	return func(s *EndpointSource) {
		s.backoff = d
	}
}

// NewEndpointSource creates an EndpointSource for rawURL.
func NewEndpointSource(rawURL string, opts ...EndpointOption) (*EndpointSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, parseError(fmt.Sprintf("Invalid update endpoint %q", rawURL), err)
	}

	s := &EndpointSource{
		url:        rawURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		retries:    3,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// URL returns the endpoint URL.
func (s *EndpointSource) URL() string { return s.url }

// Latest fetches and decodes the endpoint's metadata document.
func (s *EndpointSource) Latest(ctx context.Context) (*UpdateInfo, error) {
	var (
		body        []byte
		contentType string
	)
	err := withRetry(ctx, s.retries, s.backoff, func(int) error {
		var err error
		body, contentType, err = s.fetch(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	return DecodeUpdateInfo(body, s.isYAML(contentType))
}

func (s *EndpointSource) fetch(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, "", permanent(networkError("Failed to create request", err))
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9")
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", networkError("Failed to fetch update metadata", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := networkError(fmt.Sprintf("Update endpoint returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
		if retryableStatus(resp.StatusCode) {
			return nil, "", err
		}
		return nil, "", permanent(err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataSize+1))
	if err != nil {
		return nil, "", networkError("Failed to read update metadata", err)
	}
	if len(body) > maxMetadataSize {
		return nil, "", permanent(parseError("Update metadata too large", nil))
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (s *EndpointSource) isYAML(contentType string) bool {
	if strings.Contains(strings.ToLower(contentType), "yaml") {
		return true
	}
	path := s.url
	if u, err := url.Parse(s.url); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	return strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")
}
