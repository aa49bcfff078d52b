// Package testutil provides helper functions for testing.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// TempDir creates a temporary directory and registers a cleanup function.
// The directory is automatically deleted when the test completes.
func TempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "igaupdate-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	t.Cleanup(func() {
		if err := os.RemoveAll(dir); err != nil {
			t.Errorf("failed to cleanup temp dir %s: %v", dir, err)
		}
	})

	return dir
}

// WriteFile writes content to name inside a temporary directory and
// returns the path.
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(TempDir(t), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteManifest writes a Package.appxmanifest declaring version and
// returns its path.
func WriteManifest(t *testing.T, version string) string {
	t.Helper()

	return WriteFile(t, "Package.appxmanifest", fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<Package xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10">
  <Identity Name="IntuneGroupAssignments" Publisher="CN=mchave3" Version=%q />
</Package>
`, version))
}

// MetadataServer serves doc as JSON at /latest.json. Other paths are 404.
func MetadataServer(t *testing.T, doc any) *httptest.Server {
	t.Helper()

	body, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to encode metadata: %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/latest.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}
