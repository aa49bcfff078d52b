package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

const validManifest = `<?xml version="1.0" encoding="utf-8"?>
<Package
  xmlns="http://schemas.microsoft.com/appx/manifest/foundation/windows10"
  xmlns:uap="http://schemas.microsoft.com/appx/manifest/uap/windows10"
  IgnorableNamespaces="uap">
  <Identity
    Name="IntuneGroupAssignments"
    Publisher="CN=mchave3"
    Version="1.4.2.0" />
  <Properties>
    <DisplayName>Intune Group Assignments</DisplayName>
  </Properties>
</Package>
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestReader_CurrentVersion(t *testing.T) {
	r := NewReader(writeManifest(t, validManifest))

	v, err := r.CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "1.4.2.0", v)

	id, err := r.Identity()
	require.NoError(t, err)
	assert.Equal(t, "IntuneGroupAssignments", id.Name)
	assert.Equal(t, "CN=mchave3", id.Publisher)
}

func TestReader_MissingFile(t *testing.T) {
	r := NewReader(filepath.Join(t.TempDir(), "missing.appxmanifest"))

	_, err := r.CurrentVersion()
	require.Error(t, err)
	assert.True(t, igaerrors.IsNotFound(err), "missing manifest should be ErrNotFound, got %v", err)
}

func TestReader_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"broken xml", `<Package><Identity Version="1.0"`},
		{"wrong root", `<Manifest><Identity Version="1.0.0.0"/></Manifest>`},
		{"no identity", `<Package><Properties/></Package>`},
		{"no version", `<Package><Identity Name="x"/></Package>`},
		{"blank version", `<Package><Identity Version="  "/></Package>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(writeManifest(t, tt.content)).CurrentVersion()
			require.Error(t, err)
			assert.True(t, igaerrors.IsInvalid(err), "want ErrInvalid, got %v", err)
		})
	}
}

func TestParseIdentity_NoNamespace(t *testing.T) {
	id, err := ParseIdentity(strings.NewReader(`<Package><Identity Version="2.0.0.0"/></Package>`))
	require.NoError(t, err)
	assert.Equal(t, "2.0.0.0", id.Version)
}

func TestNewReader_DefaultPath(t *testing.T) {
	r := NewReader("")
	assert.Equal(t, DefaultFileName, filepath.Base(r.Path))
}

func TestStatic(t *testing.T) {
	v, err := Static("3.1.0").CurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, "3.1.0", v)

	_, err = Static("").CurrentVersion()
	assert.True(t, igaerrors.IsNotFound(err))
}
