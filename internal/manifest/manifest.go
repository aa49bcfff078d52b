// Package manifest reads the installed application version from its
// packaging manifest.
package manifest

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// DefaultFileName is the MSIX/AppX manifest shipped next to the application.
const DefaultFileName = "Package.appxmanifest"

// Identity is the /Package/Identity node of an AppX manifest.
type Identity struct {
	Name      string `xml:"Name,attr"`
	Publisher string `xml:"Publisher,attr"`
	Version   string `xml:"Version,attr"`
}

type packageDoc struct {
	XMLName  xml.Name  `xml:"Package"`
	Identity *Identity `xml:"Identity"`
}

// Reader reads the Identity version from a manifest file.
type Reader struct {
	Path string
}

// NewReader returns a Reader for path. An empty path selects
// Package.appxmanifest in the current working directory.
func NewReader(path string) *Reader {
	if path == "" {
		if wd, err := os.Getwd(); err == nil {
			path = filepath.Join(wd, DefaultFileName)
		} else {
			path = DefaultFileName
		}
	}
	return &Reader{Path: path}
}

// CurrentVersion returns the Version attribute of the Identity node.
// A missing file yields ErrNotFound; malformed XML or a missing Identity
// node or Version attribute yields ErrInvalid.
func (r *Reader) CurrentVersion() (string, error) {
	id, err := r.Identity()
	if err != nil {
		return "", err
	}
	return id.Version, nil
}

// Identity parses the manifest and returns its Identity node.
func (r *Reader) Identity() (*Identity, error) {
	// #nosec G304 -- manifest path comes from configuration
	f, err := os.Open(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest %s: %w", r.Path, igaerrors.Classify(igaerrors.ErrNotFound, err))
		}
		return nil, fmt.Errorf("manifest %s: %w", r.Path, igaerrors.Classify(igaerrors.ErrIO, err))
	}
	defer func() { _ = f.Close() }()

	id, err := ParseIdentity(f)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", r.Path, err)
	}
	return id, nil
}

// ParseIdentity decodes an AppX manifest document and returns its Identity.
func ParseIdentity(r io.Reader) (*Identity, error) {
	var doc packageDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, igaerrors.Classify(igaerrors.ErrInvalid, err)
	}
	if doc.Identity == nil {
		return nil, fmt.Errorf("%w: no /Package/Identity node", igaerrors.ErrInvalid)
	}
	doc.Identity.Version = strings.TrimSpace(doc.Identity.Version)
	if doc.Identity.Version == "" {
		return nil, fmt.Errorf("%w: Identity has no Version attribute", igaerrors.ErrInvalid)
	}
	return doc.Identity, nil
}

// Static reports a fixed version, for builds without a manifest or an
// explicit --current override.
type Static string

// CurrentVersion returns the fixed version.
func (s Static) CurrentVersion() (string, error) {
	if s == "" {
		return "", fmt.Errorf("%w: no current version", igaerrors.ErrNotFound)
	}
	return string(s), nil
}
