package version

import (
	"fmt"
	"strings"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// Semantics selects how two version strings are compared.
type Semantics string

const (
	// SemanticsNumeric parses both versions, pads the shorter with zero
	// segments and reports an update only when latest > current.
	SemanticsNumeric Semantics = "numeric"

	// SemanticsLiteral pads the shorter string with ".0" segments and
	// reports an update when the strings differ. An older latest version
	// is therefore reported as an update.
	SemanticsLiteral Semantics = "literal"
)

// ParseSemantics maps a configuration value to a Semantics.
// An empty string selects SemanticsNumeric.
func ParseSemantics(s string) (Semantics, error) {
	switch Semantics(strings.ToLower(strings.TrimSpace(s))) {
	case "", SemanticsNumeric:
		return SemanticsNumeric, nil
	case SemanticsLiteral:
		return SemanticsLiteral, nil
	default:
		return "", fmt.Errorf("%w: comparison must be one of: numeric, literal; got %q", igaerrors.ErrInvalid, s)
	}
}

// Comparator decides whether a latest version is an available update.
type Comparator struct {
	Semantics Semantics
}

// IsNewVersionAvailable reports whether latest should be offered as an
// update over current.
func (c Comparator) IsNewVersionAvailable(current, latest string) (bool, error) {
	if c.Semantics == SemanticsLiteral {
		return literalNewer(current, latest)
	}

	cur, err := Parse(current)
	if err != nil {
		return false, fmt.Errorf("current version: %w", err)
	}
	lat, err := Parse(latest)
	if err != nil {
		return false, fmt.Errorf("latest version: %w", err)
	}
	return lat.GreaterThan(cur), nil
}

func literalNewer(current, latest string) (bool, error) {
	if current == "" || latest == "" {
		return false, fmt.Errorf("%w: empty version", igaerrors.ErrInvalid)
	}
	k := max(len(strings.Split(current, ".")), len(strings.Split(latest, ".")))
	return PadString(latest, k) != PadString(current, k), nil
}

// IsNewVersionAvailable reports whether latest is numerically newer than
// current. Unparseable input is never reported as an update.
func IsNewVersionAvailable(current, latest string) bool {
	ok, err := Comparator{Semantics: SemanticsNumeric}.IsNewVersionAvailable(current, latest)
	return err == nil && ok
}
