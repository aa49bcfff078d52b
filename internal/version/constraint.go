package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// Constraint restricts which published versions may be offered, for example
// ">= 2.0, < 3" to stay on one major line. The zero value allows everything.
type Constraint struct {
	raw string
	c   *semver.Constraints
}

// ParseConstraint parses a semver range expression. An empty expression
// yields a Constraint that allows every version.
func ParseConstraint(expr string) (Constraint, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Constraint{}, nil
	}
	c, err := semver.NewConstraint(expr)
	if err != nil {
		return Constraint{}, fmt.Errorf("%w: constraint %q: %v", igaerrors.ErrInvalid, expr, err)
	}
	return Constraint{raw: expr, c: c}, nil
}

// String returns the original expression.
func (c Constraint) String() string { return c.raw }

// IsEmpty reports whether the constraint allows every version.
func (c Constraint) IsEmpty() bool { return c.c == nil }

// Allows reports whether v satisfies the constraint. semver ranges only
// understand three segments, so longer versions are truncated for the check;
// "2.1.0.7" is tested as "2.1.0".
func (c Constraint) Allows(v Version) bool {
	if c.c == nil {
		return true
	}
	segments := v.Pad(3).Segments()[:3]
	sv := semver.New(uint64(segments[0]), uint64(segments[1]), uint64(segments[2]), "", "")
	return c.c.Check(sv)
}
