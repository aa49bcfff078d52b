// Package version models dotted numeric release versions and decides whether
// a published release is newer than the installed one.
package version

import (
	"fmt"
	"strconv"
	"strings"

	igaerrors "github.com/mchave3/Intune-Group-Assignments/internal/errors"
)

// Version is an immutable sequence of non-negative integer segments,
// e.g. "1.4.2" is [1 4 2].
type Version struct {
	segments []int
}

// Parse parses a dot-separated version such as "1.0.0.0".
// A single leading "v" or "V" is accepted and dropped.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw != "" && (raw[0] == 'v' || raw[0] == 'V') {
		raw = raw[1:]
	}
	if raw == "" {
		return Version{}, fmt.Errorf("%w: empty version", igaerrors.ErrInvalid)
	}

	parts := strings.Split(raw, ".")
	segments := make([]int, len(parts))
	for i, part := range parts {
		if part == "" || !isDigits(part) {
			return Version{}, fmt.Errorf("%w: version %q: segment %d is not a non-negative integer", igaerrors.ErrInvalid, s, i+1)
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Version{}, fmt.Errorf("%w: version %q: segment %d: %v", igaerrors.ErrInvalid, s, i+1, err)
		}
		segments[i] = n
	}
	return Version{segments: segments}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Segments returns a copy of the version segments.
func (v Version) Segments() []int {
	out := make([]int, len(v.segments))
	copy(out, v.segments)
	return out
}

// Len returns the number of segments.
func (v Version) Len() int { return len(v.segments) }

// IsZero reports whether v has no segments (the zero Version).
func (v Version) IsZero() bool { return len(v.segments) == 0 }

// String returns the canonical dotted form without a prefix.
func (v Version) String() string {
	parts := make([]string, len(v.segments))
	for i, s := range v.segments {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ".")
}

// Pad returns v right-padded with zero segments up to k segments.
// The first Len() segments are unchanged; k <= Len() returns v as is.
func (v Version) Pad(k int) Version {
	if k <= len(v.segments) {
		return v
	}
	segments := make([]int, k)
	copy(segments, v.segments)
	return Version{segments: segments}
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than
// other. The shorter version is padded with zeros first, so "2.1" == "2.1.0".
func (v Version) Compare(other Version) int {
	n := max(len(v.segments), len(other.segments))
	a, b := v.Pad(n), other.Pad(n)
	for i := 0; i < n; i++ {
		switch {
		case a.segments[i] < b.segments[i]:
			return -1
		case a.segments[i] > b.segments[i]:
			return 1
		}
	}
	return 0
}

// Equal reports whether v and other compare equal.
func (v Version) Equal(other Version) bool { return v.Compare(other) == 0 }

// LessThan reports whether v is older than other.
func (v Version) LessThan(other Version) bool { return v.Compare(other) < 0 }

// GreaterThan reports whether v is newer than other.
func (v Version) GreaterThan(other Version) bool { return v.Compare(other) > 0 }

// PadString appends ".0" segments to s until it has at least k segments.
// The original segments are kept byte-for-byte.
func PadString(s string, k int) string {
	n := len(strings.Split(s, "."))
	for ; n < k; n++ {
		s += ".0"
	}
	return s
}
