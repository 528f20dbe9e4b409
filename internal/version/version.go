// Package version orders the dotted product versions reported by PI System components,
// e.g. "2.10.9.593" or "01.07.19246.2".
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed dotted version. Trailing components that are absent compare as zero.
type Version struct {
	parts []uint64
	raw   string
}

// Parse parses a dotted version. Every component must be a non-negative integer; leading
// zeros are allowed.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	fields := strings.Split(raw, ".")
	parts := make([]uint64, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: component %d: %w", s, i+1, err)
		}
		parts[i] = n
	}
	return Version{parts: parts, raw: raw}, nil
}

// MustParse is like Parse but panics on error. Intended for constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as it was parsed.
func (v Version) String() string {
	return v.raw
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool {
	return len(v.parts) == 0
}

// Compare returns -1, 0 or +1 when v is less than, equal to, or greater than o.
func (v Version) Compare(o Version) int {
	n := len(v.parts)
	if len(o.parts) > n {
		n = len(o.parts)
	}
	for i := 0; i < n; i++ {
		a, b := component(v.parts, i), component(o.parts, i)
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// AtLeast reports whether v is at or above minimum.
func (v Version) AtLeast(minimum Version) bool {
	return v.Compare(minimum) >= 0
}

func component(parts []uint64, i int) uint64 {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

// AtLeast parses both versions and reports whether actual meets minimum.
func AtLeast(actual, minimum string) (bool, error) {
	a, err := Parse(actual)
	if err != nil {
		return false, err
	}
	m, err := Parse(minimum)
	if err != nil {
		return false, err
	}
	return a.AtLeast(m), nil
}
