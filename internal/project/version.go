package project

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultVersion is substituted for a version directive that cannot be parsed.
var DefaultVersion = Version{Major: 0, Minor: 1, Patch: 0}

// Version is a major.minor.patch triple, each component in 0..255.
type Version struct {
	Major, Minor, Patch uint8
}

// Encode packs the version the way the loader reads EXTENSIONVERSION.
func (v Version) Encode() int {
	return int(v.Major)<<16 | int(v.Minor)<<8 | int(v.Patch)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses "M.m.p". Every component must be a non-negative
// integer no greater than 255.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format %q: use major.minor.patch", s)
	}
	var out [3]uint8
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version format %q: %w", s, err)
		}
		if n < 0 || n > 255 {
			return Version{}, fmt.Errorf("invalid version format %q: component %d out of range", s, n)
		}
		out[i] = uint8(n)
	}
	return Version{Major: out[0], Minor: out[1], Patch: out[2]}, nil
}
