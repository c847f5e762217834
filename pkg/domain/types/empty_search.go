package types

import "fmt"

// EmptySearchPolicy decides what a search with zero matches does
type EmptySearchPolicy string

const (
	// EmptySearchIgnore logs the empty result and leaves the dashboard as is
	EmptySearchIgnore EmptySearchPolicy = "ignore"
	// EmptySearchSurface reports the empty result to the caller as an error
	EmptySearchSurface EmptySearchPolicy = "surface"
)

// DefaultEmptySearchPolicy is used when nothing is configured
const DefaultEmptySearchPolicy = EmptySearchIgnore

// IsValid checks if the policy is valid
func (p EmptySearchPolicy) IsValid() bool {
	switch p {
	case EmptySearchIgnore, EmptySearchSurface:
		return true
	default:
		return false
	}
}

// String returns the string representation of the policy
func (p EmptySearchPolicy) String() string {
	return string(p)
}

// ParseEmptySearchPolicy parses a string into an EmptySearchPolicy
func ParseEmptySearchPolicy(s string) (EmptySearchPolicy, error) {
	p := EmptySearchPolicy(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid empty search policy: %s", s)
	}
	return p, nil
}
