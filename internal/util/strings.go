// Package util provides common utility functions and constants used across
// the ssm-connect application. This package is intentionally kept
// dependency-free (no imports from other internal/* packages) to serve as a
// shared foundation without introducing circular dependencies.
package util

import "strings"

// DefaultString returns the fallback value if v is empty or consists entirely
// of whitespace; otherwise it returns v unchanged.
//
// This is a general-purpose "coalesce" helper used when a value might be
// missing or blank and a sensible default should be substituted. It is how
// the connector collapses the flag > target override > config default
// precedence chain into a single profile/region pair.
//
// Examples:
//
//	DefaultString("prod", "default")  → "prod"     // non-empty → kept
//	DefaultString("",     "default")  → "default"  // empty → fallback
//	DefaultString("  ",   "default")  → "default"  // whitespace-only → fallback
func DefaultString(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// EmptyDash returns "-" if s is empty or consists entirely of whitespace;
// otherwise it returns s unchanged.
//
// Used by the CLI and the targets picker to display a visible placeholder
// when an optional field (such as a target's region override) has no value.
// Showing "-" instead of a blank space keeps table columns readable.
func EmptyDash(s string) string {
	return DefaultString(s, "-")
}

// IsInstanceID reports whether s looks like a raw EC2 instance ID
// (i-xxxxxxxxxxxxxxxxx). Target lookups use this to decide between resolving
// a configured target name and passing the value through verbatim; whether
// the ID actually names an instance is the provider's to judge.
func IsInstanceID(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "i-") || len(s) < 10 {
		return false
	}
	for _, r := range s[2:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
