package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates a package name for safety.
// It rejects names that could be used for path traversal or injection attacks,
// which matters because target names end up in report filenames.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// debianNameRegex matches Debian policy package names: lowercase letters,
// digits, '+', '-' and '.', at least two characters, starting alphanumeric.
var debianNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)

// ValidateDebianName validates a source or binary package name per Debian policy.
func ValidateDebianName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !debianNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Debian package name: %q", name)
	}

	return nil
}

// NormalizeTargets trims a list of target package names, drops blanks and
// duplicates while keeping first-seen order, and applies the generic
// [ValidatePackageName] checks. Names outside Debian policy are accepted:
// an unknown name resolves to an empty result. An empty result is rejected.
func NormalizeTargets(targets []string) ([]string, error) {
	seen := make(map[string]bool, len(targets))
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if err := ValidatePackageName(t); err != nil {
			return nil, err
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, New(ErrCodeInvalidInput, "no valid target package names given")
	}
	return out, nil
}

// ValidateDebianNames applies [ValidateDebianName] to each name. Interactive
// front ends use it to catch typos before resolving.
func ValidateDebianNames(names []string) error {
	for _, n := range names {
		if err := ValidateDebianName(n); err != nil {
			return err
		}
	}
	return nil
}

// SplitTargets splits a comma- or whitespace-separated target list as typed
// at a prompt ("libssl3, zlib1g").
func SplitTargets(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
