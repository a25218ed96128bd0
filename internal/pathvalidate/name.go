// Package pathvalidate implements the binary-name, PATH, and filesystem
// validators shared by every provider: BinaryName normalization, PATH
// parsing, and the HostBinPath/HostExistsPath/HostExecutablePath ladder.
package pathvalidate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// BinaryName is a canonical, validated package-ish name: 1-63 chars,
// starting with a letter or "@", containing only [A-Za-z0-9_.\-@/ ].
type BinaryName string

var nameRe = regexp.MustCompile(`^[@A-Za-z][A-Za-z0-9_.\-@/ ]{0,62}$`)

// versionSuffixRe matches a trailing version/constraint suffix: one of the
// operators "==", ">=", "<=", "^", ">", "<", "@" followed by a version-like
// value, anchored at the end of the string.
var versionSuffixRe = regexp.MustCompile(`(==|>=|<=|\^|>|<|@)([0-9][A-Za-z0-9_.\-+]*)$`)

// BinName normalizes and validates s per the BinaryName grammar:
//   - a path-like input (contains "/") is reduced to its basename, unless it
//     is a scoped package name ("@scope/pkg")
//   - version suffixes ("@x", "==x", "^x", ">x", "<x") are stripped
//   - the remainder must match the BinaryName grammar
func BinName(s string) (BinaryName, error) {
	if s == "" {
		return "", fmt.Errorf("pathvalidate: empty binary name")
	}

	isScoped := strings.HasPrefix(s, "@")

	candidate := s
	if strings.Contains(s, "/") && !isScoped {
		candidate = filepath.Base(s)
	}

	candidate = stripVersionSuffix(candidate, isScoped)

	if len(candidate) == 0 || len(candidate) > 63 {
		return "", fmt.Errorf("pathvalidate: binary name %q must be 1-63 chars after normalization", s)
	}
	if !nameRe.MatchString(candidate) {
		return "", fmt.Errorf("pathvalidate: binary name %q is not a valid BinaryName", s)
	}
	return BinaryName(candidate), nil
}

// stripVersionSuffix removes a trailing version/constraint suffix such as
// "@x", "==x", "^x", ">x", "<x". For scoped names ("@scope/pkg@version") the
// scope-introducing leading "@" is never considered part of the suffix;
// instead everything from the first "@" after it is cut unconditionally,
// matching npm's own scoped-package version syntax where a second "@" can
// only ever introduce a version.
func stripVersionSuffix(s string, isScoped bool) string {
	if isScoped {
		rest := s[1:]
		if idx := strings.IndexByte(rest, '@'); idx >= 0 {
			return s[:1+idx]
		}
		return s
	}

	loc := versionSuffixRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	opStart := loc[2]
	suffix := s[loc[4]:loc[5]]
	if !isVersionLike(suffix) {
		return s
	}
	return s[:opStart]
}

// isVersionLike reports whether s looks like a version or constraint value,
// using Masterminds/semver's constraint grammar so "^2.2.3", ">1.0", "1.2.3"
// are all recognized without re-implementing operator parsing.
func isVersionLike(s string) bool {
	if s == "" {
		return false
	}
	if _, err := semver.NewConstraint(s); err == nil {
		return true
	}
	if _, err := semver.NewVersion(s); err == nil {
		return true
	}
	// Masterminds/semver rejects some version-ish strings outright (e.g.
	// leading zeros in a component, as in "2024.05.09"); fall back to a
	// loose digits/dots/dashes check so those still strip as a version.
	for _, r := range s {
		if !(r >= '0' && r <= '9' || r == '.' || r == '-' || r == '+') {
			return false
		}
	}
	return true
}
