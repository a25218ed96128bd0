// Package semver parses version triples out of arbitrary CLI banner text.
//
// The parser is intentionally looser than strict semantic versioning: a
// `--version` banner like "Google Chrome 124.0.6367.208+beta_234." or
// "yt-dlp 2024.05.09" must still yield a usable (major, minor, patch)
// triple. Parse is total: it never errors, it only reports presence.
package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// SemVer is an ordered (major, minor, patch) triple plus the source line it
// was extracted from.
type SemVer struct {
	Major, Minor, Patch int
	FullText            string
}

// Parse extracts a SemVer from s following the algorithm:
//
//  1. coerce to string, keep only the first newline-delimited line as FullText
//  2. tokenize that line on whitespace, take the first five tokens
//  3. for each token: lowercase, strip a leading "v", split on any non-digit
//     run, keep the digit-only chunks, truncate to the first three
//  4. keep the first token with at least one chunk after truncation, padding
//     any missing trailing chunks with 0
//
// Parse never panics or returns an error; ok is false when no token in the
// first line yields a parseable version.
func Parse(input string) (v SemVer, ok bool) {
	if input == "" {
		return SemVer{}, false
	}

	firstLine := input
	if idx := strings.IndexByte(input, '\n'); idx >= 0 {
		firstLine = input[:idx]
	}

	fields := strings.Fields(firstLine)
	if len(fields) > 5 {
		fields = fields[:5]
	}

	for _, tok := range fields {
		chunks := digitChunks(tok)
		if len(chunks) > 3 {
			chunks = chunks[:3]
		}
		if len(chunks) == 0 {
			continue
		}
		major, _ := strconv.Atoi(chunks[0])
		minor, patch := 0, 0
		if len(chunks) > 1 {
			minor, _ = strconv.Atoi(chunks[1])
		}
		if len(chunks) > 2 {
			patch, _ = strconv.Atoi(chunks[2])
		}
		return SemVer{Major: major, Minor: minor, Patch: patch, FullText: firstLine}, true
	}

	return SemVer{}, false
}

// digitChunks lowercases tok, strips a leading "v", splits on any run of
// non-digit characters, and returns the resulting digit-only chunks.
func digitChunks(tok string) []string {
	tok = strings.ToLower(tok)
	tok = strings.TrimPrefix(tok, "v")

	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range tok {
		if r >= '0' && r <= '9' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return chunks
}

// String renders the canonical "M.m.p" form used by the serialization
// contract.
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater than b,
// using lexicographic order on (Major, Minor, Patch).
func Compare(a, b SemVer) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether a orders strictly before b.
func Less(a, b SemVer) bool {
	return Compare(a, b) < 0
}

// Unknown is the sentinel version used for an install/load that is known to
// have succeeded but whose concrete version could not be determined (a
// dry-run install). It must never be written to a Provider
// cache (spec: "unknown" sentinels are never cached).
var Unknown = SemVer{Major: 999, Minor: 999, Patch: 999}

// IsUnknown reports whether v is the Unknown sentinel.
func (v SemVer) IsUnknown() bool {
	return v == Unknown
}
