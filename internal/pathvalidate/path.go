package pathvalidate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PATH is a colon-joined list of absolute directory paths.
type PATH string

// ValidatePath requires that every element of s is a syntactic absolute
// path. It does not require the directories to exist.
func ValidatePath(s string) (PATH, error) {
	for _, dir := range splitPath(s) {
		if dir == "" {
			continue
		}
		if !filepath.IsAbs(dir) {
			return "", fmt.Errorf("pathvalidate: PATH element %q is not absolute", dir)
		}
	}
	return PATH(s), nil
}

// Dirs returns the non-empty directory elements of p, in order.
func (p PATH) Dirs() []string {
	return splitPath(string(p))
}

func splitPath(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Join builds a PATH from directory elements, skipping empty or duplicate
// entries while preserving first-seen order.
func Join(dirs ...string) PATH {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	return PATH(strings.Join(out, ":"))
}

// HostExistsPath is an absolute path known to exist and be readable.
type HostExistsPath string

// HostExecutablePath is a HostExistsPath that additionally has the execute
// bit set.
type HostExecutablePath string

// HostBinPath is the result of a PATH-relative binary resolution: an
// existing, readable, absolute path.
type HostBinPath string

// HostExists validates that s is an absolute, existing, readable path.
func HostExists(s string) (HostExistsPath, error) {
	if !filepath.IsAbs(s) {
		return "", fmt.Errorf("pathvalidate: %q is not an absolute path", s)
	}
	info, err := os.Stat(s)
	if err != nil {
		return "", fmt.Errorf("pathvalidate: %q does not exist: %w", s, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("pathvalidate: %q is a directory", s)
	}
	f, err := os.Open(s)
	if err != nil {
		return "", fmt.Errorf("pathvalidate: %q is not readable: %w", s, err)
	}
	_ = f.Close()
	return HostExistsPath(s), nil
}

// HostExecutable validates s per HostExists and additionally requires the
// execute bit to be set for someone (owner, group, or other).
func HostExecutable(s string) (HostExecutablePath, error) {
	existing, err := HostExists(s)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(string(existing))
	if err != nil {
		return "", err
	}
	if info.Mode().Perm()&0111 == 0 {
		return "", fmt.Errorf("pathvalidate: %q is not executable", s)
	}
	return HostExecutablePath(existing), nil
}

// scriptExtensions are the extensions IsScript recognizes.
var scriptExtensions = map[string]bool{".py": true, ".js": true, ".sh": true}

// IsScript reports whether path has a recognized script extension.
func IsScript(path string) bool {
	return scriptExtensions[strings.ToLower(filepath.Ext(path))]
}

// BinAbspath resolves nameOrPath to a HostBinPath using p, per spec §4.2:
//   - if nameOrPath is already absolute, validate and return it directly
//   - otherwise scan p's directories for an executable of that name; if
//     that fails, scan manually for a readable (possibly non-executable)
//     file, to cover scripts invoked via an interpreter shebang
//
// Results whose parent directory is not a PATH element are rejected.
func BinAbspath(nameOrPath string, p PATH) (HostBinPath, bool) {
	matches := BinAbspaths(nameOrPath, p)
	if len(matches) == 0 {
		return "", false
	}
	for _, m := range matches {
		if _, err := HostExecutable(string(m)); err == nil {
			return m, true
		}
	}
	return matches[0], true
}

// BinAbspaths returns every matching path for nameOrPath across all PATH
// segments, in traversal order, deduplicated.
func BinAbspaths(nameOrPath string, p PATH) []HostBinPath {
	if filepath.IsAbs(nameOrPath) {
		if existing, err := HostExists(nameOrPath); err == nil {
			dir := filepath.Dir(string(existing))
			if inPath(dir, p) {
				return []HostBinPath{HostBinPath(existing)}
			}
		}
		return nil
	}

	var out []HostBinPath
	seen := make(map[string]bool)
	for _, dir := range p.Dirs() {
		candidate := filepath.Join(dir, nameOrPath)
		if seen[candidate] {
			continue
		}
		if existing, err := HostExists(candidate); err == nil {
			seen[candidate] = true
			out = append(out, HostBinPath(existing))
		}
	}
	return out
}

func inPath(dir string, p PATH) bool {
	for _, d := range p.Dirs() {
		if d == dir {
			return true
		}
	}
	return false
}
