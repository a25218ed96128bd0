package brew

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/autonomous-bits/binprovider/internal/provider"
)

// candidatePrefixes are checked in order without shelling out, per
// spec.md §4.5: Apple-silicon macOS, Intel macOS, then Linuxbrew.
func candidatePrefixes() []string {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return []string{"/opt/homebrew", "/usr/local"}
		}
		return []string{"/usr/local", "/opt/homebrew"}
	default:
		return []string{"/home/linuxbrew/.linuxbrew"}
	}
}

// detectPrefix returns the first candidate prefix whose bin directory
// exists, falling back to querying "brew --prefix" through p.
func detectPrefix(p *provider.BaseProvider) string {
	for _, prefix := range candidatePrefixes() {
		if info, err := os.Stat(filepath.Join(prefix, "bin")); err == nil && info.IsDir() {
			return prefix
		}
	}
	res, err := p.Exec("brew", []string{"--prefix"}, "")
	if err != nil {
		return ""
	}
	out := stripNewline(res.Stdout)
	if out == "" {
		return ""
	}
	return out
}

func stripNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
