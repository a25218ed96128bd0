package pathvalidate

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPathDiscoveryCompleteness(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	mustWriteExec(t, filepath.Join(dir1, "foo"))
	mustWriteExec(t, filepath.Join(dir2, "bar"))

	p := Join(dir1, dir2)

	for _, name := range []string{"foo", "bar"} {
		matches := BinAbspaths(name, p)
		if len(matches) != 1 {
			t.Errorf("BinAbspaths(%q) = %v, want exactly one match", name, matches)
		}
	}
}

func TestBinAbspathRejectsOutsidePath(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	target := filepath.Join(other, "tool")
	mustWriteExec(t, target)

	if _, ok := BinAbspath(target, Join(dir)); ok {
		t.Errorf("expected rejection: %s parent not in PATH", target)
	}
}

func TestIsScript(t *testing.T) {
	for path, want := range map[string]bool{
		"/usr/bin/foo.py": true,
		"/usr/bin/foo.js": true,
		"/usr/bin/foo.sh": true,
		"/usr/bin/foo":    false,
	} {
		if got := IsScript(path); got != want {
			t.Errorf("IsScript(%q) = %v, want %v", path, got, want)
		}
	}
}

func mustWriteExec(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
