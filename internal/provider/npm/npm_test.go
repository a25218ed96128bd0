package npm

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

func newDryRunNpm(t *testing.T, prefix string, global bool) *Npm {
	t.Helper()
	return New(&provider.BaseProvider{DryRun: true, Quiet: true}, prefix, global)
}

func TestNewWithPrefixSynthesizesScopedPATH(t *testing.T) {
	n := newDryRunNpm(t, "/srv/app", false)
	want := filepath.Join("/srv/app", "node_modules", ".bin")
	if string(n.PATH) != want {
		t.Errorf("PATH = %q, want %q", n.PATH, want)
	}
}

func TestScopeArgsPrefersPrefixOverGlobal(t *testing.T) {
	n := newDryRunNpm(t, "/srv/app", true)
	args := n.scopeArgs()
	if len(args) != 1 || args[0] != "--prefix=/srv/app" {
		t.Errorf("scopeArgs = %v, want [--prefix=/srv/app]", args)
	}
}

func TestScopeArgsGlobalWithoutPrefix(t *testing.T) {
	n := newDryRunNpm(t, "", true)
	args := n.scopeArgs()
	if len(args) != 1 || args[0] != "--global" {
		t.Errorf("scopeArgs = %v, want [--global]", args)
	}
}

func TestScopeArgsEmptyByDefault(t *testing.T) {
	n := newDryRunNpm(t, "", false)
	if args := n.scopeArgs(); len(args) != 0 {
		t.Errorf("scopeArgs = %v, want empty", args)
	}
}

func TestGetVersionReturnsZeroValueUnderDryRun(t *testing.T) {
	n := newDryRunNpm(t, "", false)
	v, err := n.getVersion(override.Context{BinaryName: "left-pad"})
	if err != nil {
		t.Fatalf("getVersion error: %v", err)
	}
	sv, ok := v.(interface{ String() string })
	if !ok {
		t.Fatalf("unexpected type %T", v)
	}
	if !strings.HasPrefix(sv.String(), "0") {
		t.Errorf("got %q, want zero-value version", sv.String())
	}
}

func TestGetAbspathReturnsEmptyUnderDryRun(t *testing.T) {
	n := newDryRunNpm(t, "", false)
	abspath, err := n.getAbspath(override.Context{BinaryName: "left-pad"})
	if err != nil {
		t.Fatalf("getAbspath error: %v", err)
	}
	if abspath != pathvalidate.HostBinPath("") {
		t.Errorf("abspath = %v, want empty", abspath)
	}
}

func TestInstallRunsUnderDryRunWithoutError(t *testing.T) {
	n := newDryRunNpm(t, "/srv/app", false)
	if _, err := n.install(override.Context{BinaryName: "left-pad"}); err != nil {
		t.Fatalf("install error: %v", err)
	}
}
