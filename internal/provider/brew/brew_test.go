package brew

import (
	"testing"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

func newDryRunBrew(t *testing.T) *Brew {
	t.Helper()
	b := New(&provider.BaseProvider{DryRun: true, Quiet: true})
	return b
}

func TestNewSetsProviderNameAndInstallerBin(t *testing.T) {
	b := newDryRunBrew(t)
	if b.Name() != "brew" {
		t.Errorf("Name() = %q, want brew", b.Name())
	}
	if b.InstallerBin != "brew" {
		t.Errorf("InstallerBin = %q, want brew", b.InstallerBin)
	}
}

func TestStripNewline(t *testing.T) {
	cases := map[string]string{
		"/opt/homebrew\n":   "/opt/homebrew",
		"/opt/homebrew\r\n": "/opt/homebrew",
		"/opt/homebrew":     "/opt/homebrew",
		"":                  "",
	}
	for in, want := range cases {
		if got := stripNewline(in); got != want {
			t.Errorf("stripNewline(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCellarVersionRegexExtractsVersionSegment(t *testing.T) {
	m := cellarVersionRe.FindStringSubmatch("/opt/homebrew/Cellar/wget/1.21.4/bin/wget")
	if m == nil || m[1] != "1.21.4" {
		t.Fatalf("got %v, want version 1.21.4", m)
	}
}

func TestCellarVersionRegexNoMatchOutsideCellar(t *testing.T) {
	if m := cellarVersionRe.FindStringSubmatch("/usr/local/bin/wget"); m != nil {
		t.Errorf("expected no match, got %v", m)
	}
}

func TestGetVersionUsesCellarAbspathWithoutExec(t *testing.T) {
	b := newDryRunBrew(t)
	v, err := b.getVersion(override.Context{
		BinaryName: "wget",
		Abspath:    "/opt/homebrew/Cellar/wget/1.21.4/bin/wget",
	})
	if err != nil {
		t.Fatalf("getVersion error: %v", err)
	}
	sv, ok := v.(interface{ String() string })
	if !ok {
		t.Fatalf("unexpected version type %T", v)
	}
	if sv.String() != "1.21.4" {
		t.Errorf("got %q, want 1.21.4", sv.String())
	}
}

func TestInstallFallsBackToRawBrewInstallUnderDryRun(t *testing.T) {
	// Without pyinfra/ansible on PATH, install falls through to a dry-run
	// "brew install" exec, which must not error.
	b := newDryRunBrew(t)
	if _, err := b.install(override.Context{BinaryName: "wget"}); err != nil {
		t.Fatalf("install error: %v", err)
	}
}

func TestCandidatePrefixesNonEmpty(t *testing.T) {
	if len(candidatePrefixes()) == 0 {
		t.Fatal("expected at least one candidate prefix")
	}
}
