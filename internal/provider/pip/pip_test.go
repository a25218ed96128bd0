package pip

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

func newDryRunPip(t *testing.T, venv string) *Pip {
	t.Helper()
	return New(&provider.BaseProvider{DryRun: true, Quiet: true}, venv)
}

func TestNewWithVenvSetsSetupHookAndPATH(t *testing.T) {
	p := newDryRunPip(t, "/tmp/myvenv")
	if p.SetupHook == nil {
		t.Error("expected SetupHook to be set when Venv is configured")
	}
	if !strings.Contains(string(p.PATH), filepath.Join("/tmp/myvenv", "bin")) {
		t.Errorf("PATH = %q, want it to contain venv bin dir", p.PATH)
	}
}

func TestNewWithoutVenvHasNoSetupHook(t *testing.T) {
	p := newDryRunPip(t, "")
	if p.SetupHook != nil {
		t.Error("expected no SetupHook without a venv")
	}
}

func TestSynthesizePATHDetectsPythonNamedDirs(t *testing.T) {
	t.Setenv("PATH", "/opt/python3.11/bin:/usr/bin")
	t.Setenv("VIRTUAL_ENV", "")
	p := newDryRunPip(t, "")
	path := p.synthesizePATH()
	if !strings.Contains(string(path), "/opt/python3.11") {
		t.Errorf("PATH = %q, want it to contain /opt/python3.11", path)
	}
}

func TestSynthesizePATHExcludesActiveVirtualEnv(t *testing.T) {
	t.Setenv("PATH", "/opt/venv/bin:/usr/bin")
	t.Setenv("VIRTUAL_ENV", "/opt/venv")
	p := newDryRunPip(t, "")
	path := p.synthesizePATH()
	if strings.Contains(string(path), "/opt/venv/bin") {
		t.Errorf("PATH = %q, should exclude active VIRTUAL_ENV dir", path)
	}
}

func TestShowFieldReturnsFalseUnderDryRun(t *testing.T) {
	p := newDryRunPip(t, "")
	if _, ok := p.showField("wget", "Version:"); ok {
		t.Error("expected no field under dry-run (empty exec stdout)")
	}
}

func TestInstallUsesVenvPipWhenConfigured(t *testing.T) {
	p := newDryRunPip(t, "/tmp/myvenv-install-test")
	var diag bytes.Buffer
	p.Quiet = false
	p.Diagnostic = &diag
	if _, err := p.install(override.Context{BinaryName: "wget"}); err != nil {
		t.Fatalf("install error: %v", err)
	}
	if want := filepath.Join("/tmp/myvenv-install-test", "bin", "pip"); !strings.Contains(diag.String(), want) {
		t.Errorf("diagnostic %q does not mention %s", diag.String(), want)
	}
}
