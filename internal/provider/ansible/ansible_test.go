package ansible

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

func TestNewDefaultsInstallerBin(t *testing.T) {
	a := New(&provider.BaseProvider{DryRun: true, Quiet: true})
	if a.InstallerBin != "ansible-playbook" {
		t.Errorf("InstallerBin = %q, want ansible-playbook", a.InstallerBin)
	}
}

func TestBuildPlaybookSelectsModuleByOS(t *testing.T) {
	plays := buildPlaybook([]string{"wget"})
	if len(plays) != 1 || len(plays[0].Tasks) != 1 {
		t.Fatalf("unexpected playbook shape: %+v", plays)
	}
	task := plays[0].Tasks[0]
	if runtime.GOOS == "darwin" {
		if task.HomebrewModule == nil {
			t.Error("expected community.general.homebrew module on darwin")
		}
	} else {
		if task.PackageModule == nil {
			t.Error("expected ansible.builtin.package module on non-darwin")
		}
	}
}

func TestInstallRunsPlaybookUnderDryRunWithoutError(t *testing.T) {
	a := New(&provider.BaseProvider{DryRun: true, Quiet: true})
	if _, err := a.install(override.Context{BinaryName: "wget"}); err != nil {
		t.Fatalf("install error: %v", err)
	}
}

func TestRunPlaybookCleansUpTempFile(t *testing.T) {
	pattern := filepath.Join(os.TempDir(), "binprovider-ansible-*.yml")
	before, _ := filepath.Glob(pattern)
	base := &provider.BaseProvider{DryRun: true, Quiet: true}
	base.Init()
	if err := RunPlaybook(base, []pathvalidate.BinaryName{"wget"}); err != nil {
		t.Fatalf("RunPlaybook error: %v", err)
	}
	after, _ := filepath.Glob(pattern)
	if len(after) > len(before) {
		t.Errorf("temp playbook left behind: %v", after)
	}
}
