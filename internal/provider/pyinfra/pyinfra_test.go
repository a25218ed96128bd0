package pyinfra

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
	pi := New(&provider.BaseProvider{DryRun: true, Quiet: true})
	if pi.InstallerBin != "pyinfra" {
		t.Errorf("InstallerBin = %q, want pyinfra", pi.InstallerBin)
	}
}

func TestBuildDeploySelectsOperationByOS(t *testing.T) {
	d := buildDeploy([]string{"wget"})
	if d.Host != "@local" || len(d.Ops) != 1 {
		t.Fatalf("unexpected deploy shape: %+v", d)
	}
	o := d.Ops[0]
	if runtime.GOOS == "darwin" {
		if len(o.BrewPackages) == 0 {
			t.Error("expected operations.brew.packages on darwin")
		}
	} else {
		if len(o.ServerPackages) == 0 {
			t.Error("expected operations.server.packages on non-darwin")
		}
	}
}

func TestInstallRunsDeployUnderDryRunWithoutError(t *testing.T) {
	pi := New(&provider.BaseProvider{DryRun: true, Quiet: true})
	if _, err := pi.install(override.Context{BinaryName: "wget"}); err != nil {
		t.Fatalf("install error: %v", err)
	}
}

func TestRunDeployCleansUpTempFile(t *testing.T) {
	pattern := filepath.Join(os.TempDir(), "binprovider-pyinfra-*.yml")
	before, _ := filepath.Glob(pattern)
	base := &provider.BaseProvider{DryRun: true, Quiet: true}
	base.Init()
	if err := RunDeploy(base, []pathvalidate.BinaryName{"wget"}); err != nil {
		t.Fatalf("RunDeploy error: %v", err)
	}
	after, _ := filepath.Glob(pattern)
	if len(after) > len(before) {
		t.Errorf("temp deploy file left behind: %v", after)
	}
}
