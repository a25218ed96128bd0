package env

import (
	"errors"
	"runtime"
	"testing"

	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

func TestInstallIsAlwaysANoOp(t *testing.T) {
	e := New(nil)
	bin, err := e.Install("anything")
	if bin != nil {
		t.Errorf("got %v, want nil ShallowBinary", bin)
	}
	if !errors.Is(err, provider.ErrNotInstallable) {
		t.Errorf("got %v, want ErrNotInstallable", err)
	}
}

func TestLoadResolvesHostGoToolchainWithoutExec(t *testing.T) {
	e := New(nil)
	bin, err := e.Load("go")
	if err != nil {
		t.Fatalf("Load(go) error: %v", err)
	}
	if bin == nil {
		t.Fatal("Load(go) returned nil, want the host toolchain")
	}
	if bin.LoadedBinproviderName() != e.Name() {
		t.Errorf("got provider %q, want %q", bin.LoadedBinproviderName(), e.Name())
	}
	if v, ok := bin.LoadedVersion(); !ok || v.String() == "" {
		t.Errorf("got no version, want the running toolchain's version %q", runtime.Version())
	}
}

func TestLoadOrInstallDispatchesThroughSelfForGo(t *testing.T) {
	e := New(nil)
	bin, err := e.LoadOrInstall("go")
	if err != nil {
		t.Fatalf("LoadOrInstall(go) error: %v", err)
	}
	if bin == nil {
		t.Fatal("LoadOrInstall(go) returned nil; Env.Load override was not reached through BaseProvider.LoadOrInstall")
	}
}

func TestLoadOrInstallOnMissingBinaryFailsRatherThanInstalling(t *testing.T) {
	e := New(&provider.BaseProvider{PATH: pathvalidate.PATH("")})
	bin, err := e.LoadOrInstall("definitely-not-a-real-binary-name")
	if bin != nil {
		t.Errorf("got %v, want nil", bin)
	}
	if !errors.Is(err, provider.ErrNotInstallable) {
		t.Errorf("got %v, want ErrNotInstallable (env never installs)", err)
	}
}

func TestLoadDelegatesToBaseProviderForNonGoNames(t *testing.T) {
	e := New(nil)
	bin, err := e.Load("definitely-not-a-real-binary-name")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if bin != nil {
		t.Errorf("got %v, want nil for a name absent from PATH", bin)
	}
}
