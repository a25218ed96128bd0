package binary

import (
	"errors"
	"os"
	"testing"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// stubProvider is a minimal provider.Provider for exercising Binary's
// fallback and error-aggregation behavior without any real subprocess.
type stubProvider struct {
	name       string
	path       pathvalidate.PATH
	loadResult *provider.ShallowBinary
	loadErr    error
	installErr error
}

func (s *stubProvider) Name() string                     { return s.name }
func (s *stubProvider) ProviderPath() pathvalidate.PATH { return s.path }
func (s *stubProvider) GetAbspath(pathvalidate.BinaryName, bool) (pathvalidate.HostBinPath, bool, error) {
	return "", false, nil
}
func (s *stubProvider) GetVersion(pathvalidate.BinaryName, pathvalidate.HostBinPath, bool) (semver.SemVer, bool, error) {
	return semver.SemVer{}, false, nil
}
func (s *stubProvider) GetSHA256(pathvalidate.BinaryName, pathvalidate.HostBinPath, bool) (string, error) {
	return "", nil
}
func (s *stubProvider) GetPackages(name pathvalidate.BinaryName) ([]pathvalidate.BinaryName, error) {
	return []pathvalidate.BinaryName{name}, nil
}
func (s *stubProvider) Install(pathvalidate.BinaryName) (*provider.ShallowBinary, error) {
	if s.installErr != nil {
		return nil, s.installErr
	}
	return s.loadResult, nil
}
func (s *stubProvider) Load(pathvalidate.BinaryName) (*provider.ShallowBinary, error) {
	return s.loadResult, s.loadErr
}
func (s *stubProvider) LoadOrInstall(name pathvalidate.BinaryName) (*provider.ShallowBinary, error) {
	bin, err := s.Load(name)
	if err != nil || bin != nil {
		return bin, err
	}
	return s.Install(name)
}
func (s *stubProvider) GetHandlersFor(pathvalidate.BinaryName) map[override.HandlerType]override.Handler {
	return nil
}
func (s *stubProvider) WithOverrides(map[string]map[override.HandlerType]override.Handler) provider.Provider {
	return s
}

func mustShallowBinary(t *testing.T, providerName string) *provider.ShallowBinary {
	t.Helper()
	bin, err := provider.NewShallowBinary(provider.ShallowBinaryParams{
		Name:                  "wget",
		BinprovidersSupported: []string{providerName},
		LoadedBinproviderName: providerName,
		LoadedAbspath:         "/usr/bin/wget",
		HasVersion:            true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestBinaryFallsBackToSecondProvider(t *testing.T) {
	p1 := &stubProvider{name: "p1"}
	p2 := &stubProvider{name: "p2", loadResult: mustShallowBinary(t, "p2")}

	b := New("wget", "", []provider.Provider{p1, p2}, nil)
	got, err := b.Load("", 0)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.LoadedBinproviderName != "p2" {
		t.Errorf("got provider %q, want p2", got.LoadedBinproviderName)
	}
}

func TestLoadedAbspathsCollectsCandidatesAcrossProviders(t *testing.T) {
	dir := t.TempDir()
	wget := dir + "/wget"
	if err := os.WriteFile(wget, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	loaded, err := provider.NewShallowBinary(provider.ShallowBinaryParams{
		Name:                  "wget",
		BinprovidersSupported: []string{"p2"},
		LoadedBinproviderName: "p2",
		LoadedAbspath:         pathvalidate.HostBinPath(wget),
		HasVersion:            true,
	})
	if err != nil {
		t.Fatal(err)
	}

	p1 := &stubProvider{name: "p1", path: pathvalidate.Join(dir)}
	p2 := &stubProvider{name: "p2", path: pathvalidate.Join(dir), loadResult: loaded}

	b := New("wget", "", []provider.Provider{p1, p2}, nil)
	got, err := b.Load("", 0)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	abspaths := got.LoadedAbspaths()
	if len(abspaths["p1"]) != 1 || string(abspaths["p1"][0]) != wget {
		t.Errorf("p1 abspaths = %v, want [%s]", abspaths["p1"], wget)
	}
	if len(abspaths["p2"]) != 1 || string(abspaths["p2"][0]) != wget {
		t.Errorf("p2 abspaths = %v, want [%s]", abspaths["p2"], wget)
	}

	dirs := got.LoadedBinDirs()
	if dirs["p1"] != dir || dirs["p2"] != dir {
		t.Errorf("LoadedBinDirs = %v, want both p1 and p2 = %q", dirs, dir)
	}
}

func TestAllProvidersFailedAggregatesErrors(t *testing.T) {
	p1 := &stubProvider{name: "p1", installErr: errors.New("p1 boom")}
	p2 := &stubProvider{name: "p2", installErr: errors.New("p2 boom")}

	b := New("wget", "", []provider.Provider{p1, p2}, nil)
	_, err := b.Install("", 0)

	var allFailed *AllProvidersFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("got %v, want *AllProvidersFailedError", err)
	}
	if _, ok := allFailed.Errors["p1"]; !ok {
		t.Error("missing p1 in error map")
	}
	if _, ok := allFailed.Errors["p2"]; !ok {
		t.Error("missing p2 in error map")
	}
}
