package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/autonomous-bits/binprovider/internal/override"
)

const sampleManifest = `
cache_dir: /tmp/binprovider-test-cache
default_timeout: 45s
providers:
  - name: apt
  - name: brew
  - name: pip
    venv: .venv
binaries:
  - name: wget
    description: fetch files over http
    providers: [apt, brew]
    overrides:
      apt:
        install: self.customInstall
      brew:
        abspath: /opt/homebrew/bin/wget
`

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "binproviders.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadParsesManifest(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheDir != "/tmp/binprovider-test-cache" {
		t.Errorf("CacheDir = %q", cfg.CacheDir)
	}
	if len(cfg.Providers) != 3 {
		t.Fatalf("got %d providers, want 3", len(cfg.Providers))
	}
	if len(cfg.Binaries) != 1 || cfg.Binaries[0].Name != "wget" {
		t.Fatalf("unexpected binaries: %+v", cfg.Binaries)
	}
}

func TestBuildProvidersConstructsKnownProviders(t *testing.T) {
	cfg, err := Load(writeManifest(t, sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	providers, err := BuildProviders(cfg)
	if err != nil {
		t.Fatalf("BuildProviders: %v", err)
	}
	for _, name := range []string{"apt", "brew", "pip"} {
		if _, ok := providers[name]; !ok {
			t.Errorf("missing provider %q", name)
		}
	}
}

func TestBuildProvidersRejectsUnknownName(t *testing.T) {
	cfg := &Config{Providers: []ProviderConfig{{Name: "unknown-thing"}}}
	if _, err := BuildProviders(cfg); err == nil {
		t.Fatal("expected error for unknown provider name")
	}
}

func TestResolveOverridesDistinguishesHandlerKinds(t *testing.T) {
	raw := map[string]map[string]string{
		"apt": {
			"install": "self.customInstall",
			"abspath": "/opt/homebrew/bin/wget",
			"version": "pkg.module.versionFn",
		},
	}
	resolved := ResolveOverrides(raw)
	apt := resolved["apt"]

	if got := apt[override.Install].String(); got != "self.customInstall" {
		t.Errorf("install handler = %q, want self.customInstall", got)
	}
	if got := apt[override.Abspath].String(); got != "/opt/homebrew/bin/wget" {
		t.Errorf("abspath handler = %q", got)
	}
	if got := apt[override.Version].String(); got != "pkg.module.versionFn" {
		t.Errorf("version handler = %q", got)
	}
}

func TestProvidersForPreservesOrderAndSkipsUnknown(t *testing.T) {
	cfg, err := Load(writeManifest(t, sampleManifest))
	if err != nil {
		t.Fatal(err)
	}
	providers, err := BuildProviders(cfg)
	if err != nil {
		t.Fatal(err)
	}
	bc := cfg.Binaries[0]
	bc.Providers = append(bc.Providers, "does-not-exist")

	ordered := ProvidersFor(bc, providers)
	if len(ordered) != 2 {
		t.Fatalf("got %d providers, want 2", len(ordered))
	}
	if ordered[0].Name() != "apt" || ordered[1].Name() != "brew" {
		t.Errorf("unexpected order: %s, %s", ordered[0].Name(), ordered[1].Name())
	}
}
