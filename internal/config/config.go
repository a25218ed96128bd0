// Package config loads a binproviders.yaml describing provider ordering,
// per-binary overrides, EUID policy, and timeouts, mirroring the teacher
// CLI's flags-to-typed-options builder (apps/command-line/internal/options)
// but sourced from a YAML manifest instead of CLI flags, following
// apps/command-line/internal/serialize/yaml.go's yaml.v3 usage.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/provider/ansible"
	"github.com/autonomous-bits/binprovider/internal/provider/apt"
	"github.com/autonomous-bits/binprovider/internal/provider/brew"
	"github.com/autonomous-bits/binprovider/internal/provider/env"
	"github.com/autonomous-bits/binprovider/internal/provider/npm"
	"github.com/autonomous-bits/binprovider/internal/provider/pip"
	"github.com/autonomous-bits/binprovider/internal/provider/pyinfra"
)

// ProviderConfig configures one backend provider instance.
type ProviderConfig struct {
	Name         string `yaml:"name"`
	EUID         *int   `yaml:"euid,omitempty"`
	InstallerBin string `yaml:"installer_bin,omitempty"`
	Venv         string `yaml:"venv,omitempty"`    // pip only
	Prefix       string `yaml:"prefix,omitempty"`  // npm only
	Global       bool   `yaml:"global,omitempty"`  // npm only
	Timeout      string `yaml:"timeout,omitempty"` // install/version timeout, e.g. "30s"
}

// BinaryConfig configures one binary target.
type BinaryConfig struct {
	Name        string                       `yaml:"name"`
	Description string                       `yaml:"description,omitempty"`
	Providers   []string                     `yaml:"providers"`
	Overrides   map[string]map[string]string `yaml:"overrides,omitempty"`
}

// Config is the top-level binproviders.yaml shape.
type Config struct {
	CacheDir       string           `yaml:"cache_dir,omitempty"`
	DefaultTimeout string           `yaml:"default_timeout,omitempty"`
	Quiet          bool             `yaml:"quiet,omitempty"`
	Providers      []ProviderConfig `yaml:"providers"`
	Binaries       []BinaryConfig   `yaml:"binaries"`
}

// Load reads and parses a binproviders.yaml manifest at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// BuildProviders constructs a named set of provider.Provider instances from
// cfg's Providers list, mirroring options.BuildOptions's CLI-flags-to-typed-
// value mapping but reading from the YAML manifest instead.
func BuildProviders(cfg *Config) (map[string]provider.Provider, error) {
	out := make(map[string]provider.Provider, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		base := &provider.BaseProvider{}
		if pc.EUID != nil {
			euid := *pc.EUID
			base.EUID = &euid
		}
		if pc.InstallerBin != "" {
			base.InstallerBin = pc.InstallerBin
		}
		if pc.Timeout != "" {
			d, err := time.ParseDuration(pc.Timeout)
			if err != nil {
				return nil, fmt.Errorf("config: provider %q: invalid timeout %q: %w", pc.Name, pc.Timeout, err)
			}
			base.InstallTimeout = d
			base.VersionTimeout = d
		}

		var p provider.Provider
		switch pc.Name {
		case "apt":
			p = apt.New(base)
		case "brew":
			p = brew.New(base)
		case "pip":
			p = pip.New(base, pc.Venv)
		case "npm":
			p = npm.New(base, pc.Prefix, pc.Global)
		case "ansible":
			p = ansible.New(base)
		case "pyinfra":
			p = pyinfra.New(base)
		case "env":
			p = env.New(base)
		default:
			return nil, fmt.Errorf("config: unknown provider %q", pc.Name)
		}
		out[pc.Name] = p
	}
	return out, nil
}

// ResolveOverrides converts a binary's YAML-sourced override strings into
// override.Handler values. A "self.<name>" value resolves to a Method
// handler; a value containing a "." otherwise resolves to a Dotted registry
// reference; anything else is a Literal.
func ResolveOverrides(raw map[string]map[string]string) map[string]map[override.HandlerType]override.Handler {
	out := make(map[string]map[override.HandlerType]override.Handler, len(raw))
	for providerName, handlers := range raw {
		inner := make(map[override.HandlerType]override.Handler, len(handlers))
		for handlerType, v := range handlers {
			inner[override.HandlerType(handlerType)] = resolveHandler(v)
		}
		out[providerName] = inner
	}
	return out
}

func resolveHandler(v string) override.Handler {
	switch {
	case strings.HasPrefix(v, "self."):
		return override.Method(strings.TrimPrefix(v, "self."))
	case strings.Contains(v, "."):
		return override.Dotted(v)
	default:
		return override.Literal(v)
	}
}

// ProvidersFor resolves a BinaryConfig's provider name list against a
// built provider set, in the order given, skipping unknown names.
func ProvidersFor(bc BinaryConfig, providers map[string]provider.Provider) []provider.Provider {
	out := make([]provider.Provider, 0, len(bc.Providers))
	for _, name := range bc.Providers {
		if p, ok := providers[name]; ok {
			out = append(out, p)
		}
	}
	return out
}
