// Package binary implements the Binary aggregate (spec.md §4.6): a named
// target plus an ordered list of providers tried in sequence until one
// yields a valid, loaded binary.
package binary

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// Binary is the immutable-after-construction aggregate described in
// spec.md §3: a name, its supported providers in priority order, and the
// provider-indexed overrides merged in from each provider's per-binary
// handlers at construction time, plus whatever was last loaded/installed.
type Binary struct {
	Name                  pathvalidate.BinaryName
	Description           string
	BinprovidersSupported []provider.Provider

	// Overrides is keyed by provider name, then handler type — the dual of
	// Provider.Overrides, which is keyed by binary name.
	Overrides map[string]map[override.HandlerType]override.Handler

	LoadedBinproviderName string
	LoadedAbspath         pathvalidate.HostBinPath
	LoadedVersion         semver.SemVer
	HasVersion            bool
	LoadedSHA256          string
}

// New constructs a Binary. For each provider, any per-binary handlers it
// exposes via GetHandlersFor are merged into the binary's own overrides
// without overwriting values the caller already supplied (spec.md §4.6).
func New(name pathvalidate.BinaryName, description string, providers []provider.Provider, overrides map[string]map[override.HandlerType]override.Handler) *Binary {
	merged := make(map[string]map[override.HandlerType]override.Handler, len(providers))
	for providerName, handlers := range overrides {
		inner := make(map[override.HandlerType]override.Handler, len(handlers))
		for k, v := range handlers {
			inner[k] = v
		}
		merged[providerName] = inner
	}
	for _, p := range providers {
		inner, ok := merged[p.Name()]
		if !ok {
			inner = make(map[override.HandlerType]override.Handler)
			merged[p.Name()] = inner
		}
		for handlerType, h := range p.GetHandlersFor(name) {
			if _, exists := inner[handlerType]; !exists {
				inner[handlerType] = h
			}
		}
	}
	return &Binary{
		Name:                  name,
		Description:           description,
		BinprovidersSupported: providers,
		Overrides:             merged,
	}
}

// providersToTry returns b's provider list filtered to preferred when set.
func (b *Binary) providersToTry(preferred string) []provider.Provider {
	if preferred == "" {
		return b.BinprovidersSupported
	}
	var out []provider.Provider
	for _, p := range b.BinprovidersSupported {
		if p.Name() == preferred {
			out = append(out, p)
		}
	}
	return out
}

// perCallProvider layers b's binary-level overrides for p's name onto p for
// a single call, and applies timeout to the derived copy's install/version
// timeouts when set.
func perCallProvider(p provider.Provider, name pathvalidate.BinaryName, binaryOverrides map[string]map[override.HandlerType]override.Handler, timeout time.Duration) provider.Provider {
	extra := binaryOverrides[p.Name()]
	if len(extra) == 0 && timeout <= 0 {
		return p
	}
	derived := p.WithOverrides(map[string]map[override.HandlerType]override.Handler{string(name): extra})
	if timeout > 0 {
		if bp, ok := derived.(*provider.BaseProvider); ok {
			bp.InstallTimeout = timeout
			bp.VersionTimeout = timeout
		}
	}
	return derived
}

// attempt runs call against each candidate provider in order, stopping at
// the first non-nil ShallowBinary, and aggregating every provider's error.
func (b *Binary) attempt(preferred string, timeout time.Duration, call func(provider.Provider) (*provider.ShallowBinary, error)) (*Binary, error) {
	candidates := b.providersToTry(preferred)
	errs := make(map[string]error)
	var lastErr error

	for _, p := range candidates {
		derived := perCallProvider(p, b.Name, b.Overrides, timeout)
		bin, err := call(derived)
		if err != nil {
			errs[p.Name()] = err
			lastErr = err
			continue
		}
		if bin == nil {
			continue
		}
		return b.merged(bin, p.Name()), nil
	}
	return nil, &AllProvidersFailedError{Name: string(b.Name), Errors: errs, Cause: lastErr}
}

// merged returns a new Binary with bin's fields layered onto a copy of b,
// preserving BinprovidersSupported and Overrides (spec.md §4.6).
func (b *Binary) merged(bin *provider.ShallowBinary, providerName string) *Binary {
	v, hasVersion := bin.LoadedVersion()
	out := *b
	out.LoadedBinproviderName = providerName
	out.LoadedAbspath = bin.LoadedAbspath()
	out.LoadedVersion = v
	out.HasVersion = hasVersion
	out.LoadedSHA256 = bin.LoadedSHA256()
	return &out
}

// LoadOrInstall tries provider.LoadOrInstall across providers in order
// (spec.md §4.6), optionally restricted to preferredProvider, bounded by
// timeout when positive.
func (b *Binary) LoadOrInstall(preferredProvider string, timeout time.Duration) (*Binary, error) {
	return b.attempt(preferredProvider, timeout, func(p provider.Provider) (*provider.ShallowBinary, error) {
		return p.LoadOrInstall(b.Name)
	})
}

// Load tries provider.Load only, across providers in order.
func (b *Binary) Load(preferredProvider string, timeout time.Duration) (*Binary, error) {
	return b.attempt(preferredProvider, timeout, func(p provider.Provider) (*provider.ShallowBinary, error) {
		return p.Load(b.Name)
	})
}

// Install tries provider.Install only, across providers in order.
func (b *Binary) Install(preferredProvider string, timeout time.Duration) (*Binary, error) {
	return b.attempt(preferredProvider, timeout, func(p provider.Provider) (*provider.ShallowBinary, error) {
		return p.Install(b.Name)
	})
}

// IsValid reports whether the last load/install succeeded per spec.md §3.
func (b *Binary) IsValid() bool {
	return b.Name != "" && b.LoadedAbspath != "" && b.HasVersion
}

// LoadedAbspaths returns every abspath candidate for b.Name found across
// all of b's configured providers' search paths, keyed by provider name —
// not just the one abspath actually loaded. This is a diagnostic "where
// else could this binary be found" view.
func (b *Binary) LoadedAbspaths() map[string][]pathvalidate.HostBinPath {
	out := make(map[string][]pathvalidate.HostBinPath)
	if b.LoadedBinproviderName != "" && b.LoadedAbspath != "" {
		out[b.LoadedBinproviderName] = []pathvalidate.HostBinPath{b.LoadedAbspath}
	}
	for _, p := range b.BinprovidersSupported {
		path := p.ProviderPath()
		if path == "" {
			continue
		}
		for _, abspath := range pathvalidate.BinAbspaths(string(b.Name), path) {
			if !containsAbspath(out[p.Name()], abspath) {
				out[p.Name()] = append(out[p.Name()], abspath)
			}
		}
	}
	return out
}

// LoadedBinDirs collapses LoadedAbspaths to each provider's distinct parent
// directories, colon-joined in discovery order.
func (b *Binary) LoadedBinDirs() map[string]string {
	abspaths := b.LoadedAbspaths()
	out := make(map[string]string, len(abspaths))
	for providerName, paths := range abspaths {
		dirs := make([]string, 0, len(paths))
		seen := make(map[string]bool)
		for _, p := range paths {
			dir := filepath.Dir(string(p))
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
		out[providerName] = strings.Join(dirs, ":")
	}
	return out
}

func containsAbspath(list []pathvalidate.HostBinPath, v pathvalidate.HostBinPath) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
