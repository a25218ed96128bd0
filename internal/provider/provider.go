// Package provider implements the Provider contract shared by every
// backend package manager: handler dispatch through internal/override,
// per-provider PATH discovery, subprocess execution with privilege
// de-escalation, and the result cache (spec.md §4.4).
package provider

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/registry"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// shaHandlerType is a cache-only pseudo handler type; GetSHA256 is not
// override-resolved (spec.md §4.4 lists only abspath/version/packages/
// install as handler types) but shares the cache's sentinel discipline.
const shaHandlerType override.HandlerType = "sha256"

// DefaultInstallTimeout and DefaultVersionTimeout are the spec.md §5
// defaults: 120s for install, 10s for version probing.
const (
	DefaultInstallTimeout = 120 * time.Second
	DefaultVersionTimeout = 10 * time.Second
)

// Provider is the uniform contract every concrete backend implements.
type Provider interface {
	Name() string
	ProviderPath() pathvalidate.PATH
	GetAbspath(name pathvalidate.BinaryName, nocache bool) (pathvalidate.HostBinPath, bool, error)
	GetVersion(name pathvalidate.BinaryName, abspath pathvalidate.HostBinPath, nocache bool) (semver.SemVer, bool, error)
	GetSHA256(name pathvalidate.BinaryName, abspath pathvalidate.HostBinPath, nocache bool) (string, error)
	GetPackages(name pathvalidate.BinaryName) ([]pathvalidate.BinaryName, error)
	Install(name pathvalidate.BinaryName) (*ShallowBinary, error)
	Load(name pathvalidate.BinaryName) (*ShallowBinary, error)
	LoadOrInstall(name pathvalidate.BinaryName) (*ShallowBinary, error)
	GetHandlersFor(name pathvalidate.BinaryName) map[override.HandlerType]override.Handler

	// WithOverrides returns a derived provider with extra overrides layered
	// on top for a single call (spec.md §3's get_provider_with_overrides).
	// Concrete providers that override Load/Install at the Go method level
	// (e.g. Env) must override this too, re-wrapping the clone so Self
	// still resolves to a value whose Load/Install see the merged overrides.
	WithOverrides(extra map[string]map[override.HandlerType]override.Handler) Provider
}

// BaseProvider is the shared configuration + policy record embedded by
// every concrete provider (spec.md §3's Provider record). Concrete
// providers set Self to their own pointer (for Method-kind override
// resolution) and populate Defaults with their handler closures, which
// plays the role of the source's subclass-default-method level.
type BaseProvider struct {
	ProviderName   string
	PATH           pathvalidate.PATH
	InstallerBin   string
	EUID           *int
	Overrides      map[string]map[override.HandlerType]override.Handler // binary name | "*" -> handler -> value
	DryRun         bool
	Quiet          bool
	InstallTimeout time.Duration
	VersionTimeout time.Duration
	Registry       *registry.Registry
	Diagnostic     io.Writer

	// Self must be set by the embedding concrete provider to itself, so
	// Method-kind overrides resolve against the concrete type.
	Self any

	// Defaults holds the "subclass default method" level for each handler
	// type; concrete providers populate this in their constructor.
	Defaults map[override.HandlerType]override.Handler

	// SetupHook is the provider-specific install prep step (spec.md §4.4
	// install flow step 1): create a venv, an npm prefix dir, or a
	// world-writable cache dir. Nil means no setup is needed.
	SetupHook SetupFunc

	cache *resultCache
}

// Init finishes constructing a BaseProvider; call from every concrete
// provider's constructor after setting the exported fields above.
func (p *BaseProvider) Init() {
	if p.cache == nil {
		p.cache = newResultCache()
	}
	if p.Overrides == nil {
		p.Overrides = make(map[string]map[override.HandlerType]override.Handler)
	}
	if p.Defaults == nil {
		p.Defaults = make(map[override.HandlerType]override.Handler)
	}
	if p.InstallTimeout == 0 {
		p.InstallTimeout = DefaultInstallTimeout
	}
	if p.VersionTimeout == 0 {
		p.VersionTimeout = DefaultVersionTimeout
	}
	if p.Diagnostic == nil {
		p.Diagnostic = os.Stderr
	}
	if p.Defaults[override.Abspath].IsZero() {
		p.Defaults[override.Abspath] = override.Func(p.defaultAbspathHandler)
	}
	if p.Defaults[override.Version].IsZero() {
		p.Defaults[override.Version] = override.Func(p.defaultVersionHandler)
	}
	if p.Defaults[override.Packages].IsZero() {
		p.Defaults[override.Packages] = override.Func(p.defaultPackages)
	}
	if p.Defaults[override.Install].IsZero() {
		p.Defaults[override.Install] = override.Func(p.defaultInstall)
	}
}

func (p *BaseProvider) Name() string { return p.ProviderName }

// ProviderPath exposes this provider's search PATH, used by Binary to
// enumerate every abspath candidate across all configured providers
// (binary.py's loaded_abspaths), not just the one actually loaded.
func (p *BaseProvider) ProviderPath() pathvalidate.PATH { return p.PATH }

// GetHandlersFor returns the per-binary handlers this provider exposes for
// name, used by Binary to pull per-binary overrides at construction
// (spec.md §4.6).
func (p *BaseProvider) GetHandlersFor(name pathvalidate.BinaryName) map[override.HandlerType]override.Handler {
	out := make(map[override.HandlerType]override.Handler)
	if m, ok := p.Overrides[string(name)]; ok {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// WithOverrides returns a derived copy of p with extra overrides layered
// on top for a single call, so per-call overrides never leak into the
// shared instance (spec.md §3's get_provider_with_overrides). The clone's
// Self still points at the original concrete provider; asProvider detects
// this and dispatches LoadOrInstall on the clone itself, which is correct
// for providers that only customize Defaults closures; a provider that
// overrides Load or Install itself (e.g. Env) must also override this
// method to re-wrap the clone so Self observes the merged overrides.
func (p *BaseProvider) WithOverrides(extra map[string]map[override.HandlerType]override.Handler) Provider {
	clone := *p
	clone.Overrides = mergeOverrides(p.Overrides, extra)
	return &clone
}

// mergeOverrides layers overlay onto base, overlay taking precedence,
// without mutating either input.
func mergeOverrides(base, overlay map[string]map[override.HandlerType]override.Handler) map[string]map[override.HandlerType]override.Handler {
	out := make(map[string]map[override.HandlerType]override.Handler, len(base)+len(overlay))
	for k, v := range base {
		inner := make(map[override.HandlerType]override.Handler, len(v))
		for hk, hv := range v {
			inner[hk] = hv
		}
		out[k] = inner
	}
	for k, v := range overlay {
		inner, ok := out[k]
		if !ok {
			inner = make(map[override.HandlerType]override.Handler, len(v))
		}
		for hk, hv := range v {
			inner[hk] = hv
		}
		out[k] = inner
	}
	return out
}

// resolve applies the three-level precedence for handlerType/name.
func (p *BaseProvider) resolve(handlerType override.HandlerType, name pathvalidate.BinaryName) (override.Callable, error) {
	var binaryH, wildcardH, defaultH *override.Handler

	if m, ok := p.Overrides[string(name)]; ok {
		if h, ok := m[handlerType]; ok {
			binaryH = &h
		}
	}
	if m, ok := p.Overrides["*"]; ok {
		if h, ok := m[handlerType]; ok {
			wildcardH = &h
		}
	}
	if h, ok := p.Defaults[handlerType]; ok && !h.IsZero() {
		defaultH = &h
	}

	return override.Resolve(override.Input{
		BinaryOverride:   binaryH,
		WildcardOverride: wildcardH,
		Default:          defaultH,
		Provider:         p.Self,
		Registry:         p.Registry,
	})
}

// GetAbspath resolves and caches the abspath handler for name.
func (p *BaseProvider) GetAbspath(name pathvalidate.BinaryName, nocache bool) (pathvalidate.HostBinPath, bool, error) {
	if nocache {
		p.cache.invalidate(override.Abspath, name)
	} else if v, ok := p.cache.get(override.Abspath, name); ok {
		hp, _ := v.(pathvalidate.HostBinPath)
		return hp, hp != "", nil
	}

	call, err := p.resolve(override.Abspath, name)
	if err != nil {
		return "", false, err
	}
	res, err := call(override.Context{BinaryName: string(name)})
	if err != nil {
		return "", false, err
	}
	hp, _ := res.(pathvalidate.HostBinPath)
	p.cache.set(override.Abspath, name, hp)
	return hp, hp != "", nil
}

// GetVersion resolves and caches the version handler for name.
func (p *BaseProvider) GetVersion(name pathvalidate.BinaryName, abspath pathvalidate.HostBinPath, nocache bool) (semver.SemVer, bool, error) {
	if nocache {
		p.cache.invalidate(override.Version, name)
	} else if v, ok := p.cache.get(override.Version, name); ok {
		sv, _ := v.(semver.SemVer)
		return sv, !sv.IsUnknown() && sv != (semver.SemVer{}), nil
	}

	call, err := p.resolve(override.Version, name)
	if err != nil {
		return semver.SemVer{}, false, err
	}
	res, err := call(override.Context{BinaryName: string(name), Abspath: string(abspath)})
	if err != nil {
		return semver.SemVer{}, false, err
	}
	sv, _ := res.(semver.SemVer)
	p.cache.set(override.Version, name, sv)
	return sv, sv != (semver.SemVer{}), nil
}

// GetPackages resolves and caches the packages handler for name.
func (p *BaseProvider) GetPackages(name pathvalidate.BinaryName) ([]pathvalidate.BinaryName, error) {
	if v, ok := p.cache.get(override.Packages, name); ok {
		pkgs, _ := v.([]pathvalidate.BinaryName)
		return pkgs, nil
	}
	call, err := p.resolve(override.Packages, name)
	if err != nil {
		return nil, err
	}
	res, err := call(override.Context{BinaryName: string(name)})
	if err != nil {
		return nil, err
	}
	pkgs, _ := res.([]pathvalidate.BinaryName)
	p.cache.set(override.Packages, name, pkgs)
	return pkgs, nil
}

// defaultPackages is the spec.md §4.4 default packages handler: [name].
func (p *BaseProvider) defaultPackages(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	return []pathvalidate.BinaryName{name}, nil
}

// defaultInstall is the base class's no-op placeholder: it always fails
// with ErrNotInstallable unless a concrete provider overrides Defaults[Install].
func (p *BaseProvider) defaultInstall(ctx override.Context) (any, error) {
	return nil, fmt.Errorf("%s: %w", ctx.BinaryName, ErrNotInstallable)
}

// DefaultAbspath is the spec.md §4.4 default abspath handler: scan the
// provider's PATH. Exported so concrete providers can fall back to it
// after trying ecosystem-specific probes.
func (p *BaseProvider) DefaultAbspath(name pathvalidate.BinaryName) pathvalidate.HostBinPath {
	hp, _ := pathvalidate.BinAbspath(string(name), p.PATH)
	return hp
}

// GetSHA256 computes (and caches) the sha256 of abspath, reading it in
// 4 KiB chunks. It is not override-resolved; only the result is cached,
// per spec.md §4.4.
func (p *BaseProvider) GetSHA256(name pathvalidate.BinaryName, abspath pathvalidate.HostBinPath, nocache bool) (string, error) {
	if nocache {
		p.cache.invalidate(shaHandlerType, name)
	} else if v, ok := p.cache.get(shaHandlerType, name); ok {
		s, _ := v.(string)
		return s, nil
	}
	if abspath == "" {
		return "", nil
	}
	sum, err := sha256File(string(abspath))
	if err != nil {
		return "", err
	}
	p.cache.set(shaHandlerType, name, sum)
	return sum, nil
}
