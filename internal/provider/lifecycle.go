package provider

import (
	"errors"
	"fmt"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// SetupFunc is the provider-specific prep hook (spec.md §4.4 install flow
// step 1): create a venv, create an npm prefix dir, create and world-chmod
// a cache dir. Concrete providers that need setup assign SetupHook in
// their constructor; the base behavior is a no-op.
type SetupFunc func() error

// Load probes the binary's current state: abspath + version + sha,
// without attempting installation.
func (p *BaseProvider) Load(name pathvalidate.BinaryName) (*ShallowBinary, error) {
	abspath, ok, err := p.GetAbspath(name, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	version, hasVersion, err := p.GetVersion(name, abspath, false)
	if err != nil {
		return nil, err
	}
	sha, _ := p.GetSHA256(name, abspath, false)

	return NewShallowBinary(ShallowBinaryParams{
		Name:                  name,
		BinprovidersSupported: []string{p.Name()},
		LoadedBinproviderName: p.Name(),
		LoadedAbspath:         abspath,
		LoadedVersion:         version,
		HasVersion:            hasVersion,
		LoadedSHA256:          sha,
	})
}

// Install runs the spec.md §4.4 install flow:
//  1. Setup()
//  2. compute packages
//  3. (PATH re-synthesis is a concrete-provider concern, done inside the
//     install handler itself when dynamic)
//  4. call the install handler
//  5. in dry-run, return a ShallowBinary with unknown abspath/version/sha
//  6. else GetAbspath/GetVersion/GetSHA256 with caches bypassed
//  7. return the ShallowBinary, or none on partial failure
func (p *BaseProvider) Install(name pathvalidate.BinaryName) (*ShallowBinary, error) {
	if v, ok := p.cache.get(override.Install, name); ok {
		bin, _ := v.(*ShallowBinary)
		return bin, nil
	}

	if p.SetupHook != nil {
		if err := p.SetupHook(); err != nil {
			return nil, fmt.Errorf("%s: setup failed: %w", p.Name(), err)
		}
	}

	if _, err := p.GetPackages(name); err != nil {
		return nil, err
	}

	call, err := p.resolve(override.Install, name)
	if err != nil {
		return nil, err
	}
	if _, err := call(override.Context{BinaryName: string(name)}); err != nil {
		if p.Quiet {
			return nil, nil
		}
		if errors.Is(err, ErrPermissionDenied) {
			return nil, err
		}
		return nil, &InstallFailedError{Binary: string(name), Cause: err}
	}

	if p.DryRun {
		return NewShallowBinary(ShallowBinaryParams{
			Name:                  name,
			BinprovidersSupported: []string{p.Name()},
			LoadedBinproviderName: p.Name(),
			LoadedVersion:         semver.Unknown,
			HasVersion:            true,
			LoadedSHA256:          UnknownSHA256,
		})
	}

	abspath, ok, err := p.GetAbspath(name, true)
	if err != nil || !ok {
		if p.Quiet {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w: no abspath after install", name, ErrInstallFailed)
	}
	version, hasVersion, err := p.GetVersion(name, abspath, true)
	if err != nil {
		if p.Quiet {
			return nil, nil
		}
		return nil, err
	}
	sha, _ := p.GetSHA256(name, abspath, true)

	bin, err := NewShallowBinary(ShallowBinaryParams{
		Name:                  name,
		BinprovidersSupported: []string{p.Name()},
		LoadedBinproviderName: p.Name(),
		LoadedAbspath:         abspath,
		LoadedVersion:         version,
		HasVersion:            hasVersion,
		LoadedSHA256:          sha,
	})
	if err != nil {
		return nil, err
	}
	p.cache.set(override.Install, name, bin)
	return bin, nil
}

// LoadOrInstall tries Load first; if the binary is absent, it installs.
//
// It dispatches through p.Self when the embedding concrete provider
// overrides Load or Install (e.g. Env's host-interpreter special case),
// since Go's struct embedding does not give BaseProvider's own methods
// dynamic dispatch onto the concrete type.
func (p *BaseProvider) LoadOrInstall(name pathvalidate.BinaryName) (*ShallowBinary, error) {
	self := p.asProvider()
	bin, err := self.Load(name)
	if err != nil {
		return nil, err
	}
	if bin != nil {
		return bin, nil
	}
	return self.Install(name)
}

// asProvider returns p.Self as a Provider if it implements the full
// interface and embeds p itself, falling back to p otherwise (e.g. on a
// BaseProvider clone from WithOverrides, whose Self still names the
// original concrete provider and would not see the clone's overrides).
func (p *BaseProvider) asProvider() Provider {
	if pr, ok := p.Self.(Provider); ok {
		if e, ok := p.Self.(interface{ embeddedBase() *BaseProvider }); !ok || e.embeddedBase() == p {
			return pr
		}
	}
	return p
}

// embeddedBase lets asProvider tell whether Self embeds this BaseProvider.
func (p *BaseProvider) embeddedBase() *BaseProvider { return p }
