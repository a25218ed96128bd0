// Package env implements the read-only Env provider: it reports binaries
// already on the host's PATH and never installs anything.
package env

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// Env is the read-only provider: PATH is the current process's PATH
// augmented with the running interpreter's bin directory; install is
// always a no-op (spec.md §4.5).
type Env struct {
	*provider.BaseProvider
}

// New constructs an Env provider. opts may be nil for the defaults.
func New(opts *provider.BaseProvider) *Env {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "env"
	if base.PATH == "" {
		base.PATH = synthesizePATH()
	}
	if base.InstallerBin == "" {
		base.InstallerBin = "which"
	}

	e := &Env{BaseProvider: base}
	base.Self = e
	base.Init()
	base.Defaults[override.Install] = override.Func(e.install)
	return e
}

// synthesizePATH returns the current environment's PATH plus the running
// Go binary's directory, mirroring the source's "augmented with the
// running interpreter's bin directory" rule.
func synthesizePATH() pathvalidate.PATH {
	dirs := pathvalidate.PATH(os.Getenv("PATH")).Dirs()
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return pathvalidate.Join(dirs...)
}

// install never spawns a subprocess and never mutates the filesystem
// (spec.md testable property §7: "Env provider purity").
func (e *Env) install(ctx override.Context) (any, error) {
	return nil, provider.ErrNotInstallable
}

// Load special-cases the host Go interpreter: binary name "go" resolves to
// runtime.GOROOT()'s bin/go directly, with the running toolchain's
// version, without spawning a subprocess.
func (e *Env) Load(name pathvalidate.BinaryName) (*provider.ShallowBinary, error) {
	if string(name) == "go" {
		if bin, ok := e.selfInterpreter(); ok {
			return bin, nil
		}
	}
	return e.BaseProvider.Load(name)
}

// WithOverrides re-wraps the cloned BaseProvider as an *Env so a subsequent
// Load still sees the host-interpreter special case, since the embedded
// BaseProvider.WithOverrides alone would return a clone whose Self still
// points at the original Env.
func (e *Env) WithOverrides(extra map[string]map[override.HandlerType]override.Handler) provider.Provider {
	baseClone := e.BaseProvider.WithOverrides(extra).(*provider.BaseProvider)
	clone := &Env{BaseProvider: baseClone}
	baseClone.Self = clone
	return clone
}

// selfInterpreter returns the running Go toolchain as a ShallowBinary
// without invoking a subprocess, the Env-provider analogue of the source's
// "host interpreter" special case.
func (e *Env) selfInterpreter() (*provider.ShallowBinary, bool) {
	goroot := runtime.GOROOT()
	if goroot == "" {
		return nil, false
	}
	abspath := filepath.Join(goroot, "bin", "go")
	if _, err := pathvalidate.HostExecutable(abspath); err != nil {
		return nil, false
	}
	v, ok := semver.Parse(runtime.Version())
	if !ok {
		return nil, false
	}
	sum, err := e.GetSHA256(pathvalidate.BinaryName("go"), pathvalidate.HostBinPath(abspath), false)
	if err != nil {
		sum = ""
	}
	bin, err := provider.NewShallowBinary(provider.ShallowBinaryParams{
		Name:                  "go",
		Description:           "host Go toolchain",
		BinprovidersSupported: []string{e.Name()},
		LoadedBinproviderName: e.Name(),
		LoadedAbspath:         pathvalidate.HostBinPath(abspath),
		LoadedVersion:         v,
		HasVersion:            true,
		LoadedSHA256:          sum,
	})
	if err != nil {
		return nil, false
	}
	return bin, true
}
