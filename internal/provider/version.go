package provider

import (
	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// versionProbeFlags are tried in order per spec.md §4.4's default version
// handler.
var versionProbeFlags = []string{"--version", "-version", "-v"}

// defaultAbspathHandler is the base class's default abspath handler: scan
// the provider's PATH (spec.md §4.4).
func (p *BaseProvider) defaultAbspathHandler(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return pathvalidate.HostBinPath(""), nil
	}
	return p.DefaultAbspath(name), nil
}

// defaultVersionHandler probes --version, -version, -v in order, each
// bounded by VersionTimeout, feeding stdout into semver.Parse and
// returning the first success. If any probe produced output but none was
// parseable, it raises VersionUnparseableError; if output was empty
// everywhere, it returns the zero SemVer (none).
func (p *BaseProvider) defaultVersionHandler(ctx override.Context) (any, error) {
	abspath := ctx.Abspath
	if abspath == "" {
		name, err := pathvalidate.BinName(ctx.BinaryName)
		if err != nil {
			return semver.SemVer{}, nil
		}
		hp, ok, err := p.GetAbspath(name, false)
		if err != nil || !ok {
			return semver.SemVer{}, nil
		}
		abspath = string(hp)
	}

	// Probes run on a copy whose Exec timeout is VersionTimeout.
	probe := *p
	if p.VersionTimeout > 0 {
		probe.InstallTimeout = p.VersionTimeout
	}

	sawOutput := false
	var lastErr error
	for _, flag := range versionProbeFlags {
		res, err := probe.Exec(abspath, []string{flag}, "")
		if err != nil {
			continue
		}
		out := res.Stdout
		if out == "" {
			out = res.Stderr
		}
		if out == "" {
			continue
		}
		sawOutput = true
		if v, ok := semver.Parse(out); ok {
			return v, nil
		}
		lastErr = &VersionUnparseableError{Binary: ctx.BinaryName, Output: out}
	}

	if sawOutput {
		return nil, &VersionUnparseableError{Binary: ctx.BinaryName, Cause: lastErr}
	}
	return semver.SemVer{}, nil
}
