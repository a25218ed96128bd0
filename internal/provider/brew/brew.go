// Package brew implements the Brew provider: Homebrew-backed discovery and
// installation with a PATH synthesized from well-known prefixes rather than
// shelling out, plus Cellar-aware abspath and version fallbacks.
package brew

import (
	"path/filepath"
	"regexp"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/provider/ansible"
	"github.com/autonomous-bits/binprovider/internal/provider/pyinfra"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// Brew locates and installs Homebrew formulae.
type Brew struct {
	*provider.BaseProvider
	prefix string
}

// New constructs a Brew provider. opts may be nil for the defaults.
func New(opts *provider.BaseProvider) *Brew {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "brew"
	if base.InstallerBin == "" {
		base.InstallerBin = "brew"
	}

	b := &Brew{BaseProvider: base}
	base.Self = b
	base.Init()
	base.Defaults[override.Abspath] = override.Func(b.getAbspath)
	base.Defaults[override.Version] = override.Func(b.getVersion)
	base.Defaults[override.Install] = override.Func(b.install)

	b.prefix = detectPrefix(base)
	if base.PATH == "" && b.prefix != "" {
		base.PATH = pathvalidate.Join(filepath.Join(b.prefix, "bin"))
	}
	return b
}

// getAbspath tries the provider's PATH first, then the Homebrew "opt" and
// "Cellar" conventions, per spec.md §4.5.
func (b *Brew) getAbspath(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return pathvalidate.HostBinPath(""), nil
	}
	if hp := b.DefaultAbspath(name); hp != "" {
		return hp, nil
	}
	if b.prefix == "" {
		return pathvalidate.HostBinPath(""), nil
	}

	if hp, ok := pathvalidate.BinAbspath(string(name), pathvalidate.Join(filepath.Join(b.prefix, "opt", string(name), "bin"))); ok {
		return hp, nil
	}

	matches, _ := filepath.Glob(filepath.Join(b.prefix, "Cellar", string(name), "*", "bin", string(name)))
	if len(matches) > 0 {
		if hp, err := pathvalidate.HostExists(matches[0]); err == nil {
			return pathvalidate.HostBinPath(hp), nil
		}
	}
	return pathvalidate.HostBinPath(""), nil
}

// cellarVersionRe extracts the version directory segment from a Cellar path
// of the form ".../Cellar/<name>/<version>/bin/<name>".
var cellarVersionRe = regexp.MustCompile(`/Cellar/[^/]+/([^/]+)/bin/`)

// getVersion parses the version segment out of a Cellar abspath if present;
// otherwise falls back to "brew list --formulae" then "brew info --quiet"
// output, per spec.md §4.5.
func (b *Brew) getVersion(ctx override.Context) (any, error) {
	if m := cellarVersionRe.FindStringSubmatch(ctx.Abspath); m != nil {
		if v, ok := semver.Parse(m[1]); ok {
			return v, nil
		}
	}

	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return semver.SemVer{}, nil
	}

	if res, err := b.Exec("brew", []string{"list", "--formulae", string(name)}, ""); err == nil {
		if v, ok := semver.Parse(res.Stdout); ok {
			return v, nil
		}
	}
	if res, err := b.Exec("brew", []string{"info", "--quiet", string(name)}, ""); err == nil {
		if v, ok := semver.Parse(res.Stdout); ok {
			return v, nil
		}
	}
	return semver.SemVer{}, nil
}

// install prefers delegating to pyinfra, then ansible, before falling back
// to a raw "brew install" invocation, mirroring Apt's preference order
// (spec.md §9).
func (b *Brew) install(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	packages, err := b.GetPackages(name)
	if err != nil {
		return nil, err
	}

	if _, ok := pathvalidate.BinAbspath("pyinfra", b.PATH); ok {
		return nil, pyinfra.RunDeploy(b.BaseProvider, packages)
	}
	if _, ok := pathvalidate.BinAbspath("ansible-playbook", b.PATH); ok {
		return nil, ansible.RunPlaybook(b.BaseProvider, packages)
	}

	args := []string{"install"}
	for _, pkg := range packages {
		args = append(args, string(pkg))
	}
	_, err = b.Exec("brew", args, "")
	return nil, err
}
