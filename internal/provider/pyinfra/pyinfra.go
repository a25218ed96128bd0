// Package pyinfra implements the Pyinfra orchestration shim (spec.md §4.5):
// it renders a minimal localhost deploy and runs it through the pyinfra CLI,
// the first-preference delegate ahead of ansible for Apt and Brew installs.
package pyinfra

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

// Pyinfra delegates package installation to the pyinfra CLI.
type Pyinfra struct {
	*provider.BaseProvider
}

// New constructs a Pyinfra provider. opts may be nil for the defaults.
func New(opts *provider.BaseProvider) *Pyinfra {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "pyinfra"
	if base.InstallerBin == "" {
		base.InstallerBin = "pyinfra"
	}

	pi := &Pyinfra{BaseProvider: base}
	base.Self = pi
	base.Init()
	base.Defaults[override.Install] = override.Func(pi.install)
	return pi
}

func (pi *Pyinfra) install(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	packages, err := pi.GetPackages(name)
	if err != nil {
		return nil, err
	}
	return nil, RunDeploy(pi.BaseProvider, packages)
}

// RunDeploy renders the localhost deploy for packages, writes it to a temp
// file, and runs it via the pyinfra CLI under p's Exec contract. Exported so
// Apt and Brew can delegate to it per spec.md §9's preference order.
func RunDeploy(p *provider.BaseProvider, packages []pathvalidate.BinaryName) error {
	names := make([]string, len(packages))
	for i, pkg := range packages {
		names[i] = string(pkg)
	}

	doc, err := yaml.Marshal(buildDeploy(names))
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "binprovider-pyinfra-*.yml")
	if err != nil {
		return err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(doc); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	_, err = p.Exec("pyinfra", []string{"@local", path}, "")
	return err
}
