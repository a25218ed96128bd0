// Package ansible implements the Ansible orchestration shim (spec.md §4.5):
// it renders a minimal playbook targeting localhost and runs it through
// ansible-playbook, rather than invoking any package manager directly.
package ansible

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

// Ansible delegates package installation to ansible-playbook.
type Ansible struct {
	*provider.BaseProvider
}

// New constructs an Ansible provider. opts may be nil for the defaults.
func New(opts *provider.BaseProvider) *Ansible {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "ansible"
	if base.InstallerBin == "" {
		base.InstallerBin = "ansible-playbook"
	}

	a := &Ansible{BaseProvider: base}
	base.Self = a
	base.Init()
	base.Defaults[override.Install] = override.Func(a.install)
	return a
}

func (a *Ansible) install(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	packages, err := a.GetPackages(name)
	if err != nil {
		return nil, err
	}
	return nil, RunPlaybook(a.BaseProvider, packages)
}

// RunPlaybook renders the single-host playbook for packages, writes it to a
// temp file, and runs it through ansible-playbook under p's Exec contract.
// Exported so Apt and Brew can delegate their own install flows to it per
// spec.md §9's pyinfra -> ansible -> raw-shell preference order.
func RunPlaybook(p *provider.BaseProvider, packages []pathvalidate.BinaryName) error {
	names := make([]string, len(packages))
	for i, pkg := range packages {
		names[i] = string(pkg)
	}

	doc, err := yaml.Marshal(buildPlaybook(names))
	if err != nil {
		return err
	}

	f, err := os.CreateTemp("", "binprovider-ansible-*.yml")
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

	_, err = p.Exec("ansible-playbook", []string{path, "--connection=local", "--inventory", "localhost,"}, "")
	return err
}
