package pyinfra

import "runtime"

// op is a single pyinfra operation call in the rendered deploy file.
type op struct {
	Name           string   `yaml:"name"`
	BrewPackages   []string `yaml:"operations.brew.packages,omitempty"`
	ServerPackages []string `yaml:"operations.server.packages,omitempty"`
}

// deploy is the minimal single-host deploy body rendered for @local.
type deploy struct {
	Host string `yaml:"host"`
	Ops  []op   `yaml:"operations"`
}

// buildDeploy renders the localhost deploy described by spec.md §4.5: a
// single "install package" operation delegating to operations.brew.packages
// on macOS, operations.server.packages elsewhere.
func buildDeploy(packages []string) deploy {
	o := op{Name: "install package"}
	if runtime.GOOS == "darwin" {
		o.BrewPackages = packages
	} else {
		o.ServerPackages = packages
	}
	return deploy{Host: "@local", Ops: []op{o}}
}
