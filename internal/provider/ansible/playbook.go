package ansible

import "runtime"

// task is a single Ansible task targeting the auto-selected package module.
type task struct {
	Name           string         `yaml:"name"`
	HomebrewModule map[string]any `yaml:"community.general.homebrew,omitempty"`
	PackageModule  map[string]any `yaml:"ansible.builtin.package,omitempty"`
}

// play is the single-play document body; marshaled as a one-element list to
// match ansible-playbook's expected top-level list-of-plays shape.
type play struct {
	Hosts      string `yaml:"hosts"`
	Connection string `yaml:"connection"`
	Tasks      []task `yaml:"tasks"`
}

// buildPlaybook renders the minimal single-host, single-task playbook
// described by spec.md §4.5: a "localhost" play with one "install package"
// task delegating to community.general.homebrew on macOS, or
// ansible.builtin.package elsewhere.
func buildPlaybook(packages []string) []play {
	t := task{Name: "install package"}
	if runtime.GOOS == "darwin" {
		t.HomebrewModule = map[string]any{"name": packages, "state": "present"}
	} else {
		t.PackageModule = map[string]any{"name": packages, "state": "present"}
	}
	return []play{{Hosts: "localhost", Connection: "local", Tasks: []task{t}}}
}
