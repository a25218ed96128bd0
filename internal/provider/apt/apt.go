// Package apt implements the Apt provider: a system-package backend that
// always runs as root (spec.md §4.4's EUID rule), extends its PATH from
// dpkg's manifest of bash's package, and prefers delegating installs to
// pyinfra, then ansible, before falling back to a raw apt-get invocation.
package apt

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/provider/ansible"
	"github.com/autonomous-bits/binprovider/internal/provider/pyinfra"
)

// updateThrottle bounds how often the raw-shell install path re-runs
// apt-get update, per spec.md §5's process-wide last_apt_update timestamp.
const updateThrottle = 24 * time.Hour

var (
	updateMu   sync.Mutex
	lastUpdate time.Time
)

// Apt locates and installs system packages through apt-get.
type Apt struct {
	*provider.BaseProvider
}

// New constructs an Apt provider. opts may be nil for the defaults. The
// provider always runs as root regardless of any EUID opts carries.
func New(opts *provider.BaseProvider) *Apt {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "apt"
	if base.InstallerBin == "" {
		base.InstallerBin = "apt-get"
	}
	if base.PATH == "" {
		base.PATH = pathvalidate.PATH(os.Getenv("PATH"))
	}
	root := 0
	base.EUID = &root

	a := &Apt{BaseProvider: base}
	base.Self = a
	base.Init()
	base.Defaults[override.Install] = override.Func(a.install)

	if extended, ok := a.dpkgBinPaths(); ok {
		base.PATH = extended
	}
	return a
}

// dpkgBinPaths extends the provider's PATH with the /bin directories that
// dpkg reports owning for the bash package, per spec.md §4.5.
func (a *Apt) dpkgBinPaths() (pathvalidate.PATH, bool) {
	res, err := a.Exec("dpkg", []string{"-L", "bash"}, "")
	if err != nil {
		return "", false
	}
	var dirs []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasSuffix(line, "/bin") {
			dirs = append(dirs, line)
		}
	}
	if len(dirs) == 0 {
		return "", false
	}
	return pathvalidate.Join(append(dirs, a.PATH.Dirs()...)...), true
}

// install implements spec.md §4.5's Apt install flow: delegate to pyinfra
// if present, else ansible, else a raw, throttled apt-get invocation.
func (a *Apt) install(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	packages, err := a.GetPackages(name)
	if err != nil {
		return nil, err
	}

	if _, ok := pathvalidate.BinAbspath("pyinfra", a.PATH); ok {
		return nil, pyinfra.RunDeploy(a.BaseProvider, packages)
	}
	if _, ok := pathvalidate.BinAbspath("ansible-playbook", a.PATH); ok {
		return nil, ansible.RunPlaybook(a.BaseProvider, packages)
	}
	return nil, a.rawInstall(packages)
}

// rawInstall shells out directly to apt-get, throttling "apt-get update" to
// once per updateThrottle window across the process per spec.md §5.
func (a *Apt) rawInstall(packages []pathvalidate.BinaryName) error {
	updateMu.Lock()
	needsUpdate := time.Since(lastUpdate) > updateThrottle
	if needsUpdate {
		lastUpdate = time.Now()
	}
	updateMu.Unlock()

	if needsUpdate {
		if _, err := a.Exec("apt-get", []string{"update"}, ""); err != nil {
			return err
		}
	}

	args := []string{"install", "-y", "--no-install-recommends"}
	for _, pkg := range packages {
		args = append(args, string(pkg))
	}
	_, err := a.Exec("apt-get", args, "")
	return err
}
