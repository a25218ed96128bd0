// Package pip implements the Pip provider: installs Python packages, with
// an optional dedicated venv, falling back to PATH synthesis from the
// running interpreter's site-packages conventions when no venv is set.
package pip

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// cacheDir is the spec.md §6 install cache directory, world-writable so a
// provider running under a different EUID can still use it.
const cacheDir = "/tmp/binprovider-pip-cache"

// sitePackagesScript prints every directory pip's default abspath/PATH
// fallback should search: site-packages (system and user), the scripts
// directory from sysconfig, one per line.
const sitePackagesScript = `import site, sysconfig
for p in site.getsitepackages():
    print(p)
print(site.getusersitepackages())
print(sysconfig.get_path("scripts"))
`

// Pip locates and installs Python packages via pip.
type Pip struct {
	*provider.BaseProvider

	// Venv, when set, is the dedicated virtualenv directory pip's setup
	// hook creates and installs into, restricting PATH to <Venv>/bin.
	Venv string
}

// New constructs a Pip provider. opts may be nil for the defaults. venv may
// be "" for the synthesized-PATH mode.
func New(opts *provider.BaseProvider, venv string) *Pip {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "pip"
	if base.InstallerBin == "" {
		base.InstallerBin = "pip"
	}

	p := &Pip{BaseProvider: base, Venv: venv}
	base.Self = p
	base.Init()
	base.Defaults[override.Abspath] = override.Func(p.getAbspath)
	base.Defaults[override.Version] = override.Func(p.getVersion)
	base.Defaults[override.Install] = override.Func(p.install)

	if venv != "" {
		base.SetupHook = p.setupVenv
		base.PATH = pathvalidate.Join(filepath.Join(venv, "bin"))
	} else if base.PATH == "" {
		base.PATH = p.synthesizePATH()
	}
	return p
}

// setupVenv creates Venv if needed and upgrades pip and setuptools inside
// it, per spec.md §4.4's install flow step 1.
func (p *Pip) setupVenv() error {
	if _, err := os.Stat(filepath.Join(p.Venv, "bin", "python")); err != nil {
		if _, err := p.Exec("python3", []string{"-m", "venv", p.Venv}, ""); err != nil {
			return fmt.Errorf("pip: venv setup: %w", err)
		}
	}
	_, err := p.Exec(filepath.Join(p.Venv, "bin", "pip"), []string{"install", "--upgrade", "pip", "setuptools"}, "")
	return err
}

// synthesizePATH mirrors spec.md §4.5's no-venv PATH rule: site-packages
// dirs, the interpreter's scripts dir, and every python*/python3 parent
// directory already on PATH, then the rest of the host PATH; directories
// under the currently active venv (VIRTUAL_ENV) are left out throughout.
func (p *Pip) synthesizePATH() pathvalidate.PATH {
	hostPATH := pathvalidate.PATH(os.Getenv("PATH"))
	var dirs []string

	if res, err := p.Exec("python3", []string{"-c", sitePackagesScript}, ""); err == nil {
		for _, line := range strings.Split(res.Stdout, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				dirs = append(dirs, line)
			}
		}
	}

	venv := os.Getenv("VIRTUAL_ENV")
	for _, dir := range hostPATH.Dirs() {
		if venv != "" && strings.HasPrefix(dir, venv) {
			continue
		}
		base := filepath.Base(dir)
		if base == "python" || base == "python3" || strings.HasPrefix(base, "python3.") {
			dirs = append(dirs, filepath.Dir(dir))
		}
	}

	dirs = append(dirs, hostPATH.Dirs()...)
	if venv != "" {
		kept := dirs[:0]
		for _, dir := range dirs {
			if !strings.HasPrefix(dir, venv) {
				kept = append(kept, dir)
			}
		}
		dirs = kept
	}
	return pathvalidate.Join(dirs...)
}

// getAbspath falls back to parsing "pip show <pkg>"'s Location: line and
// searching its bin sibling, per spec.md §4.5.
func (p *Pip) getAbspath(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return pathvalidate.HostBinPath(""), nil
	}
	if hp := p.DefaultAbspath(name); hp != "" {
		return hp, nil
	}

	location, ok := p.showField(name, "Location:")
	if !ok {
		return pathvalidate.HostBinPath(""), nil
	}
	bin := filepath.Join(location, "..", "..", "..", "bin")
	if hp, ok := pathvalidate.BinAbspath(string(name), pathvalidate.Join(bin)); ok {
		return hp, nil
	}
	return pathvalidate.HostBinPath(""), nil
}

// getVersion parses "pip show <pkg>"'s Version: line.
func (p *Pip) getVersion(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return semver.SemVer{}, nil
	}
	ver, ok := p.showField(name, "Version:")
	if !ok {
		return semver.SemVer{}, nil
	}
	if v, ok := semver.Parse(ver); ok {
		return v, nil
	}
	return semver.SemVer{}, nil
}

// showField runs "pip show <pkg>" and returns the value after the first
// line starting with prefix (e.g. "Location:", "Version:").
func (p *Pip) showField(name pathvalidate.BinaryName, prefix string) (string, bool) {
	res, err := p.Exec("pip", []string{"show", string(name)}, "")
	if err != nil {
		return "", false
	}
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
		}
	}
	return "", false
}

// install runs "pip install" for the binary's packages.
func (p *Pip) install(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	packages, err := p.GetPackages(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0o777); err != nil {
		return nil, err
	}
	_ = os.Chmod(cacheDir, 0o777)

	args := []string{"install", "--no-input", "--disable-pip-version-check", "--cache-dir=" + cacheDir}
	for _, pkg := range packages {
		args = append(args, string(pkg))
	}
	bin := "pip"
	if p.Venv != "" {
		bin = filepath.Join(p.Venv, "bin", "pip")
	}
	_, err = p.Exec(bin, args, "")
	return nil, err
}
