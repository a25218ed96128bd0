// Package npm implements the Npm provider: installs Node packages, with an
// optional dedicated prefix, falling back to walking node_modules/.bin
// directories up from "npm prefix" when no prefix is configured.
package npm

import (
	"encoding/json"
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
const cacheDir = "/tmp/binprovider-npm-cache"

// maxWalkLevels bounds the upward node_modules/.bin walk, per spec.md §4.5.
const maxWalkLevels = 6

// Npm locates and installs Node packages via npm.
type Npm struct {
	*provider.BaseProvider

	// Prefix, when set, restricts PATH to <Prefix>/node_modules/.bin and
	// is passed to npm via --prefix instead of walking the tree.
	Prefix string

	// Global, when true and Prefix is unset, installs and looks up
	// packages in the global npm prefix instead of the local tree.
	Global bool
}

// New constructs an Npm provider. opts may be nil for the defaults.
func New(opts *provider.BaseProvider, prefix string, global bool) *Npm {
	base := opts
	if base == nil {
		base = &provider.BaseProvider{}
	}
	base.ProviderName = "npm"
	if base.InstallerBin == "" {
		base.InstallerBin = "npm"
	}

	n := &Npm{BaseProvider: base, Prefix: prefix, Global: global}
	base.Self = n
	base.Init()
	base.Defaults[override.Abspath] = override.Func(n.getAbspath)
	base.Defaults[override.Version] = override.Func(n.getVersion)
	base.Defaults[override.Install] = override.Func(n.install)

	if base.PATH == "" {
		base.PATH = n.synthesizePATH()
	}
	return n
}

func (n *Npm) synthesizePATH() pathvalidate.PATH {
	if n.Prefix != "" {
		return pathvalidate.Join(filepath.Join(n.Prefix, "node_modules", ".bin"))
	}

	var dirs []string
	if dir, ok := n.npmPrefixDir(false); ok {
		cur := dir
		for i := 0; i < maxWalkLevels; i++ {
			dirs = append(dirs, filepath.Join(cur, "node_modules", ".bin"))
			parent := filepath.Dir(cur)
			if parent == cur {
				break
			}
			cur = parent
		}
	}
	if dir, ok := n.npmPrefixDir(true); ok {
		dirs = append(dirs, filepath.Join(dir, "bin"))
	}
	return pathvalidate.Join(dirs...)
}

func (n *Npm) npmPrefixDir(global bool) (string, bool) {
	args := []string{"prefix"}
	if global {
		args = append(args, "-g")
	}
	res, err := n.Exec("npm", args, "")
	if err != nil {
		return "", false
	}
	dir := strings.TrimSpace(res.Stdout)
	return dir, dir != ""
}

// npmShowOutput is the subset of "npm show --json <pkg>" consumed for
// abspath resolution.
type npmShowOutput struct {
	Bin json.RawMessage `json:"bin"`
}

// getAbspath parses "npm show --json <pkg>"'s bin map and tries each key
// against the provider's PATH, per spec.md §4.5.
func (n *Npm) getAbspath(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return pathvalidate.HostBinPath(""), nil
	}
	if hp := n.DefaultAbspath(name); hp != "" {
		return hp, nil
	}

	res, err := n.Exec("npm", []string{"show", "--json", string(name)}, "")
	if err != nil {
		return pathvalidate.HostBinPath(""), nil
	}
	var out npmShowOutput
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil || len(out.Bin) == 0 {
		return pathvalidate.HostBinPath(""), nil
	}

	var single string
	if err := json.Unmarshal(out.Bin, &single); err == nil {
		if hp, ok := pathvalidate.BinAbspath(single, n.PATH); ok {
			return hp, nil
		}
		return pathvalidate.HostBinPath(""), nil
	}
	var asMap map[string]string
	if err := json.Unmarshal(out.Bin, &asMap); err == nil {
		for binName := range asMap {
			if hp, ok := pathvalidate.BinAbspath(binName, n.PATH); ok {
				return hp, nil
			}
		}
	}
	return pathvalidate.HostBinPath(""), nil
}

// npmListOutput is the subset of "npm list --depth=0 --json" consumed for
// version resolution.
type npmListOutput struct {
	Dependencies map[string]struct {
		Version string `json:"version"`
	} `json:"dependencies"`
}

// getVersion parses "npm list --depth=0 --json [--prefix=...|--global] <pkg>"
// for dependencies.<pkg>.version, per spec.md §4.5.
func (n *Npm) getVersion(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return semver.SemVer{}, nil
	}

	args := []string{"list", "--depth=0", "--json"}
	args = append(args, n.scopeArgs()...)
	args = append(args, string(name))

	// npm list exits non-zero for an unmet peer or a missing package while
	// still emitting usable JSON on stdout, so the result is parsed
	// regardless of the exec error.
	res, _ := n.Exec("npm", args, "")
	if res == nil {
		return semver.SemVer{}, nil
	}
	var out npmListOutput
	if err := json.Unmarshal([]byte(res.Stdout), &out); err != nil {
		return semver.SemVer{}, nil
	}
	dep, ok := out.Dependencies[string(name)]
	if !ok {
		return semver.SemVer{}, nil
	}
	if v, ok := semver.Parse(dep.Version); ok {
		return v, nil
	}
	return semver.SemVer{}, nil
}

func (n *Npm) scopeArgs() []string {
	if n.Prefix != "" {
		return []string{"--prefix=" + n.Prefix}
	}
	if n.Global {
		return []string{"--global"}
	}
	return nil
}

// install runs "npm install" for the binary's packages.
func (n *Npm) install(ctx override.Context) (any, error) {
	name, err := pathvalidate.BinName(ctx.BinaryName)
	if err != nil {
		return nil, err
	}
	packages, err := n.GetPackages(name)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cacheDir, 0o777); err != nil {
		return nil, err
	}
	_ = os.Chmod(cacheDir, 0o777)

	args := []string{"install", "--force", "--no-audit", "--no-fund", "--loglevel=error", "--cache=" + cacheDir}
	args = append(args, n.scopeArgs()...)
	for _, pkg := range packages {
		args = append(args, string(pkg))
	}
	_, err = n.Exec("npm", args, "")
	return nil, err
}
