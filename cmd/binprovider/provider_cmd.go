package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autonomous-bits/binprovider/internal/config"
	"github.com/autonomous-bits/binprovider/internal/diagnostics"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

// providerNames enumerates every concrete provider package this CLI exposes
// a top-level command for (spec.md §6's `<provider> <op> <name>` shape).
var providerNames = []string{"apt", "brew", "pip", "npm", "env", "ansible", "pyinfra"}

// newProviderCmd builds the "<name>" command group with its seven
// operation subcommands (install|load|load_or_install|get_abspath|
// get_version|get_packages|get_sha256), each resolving the provider from
// the manifest if declared there, or its zero-value defaults otherwise.
func newProviderCmd(name string) *cobra.Command {
	root := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Operate the %s provider directly", name),
	}

	ops := []struct {
		use   string
		short string
		run   func(provider.Provider, string) (string, error)
	}{
		{"install <name>", "Install a binary, bypassing any existing PATH entry", runProviderInstall},
		{"load <name>", "Load a binary from PATH/cache without installing", runProviderLoad},
		{"load_or_install <name>", "Load a binary, installing it if missing", runProviderLoadOrInstall},
		{"get_abspath <name>", "Print the resolved absolute path", runProviderAbspath},
		{"get_version <name>", "Print the resolved version", runProviderVersion},
		{"get_packages <name>", "Print the package name(s) this binary maps to", runProviderPackages},
		{"get_sha256 <name>", "Print the resolved binary's sha256 checksum", runProviderSHA256},
	}

	for _, op := range ops {
		op := op
		root.AddCommand(&cobra.Command{
			Use:   op.use,
			Short: op.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := resolveProvider(name)
				if err != nil {
					return err
				}
				out, err := op.run(p, args[0])
				formatter := diagnostics.NewFormatter(useColor)
				if err != nil {
					formatter.PrintFailed(cmd.OutOrStdout(), args[0], err)
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
				return nil
			},
		})
	}
	return root
}

// resolveProvider returns the named provider as configured in the manifest,
// or its zero-value defaults when the manifest declares nothing for it.
func resolveProvider(name string) (provider.Provider, error) {
	providers, err := providersFromManifest()
	if err != nil {
		return nil, err
	}
	if p, ok := providers[name]; ok {
		return p, nil
	}
	built, err := config.BuildProviders(&config.Config{Providers: []config.ProviderConfig{{Name: name}}})
	if err != nil {
		return nil, err
	}
	return built[name], nil
}

func runProviderInstall(p provider.Provider, name string) (string, error) {
	bin, err := p.Install(pathvalidate.BinaryName(name))
	return shallowBinarySummary(bin), err
}

func runProviderLoad(p provider.Provider, name string) (string, error) {
	bin, err := p.Load(pathvalidate.BinaryName(name))
	return shallowBinarySummary(bin), err
}

func runProviderLoadOrInstall(p provider.Provider, name string) (string, error) {
	bin, err := p.LoadOrInstall(pathvalidate.BinaryName(name))
	return shallowBinarySummary(bin), err
}

func runProviderAbspath(p provider.Provider, name string) (string, error) {
	abspath, found, err := p.GetAbspath(pathvalidate.BinaryName(name), false)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s: not found", name)
	}
	return string(abspath), nil
}

func runProviderVersion(p provider.Provider, name string) (string, error) {
	abspath, found, err := p.GetAbspath(pathvalidate.BinaryName(name), false)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s: not found", name)
	}
	v, ok, err := p.GetVersion(pathvalidate.BinaryName(name), abspath, false)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%s: version unavailable", name)
	}
	return v.String(), nil
}

func runProviderPackages(p provider.Provider, name string) (string, error) {
	packages, err := p.GetPackages(pathvalidate.BinaryName(name))
	if err != nil {
		return "", err
	}
	out := ""
	for i, pkg := range packages {
		if i > 0 {
			out += " "
		}
		out += string(pkg)
	}
	return out, nil
}

func runProviderSHA256(p provider.Provider, name string) (string, error) {
	abspath, found, err := p.GetAbspath(pathvalidate.BinaryName(name), false)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%s: not found", name)
	}
	return p.GetSHA256(pathvalidate.BinaryName(name), abspath, false)
}

func shallowBinarySummary(bin *provider.ShallowBinary) string {
	if bin == nil {
		return "not found"
	}
	version := ""
	if v, ok := bin.LoadedVersion(); ok {
		version = v.String()
	}
	return fmt.Sprintf("%s (%s, %s)", bin.LoadedAbspath(), bin.LoadedBinproviderName(), version)
}
