package main

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/autonomous-bits/binprovider/internal/binary"
	"github.com/autonomous-bits/binprovider/internal/config"
	"github.com/autonomous-bits/binprovider/internal/diagnostics"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
)

// binaryCmd runs the full Binary aggregate (spec.md §4.6) against a name
// declared in the manifest's binaries list.
var binaryCmd = &cobra.Command{
	Use:   "binary",
	Short: "Resolve a binary across its configured providers",
}

var binaryFlags struct {
	provider string
	timeout  time.Duration
	noLock   bool
}

func init() {
	for _, sub := range []*cobra.Command{
		{Use: "load <name>", Short: "Load a binary without installing it", Args: cobra.ExactArgs(1), RunE: runBinary(binaryOpLoad)},
		{Use: "install <name>", Short: "Install a binary unconditionally", Args: cobra.ExactArgs(1), RunE: runBinary(binaryOpInstall)},
		{Use: "load-or-install <name>", Short: "Load a binary, installing it if missing", Args: cobra.ExactArgs(1), RunE: runBinary(binaryOpLoadOrInstall)},
	} {
		sub.Flags().StringVar(&binaryFlags.provider, "provider", "", "Restrict resolution to a single provider")
		sub.Flags().DurationVar(&binaryFlags.timeout, "timeout", 0, "Per-call install/version timeout override")
		sub.Flags().BoolVar(&binaryFlags.noLock, "no-lock", false, "Skip updating the lockfile")
		binaryCmd.AddCommand(sub)
	}
}

type binaryOp int

const (
	binaryOpLoad binaryOp = iota
	binaryOpInstall
	binaryOpLoadOrInstall
)

func runBinary(op binaryOp) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		name := args[0]
		formatter := diagnostics.NewFormatter(useColor)

		cfg, err := loadManifest()
		if err != nil {
			return fmt.Errorf("loading manifest: %w", err)
		}
		providers, err := config.BuildProviders(cfg)
		if err != nil {
			return fmt.Errorf("building providers: %w", err)
		}

		bc := findBinaryConfig(cfg, name)
		ordered := config.ProvidersFor(bc, providers)
		if len(ordered) == 0 {
			return fmt.Errorf("no providers configured for binary %q", name)
		}

		b := binary.New(pathvalidate.BinaryName(name), bc.Description, ordered, config.ResolveOverrides(bc.Overrides))

		var sp *spinner.Spinner
		if op != binaryOpLoad && !globalFlags.quiet {
			sp = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = fmt.Sprintf(" Resolving %s...", name)
			sp.Start()
		}

		var result *binary.Binary
		switch op {
		case binaryOpLoad:
			result, err = b.Load(binaryFlags.provider, binaryFlags.timeout)
		case binaryOpInstall:
			result, err = b.Install(binaryFlags.provider, binaryFlags.timeout)
		default:
			result, err = b.LoadOrInstall(binaryFlags.provider, binaryFlags.timeout)
		}

		if sp != nil {
			sp.Stop()
		}

		out := cmd.OutOrStdout()
		if err != nil {
			formatter.PrintFailed(out, name, err)
			return err
		}

		version := ""
		if result.HasVersion {
			version = result.LoadedVersion.String()
		}
		formatter.PrintLoaded(out, name, result.LoadedBinproviderName, string(result.LoadedAbspath), version)

		if !binaryFlags.noLock {
			if err := recordLockEntry(result); err != nil {
				return err
			}
		}
		return nil
	}
}

func findBinaryConfig(cfg *config.Config, name string) config.BinaryConfig {
	for _, bc := range cfg.Binaries {
		if bc.Name == name {
			return bc
		}
	}
	return config.BinaryConfig{Name: name, Providers: allProviderNames(cfg)}
}

func allProviderNames(cfg *config.Config) []string {
	out := make([]string, 0, len(cfg.Providers))
	for _, pc := range cfg.Providers {
		out = append(out, pc.Name)
	}
	return out
}

func recordLockEntry(b *binary.Binary) error {
	existing, err := binary.ReadLockFile("")
	if err != nil {
		existing = nil
	}
	merged := binary.MergeLockEntries(existing, []binary.LockEntry{b.LockEntry()})
	return binary.WriteLockFile("", merged)
}
