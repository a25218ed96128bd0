package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/autonomous-bits/binprovider/internal/binary"
)

// providersCmd represents the providers command group.
var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect previously resolved binaries",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List binaries recorded in the lockfile",
	RunE:  runProvidersList,
}

var providersListFlags struct {
	jsonOutput bool
	lockPath   string
}

func init() {
	providersCmd.AddCommand(providersListCmd)
	providersListCmd.Flags().BoolVar(&providersListFlags.jsonOutput, "json", false, "Output as JSON")
	providersListCmd.Flags().StringVar(&providersListFlags.lockPath, "lockfile", "", "Path to providers.lock.json (default .binprovider/providers.lock.json)")
}

func runProvidersList(_ *cobra.Command, _ []string) error {
	lock, err := binary.ReadLockFile(providersListFlags.lockPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if !globalFlags.quiet {
				fmt.Println("No binaries resolved yet. Run 'binprovider binary load-or-install' first.")
			}
			return nil
		}
		return err
	}

	if len(lock.Binaries) == 0 {
		if !globalFlags.quiet {
			fmt.Println("No binaries resolved yet.")
		}
		return nil
	}

	if providersListFlags.jsonOutput {
		out, err := json.MarshalIndent(lock.Binaries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Name", "Provider", "Version", "Abspath", "Resolved At")
	for _, entry := range lock.Binaries {
		if err := table.Append(entry.Name, entry.Provider, entry.Version, entry.Abspath, entry.ResolvedAt); err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if !globalFlags.quiet {
		fmt.Printf("\nTotal: %d binar(ies)\n", len(lock.Binaries))
	}
	return nil
}
