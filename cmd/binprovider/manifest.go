package main

import (
	"fmt"
	"os"

	"github.com/autonomous-bits/binprovider/internal/config"
	"github.com/autonomous-bits/binprovider/internal/provider"
)

// loadManifest reads globalFlags.manifest if present, returning an empty
// Config (no providers/binaries configured) when the file does not exist so
// commands that build providers ad hoc (e.g. the per-provider subcommands)
// still work without a manifest.
func loadManifest() (*config.Config, error) {
	if _, err := os.Stat(globalFlags.manifest); err != nil {
		if os.IsNotExist(err) {
			return &config.Config{}, nil
		}
		return nil, err
	}
	return config.Load(globalFlags.manifest)
}

// providersFromManifest builds every provider declared in the manifest.
func providersFromManifest() (map[string]provider.Provider, error) {
	cfg, err := loadManifest()
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	providers, err := config.BuildProviders(cfg)
	if err != nil {
		return nil, fmt.Errorf("building providers: %w", err)
	}
	return providers, nil
}
