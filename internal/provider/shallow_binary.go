package provider

import (
	"encoding/json"
	"path/filepath"

	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// UnknownSHA256 is the sentinel used when a sha256 could not be computed
// (a dry-run install). It is never cached.
const UnknownSHA256 = "unknown"

// ShallowBinary is the immutable record of a binary located or installed
// through exactly one provider (spec.md §3). It is built only via NewShallowBinary and
// never mutated afterward.
type ShallowBinary struct {
	name                   pathvalidate.BinaryName
	description            string
	binprovidersSupported  []string
	loadedBinproviderName  string // weak back-reference by name; the owning Provider is not retained
	loadedAbspath          pathvalidate.HostBinPath
	loadedVersion          semver.SemVer
	hasVersion             bool
	loadedSHA256           string
}

// ShallowBinaryParams bundles ShallowBinary's constructor arguments.
type ShallowBinaryParams struct {
	Name                  pathvalidate.BinaryName
	Description           string
	BinprovidersSupported []string
	LoadedBinproviderName string
	LoadedAbspath         pathvalidate.HostBinPath
	LoadedVersion         semver.SemVer
	HasVersion            bool
	LoadedSHA256          string // optional; "" means unknown, UnknownSHA256 is never cached upstream
}

// NewShallowBinary validates and constructs an immutable ShallowBinary.
func NewShallowBinary(p ShallowBinaryParams) (*ShallowBinary, error) {
	if p.Name == "" {
		return nil, ErrInvalidInput
	}
	return &ShallowBinary{
		name:                  p.Name,
		description:           p.Description,
		binprovidersSupported: append([]string(nil), p.BinprovidersSupported...),
		loadedBinproviderName: p.LoadedBinproviderName,
		loadedAbspath:         p.LoadedAbspath,
		loadedVersion:         p.LoadedVersion,
		hasVersion:            p.HasVersion,
		loadedSHA256:          p.LoadedSHA256,
	}, nil
}

func (b *ShallowBinary) Name() pathvalidate.BinaryName     { return b.name }
func (b *ShallowBinary) Description() string               { return b.description }
func (b *ShallowBinary) BinprovidersSupported() []string    { return append([]string(nil), b.binprovidersSupported...) }
func (b *ShallowBinary) LoadedBinproviderName() string      { return b.loadedBinproviderName }
func (b *ShallowBinary) LoadedAbspath() pathvalidate.HostBinPath { return b.loadedAbspath }
func (b *ShallowBinary) LoadedVersion() (semver.SemVer, bool) { return b.loadedVersion, b.hasVersion }
func (b *ShallowBinary) LoadedSHA256() string               { return b.loadedSHA256 }

// BinFilename returns the base filename of the loaded abspath.
func (b *ShallowBinary) BinFilename() string {
	if b.loadedAbspath == "" {
		return ""
	}
	return filepath.Base(string(b.loadedAbspath))
}

// BinDir returns the parent directory of the loaded abspath.
func (b *ShallowBinary) BinDir() string {
	if b.loadedAbspath == "" {
		return ""
	}
	return filepath.Dir(string(b.loadedAbspath))
}

// LoadedRespath returns the symlink-resolved form of the loaded abspath.
func (b *ShallowBinary) LoadedRespath() string {
	if b.loadedAbspath == "" {
		return ""
	}
	resolved, err := filepath.EvalSymlinks(string(b.loadedAbspath))
	if err != nil {
		return string(b.loadedAbspath)
	}
	return resolved
}

// IsExecutable reports whether the loaded abspath has the execute bit set.
func (b *ShallowBinary) IsExecutable() bool {
	if b.loadedAbspath == "" {
		return false
	}
	_, err := pathvalidate.HostExecutable(string(b.loadedAbspath))
	return err == nil
}

// IsScript reports whether the loaded abspath looks like an interpreted
// script by extension.
func (b *ShallowBinary) IsScript() bool {
	return pathvalidate.IsScript(string(b.loadedAbspath))
}

// IsValid reports name ∧ abspath ∧ version ∧ (executable ∨ script).
func (b *ShallowBinary) IsValid() bool {
	return b.name != "" &&
		b.loadedAbspath != "" &&
		b.hasVersion &&
		(b.IsExecutable() || b.IsScript())
}

// MarshalJSON implements spec.md §6's serialization contract: field names
// match §3's record fields, including the binprovider/abspath/version/
// sha256 aliases.
func (b *ShallowBinary) MarshalJSON() ([]byte, error) {
	version := ""
	if b.hasVersion {
		version = b.loadedVersion.String()
	}
	return json.Marshal(struct {
		Name                  pathvalidate.BinaryName `json:"name"`
		Description           string                  `json:"description,omitempty"`
		BinprovidersSupported []string                `json:"binproviders"`
		Binprovider           string                  `json:"binprovider,omitempty"`
		Abspath               string                  `json:"abspath,omitempty"`
		Version               string                  `json:"version,omitempty"`
		SHA256                string                  `json:"sha256,omitempty"`
	}{
		Name:                  b.name,
		Description:           b.description,
		BinprovidersSupported: b.binprovidersSupported,
		Binprovider:           b.loadedBinproviderName,
		Abspath:               string(b.loadedAbspath),
		Version:               version,
		SHA256:                b.loadedSHA256,
	})
}
