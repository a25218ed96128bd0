package binary

import "encoding/json"

// MarshalJSON implements spec.md §6's serialization contract for the
// aggregate: field names match §3's Binary record, with handler overrides
// coerced to their string form (literal values render via fmt, callables
// render as their handler kind) since they are not JSON-native.
func (b *Binary) MarshalJSON() ([]byte, error) {
	providerNames := make([]string, len(b.BinprovidersSupported))
	for i, p := range b.BinprovidersSupported {
		providerNames[i] = p.Name()
	}

	overrides := make(map[string]map[string]string, len(b.Overrides))
	for providerName, handlers := range b.Overrides {
		inner := make(map[string]string, len(handlers))
		for handlerType, h := range handlers {
			inner[string(handlerType)] = h.String()
		}
		overrides[providerName] = inner
	}

	version := ""
	if b.HasVersion {
		version = b.LoadedVersion.String()
	}

	return json.Marshal(struct {
		Name                  string                       `json:"name"`
		Description           string                       `json:"description,omitempty"`
		BinprovidersSupported []string                      `json:"binproviders"`
		Overrides             map[string]map[string]string `json:"overrides,omitempty"`
		Binprovider           string                       `json:"binprovider,omitempty"`
		Abspath               string                       `json:"abspath,omitempty"`
		Version               string                       `json:"version,omitempty"`
		SHA256                string                       `json:"sha256,omitempty"`
	}{
		Name:                  string(b.Name),
		Description:           b.Description,
		BinprovidersSupported: providerNames,
		Overrides:             overrides,
		Binprovider:           b.LoadedBinproviderName,
		Abspath:               string(b.LoadedAbspath),
		Version:               version,
		SHA256:                b.LoadedSHA256,
	})
}
