package provider

import (
	"sync"

	"github.com/autonomous-bits/binprovider/internal/override"
	"github.com/autonomous-bits/binprovider/internal/pathvalidate"
	"github.com/autonomous-bits/binprovider/internal/semver"
)

// cacheKey identifies one cached result within a provider instance.
type cacheKey struct {
	handler override.HandlerType
	binary  pathvalidate.BinaryName
}

// resultCache is a per-provider-instance cache. The contract forbids
// concurrent use of a single Provider, but the mutex keeps cache access
// safe for the rare case of a caller sharing one across goroutines for
// read-only inspection (e.g. CLI status reporting mid-install).
type resultCache struct {
	mu      sync.Mutex
	entries map[cacheKey]any
}

func newResultCache() *resultCache {
	return &resultCache{entries: make(map[cacheKey]any)}
}

func (c *resultCache) get(handler override.HandlerType, name pathvalidate.BinaryName) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[cacheKey{handler, name}]
	return v, ok
}

// set stores v unless it is a sentinel "unknown" value for its handler
// type, per spec.md §4.4's caching discipline.
func (c *resultCache) set(handler override.HandlerType, name pathvalidate.BinaryName, v any) {
	if isUnknownValue(handler, v) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{handler, name}] = v
}

// invalidate removes a single cached entry, used by the nocache bypass.
func (c *resultCache) invalidate(handler override.HandlerType, name pathvalidate.BinaryName) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{handler, name})
}

func isUnknownValue(handler override.HandlerType, v any) bool {
	switch handler {
	case override.Abspath:
		p, _ := v.(pathvalidate.HostBinPath)
		return p == ""
	case override.Version:
		sv, _ := v.(semver.SemVer)
		return sv.IsUnknown() || sv == (semver.SemVer{})
	default:
		if s, ok := v.(string); ok {
			return s == "" || s == UnknownSHA256
		}
		return v == nil
	}
}
