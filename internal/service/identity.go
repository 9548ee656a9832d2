package service

import (
	"crypto/sha512"
	"sync"
	"time"

	"github.com/cartolab/atlasmeta/pkg/types"
)

// identityCache holds credential resolutions for a short TTL. Entries are
// keyed by the SHA-512 digest of the raw key, so raw credentials never
// sit in memory longer than a request. Only identity is cached here;
// permission data is re-read on every operation.
type identityCache struct {
	mu sync.Mutex

	ttl time.Duration
	// now is swappable for tests.
	now     func() time.Time
	entries map[[sha512.Size]byte]identityEntry
}

type identityEntry struct {
	principal types.Principal
	expires   time.Time
}

func newIdentityCache(ttl time.Duration) *identityCache {
	return &identityCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[[sha512.Size]byte]identityEntry),
	}
}

func (c *identityCache) get(rawKey string) (types.Principal, bool) {
	digest := sha512.Sum512([]byte(rawKey))
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[digest]
	if !ok {
		return types.Principal{}, false
	}
	if c.now().After(entry.expires) {
		delete(c.entries, digest)
		return types.Principal{}, false
	}
	return entry.principal, true
}

func (c *identityCache) put(rawKey string, p types.Principal) {
	digest := sha512.Sum512([]byte(rawKey))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = identityEntry{principal: p, expires: c.now().Add(c.ttl)}
}
