package sigv4

import (
	"container/list"
	"sync"
	"time"

	sha256 "github.com/minio/sha256-simd"
)

// signingKeyCacheCap is the maximum number of derived keys held at once.
// Reference: spec §4.2 — caches are bounded, not allowed to grow with every
// distinct access key the process ever sees.
const signingKeyCacheCap = 16

// SigningKeyCache is a bounded, thread-safe LRU cache of derived signing
// keys, keyed by secret/date/region/service. It evicts the least recently
// used entry once the cache is full, zeroing the evicted key bytes before
// releasing them. Reference: AWS SDK v4 signer internal/v4/cache.go
// derivedKeyCache, generalized per spec §4.2 (REDESIGN FLAG: the teacher's
// cache is unbounded and never zeroes evicted material).
type SigningKeyCache struct {
	mu    sync.Mutex
	cap   int
	ll    *list.List
	items map[string]*list.Element
}

type signingKeyCacheEntry struct {
	cacheKey string
	date     time.Time
	key      []byte
}

// NewSigningKeyCache creates a bounded LRU cache of derived signing keys.
func NewSigningKeyCache() *SigningKeyCache {
	return &SigningKeyCache{
		cap:   signingKeyCacheCap,
		ll:    list.New(),
		items: make(map[string]*list.Element),
	}
}

// fingerprint derives a cache-safe identifier for a secret access key.
// The raw secret never enters the cache key or any log line.
func fingerprint(secretAccessKey string) string {
	sum := sha256.Sum256([]byte(secretAccessKey))
	return string(sum[:8])
}

// cacheKey is (secretKey-fingerprint, date, region, service) per spec
// §3/§4.2, so the previous day's derived key stays cached alongside
// today's rather than being clobbered by it — both are retained,
// bounded by the LRU cap, to handle clock-straddle requests.
func (c *SigningKeyCache) cacheKey(secretAccessKey, service, region string, t time.Time) string {
	shortDate := t.UTC().Format(ShortTimeFormat)
	return fingerprint(secretAccessKey) + "/" + shortDate + "/" + region + "/" + service
}

// get returns a cached key if present for t's calendar day.
func (c *SigningKeyCache) get(secretAccessKey, service, region string, t time.Time) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.cacheKey(secretAccessKey, service, region, t)
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	entry := el.Value.(*signingKeyCacheEntry)
	return entry.key, true
}

// set stores a derived key, evicting the least recently used entry (and
// zeroing its bytes) if the cache is at capacity. A distinct date yields
// a distinct cacheKey, so the old day's entry is not overwritten; it is
// only displaced once it is the least recently used entry past the cap.
func (c *SigningKeyCache) set(secretAccessKey, service, region string, t time.Time, derived []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.cacheKey(secretAccessKey, service, region, t)
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*signingKeyCacheEntry)
		zero(entry.key)
		entry.key = derived
		c.ll.MoveToFront(el)
		return
	}

	for c.ll.Len() >= c.cap {
		oldest := c.ll.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
	}

	el := c.ll.PushFront(&signingKeyCacheEntry{
		cacheKey: key,
		date:     t,
		key:      derived,
	})
	c.items[key] = el
}

// removeElement unlinks el, zeroing its key material before it is dropped.
func (c *SigningKeyCache) removeElement(el *list.Element) {
	entry := el.Value.(*signingKeyCacheEntry)
	zero(entry.key)
	delete(c.items, entry.cacheKey)
	c.ll.Remove(el)
}

// zero overwrites key material in place so it does not linger on the heap
// past eviction.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
