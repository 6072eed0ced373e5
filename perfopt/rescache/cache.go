package rescache

import (
	"container/list"
	"sync"
	"time"

	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/stg/mwf"
)

type Config struct {
	MaxSize int
	TTL     time.Duration

	// Compress round-trips values through Serial before storage. The stored
	// form is opaque; retrieval must reproduce the original value exactly.
	Compress bool
	Serial   mwf.Serial
}

type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Cache is a least-recently-used cache with per-entry time-to-live. Expiry
// is lazy: an entry past its deadline is removed on the next Get or Has and
// reported as a miss.
type Cache[K comparable, V any] struct {
	logger l.Wrapper
	cfg    Config

	lock    sync.Mutex
	entries map[K]*list.Element
	order   *list.List // front is most recently used

	hits      int64
	misses    int64
	evictions int64
}

type cacheEntry[K comparable, V any] struct {
	key         K
	value       V
	blob        []byte
	compressed  bool
	expireAt    time.Time
	accessCount int
}

func NewCache[K comparable, V any](cfg Config, logger l.Wrapper) *Cache[K, V] {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "resultCacheImpl"))

	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 100
	}

	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute * 5
	}

	if cfg.Compress && cfg.Serial == nil {
		cfg.Serial = &mwf.JSONSerial{}
	}

	return &Cache[K, V]{
		logger:  logger,
		cfg:     cfg,
		entries: make(map[K]*list.Element),
		order:   list.New(),
	}
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.SetTTL(key, value, c.cfg.TTL)
}

func (c *Cache[K, V]) SetTTL(key K, value V, ttl time.Duration) {
	entry := &cacheEntry[K, V]{
		key:      key,
		expireAt: time.Now().Add(ttl),
	}

	if c.cfg.Compress {
		blob, err := c.cfg.Serial.Marshal(value)
		if err != nil {
			c.logger.WithFields(l.ErrorField(err)).Warn("compress failed, storing raw")

			entry.value = value
		} else {
			entry.blob = blob
			entry.compressed = true
		}
	} else {
		entry.value = value
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)

		return
	}

	c.entries[key] = c.order.PushFront(entry)

	for len(c.entries) > c.cfg.MaxSize {
		c.evictOldest()
	}
}

func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	entry, exists := c.liveEntry(key)
	if !exists {
		c.misses++

		return
	}

	if entry.compressed {
		var v V

		if err := c.cfg.Serial.Unmarshal(entry.blob, &v); err != nil {
			c.logger.WithFields(l.ErrorField(err)).Error("decompress failed")

			c.removeKey(key)
			c.misses++

			return
		}

		value = v
	} else {
		value = entry.value
	}

	entry.accessCount++
	c.order.MoveToFront(c.entries[key])
	c.hits++
	ok = true

	return
}

func (c *Cache[K, V]) Has(key K) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if _, exists := c.liveEntry(key); !exists {
		c.misses++

		return false
	}

	c.hits++

	return true
}

func (c *Cache[K, V]) Delete(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.removeKey(key)
}

func (c *Cache[K, V]) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.entries = make(map[K]*list.Element)
	c.order.Init()
	c.hits = 0
	c.misses = 0
	c.evictions = 0
}

func (c *Cache[K, V]) Size() int {
	c.lock.Lock()
	defer c.lock.Unlock()

	return len(c.entries)
}

func (c *Cache[K, V]) HitRate() float64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.hitRateLocked()
}

func (c *Cache[K, V]) GetStats() Stats {
	c.lock.Lock()
	defer c.lock.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.entries),
	}
}

// liveEntry resolves key to an unexpired entry, deleting it when the TTL has
// passed. Callers hold the lock.
func (c *Cache[K, V]) liveEntry(key K) (*cacheEntry[K, V], bool) {
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	// nolint:forcetypeassert
	entry := el.Value.(*cacheEntry[K, V])

	if time.Now().After(entry.expireAt) {
		c.removeKey(key)

		return nil, false
	}

	return entry, true
}

func (c *Cache[K, V]) removeKey(key K) {
	if el, ok := c.entries[key]; ok {
		c.order.Remove(el)
		delete(c.entries, key)
	}
}

func (c *Cache[K, V]) evictOldest() {
	el := c.order.Back()
	if el == nil {
		return
	}

	// nolint:forcetypeassert
	entry := el.Value.(*cacheEntry[K, V])

	c.order.Remove(el)
	delete(c.entries, entry.key)
	c.evictions++
}

func (c *Cache[K, V]) hitRateLocked() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}

	return float64(c.hits) / float64(total)
}
