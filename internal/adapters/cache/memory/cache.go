package memory

import (
	"context"
	"sync"
	"time"

	"pet-guardianship/internal/platform/cache"
)

// sweepInterval es cada cuánto Write barre entradas vencidas.
const sweepInterval = time.Minute

type entry struct {
	value   []byte
	expires time.Time
	tags    []string
}

// Cache es el cache in-process: un solo proceso, pensado para dev y tests.
// Con varias instancias hay que usar el adapter de redis.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	tags    map[string]map[string]struct{}
	now     func() time.Time

	// epoch avanza con cada Invalidate; invalidated guarda el epoch de la última
	// invalidación de cada tag. Al barrer se vacía y floor pasa a ser el epoch actual:
	// una escritura cargada antes de floor se descarta.
	epoch       uint64
	floor       uint64
	invalidated map[string]uint64
	nextSweep   time.Time
}

var _ cache.Store = (*Cache)(nil)

func New() *Cache {
	return &Cache{
		entries:     make(map[string]entry),
		tags:        make(map[string]map[string]struct{}),
		invalidated: make(map[string]uint64),
		now:         time.Now,
	}
}

func (c *Cache) Read(ctx context.Context, key cache.Key) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := key.String()
	e, ok := c.entries[k]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expires) {
		c.removeLocked(k)
		return nil, false, nil
	}
	return append([]byte(nil), e.value...), true, nil
}

func (c *Cache) Epoch(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch, nil
}

func (c *Cache) Write(ctx context.Context, key cache.Key, value []byte, ttl time.Duration, since uint64, tags ...string) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if !now.Before(c.nextSweep) {
		c.sweepLocked(now)
	}

	all := withTag(key.Tag, tags)
	if since < c.floor {
		return false, nil
	}
	for _, tag := range all {
		if c.invalidated[tag] > since {
			return false, nil
		}
	}

	k := key.String()
	if _, ok := c.entries[k]; ok {
		c.removeLocked(k)
	}
	c.entries[k] = entry{value: append([]byte(nil), value...), expires: now.Add(ttl), tags: all}
	for _, tag := range all {
		set, ok := c.tags[tag]
		if !ok {
			set = make(map[string]struct{})
			c.tags[tag] = set
		}
		set[k] = struct{}{}
	}
	return true, nil
}

func (c *Cache) Invalidate(ctx context.Context, tags ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		c.invalidated[tag] = c.epoch
		for k := range c.tags[tag] {
			c.removeLocked(k)
		}
		delete(c.tags, tag)
	}
	return nil
}

// Len cuenta entradas guardadas (incluye vencidas aún no barridas).
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// removeLocked borra la entrada y la saca de los sets de sus tags.
func (c *Cache) removeLocked(k string) {
	e, ok := c.entries[k]
	if !ok {
		return
	}
	delete(c.entries, k)
	for _, tag := range e.tags {
		set := c.tags[tag]
		delete(set, k)
		if len(set) == 0 {
			delete(c.tags, tag)
		}
	}
}

func (c *Cache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			c.removeLocked(k)
		}
	}
	c.floor = c.epoch
	clear(c.invalidated)
	c.nextSweep = now.Add(sweepInterval)
}

func withTag(tag string, extra []string) []string {
	out := make([]string, 0, len(extra)+1)
	for _, t := range append([]string{tag}, extra...) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
