package tablecache

import (
	"container/list"
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/Krussell101/data-visualizer/pkg/dataset"
	"github.com/Krussell101/data-visualizer/pkg/table"
)

const DefaultCapacity = 32

// Cache is the bounded decoded-table cache. Hits are cheap map reads; misses
// go through a single-flight group so N concurrent callers for the same
// (datasetID, fingerprint) trigger exactly one loader invocation and share
// the result.
//
// Eviction is LRU and purely a performance concern: a table handed to a
// caller stays valid after eviction because tables are read-only and the
// cache only drops its own reference.
type Cache struct {
	mu       sync.Mutex
	capacity int
	lru      *list.List               // front=MRU
	index    map[string]*list.Element // datasetID -> element(Value=*entry)

	group singleflight.Group
	loads uint64 // loader invocations, for observability
}

type entry struct {
	datasetID   string
	fingerprint string
	tbl         *table.Table
}

func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		capacity: capacity,
		lru:      list.New(),
		index:    map[string]*list.Element{},
	}
}

// GetOrLoad returns the cached table for (datasetID, fingerprint), loading it
// through the loader on a miss. A fingerprint change for a known datasetID
// invalidates the stale entry before loading. Loader failures propagate to
// every concurrent waiter and leave the key unpopulated.
func (c *Cache) GetOrLoad(ctx context.Context, datasetID, fingerprint string, loader dataset.Loader) (*table.Table, error) {
	if tbl, ok := c.lookup(datasetID, fingerprint); ok {
		return tbl, nil
	}

	key := datasetID + "\x00" + fingerprint
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Double-check: another flight may have populated the entry
		// between our miss and this call
		if tbl, ok := c.lookup(datasetID, fingerprint); ok {
			return tbl, nil
		}

		c.mu.Lock()
		c.loads++
		c.mu.Unlock()

		tbl, err := loader.Load(ctx, datasetID, fingerprint)
		if err != nil {
			return nil, err
		}
		c.store(datasetID, fingerprint, tbl)
		return tbl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Invalidate drops the entry for a dataset, if any. Called when a dataset is
// deleted; reloads after eviction are handled by GetOrLoad itself.
func (c *Cache) Invalidate(datasetID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.index[datasetID]; e != nil {
		c.removeLocked(e)
	}
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// LoadCount returns how many times a loader was actually invoked.
func (c *Cache) LoadCount() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loads
}

func (c *Cache) lookup(datasetID, fingerprint string) (*table.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.index[datasetID]
	if e == nil {
		return nil, false
	}
	ent := e.Value.(*entry)
	if ent.fingerprint != fingerprint {
		// Dataset changed underneath its id; the old table must never be
		// served again
		c.removeLocked(e)
		return nil, false
	}
	c.lru.MoveToFront(e)
	return ent.tbl, true
}

func (c *Cache) store(datasetID, fingerprint string, tbl *table.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.index[datasetID]; e != nil {
		c.removeLocked(e)
	}

	e := c.lru.PushFront(&entry{datasetID: datasetID, fingerprint: fingerprint, tbl: tbl})
	c.index[datasetID] = e

	for c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
	}
}

func (c *Cache) removeLocked(e *list.Element) {
	ent := e.Value.(*entry)
	delete(c.index, ent.datasetID)
	c.lru.Remove(e)
}
