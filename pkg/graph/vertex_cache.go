package graph

import (
	"sync"

	"github.com/pkg/errors"
)

// VertexCache keeps transformed vertex tables for the dynamic edge join.
// It is filled while vertex files are transformed, frozen before dynamic
// edges are joined against it and reset when the run ends.
type VertexCache struct {
	mutex  sync.RWMutex
	tables map[EntityType]*Table
	frozen bool
}

// NewVertexCache creates an empty cache
func NewVertexCache() *VertexCache {
	return &VertexCache{tables: make(map[EntityType]*Table)}
}

// Put stores the transformed table of an entity type
func (c *VertexCache) Put(entity EntityType, t *Table) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.frozen {
		return errors.Errorf("vertex cache is frozen, cannot store %s", entity)
	}
	c.tables[entity] = t
	return nil
}

// Get returns the transformed table of an entity type
func (c *VertexCache) Get(entity EntityType) (*Table, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	t, ok := c.tables[entity]
	if !ok {
		return nil, errors.Wrapf(ErrVertexTableMissing, "%s", entity)
	}
	return t, nil
}

// Freeze makes the cache read-only
func (c *VertexCache) Freeze() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.frozen = true
}

// Reset discards every table and makes the cache writable again
func (c *VertexCache) Reset() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.tables = make(map[EntityType]*Table)
	c.frozen = false
}

// Len returns the number of cached tables
func (c *VertexCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.tables)
}
