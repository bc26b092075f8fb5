package dummydb

import (
	"context"
	"sync"

	"github.com/trezcool/shule/core/ident"
)

type seqKey struct {
	kind ident.Kind
	year int
}

type counterTable struct {
	sync.Mutex
	values map[seqKey]int64
}

type counter struct {
	db *counterTable
}

var _ ident.Counter = (*counter)(nil) // interface compliance check

func NewCounter(db *DB) ident.Counter {
	return &counter{db: db.sequences}
}

// Next increments the counter. Within a transaction that later fails the increment is undone,
// unless another caller advanced the counter in the meantime.
func (c *counter) Next(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	c.db.Lock()
	defer c.db.Unlock()

	key := seqKey{kind, year}
	c.db.values[key]++
	value := c.db.values[key]
	record(ctx, c.compareAndSet(key, value, value-1))
	return value, nil
}

func (c *counter) Seed(ctx context.Context, kind ident.Kind, year int, value int64) error {
	c.db.Lock()
	defer c.db.Unlock()

	key := seqKey{kind, year}
	if previous := c.db.values[key]; value > previous {
		c.db.values[key] = value
		record(ctx, c.compareAndSet(key, value, previous))
	}
	return nil
}

func (c *counter) Current(_ context.Context, kind ident.Kind, year int) (int64, error) {
	c.db.Lock()
	defer c.db.Unlock()
	return c.db.values[seqKey{kind, year}], nil
}

func (c *counter) compareAndSet(key seqKey, expected, value int64) undoFunc {
	return func() {
		c.db.Lock()
		defer c.db.Unlock()
		if c.db.values[key] == expected {
			c.db.values[key] = value
		}
	}
}
