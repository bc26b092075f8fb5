package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/ident"
)

const (
	nextSequenceQuery = `INSERT INTO sequences (kind, year, value) VALUES ($1, $2, 1)
ON CONFLICT (kind, year) DO UPDATE SET value = sequences.value + 1
RETURNING value`

	seedSequenceQuery = `INSERT INTO sequences (kind, year, value) VALUES ($1, $2, $3)
ON CONFLICT (kind, year) DO UPDATE SET value = GREATEST(sequences.value, EXCLUDED.value)`

	currentSequenceQuery = `SELECT value FROM sequences WHERE kind = $1 AND year = $2`
)

// counter keeps the sequences in the sequences table. Used within a transaction, an increment
// is rolled back with it and holds the row lock until it ends.
type counter struct {
	db *DB
}

var _ ident.Counter = (*counter)(nil) // interface compliance check

func NewCounter(db *DB) ident.Counter {
	return &counter{db: db}
}

func (c *counter) Next(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	var value int64
	if err := c.db.ext(ctx).QueryRowxContext(ctx, nextSequenceQuery, string(kind), year).Scan(&value); err != nil {
		return 0, errors.Wrap(err, "incrementing sequence")
	}
	return value, nil
}

func (c *counter) Seed(ctx context.Context, kind ident.Kind, year int, value int64) error {
	_, err := c.db.ext(ctx).ExecContext(ctx, seedSequenceQuery, string(kind), year, value)
	return errors.Wrap(err, "seeding sequence")
}

func (c *counter) Current(ctx context.Context, kind ident.Kind, year int) (int64, error) {
	var value int64
	err := c.db.ext(ctx).QueryRowxContext(ctx, currentSequenceQuery, string(kind), year).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return value, errors.Wrap(err, "reading sequence")
}
