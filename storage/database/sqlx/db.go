// Package sqlxrepos implements the repositories on Postgres with sqlx and squirrel.
package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/unique"
)

// SQLSTATE codes
const (
	invalidTextRepresentation = "22P02"
	foreignKeyViolation       = "23503"
	uniqueViolation           = "23505"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type DB struct {
	db     *sqlx.DB
	policy *unique.Policy
}

func NewDB(db *sqlx.DB, policy *unique.Policy) *DB {
	return &DB{db: db, policy: policy}
}

type txKey struct{}

var _ core.Transactor = (*DB)(nil) // interface compliance check

// WithinTx runs fn inside a transaction, committed when fn succeeds. A nested call joins the
// outer transaction.
func (db *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// ext returns the transaction of ctx, or the database outside of one.
func (db *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return db.db
}

// mapError translates driver errors into the app's: missing rows, unique and foreign key violations.
func (db *DB) mapError(err error, entity string, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case invalidTextRepresentation: // malformed uuid
			if notFound != nil {
				return notFound
			}
		case uniqueViolation:
			if rule, ok := db.policy.FromConstraint(pqErr.Constraint); ok {
				return rule.Violation()
			}
		case foreignKeyViolation:
			return core.NewInUseError(entity, pqErr.Table)
		}
	}
	return errors.Wrapf(err, "querying %s", entity)
}

func (db *DB) get(ctx context.Context, dest interface{}, q sq.Sqlizer, entity string, notFound error) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return db.mapError(sqlx.GetContext(ctx, db.ext(ctx), dest, query, args...), entity, notFound)
}

func (db *DB) selectAll(ctx context.Context, dest interface{}, q sq.Sqlizer, entity string) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return db.mapError(sqlx.SelectContext(ctx, db.ext(ctx), dest, query, args...), entity, nil)
}

// exec runs q, returning notFound when it affected no row.
func (db *DB) exec(ctx context.Context, q sq.Sqlizer, entity string, notFound error) error {
	query, args, err := q.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := db.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return db.mapError(err, entity, notFound)
	}
	if notFound == nil {
		return nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}

func orderBy(q sq.SelectBuilder, ordering []core.DBOrdering) sq.SelectBuilder {
	if len(ordering) == 0 {
		return q.OrderBy("created_at DESC")
	}
	clauses := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		clauses = append(clauses, ord.String())
	}
	return q.OrderBy(append(clauses, "created_at DESC")...)
}

func like(s string) string {
	return "%" + s + "%"
}

// searchAny matches s against any of the columns, case-insensitively.
func searchAny(s string, columns ...string) sq.Or {
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: like(s)})
	}
	return or
}

// nullable converts an optional reference to a driver value.
func nullable(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// jsonColumn stores T as JSONB.
type jsonColumn[T any] struct {
	V T
}

func (c jsonColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (c *jsonColumn[T]) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return errors.Errorf("cannot scan %T into a JSON column", src)
	}
	return json.Unmarshal(b, &c.V)
}
