package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/unique"
)

var entityTables = map[string]string{
	unique.EntityUser:       "users",
	unique.EntityStaff:      "staff",
	unique.EntityStudent:    "students",
	unique.EntityParent:     "parents",
	unique.EntityClass:      "classes",
	unique.EntitySubject:    "subjects",
	unique.EntityAttendance: "attendance",
	unique.EntityTimetable:  "timetables",
}

type uniqueChecker struct {
	db *DB
}

var _ unique.Checker = (*uniqueChecker)(nil) // interface compliance check

func NewUniqueChecker(db *DB) unique.Checker {
	return &uniqueChecker{db: db}
}

// Exists relies on stored values being folded already (emails lower-cased, subject codes upper-cased).
func (c *uniqueChecker) Exists(ctx context.Context, entity string, match map[string]string, excludeID string) (bool, error) {
	tbl, ok := entityTables[entity]
	if !ok {
		return false, errors.Errorf("no table for %s", entity)
	}

	where := sq.Eq{}
	for col, v := range match {
		where[col] = v
	}
	q := psql.Select("1").From(tbl).Where(where).Limit(1)
	if excludeID != "" {
		q = q.Where(sq.NotEq{"id": excludeID})
	}

	var one int
	err := c.db.get(ctx, &one, q, entity, errNoMatch)
	switch {
	case err == nil:
		return true, nil
	case err == errNoMatch:
		return false, nil
	}
	return false, err
}

var errNoMatch = errors.New("no match")
