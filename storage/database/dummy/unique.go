package dummydb

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/unique"
)

type uniqueChecker struct {
	db *DB
}

var _ unique.Checker = (*uniqueChecker)(nil) // interface compliance check

func NewUniqueChecker(db *DB) unique.Checker {
	return &uniqueChecker{db: db}
}

func valuesOf[T any](t *table[T], values func(T) map[string]string, excludeID string) []map[string]string {
	rows := t.list(func(row T) bool { return t.id(row) != excludeID })
	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, values(row))
	}
	return out
}

func (c *uniqueChecker) rows(entity, excludeID string) ([]map[string]string, error) {
	db := c.db
	switch entity {
	case unique.EntityUser:
		return valuesOf(db.users, userValues, excludeID), nil
	case unique.EntityStaff:
		return valuesOf(db.staff, staffValues, excludeID), nil
	case unique.EntityStudent:
		return valuesOf(db.students, studentValues, excludeID), nil
	case unique.EntityClass:
		return valuesOf(db.classes, classValues, excludeID), nil
	case unique.EntitySubject:
		return valuesOf(db.subjects, subjectValues, excludeID), nil
	case unique.EntityAttendance:
		return valuesOf(db.attendance, attendanceValues, excludeID), nil
	case unique.EntityTimetable:
		return valuesOf(db.timetables, timetableValues, excludeID), nil
	}
	return nil, errors.Errorf("no unique fields for %s", entity)
}

func (c *uniqueChecker) Exists(_ context.Context, entity string, match map[string]string, excludeID string) (bool, error) {
	rows, err := c.rows(entity, excludeID)
	if err != nil {
		return false, err
	}
	rules := c.db.policy.For(entity)

	for _, values := range rows {
		matched := true
		for field, want := range match {
			if fold(rules, field).Apply(values[field]) != want {
				matched = false
				break
			}
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// fold returns how the rules of an entity fold field.
func fold(rules []unique.Rule, field string) unique.Fold {
	for _, r := range rules {
		if r.Field == field {
			return r.Fold
		}
	}
	return unique.FoldNone
}
