package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/unique"
)

var timetableValues = timetable.Timetable.UniqueValues

type timetableRepository struct {
	db       *DB
	conflict func(row, existing timetable.Timetable) error
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) timetable.Repository {
	return &timetableRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntityTimetable, timetableValues)}
}

func teaches(t timetable.Timetable, teacherID string) bool {
	for _, p := range t.Periods {
		if p.TeacherID == teacherID {
			return true
		}
	}
	return false
}

func (repo *timetableRepository) CreateTimetable(ctx context.Context, t timetable.Timetable) (timetable.Timetable, error) {
	t.ID = newID()
	return createRow(ctx, repo.db.timetables, t, repo.conflict)
}

func (repo *timetableRepository) QueryTimetables(_ context.Context, filter *timetable.QueryFilter, ordering []core.DBOrdering) ([]timetable.Timetable, error) {
	tables := repo.db.timetables.list(func(t timetable.Timetable) bool {
		if filter == nil {
			return true
		}
		if filter.ClassID != "" && t.ClassID != filter.ClassID {
			return false
		}
		if filter.Section != "" && t.Section != filter.Section {
			return false
		}
		if len(filter.Days) > 0 && !containsInt(filter.Days, t.Day) {
			return false
		}
		if filter.TeacherID != "" && !teaches(t, filter.TeacherID) {
			return false
		}
		return idIn(filter.IDs, t.ID)
	})
	orderBy(tables, ordering)
	return tables, nil
}

func containsInt(ns []int, n int) bool {
	for _, v := range ns {
		if v == n {
			return true
		}
	}
	return false
}

func (repo *timetableRepository) GetTimetable(_ context.Context, id string) (timetable.Timetable, error) {
	return getRow(repo.db.timetables, id, timetable.ErrNotFound)
}

func (repo *timetableRepository) UpdateTimetable(ctx context.Context, t timetable.Timetable) (timetable.Timetable, error) {
	return updateRow(ctx, repo.db.timetables, t, repo.conflict, timetable.ErrNotFound)
}

func (repo *timetableRepository) DeleteTimetable(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.timetables, id, timetable.ErrNotFound)
}
