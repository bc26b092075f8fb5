package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/unique"
)

var attendanceValues = attendance.Attendance.UniqueValues

type attendanceRepository struct {
	db       *DB
	conflict func(row, existing attendance.Attendance) error
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntityAttendance, attendanceValues)}
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.ID = newID()
	return createRow(ctx, repo.db.attendance, a, repo.conflict)
}

func (repo *attendanceRepository) QueryAttendance(_ context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Attendance, error) {
	sheets := repo.db.attendance.list(func(a attendance.Attendance) bool {
		if filter == nil {
			return true
		}
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			return false
		}
		if filter.Section != "" && a.Section != filter.Section {
			return false
		}
		if !filter.DateFrom.IsZero() && a.Date.Before(core.TruncateDay(filter.DateFrom, nil)) {
			return false
		}
		if !filter.DateTo.IsZero() && a.Date.After(core.TruncateDay(filter.DateTo, nil)) {
			return false
		}
		if filter.StudentID != "" {
			if _, ok := a.Entry(filter.StudentID); !ok {
				return false
			}
		}
		return idIn(filter.IDs, a.ID)
	})
	orderBy(sheets, ordering)
	return sheets, nil
}

func (repo *attendanceRepository) GetAttendance(_ context.Context, id string) (attendance.Attendance, error) {
	return getRow(repo.db.attendance, id, attendance.ErrNotFound)
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	return updateRow(ctx, repo.db.attendance, a, repo.conflict, attendance.ErrNotFound)
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.attendance, id, attendance.ErrNotFound)
}
