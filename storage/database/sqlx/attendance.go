package sqlxrepos

import (
	"context"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/attendance"
)

var attendanceColumns = []string{"id", "class_id", "section", "date", "taken_by", "entries", "created_at", "updated_at"}

type attendanceRow struct {
	attendance.Attendance
	Entries jsonColumn[[]attendance.Entry] `db:"entries"`
}

func (r attendanceRow) sheet() attendance.Attendance {
	a := r.Attendance
	a.Entries = r.Entries.V
	return a
}

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func attendanceValues(a attendance.Attendance) map[string]interface{} {
	return map[string]interface{}{
		"class_id":   a.ClassID,
		"section":    a.Section,
		"date":       a.Date,
		"taken_by":   nullable(a.TakenBy),
		"entries":    jsonColumn[[]attendance.Entry]{V: a.Entries},
		"updated_at": a.UpdatedAt,
	}
}

// containsJSON matches rows whose JSONB column holds an array element with the given fields.
func containsJSON(column string, element map[string]string) (sq.Sqlizer, error) {
	b, err := json.Marshal([]map[string]string{element})
	if err != nil {
		return nil, err
	}
	return sq.Expr(column+" @> ?::jsonb", string(b)), nil
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	a.ID = newID()
	values := attendanceValues(a)
	values["id"] = a.ID
	values["created_at"] = a.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("attendance").SetMap(values), "attendance", nil); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (repo *attendanceRepository) QueryAttendance(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering) ([]attendance.Attendance, error) {
	q := psql.Select(attendanceColumns...).From("attendance")
	if filter != nil {
		if filter.ClassID != "" {
			q = q.Where(sq.Eq{"class_id": filter.ClassID})
		}
		if filter.Section != "" {
			q = q.Where(sq.Eq{"section": filter.Section})
		}
		if !filter.DateFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"date": core.TruncateDay(filter.DateFrom, nil)})
		}
		if !filter.DateTo.IsZero() {
			q = q.Where(sq.LtOrEq{"date": core.TruncateDay(filter.DateTo, nil)})
		}
		if filter.StudentID != "" {
			cond, err := containsJSON("entries", map[string]string{"student_id": filter.StudentID})
			if err != nil {
				return nil, err
			}
			q = q.Where(cond)
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	var rows []attendanceRow
	if err := repo.db.selectAll(ctx, &rows, orderBy(q, ordering), "attendance"); err != nil {
		return nil, err
	}
	sheets := make([]attendance.Attendance, 0, len(rows))
	for _, r := range rows {
		sheets = append(sheets, r.sheet())
	}
	return sheets, nil
}

func (repo *attendanceRepository) GetAttendance(ctx context.Context, id string) (attendance.Attendance, error) {
	var r attendanceRow
	q := psql.Select(attendanceColumns...).From("attendance").Where(sq.Eq{"id": id})
	if err := repo.db.get(ctx, &r, q, "attendance", attendance.ErrNotFound); err != nil {
		return attendance.Attendance{}, err
	}
	return r.sheet(), nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := psql.Update("attendance").SetMap(attendanceValues(a)).Where(sq.Eq{"id": a.ID})
	if err := repo.db.exec(ctx, q, "attendance", attendance.ErrNotFound); err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (repo *attendanceRepository) DeleteAttendance(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("attendance").Where(sq.Eq{"id": id}), "attendance", attendance.ErrNotFound)
}
