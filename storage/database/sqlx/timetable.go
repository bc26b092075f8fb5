package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/timetable"
)

var timetableColumns = []string{"id", "class_id", "section", "day", "periods", "created_at", "updated_at"}

type timetableRow struct {
	timetable.Timetable
	Periods jsonColumn[[]timetable.Period] `db:"periods"`
}

func (r timetableRow) timetable() timetable.Timetable {
	t := r.Timetable
	t.Periods = r.Periods.V
	return t
}

type timetableRepository struct {
	db *DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) timetable.Repository {
	return &timetableRepository{db: db}
}

func timetableValues(t timetable.Timetable) map[string]interface{} {
	return map[string]interface{}{
		"class_id":   t.ClassID,
		"section":    t.Section,
		"day":        t.Day,
		"periods":    jsonColumn[[]timetable.Period]{V: t.Periods},
		"updated_at": t.UpdatedAt,
	}
}

func (repo *timetableRepository) CreateTimetable(ctx context.Context, t timetable.Timetable) (timetable.Timetable, error) {
	t.ID = newID()
	values := timetableValues(t)
	values["id"] = t.ID
	values["created_at"] = t.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("timetables").SetMap(values), "timetable", nil); err != nil {
		return timetable.Timetable{}, err
	}
	return t, nil
}

func (repo *timetableRepository) QueryTimetables(ctx context.Context, filter *timetable.QueryFilter, ordering []core.DBOrdering) ([]timetable.Timetable, error) {
	q := psql.Select(timetableColumns...).From("timetables")
	if filter != nil {
		if filter.ClassID != "" {
			q = q.Where(sq.Eq{"class_id": filter.ClassID})
		}
		if filter.Section != "" {
			q = q.Where(sq.Eq{"section": filter.Section})
		}
		if len(filter.Days) > 0 {
			days := make([]int64, 0, len(filter.Days))
			for _, d := range filter.Days {
				days = append(days, int64(d))
			}
			q = q.Where(sq.Expr("day = ANY(?)", pq.Int64Array(days)))
		}
		if filter.TeacherID != "" {
			cond, err := containsJSON("periods", map[string]string{"teacher_id": filter.TeacherID})
			if err != nil {
				return nil, err
			}
			q = q.Where(cond)
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	var rows []timetableRow
	if err := repo.db.selectAll(ctx, &rows, orderBy(q, ordering), "timetable"); err != nil {
		return nil, err
	}
	tables := make([]timetable.Timetable, 0, len(rows))
	for _, r := range rows {
		tables = append(tables, r.timetable())
	}
	return tables, nil
}

func (repo *timetableRepository) GetTimetable(ctx context.Context, id string) (timetable.Timetable, error) {
	var r timetableRow
	q := psql.Select(timetableColumns...).From("timetables").Where(sq.Eq{"id": id})
	if err := repo.db.get(ctx, &r, q, "timetable", timetable.ErrNotFound); err != nil {
		return timetable.Timetable{}, err
	}
	return r.timetable(), nil
}

func (repo *timetableRepository) UpdateTimetable(ctx context.Context, t timetable.Timetable) (timetable.Timetable, error) {
	q := psql.Update("timetables").SetMap(timetableValues(t)).Where(sq.Eq{"id": t.ID})
	if err := repo.db.exec(ctx, q, "timetable", timetable.ErrNotFound); err != nil {
		return timetable.Timetable{}, err
	}
	return t, nil
}

func (repo *timetableRepository) DeleteTimetable(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("timetables").Where(sq.Eq{"id": id}), "timetable", timetable.ErrNotFound)
}
