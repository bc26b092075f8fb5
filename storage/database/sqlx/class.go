package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
)

var classColumns = []string{
	"id", "name", "academic_year", "sections", "class_teacher_id", "capacity", "room", "created_at", "updated_at",
}

// classRow scans the sections array.
type classRow struct {
	class.Class
	Sections pq.StringArray `db:"sections"`
}

func (r classRow) class() class.Class {
	c := r.Class
	c.Sections = []string(r.Sections)
	if c.Sections == nil {
		c.Sections = []string{}
	}
	return c
}

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db}
}

func classValues(c class.Class) map[string]interface{} {
	sections := c.Sections
	if sections == nil {
		sections = []string{}
	}
	return map[string]interface{}{
		"name":             c.Name,
		"academic_year":    c.AcademicYear,
		"sections":         pq.Array(sections),
		"class_teacher_id": nullable(c.ClassTeacherID),
		"capacity":         c.Capacity,
		"room":             c.Room,
		"updated_at":       c.UpdatedAt,
	}
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.ID = newID()
	values := classValues(c)
	values["id"] = c.ID
	values["created_at"] = c.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("classes").SetMap(values), "class", nil); err != nil {
		return class.Class{}, err
	}
	return c, nil
}

func (repo *classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	q := psql.Select(classColumns...).From("classes")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(searchAny(filter.Search, "name", "room"))
		}
		if filter.AcademicYear != "" {
			q = q.Where(sq.Eq{"academic_year": filter.AcademicYear})
		}
		if filter.ClassTeacherID != "" {
			q = q.Where(sq.Eq{"class_teacher_id": filter.ClassTeacherID})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	var rows []classRow
	if err := repo.db.selectAll(ctx, &rows, orderBy(q, ordering), "class"); err != nil {
		return nil, err
	}
	classes := make([]class.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.class())
	}
	return classes, nil
}

func (repo *classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	var r classRow
	q := psql.Select(classColumns...).From("classes").Where(sq.Eq{"id": id})
	if err := repo.db.get(ctx, &r, q, "class", class.ErrNotFound); err != nil {
		return class.Class{}, err
	}
	return r.class(), nil
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	q := psql.Update("classes").SetMap(classValues(c)).Where(sq.Eq{"id": c.ID})
	if err := repo.db.exec(ctx, q, "class", class.ErrNotFound); err != nil {
		return class.Class{}, err
	}
	return c, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("classes").Where(sq.Eq{"id": id}), "class", class.ErrNotFound)
}
