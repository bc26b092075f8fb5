package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/subject"
)

var subjectColumns = []string{
	"id", "name", "code", "description", "class_id", "teacher_id", "credits", "type", "created_at", "updated_at",
}

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func subjectValues(s subject.Subject) map[string]interface{} {
	return map[string]interface{}{
		"name":        s.Name,
		"code":        s.Code,
		"description": s.Description,
		"class_id":    nullable(s.ClassID),
		"teacher_id":  nullable(s.TeacherID),
		"credits":     s.Credits,
		"type":        s.Type,
		"updated_at":  s.UpdatedAt,
	}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	s.ID = newID()
	values := subjectValues(s)
	values["id"] = s.ID
	values["created_at"] = s.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("subjects").SetMap(values), "subject", nil); err != nil {
		return subject.Subject{}, err
	}
	return s, nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	q := psql.Select(subjectColumns...).From("subjects")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(searchAny(filter.Search, "name", "code"))
		}
		if filter.ClassID != "" {
			q = q.Where(sq.Eq{"class_id": filter.ClassID})
		}
		if filter.TeacherID != "" {
			q = q.Where(sq.Eq{"teacher_id": filter.TeacherID})
		}
		if filter.Type != "" {
			q = q.Where(sq.Eq{"type": filter.Type})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	subjects := make([]subject.Subject, 0)
	if err := repo.db.selectAll(ctx, &subjects, orderBy(q, ordering), "subject"); err != nil {
		return nil, err
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, id string) (subject.Subject, error) {
	var s subject.Subject
	q := psql.Select(subjectColumns...).From("subjects").Where(sq.Eq{"id": id})
	err := repo.db.get(ctx, &s, q, "subject", subject.ErrNotFound)
	return s, err
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	q := psql.Update("subjects").SetMap(subjectValues(s)).Where(sq.Eq{"id": s.ID})
	if err := repo.db.exec(ctx, q, "subject", subject.ErrNotFound); err != nil {
		return subject.Subject{}, err
	}
	return s, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("subjects").Where(sq.Eq{"id": id}), "subject", subject.ErrNotFound)
}
