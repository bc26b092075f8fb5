package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

var studentColumns = []string{
	"id", "user_id", "admission_number", "roll_number", "class_id", "section", "academic_year", "date_of_birth",
	"gender", "blood_group", "parent_id", "admission_date", "created_at", "updated_at",
}

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func studentValues(s student.Student) map[string]interface{} {
	return map[string]interface{}{
		"roll_number":    s.RollNumber,
		"class_id":       s.ClassID,
		"section":        s.Section,
		"academic_year":  s.AcademicYear,
		"date_of_birth":  s.DateOfBirth,
		"gender":         s.Gender,
		"blood_group":    s.BloodGroup,
		"parent_id":      nullable(s.ParentID),
		"admission_date": s.AdmissionDate,
		"updated_at":     s.UpdatedAt,
	}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = newID()
	s.User = nil
	values := studentValues(s)
	values["id"] = s.ID
	values["user_id"] = s.UserID
	values["admission_number"] = s.AdmissionNumber
	values["created_at"] = s.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("students").SetMap(values), "student", nil); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	q := psql.Select(studentColumns...).From("students")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(append(searchAny(filter.Search, "admission_number", "roll_number"), accountSearch(filter.Search)))
		}
		if filter.ClassID != "" {
			q = q.Where(sq.Eq{"class_id": filter.ClassID})
		}
		if filter.Section != "" {
			q = q.Where(sq.Eq{"section": filter.Section})
		}
		if filter.AcademicYear != "" {
			q = q.Where(sq.Eq{"academic_year": filter.AcademicYear})
		}
		if filter.ParentID != "" {
			q = q.Where(sq.Eq{"parent_id": filter.ParentID})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
		if len(filter.UserIDs) > 0 {
			q = q.Where(sq.Eq{"user_id": filter.UserIDs})
		}
	}

	students := make([]student.Student, 0)
	if err := repo.db.selectAll(ctx, &students, orderBy(q, ordering), "student"); err != nil {
		return nil, err
	}
	return students, nil
}

func (repo *studentRepository) getBy(ctx context.Context, where sq.Eq) (student.Student, error) {
	var s student.Student
	err := repo.db.get(ctx, &s, psql.Select(studentColumns...).From("students").Where(where), "student", student.ErrNotFound)
	return s, err
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *studentRepository) GetStudentByUser(ctx context.Context, userID string) (student.Student, error) {
	return repo.getBy(ctx, sq.Eq{"user_id": userID})
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.User = nil
	q := psql.Update("students").SetMap(studentValues(s)).Where(sq.Eq{"id": s.ID})
	if err := repo.db.exec(ctx, q, "student", student.ErrNotFound); err != nil {
		return student.Student{}, err
	}
	return s, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("students").Where(sq.Eq{"id": id}), "student", student.ErrNotFound)
}
