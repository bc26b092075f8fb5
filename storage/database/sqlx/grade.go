package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grade"
)

var gradeColumns = []string{
	"id", "student_id", "subject_id", "class_id", "exam_type", "marks_obtained", "max_marks", "letter",
	"academic_year", "term", "remarks", "graded_by", "created_at", "updated_at",
}

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func gradeValues(g grade.Grade) map[string]interface{} {
	return map[string]interface{}{
		"subject_id":     g.SubjectID,
		"class_id":       g.ClassID,
		"exam_type":      g.ExamType,
		"marks_obtained": g.MarksObtained,
		"max_marks":      g.MaxMarks,
		"letter":         g.Letter,
		"academic_year":  g.AcademicYear,
		"term":           g.Term,
		"remarks":        g.Remarks,
		"graded_by":      nullable(g.GradedBy),
		"updated_at":     g.UpdatedAt,
	}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	g.ID = newID()
	values := gradeValues(g)
	values["id"] = g.ID
	values["student_id"] = g.StudentID
	values["created_at"] = g.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("grades").SetMap(values), "grade", nil); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Grade, error) {
	q := psql.Select(gradeColumns...).From("grades")
	if filter != nil {
		eq := sq.Eq{}
		if len(filter.StudentIDs) > 0 {
			eq["student_id"] = filter.StudentIDs
		}
		if filter.SubjectID != "" {
			eq["subject_id"] = filter.SubjectID
		}
		if filter.ClassID != "" {
			eq["class_id"] = filter.ClassID
		}
		if filter.ExamType != "" {
			eq["exam_type"] = filter.ExamType
		}
		if filter.AcademicYear != "" {
			eq["academic_year"] = filter.AcademicYear
		}
		if filter.Term != "" {
			eq["term"] = filter.Term
		}
		if len(filter.IDs) > 0 {
			eq["id"] = filter.IDs
		}
		if len(eq) > 0 {
			q = q.Where(eq)
		}
	}

	grades := make([]grade.Grade, 0)
	if err := repo.db.selectAll(ctx, &grades, orderBy(q, ordering), "grade"); err != nil {
		return nil, err
	}
	return grades, nil
}

func (repo *gradeRepository) GetGrade(ctx context.Context, id string) (grade.Grade, error) {
	var g grade.Grade
	q := psql.Select(gradeColumns...).From("grades").Where(sq.Eq{"id": id})
	err := repo.db.get(ctx, &g, q, "grade", grade.ErrNotFound)
	return g, err
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	q := psql.Update("grades").SetMap(gradeValues(g)).Where(sq.Eq{"id": g.ID})
	if err := repo.db.exec(ctx, q, "grade", grade.ErrNotFound); err != nil {
		return grade.Grade{}, err
	}
	return g, nil
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("grades").Where(sq.Eq{"id": id}), "grade", grade.ErrNotFound)
}
