package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	g.ID = newID()
	return createRow(ctx, repo.db.grades, g, nil)
}

func (repo *gradeRepository) QueryGrades(_ context.Context, filter *grade.QueryFilter, ordering []core.DBOrdering) ([]grade.Grade, error) {
	grades := repo.db.grades.list(func(g grade.Grade) bool {
		if filter == nil {
			return true
		}
		if filter.SubjectID != "" && g.SubjectID != filter.SubjectID {
			return false
		}
		if filter.ClassID != "" && g.ClassID != filter.ClassID {
			return false
		}
		if filter.ExamType != "" && g.ExamType != filter.ExamType {
			return false
		}
		if filter.AcademicYear != "" && g.AcademicYear != filter.AcademicYear {
			return false
		}
		if filter.Term != "" && g.Term != filter.Term {
			return false
		}
		return idIn(filter.StudentIDs, g.StudentID) && idIn(filter.IDs, g.ID)
	})
	orderBy(grades, ordering)
	return grades, nil
}

func (repo *gradeRepository) GetGrade(_ context.Context, id string) (grade.Grade, error) {
	return getRow(repo.db.grades, id, grade.ErrNotFound)
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	return updateRow(ctx, repo.db.grades, g, nil, grade.ErrNotFound)
}

func (repo *gradeRepository) DeleteGrade(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.grades, id, grade.ErrNotFound)
}
