package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

var studentValues = student.Student.UniqueValues

type studentRepository struct {
	db       *DB
	conflict func(row, existing student.Student) error
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntityStudent, studentValues)}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = newID()
	s.User = nil
	return createRow(ctx, repo.db.students, s, repo.conflict)
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var accounts map[string]user.User
	if filter != nil && filter.Search != "" {
		accounts = repo.db.accounts()
	}
	students := repo.db.students.list(func(s student.Student) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" {
			usr := accounts[s.UserID]
			if !anyContainsFold(filter.Search, s.AdmissionNumber, s.RollNumber, usr.Name, usr.Email) {
				return false
			}
		}
		if filter.ClassID != "" && s.ClassID != filter.ClassID {
			return false
		}
		if filter.Section != "" && s.Section != filter.Section {
			return false
		}
		if filter.AcademicYear != "" && s.AcademicYear != filter.AcademicYear {
			return false
		}
		if filter.ParentID != "" && !isPtrTo(s.ParentID, filter.ParentID) {
			return false
		}
		return idIn(filter.IDs, s.ID) && idIn(filter.UserIDs, s.UserID)
	})
	orderBy(students, ordering)
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	return getRow(repo.db.students, id, student.ErrNotFound)
}

func (repo *studentRepository) GetStudentByUser(_ context.Context, userID string) (student.Student, error) {
	s, ok := repo.db.students.find(func(s student.Student) bool { return s.UserID == userID })
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.User = nil
	return updateRow(ctx, repo.db.students, s, repo.conflict, student.ErrNotFound)
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if _, ok := repo.db.students.get(id); !ok {
		return student.ErrNotFound
	}
	return repo.db.deleteStudent(ctx, id)
}
