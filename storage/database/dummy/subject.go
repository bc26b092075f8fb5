package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/unique"
)

var subjectValues = subject.Subject.UniqueValues

type subjectRepository struct {
	db       *DB
	conflict func(row, existing subject.Subject) error
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntitySubject, subjectValues)}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	s.ID = newID()
	return createRow(ctx, repo.db.subjects, s, repo.conflict)
}

func (repo *subjectRepository) QuerySubjects(_ context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	subjects := repo.db.subjects.list(func(s subject.Subject) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !anyContainsFold(filter.Search, s.Name, s.Code) {
			return false
		}
		if filter.ClassID != "" && !isPtrTo(s.ClassID, filter.ClassID) {
			return false
		}
		if filter.TeacherID != "" && !isPtrTo(s.TeacherID, filter.TeacherID) {
			return false
		}
		if filter.Type != "" && s.Type != filter.Type {
			return false
		}
		return idIn(filter.IDs, s.ID)
	})
	orderBy(subjects, ordering)
	return subjects, nil
}

func (repo *subjectRepository) GetSubject(_ context.Context, id string) (subject.Subject, error) {
	return getRow(repo.db.subjects, id, subject.ErrNotFound)
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	return updateRow(ctx, repo.db.subjects, s, repo.conflict, subject.ErrNotFound)
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	if _, ok := repo.db.subjects.get(id); !ok {
		return subject.ErrNotFound
	}
	return repo.db.deleteSubject(ctx, id)
}
