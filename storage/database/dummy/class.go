package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/unique"
)

var classValues = class.Class.UniqueValues

type classRepository struct {
	db       *DB
	conflict func(row, existing class.Class) error
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) class.Repository {
	return &classRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntityClass, classValues)}
}

func (repo *classRepository) CreateClass(ctx context.Context, c class.Class) (class.Class, error) {
	c.ID = newID()
	return createRow(ctx, repo.db.classes, c, repo.conflict)
}

func (repo *classRepository) QueryClasses(_ context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	classes := repo.db.classes.list(func(c class.Class) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !anyContainsFold(filter.Search, c.Name, c.Room) {
			return false
		}
		if filter.AcademicYear != "" && c.AcademicYear != filter.AcademicYear {
			return false
		}
		if filter.ClassTeacherID != "" && !isPtrTo(c.ClassTeacherID, filter.ClassTeacherID) {
			return false
		}
		return idIn(filter.IDs, c.ID)
	})
	orderBy(classes, ordering)
	return classes, nil
}

func (repo *classRepository) GetClass(_ context.Context, id string) (class.Class, error) {
	return getRow(repo.db.classes, id, class.ErrNotFound)
}

func (repo *classRepository) UpdateClass(ctx context.Context, c class.Class) (class.Class, error) {
	return updateRow(ctx, repo.db.classes, c, repo.conflict, class.ErrNotFound)
}

func (repo *classRepository) DeleteClass(ctx context.Context, id string) error {
	if _, ok := repo.db.classes.get(id); !ok {
		return class.ErrNotFound
	}
	return repo.db.deleteClass(ctx, id)
}
