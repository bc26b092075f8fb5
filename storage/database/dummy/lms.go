package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/lms"
)

type contentRepository struct {
	db *DB
}

var _ lms.Repository = (*contentRepository)(nil) // interface compliance check

func NewContentRepository(db *DB) lms.Repository {
	return &contentRepository{db: db}
}

func (repo *contentRepository) CreateContent(ctx context.Context, c lms.Content) (lms.Content, error) {
	c.ID = newID()
	return createRow(ctx, repo.db.contents, c, nil)
}

func (repo *contentRepository) QueryContents(_ context.Context, filter *lms.QueryFilter, ordering []core.DBOrdering) ([]lms.Content, error) {
	contents := repo.db.contents.list(func(c lms.Content) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !anyContainsFold(filter.Search, c.Title, c.Description) {
			return false
		}
		if filter.SubjectID != "" && !isPtrTo(c.SubjectID, filter.SubjectID) {
			return false
		}
		if filter.Type != "" && c.Type != filter.Type {
			return false
		}
		return idIn(filter.ClassIDs, c.ClassID) && idIn(filter.IDs, c.ID)
	})
	orderBy(contents, ordering)
	return contents, nil
}

func (repo *contentRepository) GetContent(_ context.Context, id string) (lms.Content, error) {
	return getRow(repo.db.contents, id, lms.ErrNotFound)
}

func (repo *contentRepository) UpdateContent(ctx context.Context, c lms.Content) (lms.Content, error) {
	return updateRow(ctx, repo.db.contents, c, nil, lms.ErrNotFound)
}

func (repo *contentRepository) DeleteContent(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.contents, id, lms.ErrNotFound)
}
