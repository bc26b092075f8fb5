package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/user"
)

type parentRepository struct {
	db *DB
}

var _ parent.Repository = (*parentRepository)(nil) // interface compliance check

func NewParentRepository(db *DB) parent.Repository {
	return &parentRepository{db: db}
}

func (repo *parentRepository) CreateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	p.ID = newID()
	p.User = nil
	return createRow(ctx, repo.db.parents, p, nil)
}

func (repo *parentRepository) QueryParents(_ context.Context, filter *parent.QueryFilter, ordering []core.DBOrdering) ([]parent.Parent, error) {
	var accounts map[string]user.User
	if filter != nil && filter.Search != "" {
		accounts = repo.db.accounts()
	}
	parents := repo.db.parents.list(func(p parent.Parent) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" {
			usr := accounts[p.UserID]
			if !anyContainsFold(filter.Search, usr.Name, usr.Email, usr.Phone) {
				return false
			}
		}
		if filter.Relationship != "" && p.Relationship != filter.Relationship {
			return false
		}
		return idIn(filter.IDs, p.ID) && idIn(filter.UserIDs, p.UserID)
	})
	orderBy(parents, ordering)
	return parents, nil
}

func (repo *parentRepository) GetParent(_ context.Context, id string) (parent.Parent, error) {
	return getRow(repo.db.parents, id, parent.ErrNotFound)
}

func (repo *parentRepository) GetParentByUser(_ context.Context, userID string) (parent.Parent, error) {
	p, ok := repo.db.parents.find(func(p parent.Parent) bool { return p.UserID == userID })
	if !ok {
		return parent.Parent{}, parent.ErrNotFound
	}
	return p, nil
}

func (repo *parentRepository) UpdateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	p.User = nil
	return updateRow(ctx, repo.db.parents, p, nil, parent.ErrNotFound)
}

func (repo *parentRepository) DeleteParent(ctx context.Context, id string) error {
	if _, ok := repo.db.parents.get(id); !ok {
		return parent.ErrNotFound
	}
	return repo.db.deleteParent(ctx, id)
}
