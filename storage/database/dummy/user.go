package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

var userValues = user.User.UniqueValues

type userRepository struct {
	db       *DB
	conflict func(row, existing user.User) error
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntityUser, userValues)}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	undo, err := repo.db.users.insert(usr, repo.conflict)
	if err != nil {
		return user.User{}, err
	}
	record(ctx, undo)
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	users := repo.db.users.list(func(u user.User) bool {
		if filter == nil {
			return true
		}
		// users with search keyword matching any Name, Email or Phone ?
		if filter.Search != "" && !anyContainsFold(filter.Search, u.Name, u.Email, u.Phone) {
			return false
		}
		if len(filter.Roles) > 0 && !core.ContainsString(filter.Roles, u.Role) {
			return false
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			return false
		}
		if !filter.CreatedFrom.IsZero() && u.CreatedAt.Before(filter.CreatedFrom.UTC()) {
			return false
		}
		if !filter.CreatedTo.IsZero() && u.CreatedAt.After(filter.CreatedTo.UTC()) {
			return false
		}
		return filter.IDs == nil || core.ContainsString(filter.IDs, u.ID)
	})
	orderBy(users, ordering)
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	usr, ok := repo.db.users.find(func(u user.User) bool {
		return (filter.ID == "" || u.ID == filter.ID) && (filter.Email == "" || u.Email == filter.Email)
	})
	if !ok || (filter.ID == "" && filter.Email == "") {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	undo, ok, err := repo.db.users.update(usr, repo.conflict)
	if err != nil {
		return user.User{}, err
	}
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	record(ctx, undo)
	return usr, nil
}

func (repo *userRepository) DeleteUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		if err := repo.db.deleteUser(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
