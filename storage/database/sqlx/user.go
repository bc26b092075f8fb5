package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var userColumns = []string{
	"id", "name", "email", "role", "phone", "address", "is_active", "password_hash",
	"created_at", "updated_at", "last_login",
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func userValues(usr user.User) map[string]interface{} {
	return map[string]interface{}{
		"name":          usr.Name,
		"email":         usr.Email,
		"role":          usr.Role,
		"phone":         usr.Phone,
		"address":       usr.Address,
		"is_active":     usr.IsActive,
		"password_hash": usr.PasswordHash,
		"updated_at":    usr.UpdatedAt,
		"last_login":    usr.LastLogin,
	}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = newID()
	values := userValues(usr)
	values["id"] = usr.ID
	values["created_at"] = usr.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("users").SetMap(values), "user", nil); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	q := psql.Select(userColumns...).From("users")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(searchAny(filter.Search, "name", "email", "phone"))
		}
		if len(filter.Roles) > 0 {
			q = q.Where(sq.Eq{"role": filter.Roles})
		}
		if filter.IsActive != nil {
			q = q.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			q = q.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			q = q.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
		if filter.IDs != nil {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	users := make([]user.User, 0)
	if err := repo.db.selectAll(ctx, &users, orderBy(q, ordering), "user"); err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	if filter.ID == "" && filter.Email == "" {
		return user.User{}, user.ErrNotFound
	}
	where := sq.Eq{}
	if filter.ID != "" {
		where["id"] = filter.ID
	}
	if filter.Email != "" {
		where["email"] = filter.Email
	}

	var usr user.User
	err := repo.db.get(ctx, &usr, psql.Select(userColumns...).From("users").Where(where), "user", user.ErrNotFound)
	return usr, err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := psql.Update("users").SetMap(userValues(usr)).Where(sq.Eq{"id": usr.ID})
	if err := repo.db.exec(ctx, q, "user", user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsers(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return repo.db.exec(ctx, psql.Delete("users").Where(sq.Eq{"id": ids}), "user", nil)
}
