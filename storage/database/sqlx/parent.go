package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/parent"
)

var parentColumns = []string{"id", "user_id", "occupation", "relationship", "created_at", "updated_at"}

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
	q := psql.Insert("parents").SetMap(map[string]interface{}{
		"id":           p.ID,
		"user_id":      p.UserID,
		"occupation":   p.Occupation,
		"relationship": p.Relationship,
		"created_at":   p.CreatedAt,
		"updated_at":   p.UpdatedAt,
	})
	if err := repo.db.exec(ctx, q, "parent", nil); err != nil {
		return parent.Parent{}, err
	}
	return p, nil
}

func (repo *parentRepository) QueryParents(ctx context.Context, filter *parent.QueryFilter, ordering []core.DBOrdering) ([]parent.Parent, error) {
	q := psql.Select(parentColumns...).From("parents")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(sq.Expr(
				"user_id IN (SELECT id FROM users WHERE name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)",
				like(filter.Search), like(filter.Search), like(filter.Search),
			))
		}
		if filter.Relationship != "" {
			q = q.Where(sq.Eq{"relationship": filter.Relationship})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
		if len(filter.UserIDs) > 0 {
			q = q.Where(sq.Eq{"user_id": filter.UserIDs})
		}
	}

	parents := make([]parent.Parent, 0)
	if err := repo.db.selectAll(ctx, &parents, orderBy(q, ordering), "parent"); err != nil {
		return nil, err
	}
	return parents, nil
}

func (repo *parentRepository) getBy(ctx context.Context, where sq.Eq) (parent.Parent, error) {
	var p parent.Parent
	err := repo.db.get(ctx, &p, psql.Select(parentColumns...).From("parents").Where(where), "parent", parent.ErrNotFound)
	return p, err
}

func (repo *parentRepository) GetParent(ctx context.Context, id string) (parent.Parent, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *parentRepository) GetParentByUser(ctx context.Context, userID string) (parent.Parent, error) {
	return repo.getBy(ctx, sq.Eq{"user_id": userID})
}

func (repo *parentRepository) UpdateParent(ctx context.Context, p parent.Parent) (parent.Parent, error) {
	p.User = nil
	q := psql.Update("parents").SetMap(map[string]interface{}{
		"occupation":   p.Occupation,
		"relationship": p.Relationship,
		"updated_at":   p.UpdatedAt,
	}).Where(sq.Eq{"id": p.ID})
	if err := repo.db.exec(ctx, q, "parent", parent.ErrNotFound); err != nil {
		return parent.Parent{}, err
	}
	return p, nil
}

func (repo *parentRepository) DeleteParent(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("parents").Where(sq.Eq{"id": id}), "parent", parent.ErrNotFound)
}
