package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/staff"
)

var staffColumns = []string{
	"id", "user_id", "employee_id", "designation", "department", "qualification", "joining_date", "salary",
	"status", "created_at", "updated_at",
}

type staffRepository struct {
	db *DB
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db}
}

func staffValues(s staff.Staff) map[string]interface{} {
	return map[string]interface{}{
		"designation":   s.Designation,
		"department":    s.Department,
		"qualification": s.Qualification,
		"joining_date":  s.JoiningDate,
		"salary":        s.Salary,
		"status":        s.Status,
		"updated_at":    s.UpdatedAt,
	}
}

// accountSearch matches the profiles whose account name or email contains s.
func accountSearch(s string) sq.Sqlizer {
	return sq.Expr("user_id IN (SELECT id FROM users WHERE name ILIKE ? OR email ILIKE ?)", like(s), like(s))
}

func (repo *staffRepository) CreateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	s.ID = newID()
	s.User = nil
	values := staffValues(s)
	values["id"] = s.ID
	values["user_id"] = s.UserID
	values["employee_id"] = s.EmployeeID
	values["created_at"] = s.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("staff").SetMap(values), "staff", nil); err != nil {
		return staff.Staff{}, err
	}
	return s, nil
}

func (repo *staffRepository) QueryStaff(ctx context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Staff, error) {
	q := psql.Select(staffColumns...).From("staff")
	if filter != nil {
		if filter.Search != "" {
			q = q.Where(sq.Or{sq.ILike{"employee_id": like(filter.Search)}, accountSearch(filter.Search)})
		}
		if filter.Department != "" {
			q = q.Where(sq.ILike{"department": like(filter.Department)})
		}
		if filter.Status != "" {
			q = q.Where(sq.Eq{"status": filter.Status})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
		if len(filter.UserIDs) > 0 {
			q = q.Where(sq.Eq{"user_id": filter.UserIDs})
		}
	}

	members := make([]staff.Staff, 0)
	if err := repo.db.selectAll(ctx, &members, orderBy(q, ordering), "staff"); err != nil {
		return nil, err
	}
	return members, nil
}

func (repo *staffRepository) getBy(ctx context.Context, where sq.Eq) (staff.Staff, error) {
	var s staff.Staff
	err := repo.db.get(ctx, &s, psql.Select(staffColumns...).From("staff").Where(where), "staff", staff.ErrNotFound)
	return s, err
}

func (repo *staffRepository) GetStaff(ctx context.Context, id string) (staff.Staff, error) {
	return repo.getBy(ctx, sq.Eq{"id": id})
}

func (repo *staffRepository) GetStaffByUser(ctx context.Context, userID string) (staff.Staff, error) {
	return repo.getBy(ctx, sq.Eq{"user_id": userID})
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	s.User = nil
	q := psql.Update("staff").SetMap(staffValues(s)).Where(sq.Eq{"id": s.ID})
	if err := repo.db.exec(ctx, q, "staff", staff.ErrNotFound); err != nil {
		return staff.Staff{}, err
	}
	return s, nil
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("staff").Where(sq.Eq{"id": id}), "staff", staff.ErrNotFound)
}
