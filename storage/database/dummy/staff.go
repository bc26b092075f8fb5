package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

var staffValues = staff.Staff.UniqueValues

type staffRepository struct {
	db       *DB
	conflict func(row, existing staff.Staff) error
}

var _ staff.Repository = (*staffRepository)(nil) // interface compliance check

func NewStaffRepository(db *DB) staff.Repository {
	return &staffRepository{db: db, conflict: uniqueConflict(db.policy, unique.EntityStaff, staffValues)}
}

func (repo *staffRepository) CreateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	s.ID = newID()
	s.User = nil
	return createRow(ctx, repo.db.staff, s, repo.conflict)
}

func (repo *staffRepository) QueryStaff(_ context.Context, filter *staff.QueryFilter, ordering []core.DBOrdering) ([]staff.Staff, error) {
	var accounts map[string]user.User
	if filter != nil && filter.Search != "" {
		accounts = repo.db.accounts()
	}
	members := repo.db.staff.list(func(s staff.Staff) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" {
			usr := accounts[s.UserID]
			if !anyContainsFold(filter.Search, s.EmployeeID, usr.Name, usr.Email) {
				return false
			}
		}
		if filter.Department != "" && !containsFold(s.Department, filter.Department) {
			return false
		}
		if filter.Status != "" && s.Status != filter.Status {
			return false
		}
		return idIn(filter.IDs, s.ID) && idIn(filter.UserIDs, s.UserID)
	})
	orderBy(members, ordering)
	return members, nil
}

func (repo *staffRepository) GetStaff(_ context.Context, id string) (staff.Staff, error) {
	return getRow(repo.db.staff, id, staff.ErrNotFound)
}

func (repo *staffRepository) GetStaffByUser(_ context.Context, userID string) (staff.Staff, error) {
	s, ok := repo.db.staff.find(func(s staff.Staff) bool { return s.UserID == userID })
	if !ok {
		return staff.Staff{}, staff.ErrNotFound
	}
	return s, nil
}

func (repo *staffRepository) UpdateStaff(ctx context.Context, s staff.Staff) (staff.Staff, error) {
	s.User = nil
	return updateRow(ctx, repo.db.staff, s, repo.conflict, staff.ErrNotFound)
}

func (repo *staffRepository) DeleteStaff(ctx context.Context, id string) error {
	if _, ok := repo.db.staff.get(id); !ok {
		return staff.ErrNotFound
	}
	return repo.db.deleteStaff(ctx, id)
}
