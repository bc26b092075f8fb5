package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
)

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	f.ID = newID()
	return createRow(ctx, repo.db.fees, f, nil)
}

func (repo *feeRepository) QueryFees(_ context.Context, filter *fee.QueryFilter, ordering []core.DBOrdering) ([]fee.Fee, error) {
	fees := repo.db.fees.list(func(f fee.Fee) bool {
		if filter == nil {
			return true
		}
		if filter.FeeType != "" && f.FeeType != filter.FeeType {
			return false
		}
		if len(filter.Statuses) > 0 && !core.ContainsString(filter.Statuses, f.Status) {
			return false
		}
		if filter.AcademicYear != "" && f.AcademicYear != filter.AcademicYear {
			return false
		}
		if filter.Term != "" && f.Term != filter.Term {
			return false
		}
		if !filter.DueBefore.IsZero() && !f.DueDate.Before(filter.DueBefore) {
			return false
		}
		return idIn(filter.StudentIDs, f.StudentID) && idIn(filter.IDs, f.ID)
	})
	orderBy(fees, ordering)
	return fees, nil
}

func (repo *feeRepository) GetFee(_ context.Context, id string) (fee.Fee, error) {
	return getRow(repo.db.fees, id, fee.ErrNotFound)
}

func (repo *feeRepository) UpdateFee(ctx context.Context, id string, fn func(f *fee.Fee) error) (fee.Fee, error) {
	return updateRowFunc(ctx, repo.db.fees, id, fn, fee.ErrNotFound)
}

func (repo *feeRepository) DeleteFee(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.fees, id, fee.ErrNotFound)
}
