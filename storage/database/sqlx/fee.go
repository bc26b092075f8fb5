package sqlxrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/fee"
)

var feeColumns = []string{
	"id", "student_id", "fee_type", "amount", "paid_amount", "due_date", "status", "payment_date", "payment_method",
	"academic_year", "term", "remarks", "created_at", "updated_at",
}

type feeRepository struct {
	db *DB
}

var _ fee.Repository = (*feeRepository)(nil) // interface compliance check

func NewFeeRepository(db *DB) fee.Repository {
	return &feeRepository{db: db}
}

func feeValues(f fee.Fee) map[string]interface{} {
	return map[string]interface{}{
		"fee_type":       f.FeeType,
		"amount":         f.Amount,
		"paid_amount":    f.PaidAmount,
		"due_date":       f.DueDate,
		"status":         f.Status,
		"payment_date":   f.PaymentDate,
		"payment_method": f.PaymentMethod,
		"academic_year":  f.AcademicYear,
		"term":           f.Term,
		"remarks":        f.Remarks,
		"updated_at":     f.UpdatedAt,
	}
}

func (repo *feeRepository) CreateFee(ctx context.Context, f fee.Fee) (fee.Fee, error) {
	f.ID = newID()
	values := feeValues(f)
	values["id"] = f.ID
	values["student_id"] = f.StudentID
	values["created_at"] = f.CreatedAt
	if err := repo.db.exec(ctx, psql.Insert("fees").SetMap(values), "fee", nil); err != nil {
		return fee.Fee{}, err
	}
	return f, nil
}

func (repo *feeRepository) QueryFees(ctx context.Context, filter *fee.QueryFilter, ordering []core.DBOrdering) ([]fee.Fee, error) {
	q := psql.Select(feeColumns...).From("fees")
	if filter != nil {
		if len(filter.StudentIDs) > 0 {
			q = q.Where(sq.Eq{"student_id": filter.StudentIDs})
		}
		if filter.FeeType != "" {
			q = q.Where(sq.Eq{"fee_type": filter.FeeType})
		}
		if len(filter.Statuses) > 0 {
			q = q.Where(sq.Eq{"status": filter.Statuses})
		}
		if filter.AcademicYear != "" {
			q = q.Where(sq.Eq{"academic_year": filter.AcademicYear})
		}
		if filter.Term != "" {
			q = q.Where(sq.Eq{"term": filter.Term})
		}
		if !filter.DueBefore.IsZero() {
			q = q.Where(sq.Lt{"due_date": filter.DueBefore})
		}
		if len(filter.IDs) > 0 {
			q = q.Where(sq.Eq{"id": filter.IDs})
		}
	}

	fees := make([]fee.Fee, 0)
	if err := repo.db.selectAll(ctx, &fees, orderBy(q, ordering), "fee"); err != nil {
		return nil, err
	}
	return fees, nil
}

func (repo *feeRepository) GetFee(ctx context.Context, id string) (fee.Fee, error) {
	var f fee.Fee
	q := psql.Select(feeColumns...).From("fees").Where(sq.Eq{"id": id})
	err := repo.db.get(ctx, &f, q, "fee", fee.ErrNotFound)
	return f, err
}

// UpdateFee reads the fee with FOR UPDATE, so concurrent changes to one fee run one after the other.
func (repo *feeRepository) UpdateFee(ctx context.Context, id string, fn func(f *fee.Fee) error) (fee.Fee, error) {
	var f fee.Fee
	err := repo.db.WithinTx(ctx, func(ctx context.Context) error {
		q := psql.Select(feeColumns...).From("fees").Where(sq.Eq{"id": id}).Suffix("FOR UPDATE")
		if err := repo.db.get(ctx, &f, q, "fee", fee.ErrNotFound); err != nil {
			return err
		}
		if err := fn(&f); err != nil {
			return err
		}
		uq := psql.Update("fees").SetMap(feeValues(f)).Where(sq.Eq{"id": f.ID})
		return repo.db.exec(ctx, uq, "fee", fee.ErrNotFound)
	})
	if err != nil {
		return fee.Fee{}, err
	}
	return f, nil
}

func (repo *feeRepository) DeleteFee(ctx context.Context, id string) error {
	return repo.db.exec(ctx, psql.Delete("fees").Where(sq.Eq{"id": id}), "fee", fee.ErrNotFound)
}
