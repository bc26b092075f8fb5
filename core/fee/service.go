package fee

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/student"
)

var (
	ErrNotFound = core.NewNotFoundError("fee")

	errOverpaid = errors.New("payment exceeds balance")
)

type (
	Repository interface {
		CreateFee(ctx context.Context, f Fee) (Fee, error)
		QueryFees(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Fee, error)
		GetFee(ctx context.Context, id string) (Fee, error)
		// UpdateFee changes the fee through fn, with the row locked against concurrent writers.
		UpdateFee(ctx context.Context, id string, fn func(f *Fee) error) (Fee, error)
		DeleteFee(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		students *student.Service
		validate *validator.Validate
		events   core.EventPublisher
		logger   core.Logger
		loc      *time.Location
		NowFunc  func() time.Time // mockable
	}
)

func NewService(
	repo Repository,
	students *student.Service,
	validate *validator.Validate,
	events core.EventPublisher,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		students: students,
		validate: validate,
		events:   events,
		logger:   logger,
		loc:      conf.Timezone,
		NowFunc:  time.Now,
	}
}

func (svc *Service) today() time.Time {
	return core.TruncateDay(svc.NowFunc(), svc.loc)
}

func (svc *Service) Create(ctx context.Context, nf NewFee) (Fee, error) {
	nf.Clean()
	if err := svc.validate.Struct(nf); err != nil {
		return Fee{}, err
	}
	s, err := svc.students.Lookup(ctx, nf.StudentID, "student_id")
	if err != nil {
		return Fee{}, err
	}

	now := time.Now().UTC()
	f := Fee{
		StudentID:    s.ID,
		FeeType:      nf.FeeType,
		Amount:       nf.Amount,
		DueDate:      core.TruncateDay(nf.DueDate, nil),
		AcademicYear: nf.AcademicYear,
		Term:         nf.Term,
		Remarks:      nf.Remarks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if f.AcademicYear == "" {
		f.AcademicYear = s.AcademicYear
	}
	f.Status = f.DeriveStatus(svc.today())
	return svc.repo.CreateFee(ctx, f)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Fee, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryFees(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Fee, error) {
	return svc.repo.GetFee(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, uf UpdateFee) (Fee, error) {
	uf.Clean()
	if err := svc.validate.Struct(uf); err != nil {
		return Fee{}, err
	}
	return svc.repo.UpdateFee(ctx, id, func(f *Fee) error {
		uf.apply(f)
		if f.Amount < f.PaidAmount {
			return core.NewValidationError(errOverpaid, core.FieldError{
				Field: "amount",
				Error: fmt.Sprintf("cannot be less than the %.2f already paid", f.PaidAmount),
			})
		}
		f.Status = f.DeriveStatus(svc.today())
		f.UpdatedAt = time.Now().UTC()
		return nil
	})
}

// RecordPayment adds p to the fee's paid amount. The total paid never exceeds the fee's amount.
func (svc *Service) RecordPayment(ctx context.Context, id string, p Payment) (Fee, error) {
	p.Clean()
	if err := svc.validate.Struct(p); err != nil {
		return Fee{}, err
	}

	date := p.Date
	if date.IsZero() {
		date = svc.today()
	}
	date = date.UTC()

	paid, err := svc.repo.UpdateFee(ctx, id, func(f *Fee) error {
		if balance := f.Balance(); p.Amount > balance {
			msg := fmt.Sprintf("exceeds the outstanding balance of %.2f", balance)
			if balance <= 0 {
				msg = "this fee is already paid"
			}
			return core.NewValidationError(errOverpaid, core.FieldError{Field: "amount", Error: msg})
		}
		f.PaidAmount = roundAmount(f.PaidAmount + p.Amount)
		f.PaymentDate = &date
		f.PaymentMethod = p.Method
		f.Status = f.DeriveStatus(svc.today())
		f.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return Fee{}, err
	}

	if err := svc.events.Publish(ctx, core.TopicFeePaymentRecorded, paid.ID, paid); err != nil {
		svc.logger.Warn(fmt.Sprintf("publishing %s: %v", core.TopicFeePaymentRecorded, err), err)
	}
	return paid, nil
}

// MarkOverdue flags every pending or partially paid fee due before now, returning how many changed.
func (svc *Service) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	today := core.TruncateDay(now, svc.loc)
	fees, err := svc.repo.QueryFees(ctx, &QueryFilter{
		Statuses:  []string{StatusPending, StatusPartial},
		DueBefore: today,
	}, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying unpaid fees")
	}

	n := 0
	for _, f := range fees {
		if f.DeriveStatus(today) != StatusOverdue {
			continue
		}
		changed := false
		_, err := svc.repo.UpdateFee(ctx, f.ID, func(f *Fee) error {
			// a payment may have landed since the query
			if changed = f.Status != StatusOverdue && f.DeriveStatus(today) == StatusOverdue; changed {
				f.Status = StatusOverdue
				f.UpdatedAt = time.Now().UTC()
			}
			return nil
		})
		if err != nil {
			if core.IsNotFound(err) {
				continue
			}
			return n, errors.Wrapf(err, "marking fee %s overdue", f.ID)
		}
		if changed {
			n++
		}
	}
	return n, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteFee(ctx, id)
}
