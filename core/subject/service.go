package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/unique"
)

var ErrNotFound = core.NewNotFoundError("subject")

type (
	Repository interface {
		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		classes  *class.Service
		staff    *staff.Service
		checker  unique.Checker
		policy   *unique.Policy
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	classes *class.Service,
	staffSvc *staff.Service,
	checker unique.Checker,
	policy *unique.Policy,
	validate *validator.Validate,
) *Service {
	return &Service{repo: repo, classes: classes, staff: staffSvc, checker: checker, policy: policy, validate: validate}
}

func (svc *Service) checkRefs(ctx context.Context, s Subject) error {
	if s.ClassID != nil {
		if _, err := svc.classes.Lookup(ctx, *s.ClassID, "class_id"); err != nil {
			return err
		}
	}
	if s.TeacherID != nil {
		ok, err := svc.staff.Exists(ctx, *s.TeacherID)
		if err != nil {
			return errors.Wrap(err, "finding teacher")
		}
		if !ok {
			return core.NewValidationError(staff.ErrNotFound, core.FieldError{Field: "teacher_id", Error: "staff member not found"})
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Subject{}, err
	}

	now := time.Now().UTC()
	s := Subject{
		Name:        ns.Name,
		Code:        ns.Code,
		Description: ns.Description,
		ClassID:     core.NullString(ns.ClassID),
		TeacherID:   core.NullString(ns.TeacherID),
		Credits:     ns.Credits,
		Type:        ns.Type,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := svc.checkRefs(ctx, s); err != nil {
		return Subject{}, err
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntitySubject, s.UniqueValues(), ""); err != nil {
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, s)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

// Lookup returns the subject referenced by field, reporting a missing subject as a validation error.
func (svc *Service) Lookup(ctx context.Context, id, field string) (Subject, error) {
	s, err := svc.repo.GetSubject(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Subject{}, core.NewValidationError(err, core.FieldError{Field: field, Error: "subject not found"})
		}
		return Subject{}, errors.Wrap(err, "finding subject")
	}
	return s, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	s, err := svc.repo.GetSubject(ctx, id)
	if err != nil {
		return Subject{}, err
	}
	us.Clean()
	if err := svc.validate.Struct(us); err != nil {
		return Subject{}, err
	}
	us.apply(&s)
	if err := svc.checkRefs(ctx, s); err != nil {
		return Subject{}, err
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntitySubject, s.UniqueValues(), s.ID); err != nil {
		return Subject{}, err
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSubject(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}
