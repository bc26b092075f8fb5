package class

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/unique"
)

var ErrNotFound = core.NewNotFoundError("class")

type (
	Repository interface {
		CreateClass(ctx context.Context, c Class) (Class, error)
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error)
		GetClass(ctx context.Context, id string) (Class, error)
		UpdateClass(ctx context.Context, c Class) (Class, error)
		DeleteClass(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		staff    *staff.Service
		checker  unique.Checker
		policy   *unique.Policy
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	staffSvc *staff.Service,
	checker unique.Checker,
	policy *unique.Policy,
	validate *validator.Validate,
) *Service {
	return &Service{repo: repo, staff: staffSvc, checker: checker, policy: policy, validate: validate}
}

func (svc *Service) checkTeacher(ctx context.Context, teacherID *string) error {
	if teacherID == nil {
		return nil
	}
	ok, err := svc.staff.Exists(ctx, *teacherID)
	if err != nil {
		return errors.Wrap(err, "finding class teacher")
	}
	if !ok {
		return core.NewValidationError(staff.ErrNotFound,
			core.FieldError{Field: "class_teacher_id", Error: "staff member not found"})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nc NewClass) (Class, error) {
	nc.Clean()
	if err := svc.validate.Struct(nc); err != nil {
		return Class{}, err
	}

	now := time.Now().UTC()
	c := Class{
		Name:           nc.Name,
		AcademicYear:   nc.AcademicYear,
		Sections:       nc.Sections,
		ClassTeacherID: core.NullString(nc.ClassTeacherID),
		Capacity:       nc.Capacity,
		Room:           nc.Room,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c.Sections == nil {
		c.Sections = []string{}
	}
	if err := svc.checkTeacher(ctx, c.ClassTeacherID); err != nil {
		return Class{}, err
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntityClass, c.UniqueValues(), ""); err != nil {
		return Class{}, err
	}
	return svc.repo.CreateClass(ctx, c)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Class, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryClasses(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Class, error) {
	return svc.repo.GetClass(ctx, id)
}

// Lookup returns the class referenced by field, reporting a missing class as a validation error.
func (svc *Service) Lookup(ctx context.Context, id, field string) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Class{}, core.NewValidationError(err, core.FieldError{Field: field, Error: "class not found"})
		}
		return Class{}, errors.Wrap(err, "finding class")
	}
	return c, nil
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateClass) (Class, error) {
	c, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return Class{}, err
	}
	uc.Clean()
	if err := svc.validate.Struct(uc); err != nil {
		return Class{}, err
	}
	uc.apply(&c)
	if err := svc.checkTeacher(ctx, c.ClassTeacherID); err != nil {
		return Class{}, err
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntityClass, c.UniqueValues(), c.ID); err != nil {
		return Class{}, err
	}
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateClass(ctx, c)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteClass(ctx, id)
}
