package timetable

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/subject"
	"github.com/trezcool/shule/core/unique"
)

var (
	ErrNotFound = core.NewNotFoundError("timetable")

	errInvalidPeriods = errors.New("invalid periods")
	errTeacherBooked  = errors.New("teacher already booked")
)

type (
	Repository interface {
		CreateTimetable(ctx context.Context, t Timetable) (Timetable, error)
		QueryTimetables(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Timetable, error)
		GetTimetable(ctx context.Context, id string) (Timetable, error)
		UpdateTimetable(ctx context.Context, t Timetable) (Timetable, error)
		DeleteTimetable(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		classes  *class.Service
		subjects *subject.Service
		staff    *staff.Service
		checker  unique.Checker
		policy   *unique.Policy
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	classes *class.Service,
	subjects *subject.Service,
	staffSvc *staff.Service,
	checker unique.Checker,
	policy *unique.Policy,
	validate *validator.Validate,
) *Service {
	return &Service{
		repo:     repo,
		classes:  classes,
		subjects: subjects,
		staff:    staffSvc,
		checker:  checker,
		policy:   policy,
		validate: validate,
	}
}

func periodError(i int, msg string, err error) error {
	return core.NewValidationError(err, core.FieldError{Field: fmt.Sprintf("periods[%d]", i), Error: msg})
}

// checkPeriods validates sorted periods: each ends after it starts, none overlap, every
// subject and teacher exists and no teacher is booked elsewhere at the same time.
func (svc *Service) checkPeriods(ctx context.Context, t Timetable) error {
	for i, p := range t.Periods {
		if p.Start >= p.End {
			return periodError(i, "must end after it starts", errInvalidPeriods)
		}
		if i > 0 && t.Periods[i-1].Overlaps(p) {
			return periodError(i, fmt.Sprintf("overlaps the %s-%s period", t.Periods[i-1].Start, t.Periods[i-1].End), errInvalidPeriods)
		}
	}

	for i, p := range t.Periods {
		if p.SubjectID != "" {
			if _, err := svc.subjects.Lookup(ctx, p.SubjectID, fmt.Sprintf("periods[%d].subject_id", i)); err != nil {
				return err
			}
		}
		if p.TeacherID != "" {
			ok, err := svc.staff.Exists(ctx, p.TeacherID)
			if err != nil {
				return errors.Wrap(err, "finding teacher")
			}
			if !ok {
				return periodError(i, "teacher not found", staff.ErrNotFound)
			}
		}
	}
	return svc.checkTeacherBookings(ctx, t)
}

func (svc *Service) checkTeacherBookings(ctx context.Context, t Timetable) error {
	others, err := svc.repo.QueryTimetables(ctx, &QueryFilter{Days: []int{t.Day}}, nil)
	if err != nil {
		return errors.Wrap(err, "querying timetables")
	}
	for i, p := range t.Periods {
		if p.TeacherID == "" {
			continue
		}
		for _, other := range others {
			if other.ID == t.ID {
				continue
			}
			for _, op := range other.Periods {
				if op.TeacherID == p.TeacherID && op.Overlaps(p) {
					return periodError(i, fmt.Sprintf("the teacher already has a %s-%s period on this day", op.Start, op.End), errTeacherBooked)
				}
			}
		}
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTimetable) (Timetable, error) {
	nt.Clean()
	if err := svc.validate.Struct(nt); err != nil {
		return Timetable{}, err
	}
	c, err := svc.classes.Lookup(ctx, nt.ClassID, "class_id")
	if err != nil {
		return Timetable{}, err
	}
	if nt.Section != "" && !c.HasSection(nt.Section) {
		return Timetable{}, core.NewValidationError(errInvalidPeriods, core.FieldError{
			Field: "section",
			Error: fmt.Sprintf("%q is not a section of class %s", nt.Section, c.Name),
		})
	}

	now := time.Now().UTC()
	t := Timetable{
		ClassID:   c.ID,
		Section:   nt.Section,
		Day:       nt.Day,
		Periods:   nt.Periods,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntityTimetable, t.UniqueValues(), ""); err != nil {
		return Timetable{}, err
	}
	if err := svc.checkPeriods(ctx, t); err != nil {
		return Timetable{}, err
	}
	return svc.repo.CreateTimetable(ctx, t)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Timetable, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryTimetables(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Timetable, error) {
	return svc.repo.GetTimetable(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTimetable) (Timetable, error) {
	t, err := svc.repo.GetTimetable(ctx, id)
	if err != nil {
		return Timetable{}, err
	}
	ut.Clean()
	if err := svc.validate.Struct(ut); err != nil {
		return Timetable{}, err
	}
	t.Periods = ut.Periods
	if err := svc.checkPeriods(ctx, t); err != nil {
		return Timetable{}, err
	}
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTimetable(ctx, t)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTimetable(ctx, id)
}
