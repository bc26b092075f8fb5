package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/unique"
)

var (
	ErrNotFound = core.NewNotFoundError("attendance")

	errInvalidEntries = errors.New("invalid attendance entries")
)

type (
	Repository interface {
		CreateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		QueryAttendance(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Attendance, error)
		GetAttendance(ctx context.Context, id string) (Attendance, error)
		UpdateAttendance(ctx context.Context, a Attendance) (Attendance, error)
		DeleteAttendance(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		classes  *class.Service
		students *student.Service
		checker  unique.Checker
		policy   *unique.Policy
		validate *validator.Validate
	}
)

func NewService(
	repo Repository,
	classes *class.Service,
	students *student.Service,
	checker unique.Checker,
	policy *unique.Policy,
	validate *validator.Validate,
) *Service {
	return &Service{repo: repo, classes: classes, students: students, checker: checker, policy: policy, validate: validate}
}

// checkEntries makes sure every student appears once and belongs to the sheet's class and section.
func (svc *Service) checkEntries(ctx context.Context, a Attendance) error {
	if len(a.Entries) == 0 {
		return core.NewValidationError(errInvalidEntries, core.FieldError{Field: "entries", Error: "at least one entry is required"})
	}

	seen := make(map[string]bool, len(a.Entries))
	ids := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		if seen[e.StudentID] {
			return core.NewValidationError(errInvalidEntries, core.FieldError{
				Field: "entries",
				Error: fmt.Sprintf("student %s appears more than once", e.StudentID),
			})
		}
		seen[e.StudentID] = true
		ids = append(ids, e.StudentID)
	}

	byID, err := svc.students.MapByIDs(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "finding students")
	}
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return core.NewValidationError(errInvalidEntries, core.FieldError{
				Field: "entries",
				Error: fmt.Sprintf("student %s not found", id),
			})
		}
		if s.ClassID != a.ClassID || (a.Section != "" && s.Section != a.Section) {
			return core.NewValidationError(errInvalidEntries, core.FieldError{
				Field: "entries",
				Error: fmt.Sprintf("student %s is not in this class section", id),
			})
		}
	}
	return nil
}

// Create records the sheet taken by the user takenBy.
func (svc *Service) Create(ctx context.Context, takenBy string, na NewAttendance) (Attendance, error) {
	na.Clean()
	if err := svc.validate.Struct(na); err != nil {
		return Attendance{}, err
	}
	c, err := svc.classes.Lookup(ctx, na.ClassID, "class_id")
	if err != nil {
		return Attendance{}, err
	}
	if na.Section != "" && !c.HasSection(na.Section) {
		return Attendance{}, core.NewValidationError(errInvalidEntries, core.FieldError{
			Field: "section",
			Error: fmt.Sprintf("%q is not a section of class %s", na.Section, c.Name),
		})
	}

	now := time.Now().UTC()
	a := Attendance{
		ClassID:   c.ID,
		Section:   na.Section,
		Date:      na.Date,
		TakenBy:   core.NullString(takenBy),
		Entries:   na.Entries,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := svc.checkEntries(ctx, a); err != nil {
		return Attendance{}, err
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntityAttendance, a.UniqueValues(), ""); err != nil {
		return Attendance{}, err
	}
	return svc.repo.CreateAttendance(ctx, a)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Attendance, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryAttendance(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Attendance, error) {
	return svc.repo.GetAttendance(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id, takenBy string, ua UpdateAttendance) (Attendance, error) {
	a, err := svc.repo.GetAttendance(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	ua.Clean()
	if err := svc.validate.Struct(ua); err != nil {
		return Attendance{}, err
	}
	a.Entries = ua.Entries
	if err := svc.checkEntries(ctx, a); err != nil {
		return Attendance{}, err
	}
	a.TakenBy = core.NullString(takenBy)
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAttendance(ctx, a)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteAttendance(ctx, id)
}

// Summary counts the attendance of studentID over every sheet they appear on.
func (svc *Service) Summary(ctx context.Context, studentID string) (Summary, error) {
	if _, err := svc.students.Get(ctx, studentID); err != nil {
		return Summary{}, err
	}
	sheets, err := svc.repo.QueryAttendance(ctx, &QueryFilter{StudentID: studentID}, nil)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying attendance")
	}

	sum := Summary{StudentID: studentID}
	for _, a := range sheets {
		if e, ok := a.Entry(studentID); ok {
			sum.add(e.Status)
		}
	}
	sum.compute()
	return sum, nil
}
