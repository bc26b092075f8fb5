package student

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

var ErrNotFound = core.NewNotFoundError("student")

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		GetStudentByUser(ctx context.Context, userID string) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		users    *user.Service
		classes  *class.Service
		parents  *parent.Service
		ids      *ident.Generator
		tx       core.Transactor
		checker  unique.Checker
		policy   *unique.Policy
		validate *validator.Validate
		events   core.EventPublisher
		logger   core.Logger
		loc      *time.Location
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	classes *class.Service,
	parents *parent.Service,
	ids *ident.Generator,
	tx core.Transactor,
	checker unique.Checker,
	policy *unique.Policy,
	validate *validator.Validate,
	events core.EventPublisher,
	logger core.Logger,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		classes:  classes,
		parents:  parents,
		ids:      ids,
		tx:       tx,
		checker:  checker,
		policy:   policy,
		validate: validate,
		events:   events,
		logger:   logger,
		loc:      conf.Timezone,
	}
}

func isAdmissionNumberCollision(err error) bool {
	return unique.IsViolation(err, "admission_number")
}

// checkRefs makes sure the student's class, section and parent exist, defaulting the academic
// year to the class's.
func (svc *Service) checkRefs(ctx context.Context, s *Student) error {
	c, err := svc.classes.Lookup(ctx, s.ClassID, "class_id")
	if err != nil {
		return err
	}
	if !c.HasSection(s.Section) {
		return core.NewValidationError(errors.New("invalid section"), core.FieldError{
			Field: "section",
			Error: fmt.Sprintf("%q is not a section of class %s", s.Section, c.Name),
		})
	}
	if s.AcademicYear == "" {
		s.AcademicYear = c.AcademicYear
	}

	if s.ParentID != nil {
		ok, err := svc.parents.Exists(ctx, *s.ParentID)
		if err != nil {
			return errors.Wrap(err, "finding parent")
		}
		if !ok {
			return core.NewValidationError(parent.ErrNotFound, core.FieldError{Field: "parent_id", Error: "parent not found"})
		}
	}
	return nil
}

// Create opens the student's account and profile in one transaction, under a freshly issued
// admission number.
func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Student{}, err
	}

	s := Student{
		RollNumber:    ns.RollNumber,
		ClassID:       ns.ClassID,
		Section:       ns.Section,
		AcademicYear:  ns.AcademicYear,
		DateOfBirth:   ns.DateOfBirth,
		Gender:        ns.Gender,
		BloodGroup:    ns.BloodGroup,
		ParentID:      core.NullString(ns.ParentID),
		AdmissionDate: ns.AdmissionDate.UTC(),
	}
	if s.AdmissionDate.IsZero() {
		s.AdmissionDate = core.TruncateDay(time.Now(), svc.loc)
	}
	if err := svc.checkRefs(ctx, &s); err != nil {
		return Student{}, err
	}
	if err := svc.users.Validate(ctx, &ns.NewUser); err != nil {
		return Student{}, err
	}
	if err := svc.policy.Check(ctx, svc.checker, unique.EntityStudent, s.UniqueValues(), ""); err != nil {
		return Student{}, err
	}

	var created Student
	_, err := svc.ids.Issue(ctx, ident.KindAdmission, isAdmissionNumberCollision, func(ctx context.Context, id string) error {
		usr, err := svc.users.Create(ctx, ns.NewUser)
		if err != nil {
			return err
		}
		rec := s
		rec.UserID = usr.ID
		rec.AdmissionNumber = id
		rec.CreatedAt = time.Now().UTC()
		rec.UpdatedAt = rec.CreatedAt
		if rec, err = svc.repo.CreateStudent(ctx, rec); err != nil {
			return errors.Wrap(err, "creating student")
		}
		rec.User = &usr
		created = rec
		return nil
	})
	if err != nil {
		return Student{}, err
	}

	if err := svc.events.Publish(ctx, core.TopicStudentCreated, created.ID, created); err != nil {
		svc.logger.Warn(fmt.Sprintf("publishing %s: %v", core.TopicStudentCreated, err), err)
	}
	svc.users.SendAccountCreatedMail(*created.User, created.AdmissionNumber)
	return created, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	students, err := svc.repo.QueryStudents(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return svc.attachUsers(ctx, students)
}

// Children returns the students whose parent is parentID.
func (svc *Service) Children(ctx context.Context, parentID string) ([]Student, error) {
	return svc.Query(ctx, &QueryFilter{ParentID: parentID}, nil)
}

// MapByIDs returns the students with the given IDs, keyed by ID. Accounts are not attached.
func (svc *Service) MapByIDs(ctx context.Context, ids []string) (map[string]Student, error) {
	byID := make(map[string]Student, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	students, err := svc.repo.QueryStudents(ctx, &QueryFilter{IDs: ids}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	for _, s := range students {
		byID[s.ID] = s
	}
	return byID, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	return svc.attachUser(ctx, s)
}

// Lookup returns the student referenced by field, reporting a missing student as a validation error.
func (svc *Service) Lookup(ctx context.Context, id, field string) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Student{}, core.NewValidationError(err, core.FieldError{Field: field, Error: "student not found"})
		}
		return Student{}, errors.Wrap(err, "finding student")
	}
	return s, nil
}

func (svc *Service) GetByUser(ctx context.Context, userID string) (Student, error) {
	s, err := svc.repo.GetStudentByUser(ctx, userID)
	if err != nil {
		return Student{}, err
	}
	return svc.attachUser(ctx, s)
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	us.Clean()
	if err := svc.validate.Struct(us); err != nil {
		return Student{}, err
	}

	var updated Student
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := svc.repo.GetStudent(ctx, id)
		if err != nil {
			return err
		}
		us.apply(&s)
		if err := svc.checkRefs(ctx, &s); err != nil {
			return err
		}
		if err := svc.policy.Check(ctx, svc.checker, unique.EntityStudent, s.UniqueValues(), s.ID); err != nil {
			return err
		}
		usr, err := svc.users.Update(ctx, s.UserID, us.UpdateUser)
		if err != nil {
			return err
		}
		s.UpdatedAt = time.Now().UTC()
		if s, err = svc.repo.UpdateStudent(ctx, s); err != nil {
			return errors.Wrap(err, "updating student")
		}
		s.User = &usr
		updated = s
		return nil
	})
	return updated, err
}

// Delete removes the profile, its fees and grades, and its account.
// The admission number is never issued again.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := svc.repo.GetStudent(ctx, id)
		if err != nil {
			return err
		}
		if err := svc.repo.DeleteStudent(ctx, s.ID); err != nil {
			return errors.Wrap(err, "deleting student")
		}
		return errors.Wrap(svc.users.Delete(ctx, s.UserID), "deleting student account")
	})
}

func (svc *Service) attachUser(ctx context.Context, s Student) (Student, error) {
	usr, err := svc.users.GetByID(ctx, s.UserID)
	if err != nil {
		return Student{}, errors.Wrap(err, "finding student account")
	}
	s.User = &usr
	return s, nil
}

func (svc *Service) attachUsers(ctx context.Context, students []Student) ([]Student, error) {
	if len(students) == 0 {
		return students, nil
	}
	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.UserID)
	}
	byID, err := svc.users.MapByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "finding student accounts")
	}
	for i := range students {
		if usr, ok := byID[students[i].UserID]; ok {
			students[i].User = &usr
		}
	}
	return students, nil
}
