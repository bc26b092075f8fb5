package staff

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/ident"
	"github.com/trezcool/shule/core/unique"
	"github.com/trezcool/shule/core/user"
)

var ErrNotFound = core.NewNotFoundError("staff")

type (
	Repository interface {
		CreateStaff(ctx context.Context, s Staff) (Staff, error)
		QueryStaff(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Staff, error)
		GetStaff(ctx context.Context, id string) (Staff, error)
		GetStaffByUser(ctx context.Context, userID string) (Staff, error)
		UpdateStaff(ctx context.Context, s Staff) (Staff, error)
		DeleteStaff(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		users    *user.Service
		ids      *ident.Generator
		tx       core.Transactor
		validate *validator.Validate
		events   core.EventPublisher
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	ids *ident.Generator,
	tx core.Transactor,
	validate *validator.Validate,
	events core.EventPublisher,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		ids:      ids,
		tx:       tx,
		validate: validate,
		events:   events,
		logger:   logger,
	}
}

func isEmployeeIDCollision(err error) bool {
	return unique.IsViolation(err, "employee_id")
}

// Create opens the staff member's account and profile in one transaction, under a freshly
// issued employee ID.
func (svc *Service) Create(ctx context.Context, ns NewStaff) (Staff, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return Staff{}, err
	}
	if err := svc.users.Validate(ctx, &ns.NewUser); err != nil {
		return Staff{}, err
	}

	var created Staff
	_, err := svc.ids.Issue(ctx, ident.KindEmployee, isEmployeeIDCollision, func(ctx context.Context, id string) error {
		usr, err := svc.users.Create(ctx, ns.NewUser)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		s, err := svc.repo.CreateStaff(ctx, Staff{
			UserID:        usr.ID,
			EmployeeID:    id,
			Designation:   ns.Designation,
			Department:    ns.Department,
			Qualification: ns.Qualification,
			JoiningDate:   ns.JoiningDate.UTC(),
			Salary:        ns.Salary,
			Status:        ns.Status,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		if err != nil {
			return errors.Wrap(err, "creating staff")
		}
		s.User = &usr
		created = s
		return nil
	})
	if err != nil {
		return Staff{}, err
	}

	if err := svc.events.Publish(ctx, core.TopicStaffCreated, created.ID, created); err != nil {
		svc.logger.Warn(fmt.Sprintf("publishing %s: %v", core.TopicStaffCreated, err), err)
	}
	svc.users.SendAccountCreatedMail(*created.User, created.EmployeeID)
	return created, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Staff, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	members, err := svc.repo.QueryStaff(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying staff")
	}
	return svc.attachUsers(ctx, members)
}

func (svc *Service) Get(ctx context.Context, id string) (Staff, error) {
	s, err := svc.repo.GetStaff(ctx, id)
	if err != nil {
		return Staff{}, err
	}
	return svc.attachUser(ctx, s)
}

func (svc *Service) GetByUser(ctx context.Context, userID string) (Staff, error) {
	s, err := svc.repo.GetStaffByUser(ctx, userID)
	if err != nil {
		return Staff{}, err
	}
	return svc.attachUser(ctx, s)
}

// Exists reports whether a staff member with id exists.
func (svc *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := svc.repo.GetStaff(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Update(ctx context.Context, id string, us UpdateStaff) (Staff, error) {
	us.Clean()
	if err := svc.validate.Struct(us); err != nil {
		return Staff{}, err
	}

	var updated Staff
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := svc.repo.GetStaff(ctx, id)
		if err != nil {
			return err
		}
		usr, err := svc.users.Update(ctx, s.UserID, us.UpdateUser)
		if err != nil {
			return err
		}
		us.apply(&s)
		s.UpdatedAt = time.Now().UTC()
		if s, err = svc.repo.UpdateStaff(ctx, s); err != nil {
			return errors.Wrap(err, "updating staff")
		}
		s.User = &usr
		updated = s
		return nil
	})
	return updated, err
}

// Delete removes the profile and its account. The employee ID is never issued again.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		s, err := svc.repo.GetStaff(ctx, id)
		if err != nil {
			return err
		}
		if err := svc.repo.DeleteStaff(ctx, s.ID); err != nil {
			return errors.Wrap(err, "deleting staff")
		}
		return errors.Wrap(svc.users.Delete(ctx, s.UserID), "deleting staff account")
	})
}

func (svc *Service) attachUser(ctx context.Context, s Staff) (Staff, error) {
	usr, err := svc.users.GetByID(ctx, s.UserID)
	if err != nil {
		return Staff{}, errors.Wrap(err, "finding staff account")
	}
	s.User = &usr
	return s, nil
}

func (svc *Service) attachUsers(ctx context.Context, members []Staff) ([]Staff, error) {
	if len(members) == 0 {
		return members, nil
	}
	ids := make([]string, 0, len(members))
	for _, s := range members {
		ids = append(ids, s.UserID)
	}
	byID, err := svc.users.MapByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "finding staff accounts")
	}
	for i := range members {
		if usr, ok := byID[members[i].UserID]; ok {
			members[i].User = &usr
		}
	}
	return members, nil
}
