package parent

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var ErrNotFound = core.NewNotFoundError("parent")

type (
	Repository interface {
		CreateParent(ctx context.Context, p Parent) (Parent, error)
		QueryParents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Parent, error)
		GetParent(ctx context.Context, id string) (Parent, error)
		GetParentByUser(ctx context.Context, userID string) (Parent, error)
		UpdateParent(ctx context.Context, p Parent) (Parent, error)
		DeleteParent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		users    *user.Service
		tx       core.Transactor
		validate *validator.Validate
		events   core.EventPublisher
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	tx core.Transactor,
	validate *validator.Validate,
	events core.EventPublisher,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, users: users, tx: tx, validate: validate, events: events, logger: logger}
}

func (svc *Service) Create(ctx context.Context, np NewParent) (Parent, error) {
	np.Clean()
	if err := svc.validate.Struct(np); err != nil {
		return Parent{}, err
	}

	var created Parent
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		usr, err := svc.users.Create(ctx, np.NewUser)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		p, err := svc.repo.CreateParent(ctx, Parent{
			UserID:       usr.ID,
			Occupation:   np.Occupation,
			Relationship: np.Relationship,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return errors.Wrap(err, "creating parent")
		}
		p.User = &usr
		created = p
		return nil
	})
	if err != nil {
		return Parent{}, err
	}

	if err := svc.events.Publish(ctx, core.TopicParentCreated, created.ID, created); err != nil {
		svc.logger.Warn(fmt.Sprintf("publishing %s: %v", core.TopicParentCreated, err), err)
	}
	svc.users.SendAccountCreatedMail(*created.User, created.User.Email)
	return created, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Parent, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	parents, err := svc.repo.QueryParents(ctx, filter, ordering)
	if err != nil {
		return nil, errors.Wrap(err, "querying parents")
	}
	if len(parents) == 0 {
		return parents, nil
	}

	ids := make([]string, 0, len(parents))
	for _, p := range parents {
		ids = append(ids, p.UserID)
	}
	byID, err := svc.users.MapByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "finding parent accounts")
	}
	for i := range parents {
		if usr, ok := byID[parents[i].UserID]; ok {
			parents[i].User = &usr
		}
	}
	return parents, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Parent, error) {
	p, err := svc.repo.GetParent(ctx, id)
	if err != nil {
		return Parent{}, err
	}
	return svc.attachUser(ctx, p)
}

func (svc *Service) GetByUser(ctx context.Context, userID string) (Parent, error) {
	p, err := svc.repo.GetParentByUser(ctx, userID)
	if err != nil {
		return Parent{}, err
	}
	return svc.attachUser(ctx, p)
}

func (svc *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := svc.repo.GetParent(ctx, id); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (svc *Service) Update(ctx context.Context, id string, up UpdateParent) (Parent, error) {
	up.Clean()
	if err := svc.validate.Struct(up); err != nil {
		return Parent{}, err
	}

	var updated Parent
	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := svc.repo.GetParent(ctx, id)
		if err != nil {
			return err
		}
		usr, err := svc.users.Update(ctx, p.UserID, up.UpdateUser)
		if err != nil {
			return err
		}
		up.apply(&p)
		p.UpdatedAt = time.Now().UTC()
		if p, err = svc.repo.UpdateParent(ctx, p); err != nil {
			return errors.Wrap(err, "updating parent")
		}
		p.User = &usr
		updated = p
		return nil
	})
	return updated, err
}

// Delete removes the profile and its account. Children are kept, without a parent.
func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := svc.repo.GetParent(ctx, id)
		if err != nil {
			return err
		}
		if err := svc.repo.DeleteParent(ctx, p.ID); err != nil {
			return errors.Wrap(err, "deleting parent")
		}
		return errors.Wrap(svc.users.Delete(ctx, p.UserID), "deleting parent account")
	})
}

func (svc *Service) attachUser(ctx context.Context, p Parent) (Parent, error) {
	usr, err := svc.users.GetByID(ctx, p.UserID)
	if err != nil {
		return Parent{}, errors.Wrap(err, "finding parent account")
	}
	p.User = &usr
	return p, nil
}
