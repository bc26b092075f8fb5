package event

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	ErrNotFound = core.NewNotFoundError("event")

	errInvalidSchedule = errors.New("event ends before it starts")
)

type (
	Repository interface {
		CreateEvent(ctx context.Context, e Event) (Event, error)
		QueryEvents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error)
		GetEvent(ctx context.Context, id string) (Event, error)
		UpdateEvent(ctx context.Context, e Event) (Event, error)
		DeleteEvent(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func checkSchedule(e Event) error {
	if e.EndsAt.Before(e.StartsAt) {
		return core.NewValidationError(errInvalidSchedule, core.FieldError{Field: "ends_at", Error: "must not be before starts_at"})
	}
	return nil
}

// Create schedules an event on behalf of the user createdBy.
func (svc *Service) Create(ctx context.Context, createdBy string, ne NewEvent) (Event, error) {
	ne.Clean()
	if err := svc.validate.Struct(ne); err != nil {
		return Event{}, err
	}

	now := time.Now().UTC()
	e := Event{
		Title:       ne.Title,
		Description: ne.Description,
		StartsAt:    ne.StartsAt.UTC(),
		EndsAt:      ne.EndsAt.UTC(),
		Location:    ne.Location,
		Audience:    ne.Audience,
		CreatedBy:   core.NullString(createdBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := checkSchedule(e); err != nil {
		return Event{}, err
	}
	return svc.repo.CreateEvent(ctx, e)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Event, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryEvents(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Event, error) {
	return svc.repo.GetEvent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, ue UpdateEvent) (Event, error) {
	e, err := svc.repo.GetEvent(ctx, id)
	if err != nil {
		return Event{}, err
	}
	ue.Clean()
	if err := svc.validate.Struct(ue); err != nil {
		return Event{}, err
	}
	ue.apply(&e)
	if err := checkSchedule(e); err != nil {
		return Event{}, err
	}
	e.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateEvent(ctx, e)
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteEvent(ctx, id)
}
