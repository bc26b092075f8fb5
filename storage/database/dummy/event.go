package dummydb

import (
	"context"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/event"
)

type eventRepository struct {
	db *DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) event.Repository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	e.ID = newID()
	return createRow(ctx, repo.db.events, e, nil)
}

func (repo *eventRepository) QueryEvents(_ context.Context, filter *event.QueryFilter, ordering []core.DBOrdering) ([]event.Event, error) {
	events := repo.db.events.list(func(e event.Event) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !anyContainsFold(filter.Search, e.Title, e.Location) {
			return false
		}
		if !filter.From.IsZero() && e.EndsAt.Before(filter.From) {
			return false
		}
		if !filter.To.IsZero() && e.StartsAt.After(filter.To) {
			return false
		}
		if filter.Role != "" && !e.VisibleTo(filter.Role) {
			return false
		}
		return idIn(filter.IDs, e.ID)
	})
	orderBy(events, ordering)
	return events, nil
}

func (repo *eventRepository) GetEvent(_ context.Context, id string) (event.Event, error) {
	return getRow(repo.db.events, id, event.ErrNotFound)
}

func (repo *eventRepository) UpdateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	return updateRow(ctx, repo.db.events, e, nil, event.ErrNotFound)
}

func (repo *eventRepository) DeleteEvent(ctx context.Context, id string) error {
	return deleteRow(ctx, repo.db.events, id, event.ErrNotFound)
}
